package target

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/cpu"
)

// Host returns the description matching the machine this process runs
// on. On arm the VFP feature bits decide between the hard- and
// soft-float descriptions.
func Host() (*Desc, error) {
	switch runtime.GOARCH {
	case "amd64", "arm64", "386":
		return Lookup(runtime.GOARCH)
	case "arm":
		if cpu.ARM.HasVFPv3 || cpu.ARM.HasVFP {
			return Lookup("arm")
		}
		return Lookup("arm-softfp")
	}
	return nil, fmt.Errorf("%w: host architecture %q", ErrUnknownTarget, runtime.GOARCH)
}
