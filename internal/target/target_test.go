package target

import (
	"errors"
	"runtime"
	"testing"
)

func mustLookup(t *testing.T, name string) *Desc {
	t.Helper()
	d, err := Lookup(name)
	if err != nil {
		t.Fatalf("Lookup(%q): %v", name, err)
	}
	return d
}

func TestBuiltinsRegistered(t *testing.T) {
	for _, name := range []string{"amd64", "arm64", "arm", "arm-softfp", "386"} {
		d := mustLookup(t, name)
		if err := d.Validate(); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, err := Lookup("pdp11"); !errors.Is(err, ErrUnknownTarget) {
		t.Fatalf("Lookup(pdp11) err = %v, want ErrUnknownTarget", err)
	}
}

func TestHost(t *testing.T) {
	d, err := Host()
	if err != nil {
		if !errors.Is(err, ErrUnknownTarget) {
			t.Fatalf("Host() err = %v, want ErrUnknownTarget", err)
		}
		t.Skipf("no description for %s", runtime.GOARCH)
	}
	if err := d.Validate(); err != nil {
		t.Fatal(err)
	}
	switch runtime.GOARCH {
	case "amd64", "arm64", "386":
		if d.Name != runtime.GOARCH {
			t.Fatalf("Host() picked %s, want %s", d.Name, runtime.GOARCH)
		}
	case "arm":
		if d.Name != "arm" && d.Name != "arm-softfp" {
			t.Fatalf("Host() picked %s, want an arm variant", d.Name)
		}
	}
}

func TestRegisterDescRejectsDuplicates(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for a duplicate name")
		}
	}()
	RegisterDesc(newAMD64())
}

func TestAMD64(t *testing.T) {
	d := mustLookup(t, "amd64")

	if got, want := d.RegisterName(d.FP), "rbp"; got != want {
		t.Errorf("FP name = %q, want %q", got, want)
	}
	if got, want := d.RegisterName(d.SP), "rsp"; got != want {
		t.Errorf("SP name = %q, want %q", got, want)
	}

	rdi, err := d.RegisterNamed("rdi")
	if err != nil {
		t.Fatal(err)
	}
	if !d.IsArgumentRegister(rdi) {
		t.Error("rdi is not an argument register")
	}
	if d.IsArgumentRegister(d.SP) {
		t.Error("rsp reported as an argument register")
	}
	if !d.IsReserved(d.FP) || !d.IsReserved(d.SP) {
		t.Error("frame/stack pointer not reserved")
	}
	if !d.IsFpuArgumentRegister(0) || d.IsFpuArgumentRegister(8) {
		t.Error("xmm argument membership wrong")
	}
}

func Test386PassesArgumentsOnStack(t *testing.T) {
	d := mustLookup(t, "386")
	if len(d.ArgumentRegisters) != 0 || len(d.FpuArgumentRegisters) != 0 {
		t.Fatalf("386 lists argument registers: %v / %v", d.ArgumentRegisters, d.FpuArgumentRegisters)
	}
	if got, want := d.WordSize, 4; got != want {
		t.Fatalf("WordSize = %d, want %d", got, want)
	}
}

func TestARMVariants(t *testing.T) {
	hard := mustLookup(t, "arm")
	soft := mustLookup(t, "arm-softfp")

	if !hard.HasFpuRegisters {
		t.Error("arm should have fpu registers")
	}
	if soft.HasFpuRegisters {
		t.Error("arm-softfp should not have usable fpu registers")
	}
	if len(soft.FpuArgumentRegisters) != 0 {
		t.Error("arm-softfp lists fpu argument registers")
	}

	pc, err := hard.RegisterNamed("pc")
	if err != nil {
		t.Fatal(err)
	}
	if !hard.IsNeverScratch(pc) {
		t.Error("pc usable as scratch")
	}
}

func TestFrameSlotForVariableIndex(t *testing.T) {
	layout := FrameLayout{ParamEndFromFP: 1, FirstLocalFromFP: -1}

	tests := []struct {
		index, slot int
	}{
		{1, 2},  // first parameter
		{3, 4},  // third parameter
		{0, -1}, // first local
		{-2, -3},
	}
	for _, tt := range tests {
		if got := layout.FrameSlotForVariableIndex(tt.index); got != tt.slot {
			t.Errorf("FrameSlotForVariableIndex(%d) = %d, want %d", tt.index, got, tt.slot)
		}
	}
}

func TestValidateFailures(t *testing.T) {
	base := func() *Desc {
		d := newAMD64()
		return d
	}

	tests := []struct {
		name   string
		mutate func(*Desc)
	}{
		{"empty name", func(d *Desc) { d.Name = "" }},
		{"bad word size", func(d *Desc) { d.WordSize = 2 }},
		{"no cpu registers", func(d *Desc) { d.NumCpuRegisters = 0; d.CpuNames = nil }},
		{"too many registers", func(d *Desc) { d.NumCpuRegisters = 65 }},
		{"fp out of range", func(d *Desc) { d.FP = 40 }},
		{"fp equals sp", func(d *Desc) { d.FP = d.SP }},
		{"fp not reserved", func(d *Desc) { d.Reserved = []Register{d.SP} }},
		{"argument out of range", func(d *Desc) { d.ArgumentRegisters = []Register{30} }},
		{"argument repeated", func(d *Desc) { d.ArgumentRegisters = []Register{1, 1} }},
		{"name count mismatch", func(d *Desc) { d.CpuNames = d.CpuNames[:4] }},
		{"name repeated", func(d *Desc) { d.CpuNames[0] = d.CpuNames[1] }},
		{"params below fp", func(d *Desc) { d.Frame.ParamEndFromFP = -2 }},
		{"locals above fp", func(d *Desc) { d.Frame.FirstLocalFromFP = 3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := base()
			tt.mutate(d)
			if err := d.Validate(); !errors.Is(err, ErrInvalidDesc) {
				t.Fatalf("Validate() = %v, want ErrInvalidDesc", err)
			}
		})
	}
}

func TestRegisterNamed(t *testing.T) {
	d := mustLookup(t, "arm64")

	r, err := d.RegisterNamed("sp")
	if err != nil {
		t.Fatal(err)
	}
	if r != d.SP {
		t.Fatalf("sp resolved to %d, want %d", r, d.SP)
	}
	if _, err := d.RegisterNamed("rax"); err == nil {
		t.Fatal("expected an error for a foreign register name")
	}

	f, err := d.FpuRegisterNamed("v7")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := f, FpuRegister(7); got != want {
		t.Fatalf("v7 resolved to %d, want %d", got, want)
	}
}

func TestNamePanicsOutOfRange(t *testing.T) {
	d := mustLookup(t, "386")
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic")
		}
	}()
	d.RegisterName(20)
}
