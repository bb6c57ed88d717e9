package target

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]*Desc{}
)

// RegisterDesc adds a description to the process-wide registry so Lookup
// can find it by name. It panics on validation failures or duplicate
// names; registration happens once at startup, not on request paths.
func RegisterDesc(d *Desc) {
	if err := d.Validate(); err != nil {
		panic(fmt.Sprintf("target: register %q: %v", d.Name, err))
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, ok := registry[d.Name]; ok {
		panic(fmt.Sprintf("target: %q is already registered", d.Name))
	}
	registry[d.Name] = d
}

// Lookup returns the registered description called name.
func Lookup(name string) (*Desc, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	d, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, name)
	}
	return d, nil
}

// Names lists the registered descriptions in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
