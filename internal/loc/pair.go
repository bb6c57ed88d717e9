package loc

import "fmt"

// PairLocation is a fixed two-element sequence of locations used when a
// single value needs two physical placements at once, e.g. an unboxed
// 64-bit integer split across two registers on a 32-bit target. Both
// slots start out invalid and are mutated in place during allocation;
// the sequence never grows.
type PairLocation struct {
	locations [2]Location
}

// Length is always 2.
func (p *PairLocation) Length() int { return len(p.locations) }

// At returns component i.
func (p *PairLocation) At(i int) Location {
	p.check(i)
	return p.locations[i]
}

// SetAt replaces component i.
func (p *PairLocation) SetAt(i int, l Location) {
	p.check(i)
	p.locations[i] = l
}

// SlotAt returns a mutable pointer to component i so allocators can
// resolve the two halves independently.
func (p *PairLocation) SlotAt(i int) *Location {
	p.check(i)
	return &p.locations[i]
}

func (p *PairLocation) check(i int) {
	if i < 0 || i >= len(p.locations) {
		panic(fmt.Sprintf("loc: pair component %d out of range", i))
	}
}

func (p *PairLocation) String() string {
	return "(" + p.locations[0].String() + ", " + p.locations[1].String() + ")"
}
