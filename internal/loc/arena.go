package loc

import (
	"fmt"

	"github.com/tinyrange/locations/internal/target"
)

// ConstantNode is the opaque reference a constant location points back
// at: a constant definition owned by the IR graph, which keeps it alive
// for the whole compilation unit. This package never inspects the value.
type ConstantNode interface {
	ConstantValue() any
}

// Arena owns the pair locations and constant references minted while
// compiling one unit. Constant and pair words carry handles into their
// arena, so a location may only be dereferenced against the arena that
// created it; handing one to a foreign arena panics. Arenas are never
// shared between concurrently compiled units and need no locking.
type Arena struct {
	target *target.Desc
	pairs  []*PairLocation
	consts []ConstantNode
}

// NewArena returns an empty arena compiling against t.
func NewArena(t *target.Desc) *Arena {
	if t == nil {
		panic("loc: arena requires a target description")
	}
	return &Arena{target: t}
}

// Target returns the description this arena compiles against.
func (a *Arena) Target() *target.Desc { return a.target }

// Constant returns a location referring to node. Every call mints a
// fresh handle, so the result never compares equal to other locations.
func (a *Arena) Constant(node ConstantNode) Location {
	if node == nil {
		panic("loc: nil constant node")
	}
	handle := uint64(len(a.consts))
	if handle > maxArenaHandle {
		panic("loc: constant table full")
	}
	a.consts = append(a.consts, node)
	return Location{handle<<2 | constantTag}
}

// Pair allocates a two-slot location holding first and second. The
// components must not themselves be pairs; pairs never nest.
func (a *Arena) Pair(first, second Location) Location {
	if first.IsPairLocation() || second.IsPairLocation() {
		panic("loc: pair components must not be pairs")
	}
	p := &PairLocation{}
	p.SetAt(0, first)
	p.SetAt(1, second)
	handle := uint64(len(a.pairs))
	if handle > maxArenaHandle {
		panic("loc: pair table full")
	}
	a.pairs = append(a.pairs, p)
	return Location{handle<<2 | pairLocationTag}
}

func (a *Arena) pairAt(handle uint64) *PairLocation {
	if handle >= uint64(len(a.pairs)) {
		panic(fmt.Sprintf("loc: pair handle %d does not belong to this arena", handle))
	}
	return a.pairs[handle]
}

func (a *Arena) constAt(handle uint64) ConstantNode {
	if handle >= uint64(len(a.consts)) {
		panic(fmt.Sprintf("loc: constant handle %d does not belong to this arena", handle))
	}
	return a.consts[handle]
}

// AsPairLocation returns the mutable pair this location refers to.
func (l Location) AsPairLocation(a *Arena) *PairLocation {
	if !l.IsPairLocation() {
		panic("loc: AsPairLocation on a non-pair location")
	}
	return a.pairAt(l.value >> 2)
}

// Component returns element i of a pair location, for i in {0, 1}.
func (l Location) Component(a *Arena, i int) Location {
	return l.AsPairLocation(a).At(i)
}

// Constant returns the constant node this location refers to.
func (l Location) Constant(a *Arena) ConstantNode {
	if !l.IsConstant() {
		panic("loc: Constant on a non-constant location")
	}
	return a.constAt(l.value >> 2)
}

// ConstantValue unwraps the referenced node's value.
func (l Location) ConstantValue(a *Arena) any {
	return l.Constant(a).ConstantValue()
}

// Copy returns a location safe to retain independently: pairs are
// re-allocated so later in-place mutation of the original's slots is
// not observed, everything else is returned as-is.
func (l Location) Copy(a *Arena) Location {
	if l.IsPairLocation() {
		p := l.AsPairLocation(a)
		return a.Pair(p.At(0), p.At(1))
	}
	return l
}
