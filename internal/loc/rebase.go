package loc

import "github.com/tinyrange/locations/internal/target"

// FrameRebase rewrites stack locations from one frame base register to
// another, shifting their slot indexes by a fixed amount. Deoptimization
// and lazy frame setup use it to translate locations recorded against
// the frame pointer into locations valid before the frame exists.
type FrameRebase struct {
	arena      *Arena
	oldBase    target.Register
	newBase    target.Register
	stackDelta int
}

// NewFrameRebase returns a rebase that moves slots based on oldBase to
// newBase, adding stackDelta to each slot index.
func NewFrameRebase(a *Arena, oldBase, newBase target.Register, stackDelta int) FrameRebase {
	if a == nil {
		panic("loc: frame rebase requires an arena")
	}
	return FrameRebase{arena: a, oldBase: oldBase, newBase: newBase, stackDelta: stackDelta}
}

// Rebase returns l translated to the new base. Locations that do not
// reference the old base come back unchanged; pairs are rebuilt with
// both components translated.
func (fr FrameRebase) Rebase(l Location) Location {
	if l.IsPairLocation() {
		p := l.AsPairLocation(fr.arena)
		return fr.arena.Pair(fr.Rebase(p.At(0)), fr.Rebase(p.At(1)))
	}
	if !l.HasStackIndex() || l.BaseReg() != fr.oldBase {
		return l
	}
	index := l.StackIndex() + fr.stackDelta
	switch l.Kind() {
	case KindStackSlot:
		return StackSlot(index, fr.newBase)
	case KindDoubleStackSlot:
		return DoubleStackSlot(index, fr.newBase)
	default:
		return QuadStackSlot(index, fr.newBase)
	}
}
