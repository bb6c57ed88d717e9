package loc

import "testing"

func TestRebaseMovesMatchingSlots(t *testing.T) {
	d := testTarget(t, "amd64")
	a := NewArena(d)
	fr := NewFrameRebase(a, d.FP, d.SP, 10)
	cases := []struct {
		in   Location
		want Location
	}{
		{StackSlot(-3, d.FP), StackSlot(7, d.SP)},
		{DoubleStackSlot(0, d.FP), DoubleStackSlot(10, d.SP)},
		{QuadStackSlot(2, d.FP), QuadStackSlot(12, d.SP)},
	}
	for _, c := range cases {
		if got := fr.Rebase(c.in); !got.Equals(c.want) {
			t.Errorf("Rebase(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestRebaseLeavesOthersAlone(t *testing.T) {
	d := testTarget(t, "amd64")
	a := NewArena(d)
	fr := NewFrameRebase(a, d.FP, d.SP, 10)
	untouched := []Location{
		Invalid(),
		Any(),
		RequiresRegister(),
		RegisterLocation(3),
		FpuRegisterLocation(1),
		StackSlot(4, d.SP),
		a.Constant(testConstant{1}),
	}
	for _, l := range untouched {
		if got := fr.Rebase(l); !got.Equals(l) {
			t.Errorf("Rebase(%v) = %v, want it unchanged", l, got)
		}
	}
}

func TestRebasePairs(t *testing.T) {
	d := testTarget(t, "amd64")
	a := NewArena(d)
	fr := NewFrameRebase(a, d.FP, d.SP, 10)

	p := a.Pair(StackSlot(-1, d.FP), RegisterLocation(0))
	got := fr.Rebase(p)
	if !got.IsPairLocation() {
		t.Fatalf("Rebase(%v) = %v, want a pair", p, got)
	}
	if got.Equals(p) {
		t.Error("rebased pair kept its handle")
	}
	if c := got.Component(a, 0); !c.Equals(StackSlot(9, d.SP)) {
		t.Errorf("Component(0) = %v, want %v", c, StackSlot(9, d.SP))
	}
	if c := got.Component(a, 1); !c.Equals(RegisterLocation(0)) {
		t.Errorf("Component(1) = %v, want %v", c, RegisterLocation(0))
	}
}

func TestRebaseOffsetsCompose(t *testing.T) {
	// A local recorded against the frame pointer still resolves after
	// the frame is dropped and everything reads off the stack pointer.
	d := testTarget(t, "amd64")
	a := NewArena(d)
	fr := NewFrameRebase(a, d.FP, d.SP, 10)
	l := fr.Rebase(StackSlot(-3, d.FP))
	if got, want := l.ToStackSlotOffset(d), 7*8; got != want {
		t.Errorf("offset = %d, want %d", got, want)
	}
}

func TestNewFrameRebaseRequiresArena(t *testing.T) {
	d := testTarget(t, "amd64")
	mustPanic(t, "NewFrameRebase(nil)", func() { NewFrameRebase(nil, d.FP, d.SP, 0) })
}
