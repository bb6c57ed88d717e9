package locations_test

import (
	"errors"
	"testing"

	"github.com/tinyrange/locations"
)

type constOperand struct {
	v any
}

func (c constOperand) ConstantValue() any { return c.v }

// TestEndToEnd walks one instruction through the whole lifecycle: the
// builder states constraints, an allocator resolves them in place,
// liveness and stack maps are recorded, and the frame is dropped out
// from under the allocated slots.
func TestEndToEnd(t *testing.T) {
	d, err := locations.LookupTarget("amd64")
	if err != nil {
		t.Fatalf("LookupTarget() error = %v", err)
	}
	a := locations.NewArena(d)

	// A binary op that calls a stub when it overflows.
	s := locations.NewLocationSummary(a, 2, 1, locations.CallOnSlowPath)
	s.SetIn(0, locations.RequiresRegister())
	s.SetIn(1, locations.WritableRegister())
	s.SetTemp(0, locations.RequiresRegister())
	s.SetOut(0, locations.SameAsFirstInput())
	s.DiscoverWritableInputs()

	// The allocator resolves every placeholder in place.
	*s.InSlot(0) = locations.RegisterLocation(0)
	*s.InSlot(1) = locations.RegisterLocation(2)
	*s.TempSlot(0) = locations.RegisterLocation(1)
	*s.OutSlot(0) = s.In(0)
	s.CheckWritableInputs()

	if got, want := s.Out(0), locations.RegisterLocation(0); !got.Equals(want) {
		t.Errorf("Out(0) = %v, want %v", got, want)
	}

	// Values live across the slow path, one of them unboxed.
	live := s.LiveRegisters()
	live.Add(locations.RegisterLocation(3), locations.RepTagged)
	live.Add(locations.FpuRegisterLocation(0), locations.RepUnboxedDouble)
	if !live.HasUntaggedValues() {
		t.Error("live set lost its unboxed value")
	}
	if got, want := live.CpuRegisterCount(), 1; got != want {
		t.Errorf("CpuRegisterCount() = %d, want %d", got, want)
	}

	// A value spilled during the call gets a slot and a stack-map bit.
	spill := locations.StackSlot(-1, d.FP)
	s.SetStackBit(0)
	if !s.StackBitmap().Get(0) {
		t.Error("stack map lost its bit")
	}
	if got, want := spill.ToStackSlotOffset(d), -2*d.WordSize; got != want {
		t.Errorf("spill offset = %d, want %d", got, want)
	}

	// Constants ride along as handles into the arena.
	c := a.Constant(constOperand{42})
	if got, want := c.ConstantValue(a), any(42); got != want {
		t.Errorf("ConstantValue() = %v, want %v", got, want)
	}

	// Dropping the frame moves every fp-relative slot to sp.
	fr := locations.NewFrameRebase(a, d.FP, d.SP, 10)
	moved := fr.Rebase(spill)
	if got, want := moved.BaseReg(), d.SP; got != want {
		t.Fatalf("BaseReg() = %v, want %v", got, want)
	}
	if got, want := moved.StackIndex(), 9; got != want {
		t.Errorf("StackIndex() = %d, want %d", got, want)
	}
	if got, want := moved.ToStackSlotOffset(d), 9*d.WordSize; got != want {
		t.Errorf("rebased offset = %d, want %d", got, want)
	}
}

// TestPairsOn32Bit splits a 64-bit value across two registers the way a
// 32-bit target has to.
func TestPairsOn32Bit(t *testing.T) {
	d, err := locations.LookupTarget("arm")
	if err != nil {
		t.Fatalf("LookupTarget() error = %v", err)
	}
	a := locations.NewArena(d)

	p := a.Pair(locations.RegisterLocation(0), locations.RegisterLocation(1))
	if !p.IsPairLocation() {
		t.Fatal("pair does not read as a pair")
	}
	if p.IsRegister() {
		t.Error("pair reads as a plain register")
	}
	if got, want := p.Component(a, 1), locations.RegisterLocation(1); !got.Equals(want) {
		t.Errorf("Component(1) = %v, want %v", got, want)
	}

	s := locations.MakeSummary(a, 1, p, locations.Call)
	if got := s.Out(0); !got.Equals(p) {
		t.Errorf("Out(0) = %v, want %v", got, p)
	}
}

func TestLookupTargetUnknown(t *testing.T) {
	_, err := locations.LookupTarget("z80")
	if !errors.Is(err, locations.ErrUnknownTarget) {
		t.Fatalf("LookupTarget() error = %v, want ErrUnknownTarget", err)
	}
}

func TestParseTarget(t *testing.T) {
	desc := []byte(`
name: demo
word_size: 4
cpu_registers: [a, b, c, d, bp, sp]
frame_pointer: bp
stack_pointer: sp
`)
	d, err := locations.ParseTarget(desc)
	if err != nil {
		t.Fatalf("ParseTarget() error = %v", err)
	}
	l := locations.StackSlot(2, d.FP)
	if got, want := l.NameOn(d), "S+2(bp)"; got != want {
		t.Errorf("NameOn() = %q, want %q", got, want)
	}
}
