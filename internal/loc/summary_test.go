package loc

import "testing"

func TestNewLocationSummaryShape(t *testing.T) {
	a := NewArena(testTarget(t, "amd64"))
	s := NewLocationSummary(a, 2, 1, NoCall)
	if got, want := s.InputCount(), 2; got != want {
		t.Errorf("InputCount() = %d, want %d", got, want)
	}
	if got, want := s.TempCount(), 1; got != want {
		t.Errorf("TempCount() = %d, want %d", got, want)
	}
	if got, want := s.OutputCount(), 1; got != want {
		t.Errorf("OutputCount() = %d, want %d", got, want)
	}
	if !s.In(0).IsInvalid() || !s.Temp(0).IsInvalid() || !s.Out(0).IsInvalid() {
		t.Error("fresh summary has non-invalid slots")
	}
	if got := s.LiveRegisters().CpuRegisterCount(); got != 0 {
		t.Errorf("fresh live set has %d registers", got)
	}
	if s.Arena() != a {
		t.Error("Arena() is not the constructing arena")
	}

	mustPanic(t, "nil arena", func() { NewLocationSummary(nil, 0, 0, NoCall) })
	mustPanic(t, "negative inputs", func() { NewLocationSummary(a, -1, 0, NoCall) })
	mustPanic(t, "negative temps", func() { NewLocationSummary(a, 0, -1, NoCall) })
	mustPanic(t, "unknown call mode", func() { NewLocationSummary(a, 0, 0, ContainsCall(9)) })
}

func TestMakeSummaryFillsAny(t *testing.T) {
	a := NewArena(testTarget(t, "amd64"))
	s := MakeSummary(a, 3, RegisterLocation(0), Call)
	for i := 0; i < s.InputCount(); i++ {
		if got := s.In(i); !got.Equals(Any()) {
			t.Errorf("In(%d) = %v, want %v", i, got, Any())
		}
	}
	if got, want := s.Out(0), RegisterLocation(0); !got.Equals(want) {
		t.Errorf("Out(0) = %v, want %v", got, want)
	}
	if got := s.TempCount(); got != 0 {
		t.Errorf("TempCount() = %d, want 0", got)
	}
}

func TestSlotWritesResolveInPlace(t *testing.T) {
	a := NewArena(testTarget(t, "amd64"))
	s := NewLocationSummary(a, 1, 1, NoCall)
	s.SetIn(0, RequiresRegister())
	*s.InSlot(0) = RegisterLocation(2)
	if got, want := s.In(0), RegisterLocation(2); !got.Equals(want) {
		t.Errorf("In(0) = %v, want %v", got, want)
	}
	*s.TempSlot(0) = RegisterLocation(3)
	if got, want := s.Temp(0), RegisterLocation(3); !got.Equals(want) {
		t.Errorf("Temp(0) = %v, want %v", got, want)
	}
	*s.OutSlot(0) = RegisterLocation(4)
	if got, want := s.Out(0), RegisterLocation(4); !got.Equals(want) {
		t.Errorf("Out(0) = %v, want %v", got, want)
	}
}

func TestSummaryIndexChecks(t *testing.T) {
	a := NewArena(testTarget(t, "amd64"))
	s := NewLocationSummary(a, 1, 1, NoCall)
	mustPanic(t, "In(-1)", func() { s.In(-1) })
	mustPanic(t, "In(1)", func() { s.In(1) })
	mustPanic(t, "InSlot(2)", func() { s.InSlot(2) })
	mustPanic(t, "Temp(1)", func() { s.Temp(1) })
	mustPanic(t, "TempSlot(-1)", func() { s.TempSlot(-1) })
	mustPanic(t, "Out(1)", func() { s.Out(1) })
	mustPanic(t, "SetOut(1)", func() { s.SetOut(1, RegisterLocation(0)) })
}

func TestCallSummaryInputRules(t *testing.T) {
	a := NewArena(testTarget(t, "arm"))
	s := NewLocationSummary(a, 4, 0, Call)

	s.SetIn(0, Any())
	s.SetIn(1, RegisterLocation(1))
	s.SetIn(2, a.Constant(testConstant{7}))
	s.SetIn(3, a.Pair(RegisterLocation(0), Any()))

	mustPanic(t, "constrained input", func() { s.SetIn(0, RequiresRegister()) })
	mustPanic(t, "constrained first pair component", func() {
		s.SetIn(3, a.Pair(PrefersRegister(), Any()))
	})
	mustPanic(t, "constrained second pair component", func() {
		s.SetIn(3, a.Pair(Any(), RequiresRegister()))
	})
}

func TestCallSummaryTempRules(t *testing.T) {
	a := NewArena(testTarget(t, "amd64"))
	s := NewLocationSummary(a, 0, 2, CallCalleeSafe)
	s.SetTemp(0, RegisterLocation(2))
	s.SetTemp(1, FpuRegisterLocation(4))
	mustPanic(t, "unallocated temp", func() { s.SetTemp(0, Any()) })
	mustPanic(t, "stack temp", func() { s.SetTemp(0, StackSlot(0, 5)) })
}

func TestCallSummaryOutputRules(t *testing.T) {
	a := NewArena(testTarget(t, "amd64"))
	s := NewLocationSummary(a, 0, 0, Call)
	s.SetOut(0, RegisterLocation(0))
	s.SetOut(0, Invalid())
	s.SetOut(0, a.Pair(RegisterLocation(0), RegisterLocation(2)))
	mustPanic(t, "unallocated output", func() { s.SetOut(0, Any()) })
	mustPanic(t, "stack output", func() { s.SetOut(0, StackSlot(0, 5)) })
}

func TestNoCallSummaryUnrestricted(t *testing.T) {
	a := NewArena(testTarget(t, "amd64"))
	s := NewLocationSummary(a, 2, 1, NoCall)
	s.SetIn(0, RequiresRegister())
	s.SetIn(1, WritableRegister())
	s.SetTemp(0, RequiresFpuRegister())
	s.SetOut(0, StackSlot(-2, 5))
	if got, want := s.Out(0), StackSlot(-2, 5); !got.Equals(want) {
		t.Errorf("Out(0) = %v, want %v", got, want)
	}
}

func TestContainsCallPredicates(t *testing.T) {
	a := NewArena(testTarget(t, "amd64"))
	cases := []struct {
		call                              ContainsCall
		always, calleeSafe, can, slow, sh bool
	}{
		{NoCall, false, false, false, false, false},
		{Call, true, false, true, false, false},
		{CallCalleeSafe, true, true, true, false, false},
		{CallOnSlowPath, false, false, true, true, false},
		{CallOnSharedSlowPath, false, false, true, true, true},
	}
	for _, c := range cases {
		s := NewLocationSummary(a, 0, 0, c.call)
		if got := s.AlwaysCalls(); got != c.always {
			t.Errorf("%v: AlwaysCalls() = %t, want %t", c.call, got, c.always)
		}
		if got := s.CalleeSafeCall(); got != c.calleeSafe {
			t.Errorf("%v: CalleeSafeCall() = %t, want %t", c.call, got, c.calleeSafe)
		}
		if got := s.CanCall(); got != c.can {
			t.Errorf("%v: CanCall() = %t, want %t", c.call, got, c.can)
		}
		if got := s.HasCallOnSlowPath(); got != c.slow {
			t.Errorf("%v: HasCallOnSlowPath() = %t, want %t", c.call, got, c.slow)
		}
		if got := s.CallOnSharedSlowPath(); got != c.sh {
			t.Errorf("%v: CallOnSharedSlowPath() = %t, want %t", c.call, got, c.sh)
		}
	}
}

func TestStackBitmap(t *testing.T) {
	a := NewArena(testTarget(t, "amd64"))
	s := NewLocationSummary(a, 0, 0, Call)
	s.SetStackBit(3)
	if !s.StackBitmap().Get(3) {
		t.Error("stack bit 3 is not set")
	}
	if s.StackBitmap().Get(2) {
		t.Error("stack bit 2 is set")
	}
	if s.StackBitmap() != s.StackBitmap() {
		t.Error("StackBitmap() is not stable")
	}
	if got, want := s.StackBitmap().Length(), 4; got != want {
		t.Errorf("Length() = %d, want %d", got, want)
	}
}

func TestWritableInputsCheck(t *testing.T) {
	a := NewArena(testTarget(t, "amd64"))
	s := NewLocationSummary(a, 2, 0, CallOnSlowPath)
	s.SetIn(0, WritableRegister())
	s.SetIn(1, RequiresRegister())
	s.DiscoverWritableInputs()

	*s.InSlot(0) = RegisterLocation(2)
	*s.InSlot(1) = RegisterLocation(3)

	s.SetOut(0, RegisterLocation(4))
	s.CheckWritableInputs()

	// Aliasing a non-writable input is fine.
	s.SetOut(0, RegisterLocation(3))
	s.CheckWritableInputs()

	s.SetOut(0, RegisterLocation(2))
	mustPanic(t, "output aliases writable input", func() { s.CheckWritableInputs() })

	s.SetOut(0, a.Pair(RegisterLocation(9), RegisterLocation(2)))
	mustPanic(t, "pair output aliases writable input", func() { s.CheckWritableInputs() })

	s.SetOut(0, a.Pair(RegisterLocation(9), RegisterLocation(10)))
	s.CheckWritableInputs()

	plain := NewLocationSummary(a, 0, 0, Call)
	mustPanic(t, "check without a slow path", func() { plain.CheckWritableInputs() })

	noslow := NewLocationSummary(a, 1, 0, NoCall)
	noslow.SetIn(0, WritableRegister())
	noslow.DiscoverWritableInputs()
	if noslow.writableInputs != 0 {
		t.Error("discovery recorded inputs without a slow-path call")
	}
}

func TestSummaryString(t *testing.T) {
	a := NewArena(testTarget(t, "amd64"))
	s := NewLocationSummary(a, 2, 1, NoCall)
	s.SetIn(0, RegisterLocation(0))
	s.SetIn(1, Any())
	s.SetTemp(0, RegisterLocation(2))
	s.SetOut(0, a.Pair(RegisterLocation(3), StackSlot(-1, 5)))
	want := "(r0, U(any)) => (r3, S-1(r5)) [temps: r2]"
	if got := s.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
