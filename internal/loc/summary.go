package loc

import (
	"fmt"
	"strings"

	"github.com/tinyrange/locations/internal/bitmap"
)

// ContainsCall classifies how the code compiled for an instruction
// interacts with calls, which decides how the allocator preserves
// registers across it.
type ContainsCall uint8

const (
	// NoCall never leaves generated code. Used registers must be
	// blocked as temps.
	NoCall ContainsCall = iota
	// Call saves live registers around the call; any register can be
	// used without reservation.
	Call
	// CallCalleeSafe calls a target that saves the registers itself.
	CallCalleeSafe
	// CallOnSlowPath calls only on a slow path. Used registers must be
	// blocked as temps.
	CallOnSlowPath
	// CallOnSharedSlowPath invokes a shared stub on the slow path.
	// Registers the stub needs must be blocked as temps.
	CallOnSharedSlowPath
)

var containsCallNames = [...]string{
	"no_call",
	"call",
	"call_callee_safe",
	"call_on_slow_path",
	"call_on_shared_slow_path",
}

func (c ContainsCall) String() string {
	if int(c) >= len(containsCallNames) {
		return fmt.Sprintf("ContainsCall(%d)", c)
	}
	return containsCallNames[c]
}

// LocationSummary carries the register allocator's view of one
// instruction: where its inputs and temps live, where the output goes,
// which registers are live across it, and which stack slots hold
// traceable values while it can call.
type LocationSummary struct {
	arena *Arena

	inputs []Location
	temps  []Location
	output Location

	stackBitmap   *bitmap.Builder
	containsCall  ContainsCall
	liveRegisters *RegisterSet

	writableInputs uint64
}

// NewLocationSummary returns a summary with inputCount inputs and
// tempCount temps, all initially invalid, and an invalid output.
func NewLocationSummary(a *Arena, inputCount, tempCount int, call ContainsCall) *LocationSummary {
	if a == nil {
		panic("loc: location summary requires an arena")
	}
	if inputCount < 0 || tempCount < 0 {
		panic(fmt.Sprintf("loc: negative summary shape %d/%d", inputCount, tempCount))
	}
	if int(call) >= len(containsCallNames) {
		panic(fmt.Sprintf("loc: unknown call classification %d", call))
	}
	return &LocationSummary{
		arena:         a,
		inputs:        make([]Location, inputCount),
		temps:         make([]Location, tempCount),
		containsCall:  call,
		liveRegisters: NewRegisterSet(a.Target()),
	}
}

// MakeSummary returns a summary with every input set to Any, no temps
// and out as the output location.
func MakeSummary(a *Arena, inputCount int, out Location, call ContainsCall) *LocationSummary {
	s := NewLocationSummary(a, inputCount, 0, call)
	for i := 0; i < inputCount; i++ {
		s.SetIn(i, Any())
	}
	s.SetOut(0, out)
	return s
}

func (s *LocationSummary) InputCount() int { return len(s.inputs) }

func (s *LocationSummary) checkInput(index int) {
	if index < 0 || index >= len(s.inputs) {
		panic(fmt.Sprintf("loc: input index %d out of range [0, %d)", index, len(s.inputs)))
	}
}

func (s *LocationSummary) In(index int) Location {
	s.checkInput(index)
	return s.inputs[index]
}

// InSlot returns the address of an input location so the allocator can
// rewrite it in place.
func (s *LocationSummary) InSlot(index int) *Location {
	s.checkInput(index)
	return &s.inputs[index]
}

// SetIn stores an input location. Summaries that always call accept
// only fixed locations and Any-policy unallocated inputs; anything else
// would be lost when the call saves registers.
func (s *LocationSummary) SetIn(index int, l Location) {
	s.checkInput(index)
	if s.AlwaysCalls() {
		switch {
		case l.IsUnallocated():
			if l.Policy() != PolicyAny {
				panic("loc: call summaries take only Any-policy unallocated inputs")
			}
		case l.IsPairLocation():
			p := l.AsPairLocation(s.arena)
			for i := 0; i < p.Length(); i++ {
				if c := p.At(i); c.IsUnallocated() && c.Policy() != PolicyAny {
					panic("loc: call summaries take only Any-policy unallocated inputs")
				}
			}
		}
	}
	s.inputs[index] = l
}

func (s *LocationSummary) TempCount() int { return len(s.temps) }

func (s *LocationSummary) checkTemp(index int) {
	if index < 0 || index >= len(s.temps) {
		panic(fmt.Sprintf("loc: temp index %d out of range [0, %d)", index, len(s.temps)))
	}
}

func (s *LocationSummary) Temp(index int) Location {
	s.checkTemp(index)
	return s.temps[index]
}

// TempSlot returns the address of a temp location so the allocator can
// rewrite it in place.
func (s *LocationSummary) TempSlot(index int) *Location {
	s.checkTemp(index)
	return &s.temps[index]
}

// SetTemp stores a temp location. Summaries that always call accept
// only machine registers.
func (s *LocationSummary) SetTemp(index int, l Location) {
	s.checkTemp(index)
	if s.AlwaysCalls() && !l.IsMachineRegister() {
		panic("loc: call summaries take only machine-register temps")
	}
	s.temps[index] = l
}

// OutputCount is always 1; instructions with wide results use a pair
// location as the single output.
func (s *LocationSummary) OutputCount() int { return 1 }

func (s *LocationSummary) checkOutput(index int) {
	if index != 0 {
		panic(fmt.Sprintf("loc: output index %d out of range [0, 1)", index))
	}
}

func (s *LocationSummary) Out(index int) Location {
	s.checkOutput(index)
	return s.output
}

// OutSlot returns the address of the output location so the allocator
// can rewrite it in place.
func (s *LocationSummary) OutSlot(index int) *Location {
	s.checkOutput(index)
	return &s.output
}

// SetOut stores the output location. Summaries that always call accept
// only machine registers, pairs, or Invalid.
func (s *LocationSummary) SetOut(index int, l Location) {
	s.checkOutput(index)
	if s.AlwaysCalls() && !(l.IsMachineRegister() || l.IsInvalid() || l.IsPairLocation()) {
		panic("loc: call summaries take only machine-register, pair or invalid outputs")
	}
	s.output = l
}

// StackBitmap returns the bitmap of stack slots holding traceable
// values while this instruction can call, allocating it on first use.
func (s *LocationSummary) StackBitmap() *bitmap.Builder {
	if s.stackBitmap == nil {
		s.stackBitmap = bitmap.NewBuilder()
	}
	return s.stackBitmap
}

// SetStackBit marks one spill slot as holding a traceable value.
func (s *LocationSummary) SetStackBit(index int) {
	s.StackBitmap().Set(index, true)
}

// AlwaysCalls reports whether the instruction calls on every execution.
func (s *LocationSummary) AlwaysCalls() bool {
	return s.containsCall == Call || s.containsCall == CallCalleeSafe
}

// CalleeSafeCall reports whether the call target preserves registers.
func (s *LocationSummary) CalleeSafeCall() bool {
	return s.containsCall == CallCalleeSafe
}

// CanCall reports whether the instruction can call at all.
func (s *LocationSummary) CanCall() bool {
	return s.containsCall != NoCall
}

// HasCallOnSlowPath reports whether calls happen only on a slow path.
func (s *LocationSummary) HasCallOnSlowPath() bool {
	return s.CanCall() && !s.AlwaysCalls()
}

// CallOnSharedSlowPath reports whether the slow path invokes a shared
// stub.
func (s *LocationSummary) CallOnSharedSlowPath() bool {
	return s.containsCall == CallOnSharedSlowPath
}

// LiveRegisters is the set of registers live across the instruction,
// filled in by the allocator.
func (s *LocationSummary) LiveRegisters() *RegisterSet {
	return s.liveRegisters
}

// Arena returns the arena pair and constant handles in this summary
// resolve against.
func (s *LocationSummary) Arena() *Arena { return s.arena }

// DiscoverWritableInputs records which inputs ask for a writable
// register, for later cross-checking against the allocated output. Only
// summaries with a slow-path call need the record.
func (s *LocationSummary) DiscoverWritableInputs() {
	if !s.HasCallOnSlowPath() {
		return
	}
	for i := 0; i < len(s.inputs) && i < 64; i++ {
		if in := s.inputs[i]; in.IsUnallocated() && in.Policy() == PolicyWritableRegister {
			s.writableInputs |= 1 << uint(i)
		}
	}
}

// CheckWritableInputs panics if the allocated output aliases an input
// that was recorded as writable. The output must not share a register
// with a writable input around a slow-path call.
func (s *LocationSummary) CheckWritableInputs() {
	if !s.HasCallOnSlowPath() {
		panic("loc: writable-input check applies only to slow-path call summaries")
	}
	for i := 0; i < len(s.inputs) && i < 64; i++ {
		if s.writableInputs&(1<<uint(i)) == 0 {
			continue
		}
		if s.output.IsMachineRegister() && s.output.Equals(s.inputs[i]) {
			panic(fmt.Sprintf("loc: output aliases writable input %d", i))
		}
		if s.output.IsPairLocation() {
			p := s.output.AsPairLocation(s.arena)
			if p.At(0).Equals(s.inputs[i]) || p.At(1).Equals(s.inputs[i]) {
				panic(fmt.Sprintf("loc: output aliases writable input %d", i))
			}
		}
	}
}

func (s *LocationSummary) locString(l Location) string {
	if l.IsPairLocation() {
		return l.AsPairLocation(s.arena).String()
	}
	return l.String()
}

func (s *LocationSummary) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, in := range s.inputs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(s.locString(in))
	}
	b.WriteString(") => ")
	b.WriteString(s.locString(s.output))
	if len(s.temps) > 0 {
		b.WriteString(" [temps: ")
		for i, t := range s.temps {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(s.locString(t))
		}
		b.WriteByte(']')
	}
	return b.String()
}
