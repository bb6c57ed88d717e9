// Package loc connects a register allocator to a code generator: it
// models where every value flowing through compiled instructions lives.
// A Location is one packed 64-bit word naming a machine register, a
// stack slot, an embedded constant, a two-slot pair, or a placeholder
// the allocator still has to resolve. Instruction builders describe
// their operand constraints with a LocationSummary, the allocator
// replaces placeholders with concrete locations and tracks liveness in
// RegisterSets, and late frame adjustments rewrite stack-relative
// locations through FrameRebase.
//
// Locations compare by raw word equality: bitwise unequal encodings are
// guaranteed to be disjoint placements, so no normalization pass exists
// anywhere. Everything that makes this hold is concentrated in the
// encoding below; the kind codes are chosen so that no kind's low two
// bits collide with the constant or pair tags, which init verifies.
package loc

import (
	"fmt"

	"github.com/tinyrange/locations/internal/target"
)

// Kind occupies the low five bits of a packed location word, except for
// constant and pair words where the whole payload is an arena handle
// above the two tag bits.
type Kind uint8

const (
	// KindInvalid is the zero location; the payload must be zero too.
	KindInvalid Kind = 0

	// KindUnallocated carries an allocation Policy and nothing else.
	KindUnallocated Kind = 3

	// Stack kinds address base register plus biased slot index payloads
	// for word, double-word and quad-word slots. Two different kinds
	// never alias the same memory.
	KindStackSlot       Kind = 4
	KindDoubleStackSlot Kind = 7
	KindQuadStackSlot   Kind = 11

	// KindRegister and KindFpuRegister carry a fixed register code.
	KindRegister    Kind = 8
	KindFpuRegister Kind = 12
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnallocated:
		return "unallocated"
	case KindStackSlot:
		return "stack_slot"
	case KindDoubleStackSlot:
		return "double_stack_slot"
	case KindQuadStackSlot:
		return "quad_stack_slot"
	case KindRegister:
		return "register"
	case KindFpuRegister:
		return "fpu_register"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Policy names the constraint an unallocated location places on the
// register allocator.
type Policy uint8

const (
	// PolicyAny accepts any free register or stack slot.
	PolicyAny Policy = iota
	// PolicyPrefersRegister takes a register when one is free but
	// tolerates a stack slot.
	PolicyPrefersRegister
	// PolicyRequiresRegister demands a general-purpose register.
	PolicyRequiresRegister
	// PolicyRequiresFpuRegister demands a floating-point register.
	PolicyRequiresFpuRegister
	// PolicyWritableRegister demands a register the instruction may
	// clobber without destroying a value needed on a slow path.
	PolicyWritableRegister
	// PolicySameAsFirstInput aliases the output with input 0.
	PolicySameAsFirstInput
)

func (p Policy) String() string {
	switch p {
	case PolicyAny:
		return "any"
	case PolicyPrefersRegister:
		return "prefers_register"
	case PolicyRequiresRegister:
		return "requires_register"
	case PolicyRequiresFpuRegister:
		return "requires_fpu_register"
	case PolicyWritableRegister:
		return "writable_register"
	case PolicySameAsFirstInput:
		return "same_as_first_input"
	}
	return fmt.Sprintf("policy(%d)", uint8(p))
}

// Representation describes what a value stored in a location looks like
// to the garbage collector and to value-movement code. It is a property
// of the value, not of the location; RegisterSet consumes it to decide
// which live registers hold untagged data.
type Representation uint8

const (
	RepNone Representation = iota
	RepTagged
	RepUntagged
	RepUnboxedDouble
	RepUnboxedFloat
	RepUnboxedInt32
	RepUnboxedUint32
	RepUnboxedInt64
	RepUnboxedFloat32x4
	RepUnboxedInt32x4
	RepUnboxedFloat64x2
	RepPairOfTagged
)

var repNames = [...]string{
	RepNone:             "none",
	RepTagged:           "tagged",
	RepUntagged:         "untagged",
	RepUnboxedDouble:    "unboxed_double",
	RepUnboxedFloat:     "unboxed_float",
	RepUnboxedInt32:     "unboxed_int32",
	RepUnboxedUint32:    "unboxed_uint32",
	RepUnboxedInt64:     "unboxed_int64",
	RepUnboxedFloat32x4: "unboxed_float32x4",
	RepUnboxedInt32x4:   "unboxed_int32x4",
	RepUnboxedFloat64x2: "unboxed_float64x2",
	RepPairOfTagged:     "pair_of_tagged",
}

func (r Representation) String() string {
	if int(r) < len(repNames) {
		return repNames[r]
	}
	return fmt.Sprintf("representation(%d)", uint8(r))
}

// IsUnboxedInteger reports whether r is one of the raw integer forms.
func (r Representation) IsUnboxedInteger() bool {
	return r == RepUnboxedInt32 || r == RepUnboxedUint32 || r == RepUnboxedInt64
}

// IsUnboxed reports whether values of this representation live outside
// the tagged heap.
func (r Representation) IsUnboxed() bool {
	switch r {
	case RepUnboxedDouble, RepUnboxedFloat,
		RepUnboxedInt32, RepUnboxedUint32, RepUnboxedInt64,
		RepUnboxedFloat32x4, RepUnboxedInt32x4, RepUnboxedFloat64x2:
		return true
	}
	return false
}

const (
	kindBitsPos  = 0
	kindBitsSize = 5

	payloadBitsPos  = kindBitsPos + kindBitsSize
	payloadBitsSize = 64 - payloadBitsPos

	// Tagged words: the whole word above these two bits is an arena
	// handle for constants (tag 1) and pairs (tag 2).
	locationTagMask uint64 = 0x3
	constantTag     uint64 = 1
	pairLocationTag uint64 = 2

	maxArenaHandle = uint64(1)<<(64-2) - 1

	invalidLocation uint64 = 0

	// Stack payloads: base register code below, biased slot index above.
	bitsForBaseReg    = 6
	bitsForStackIndex = payloadBitsSize - bitsForBaseReg

	// Register codes must fit the base-register field.
	maxRegisterCode = 1<<bitsForBaseReg - 1
)

// stackIndexBias shifts signed slot indices into unsigned payloads, half
// the representable range each way.
const stackIndexBias = int64(1) << (bitsForStackIndex - 1)

// The encoding only works if no kind's low two bits read as a tag. New
// kinds must keep this property; init refuses to start otherwise.
func init() {
	for _, k := range []Kind{
		KindInvalid, KindUnallocated,
		KindStackSlot, KindDoubleStackSlot, KindQuadStackSlot,
		KindRegister, KindFpuRegister,
	} {
		switch uint64(k) & locationTagMask {
		case constantTag:
			panic(fmt.Sprintf("loc: kind %d reads as the constant tag", k))
		case pairLocationTag:
			panic(fmt.Sprintf("loc: kind %d reads as the pair tag", k))
		}
		if uint64(k)>>kindBitsSize != 0 {
			panic(fmt.Sprintf("loc: kind %d does not fit the kind field", k))
		}
	}
	if constantTag&locationTagMask != constantTag || pairLocationTag&locationTagMask != pairLocationTag {
		panic("loc: location tags exceed the tag mask")
	}
	if target.MaxRegisters > maxRegisterCode+1 {
		panic("loc: register codes overflow the stack base field")
	}
}

// Location is one packed word describing a single operand placement.
// The zero value is the invalid location. Locations are immutable and
// copied by value; two locations are the same placement exactly when
// their words are equal.
type Location struct {
	value uint64
}

func fromKindPayload(kind Kind, payload uint64) Location {
	if payload>>payloadBitsSize != 0 {
		panic(fmt.Sprintf("loc: payload %#x overflows %d bits", payload, payloadBitsSize))
	}
	return Location{uint64(kind) | payload<<payloadBitsPos}
}

func (l Location) payload() uint64 { return l.value >> payloadBitsPos }

// Kind returns the kind field of the word. For constant and pair words
// the handle overlaps this field, so the result matches no valid kind;
// discriminate through the predicates, not by comparing kinds.
func (l Location) Kind() Kind {
	return Kind(l.value >> kindBitsPos & (1<<kindBitsSize - 1))
}

// Invalid returns the zero location.
func Invalid() Location { return Location{} }

// NoLocation is the empty placement used when a slot should be ignored.
func NoLocation() Location { return Location{} }

func (l Location) IsInvalid() bool { return l.value == invalidLocation }

// IsConstant reports whether the word holds a constant-node handle.
func (l Location) IsConstant() bool {
	return l.value&locationTagMask == constantTag
}

// IsPairLocation reports whether the word holds a pair handle.
func (l Location) IsPairLocation() bool {
	return l.value&locationTagMask == pairLocationTag
}

// UnallocatedLocation returns a placeholder carrying policy for the
// allocator to resolve.
func UnallocatedLocation(policy Policy) Location {
	if policy > PolicySameAsFirstInput {
		panic(fmt.Sprintf("loc: invalid allocation policy %d", policy))
	}
	return fromKindPayload(KindUnallocated, uint64(policy))
}

// Any returns a placeholder any free register or stack slot satisfies.
func Any() Location { return UnallocatedLocation(PolicyAny) }

func PrefersRegister() Location { return UnallocatedLocation(PolicyPrefersRegister) }

func RequiresRegister() Location { return UnallocatedLocation(PolicyRequiresRegister) }

func RequiresFpuRegister() Location { return UnallocatedLocation(PolicyRequiresFpuRegister) }

func WritableRegister() Location { return UnallocatedLocation(PolicyWritableRegister) }

// SameAsFirstInput returns the placeholder that aliases an instruction's
// output with its first input.
func SameAsFirstInput() Location { return UnallocatedLocation(PolicySameAsFirstInput) }

func (l Location) IsUnallocated() bool { return l.Kind() == KindUnallocated }

// Policy returns the allocation policy of an unallocated location.
func (l Location) Policy() Policy {
	if !l.IsUnallocated() {
		panic("loc: Policy on a location that is already placed")
	}
	return Policy(l.payload() & (1<<3 - 1))
}

// IsRegisterBeneficial reports whether resolving this location to a
// register would help; only a plain Any placeholder is indifferent.
func (l Location) IsRegisterBeneficial() bool {
	return !l.Equals(Any())
}

// RegisterLocation returns a fixed general-purpose register location.
func RegisterLocation(reg target.Register) Location {
	if reg < 0 || reg > maxRegisterCode {
		panic(fmt.Sprintf("loc: register code %d outside [0, %d]", reg, maxRegisterCode))
	}
	return fromKindPayload(KindRegister, uint64(reg))
}

func (l Location) IsRegister() bool { return l.Kind() == KindRegister }

// Reg returns the register code of a fixed register location.
func (l Location) Reg() target.Register {
	if !l.IsRegister() {
		panic("loc: Reg on a non-register location")
	}
	return target.Register(l.payload())
}

// FpuRegisterLocation returns a fixed floating-point register location.
func FpuRegisterLocation(reg target.FpuRegister) Location {
	if reg < 0 || reg > maxRegisterCode {
		panic(fmt.Sprintf("loc: fpu register code %d outside [0, %d]", reg, maxRegisterCode))
	}
	return fromKindPayload(KindFpuRegister, uint64(reg))
}

func (l Location) IsFpuRegister() bool { return l.Kind() == KindFpuRegister }

// FpuReg returns the register code of a fixed fpu register location.
func (l Location) FpuReg() target.FpuRegister {
	if !l.IsFpuRegister() {
		panic("loc: FpuReg on a non-fpu-register location")
	}
	return target.FpuRegister(l.payload())
}

// IsMachineRegisterKind reports whether kind names a concrete register.
func IsMachineRegisterKind(kind Kind) bool {
	return kind == KindRegister || kind == KindFpuRegister
}

// MachineRegisterLocation dispatches on kind to build a fixed register
// location of either register file.
func MachineRegisterLocation(kind Kind, code int) Location {
	switch kind {
	case KindRegister:
		return RegisterLocation(target.Register(code))
	case KindFpuRegister:
		return FpuRegisterLocation(target.FpuRegister(code))
	}
	panic(fmt.Sprintf("loc: %v is not a machine register kind", kind))
}

func (l Location) IsMachineRegister() bool {
	return IsMachineRegisterKind(l.Kind())
}

// RegisterCode returns the raw code of either machine register kind.
func (l Location) RegisterCode() int {
	if !l.IsMachineRegister() {
		panic("loc: RegisterCode on a non-register location")
	}
	return int(l.payload())
}

func encodeStackIndex(index int) uint64 {
	if int64(index) < -stackIndexBias || int64(index) >= stackIndexBias {
		panic(fmt.Sprintf("loc: stack index %d outside the biased range", index))
	}
	return uint64(stackIndexBias + int64(index))
}

func stackLocation(kind Kind, index int, base target.Register) Location {
	if base < 0 || base > maxRegisterCode {
		panic(fmt.Sprintf("loc: base register code %d outside [0, %d]", base, maxRegisterCode))
	}
	payload := uint64(base) | encodeStackIndex(index)<<bitsForBaseReg
	l := fromKindPayload(kind, payload)
	// The bias must preserve the sign end to end.
	if l.StackIndex() != index {
		panic(fmt.Sprintf("loc: stack index %d failed to round-trip", index))
	}
	return l
}

// StackSlot returns a word-sized frame slot at index relative to base.
func StackSlot(index int, base target.Register) Location {
	return stackLocation(KindStackSlot, index, base)
}

func (l Location) IsStackSlot() bool { return l.Kind() == KindStackSlot }

// DoubleStackSlot returns a 64-bit frame slot at index relative to base.
func DoubleStackSlot(index int, base target.Register) Location {
	return stackLocation(KindDoubleStackSlot, index, base)
}

func (l Location) IsDoubleStackSlot() bool { return l.Kind() == KindDoubleStackSlot }

// QuadStackSlot returns a 128-bit frame slot at index relative to base.
func QuadStackSlot(index int, base target.Register) Location {
	return stackLocation(KindQuadStackSlot, index, base)
}

func (l Location) IsQuadStackSlot() bool { return l.Kind() == KindQuadStackSlot }

// HasStackIndex reports whether the location is any of the stack kinds.
func (l Location) HasStackIndex() bool {
	return l.IsStackSlot() || l.IsDoubleStackSlot() || l.IsQuadStackSlot()
}

// BaseReg returns the base register of a stack location.
func (l Location) BaseReg() target.Register {
	if !l.HasStackIndex() {
		panic("loc: BaseReg on a non-stack location")
	}
	return target.Register(l.payload() & (1<<bitsForBaseReg - 1))
}

// StackIndex returns the signed slot index of a stack location.
func (l Location) StackIndex() int {
	if !l.HasStackIndex() {
		panic("loc: StackIndex on a non-stack location")
	}
	raw := l.payload() >> bitsForBaseReg & (1<<bitsForStackIndex - 1)
	return int(int64(raw) - stackIndexBias)
}

// ToStackSlotOffset converts a stack location into a byte offset from
// its base register. Slots based on the frame pointer go through the
// target's frame layout; slots based on the stack pointer sit directly
// at index words above it.
func (l Location) ToStackSlotOffset(d *target.Desc) int {
	switch base := l.BaseReg(); base {
	case d.FP:
		return d.Frame.FrameSlotForVariableIndex(l.StackIndex()) * d.WordSize
	case d.SP:
		return l.StackIndex() * d.WordSize
	default:
		panic(fmt.Sprintf("loc: stack slot based on %s, want the frame or stack pointer", d.RegisterName(base)))
	}
}

// Equals reports exact placement equality: raw word equality.
func (l Location) Equals(other Location) bool { return l.value == other.value }

// Bits exposes the packed word so allocators can keep locations in
// side tables; FromBits restores them. Only words produced by Bits are
// valid inputs to FromBits.
func (l Location) Bits() uint64 { return l.value }

// FromBits reconstitutes a location from its packed word.
func FromBits(value uint64) Location { return Location{value} }

// String formats the location without target knowledge: register codes
// print as r5/f3, stack slots as S/D/Q with their base code, handles by
// index. NameOn substitutes real register names.
func (l Location) String() string {
	switch {
	case l.IsInvalid():
		return "invalid"
	case l.IsConstant():
		return fmt.Sprintf("C#%d", l.value>>2)
	case l.IsPairLocation():
		return fmt.Sprintf("P#%d", l.value>>2)
	case l.IsUnallocated():
		return fmt.Sprintf("U(%v)", l.Policy())
	case l.IsRegister():
		return fmt.Sprintf("r%d", l.Reg())
	case l.IsFpuRegister():
		return fmt.Sprintf("f%d", l.FpuReg())
	case l.HasStackIndex():
		return fmt.Sprintf("%s%+d(r%d)", stackKindLetter(l.Kind()), l.StackIndex(), l.BaseReg())
	}
	return fmt.Sprintf("location(%#x)", l.value)
}

// NameOn formats the location with the target's register names.
func (l Location) NameOn(d *target.Desc) string {
	switch {
	case l.IsRegister():
		return d.RegisterName(l.Reg())
	case l.IsFpuRegister():
		return d.FpuRegisterName(l.FpuReg())
	case l.HasStackIndex():
		return fmt.Sprintf("%s%+d(%s)", stackKindLetter(l.Kind()), l.StackIndex(), d.RegisterName(l.BaseReg()))
	}
	return l.String()
}

func stackKindLetter(kind Kind) string {
	switch kind {
	case KindStackSlot:
		return "S"
	case KindDoubleStackSlot:
		return "D"
	default:
		return "Q"
	}
}
