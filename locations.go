// Package locations models where values live while compiled code runs:
// machine registers, stack slots addressed off a frame or stack pointer,
// embedded constants, two-slot pairs, and the unallocated placeholders a
// register allocator still has to resolve. A Location packs into a single
// word and compares by word equality. LocationSummary, RegisterSet and
// FrameRebase carry the allocator-facing bookkeeping around locations,
// and Target describes the register files and frame layout of the
// machine being compiled for.
package locations

import (
	"github.com/tinyrange/locations/internal/loc"
	"github.com/tinyrange/locations/internal/target"
)

// -----------------------------------------------------------------------------
// Type Aliases - These re-export types from internal/loc and internal/target
// -----------------------------------------------------------------------------

// Location is one packed word describing a single operand placement. The
// zero value is the invalid location.
type Location = loc.Location

// PairLocation is the two-slot sequence a pair location resolves to.
type PairLocation = loc.PairLocation

// Arena owns the pairs and constant references minted while compiling
// one unit; constant and pair locations only dereference against the
// arena that created them.
type Arena = loc.Arena

// ConstantNode is the opaque reference a constant location points back at.
type ConstantNode = loc.ConstantNode

// Kind discriminates the placed location forms.
type Kind = loc.Kind

// Policy is the constraint an unallocated location places on the
// register allocator.
type Policy = loc.Policy

// Representation describes how a value looks to the garbage collector.
type Representation = loc.Representation

// ContainsCall classifies how an instruction interacts with calls.
type ContainsCall = loc.ContainsCall

// SmallSet is a bitmask set over register codes.
type SmallSet = loc.SmallSet

// RegisterSet tracks used and live registers with their taggedness.
type RegisterSet = loc.RegisterSet

// LocationSummary carries the operand constraints and allocation results
// for one instruction.
type LocationSummary = loc.LocationSummary

// FrameRebase rewrites stack locations from one frame base to another.
type FrameRebase = loc.FrameRebase

// Target describes one machine's register files, calling convention and
// frame layout.
type Target = target.Desc

// Register is a general-purpose register code on a Target.
type Register = target.Register

// FpuRegister is a floating-point register code on a Target.
type FpuRegister = target.FpuRegister

// FrameLayout maps variable indexes to frame slots on a Target.
type FrameLayout = target.FrameLayout

// Location kinds.
const (
	KindInvalid         = loc.KindInvalid
	KindUnallocated     = loc.KindUnallocated
	KindStackSlot       = loc.KindStackSlot
	KindDoubleStackSlot = loc.KindDoubleStackSlot
	KindQuadStackSlot   = loc.KindQuadStackSlot
	KindRegister        = loc.KindRegister
	KindFpuRegister     = loc.KindFpuRegister
)

// Allocation policies for unallocated locations.
const (
	PolicyAny                 = loc.PolicyAny
	PolicyPrefersRegister     = loc.PolicyPrefersRegister
	PolicyRequiresRegister    = loc.PolicyRequiresRegister
	PolicyRequiresFpuRegister = loc.PolicyRequiresFpuRegister
	PolicyWritableRegister    = loc.PolicyWritableRegister
	PolicySameAsFirstInput    = loc.PolicySameAsFirstInput
)

// Value representations.
const (
	RepNone             = loc.RepNone
	RepTagged           = loc.RepTagged
	RepUntagged         = loc.RepUntagged
	RepUnboxedDouble    = loc.RepUnboxedDouble
	RepUnboxedFloat     = loc.RepUnboxedFloat
	RepUnboxedInt32     = loc.RepUnboxedInt32
	RepUnboxedUint32    = loc.RepUnboxedUint32
	RepUnboxedInt64     = loc.RepUnboxedInt64
	RepUnboxedFloat32x4 = loc.RepUnboxedFloat32x4
	RepUnboxedInt32x4   = loc.RepUnboxedInt32x4
	RepUnboxedFloat64x2 = loc.RepUnboxedFloat64x2
	RepPairOfTagged     = loc.RepPairOfTagged
)

// Call classifications for location summaries.
const (
	NoCall               = loc.NoCall
	Call                 = loc.Call
	CallCalleeSafe       = loc.CallCalleeSafe
	CallOnSlowPath       = loc.CallOnSlowPath
	CallOnSharedSlowPath = loc.CallOnSharedSlowPath
)

// Register sentinels and limits.
const (
	NoRegister    = target.NoRegister
	NoFpuRegister = target.NoFpuRegister
	MaxRegisters  = target.MaxRegisters
)

// Common sentinel errors.
var (
	// ErrUnknownTarget reports a lookup for a target name nothing
	// registered. Use errors.Is to detect it.
	ErrUnknownTarget = target.ErrUnknownTarget

	// ErrInvalidTarget reports a target description that fails
	// validation, with detail wrapped around it.
	ErrInvalidTarget = target.ErrInvalidDesc
)

// -----------------------------------------------------------------------------
// Location Constructors
// -----------------------------------------------------------------------------

// Invalid returns the zero location.
func Invalid() Location { return loc.Invalid() }

// NoLocation is the empty placement used when a slot should be ignored.
func NoLocation() Location { return loc.NoLocation() }

// UnallocatedLocation returns a placeholder carrying policy for the
// allocator to resolve.
func UnallocatedLocation(policy Policy) Location { return loc.UnallocatedLocation(policy) }

// Any returns a placeholder any free register or stack slot satisfies.
func Any() Location { return loc.Any() }

// PrefersRegister returns a placeholder that takes a register when one
// is free but tolerates a stack slot.
func PrefersRegister() Location { return loc.PrefersRegister() }

// RequiresRegister returns a placeholder demanding a general-purpose
// register.
func RequiresRegister() Location { return loc.RequiresRegister() }

// RequiresFpuRegister returns a placeholder demanding a floating-point
// register.
func RequiresFpuRegister() Location { return loc.RequiresFpuRegister() }

// WritableRegister returns a placeholder demanding a register the
// instruction may clobber.
func WritableRegister() Location { return loc.WritableRegister() }

// SameAsFirstInput returns the placeholder that aliases an instruction's
// output with its first input.
func SameAsFirstInput() Location { return loc.SameAsFirstInput() }

// RegisterLocation returns a fixed general-purpose register location.
func RegisterLocation(reg Register) Location { return loc.RegisterLocation(reg) }

// FpuRegisterLocation returns a fixed floating-point register location.
func FpuRegisterLocation(reg FpuRegister) Location { return loc.FpuRegisterLocation(reg) }

// MachineRegisterLocation dispatches on kind to build a fixed register
// location of either register file.
func MachineRegisterLocation(kind Kind, code int) Location {
	return loc.MachineRegisterLocation(kind, code)
}

// IsMachineRegisterKind reports whether kind names a concrete register.
func IsMachineRegisterKind(kind Kind) bool { return loc.IsMachineRegisterKind(kind) }

// StackSlot returns a word-sized frame slot at index relative to base.
func StackSlot(index int, base Register) Location { return loc.StackSlot(index, base) }

// DoubleStackSlot returns a 64-bit frame slot at index relative to base.
func DoubleStackSlot(index int, base Register) Location { return loc.DoubleStackSlot(index, base) }

// QuadStackSlot returns a 128-bit frame slot at index relative to base.
func QuadStackSlot(index int, base Register) Location { return loc.QuadStackSlot(index, base) }

// FromBits reconstitutes a location from a word produced by Bits.
func FromBits(value uint64) Location { return loc.FromBits(value) }

// -----------------------------------------------------------------------------
// Allocator Bookkeeping
// -----------------------------------------------------------------------------

// NewArena returns an empty arena compiling against t.
func NewArena(t *Target) *Arena { return loc.NewArena(t) }

// NewSmallSet returns a set holding the codes present in mask.
func NewSmallSet(mask uint64) SmallSet { return loc.NewSmallSet(mask) }

// RegisterCount returns the population count of a raw register mask.
func RegisterCount(mask uint64) int { return loc.RegisterCount(mask) }

// MaskContains reports whether a raw register mask holds code.
func MaskContains(mask uint64, code int) bool { return loc.MaskContains(mask, code) }

// NewRegisterSet returns an empty register set over t's register files.
func NewRegisterSet(t *Target) *RegisterSet { return loc.NewRegisterSet(t) }

// NewLocationSummary returns a summary with inputCount inputs and
// tempCount temps, all initially invalid.
func NewLocationSummary(a *Arena, inputCount, tempCount int, call ContainsCall) *LocationSummary {
	return loc.NewLocationSummary(a, inputCount, tempCount, call)
}

// MakeSummary returns a summary with every input set to Any, no temps
// and out as the output location.
func MakeSummary(a *Arena, inputCount int, out Location, call ContainsCall) *LocationSummary {
	return loc.MakeSummary(a, inputCount, out, call)
}

// NewFrameRebase returns a rebase that moves slots based on oldBase to
// newBase, adding stackDelta to each slot index.
func NewFrameRebase(a *Arena, oldBase, newBase Register, stackDelta int) FrameRebase {
	return loc.NewFrameRebase(a, oldBase, newBase, stackDelta)
}

// -----------------------------------------------------------------------------
// Target Descriptions
// -----------------------------------------------------------------------------

// LookupTarget returns the registered description called name.
func LookupTarget(name string) (*Target, error) { return target.Lookup(name) }

// HostTarget returns the description matching the running machine.
func HostTarget() (*Target, error) { return target.Host() }

// LoadTarget reads and validates a YAML target description file.
func LoadTarget(path string) (*Target, error) { return target.LoadDesc(path) }

// ParseTarget parses and validates a YAML target description.
func ParseTarget(data []byte) (*Target, error) { return target.ParseDesc(data) }

// RegisterTarget adds a validated description to the registry. It panics
// if the description fails validation or the name is taken.
func RegisterTarget(d *Target) { target.RegisterDesc(d) }

// TargetNames returns the registered target names, sorted.
func TargetNames() []string { return target.Names() }
