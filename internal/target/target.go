// Package target describes the machine model the location encoding is
// compiled against: register files, reserved and argument registers,
// word size and frame layout. Descriptions are immutable once
// registered and are injected into the location core rather than read
// from global state, so concurrent compilations can target different
// machines.
package target

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTarget is returned by Lookup and Host for names this
	// process has no description for.
	ErrUnknownTarget = errors.New("target: unknown target")

	// ErrInvalidDesc wraps every validation failure of a description.
	ErrInvalidDesc = errors.New("target: invalid description")
)

// Register is a general-purpose register code. Codes are small
// non-negative integers assigned by the target description; NoRegister
// marks the absence of a register.
type Register int8

// FpuRegister is a floating-point/vector register code.
type FpuRegister int8

const (
	NoRegister    Register    = -1
	NoFpuRegister FpuRegister = -1
)

// MaxRegisters caps the register codes any description may use. The
// location encoding reserves six bits for a stack base register and the
// register-set bitmasks are one word wide, so codes live in [0, 64).
const MaxRegisters = 64

// FrameLayout places variable indices relative to the frame pointer.
// Parameters use indices greater than zero, locals use indices at or
// below zero.
type FrameLayout struct {
	// ParamEndFromFP is the frame slot just below the first parameter.
	ParamEndFromFP int `yaml:"param_end_from_fp"`
	// FirstLocalFromFP is the frame slot of the first local, biased so
	// index 0 lands on it.
	FirstLocalFromFP int `yaml:"first_local_from_fp"`
}

// FrameSlotForVariableIndex converts a variable index into a slot
// relative to the frame pointer.
func (f FrameLayout) FrameSlotForVariableIndex(index int) int {
	if index > 0 {
		return index + f.ParamEndFromFP
	}
	return index + f.FirstLocalFromFP
}

// Desc is an immutable description of one target machine. Construct it
// once, validate it, and share it freely; nothing in this module writes
// to a description after registration.
type Desc struct {
	Name     string
	WordSize int

	NumCpuRegisters int
	NumFpuRegisters int

	FP Register
	SP Register

	// Reserved lists registers the allocator must never hand out
	// (always includes FP and SP; targets add thread or platform
	// registers here).
	Reserved []Register

	// NeverScratch lists registers with a hardwired role beyond FP/SP,
	// such as the program counter on arm. They are skipped when
	// populating general scratch registers even in contexts where the
	// reserved set is fair game.
	NeverScratch []Register

	// ArgumentRegisters holds the integer argument registers in
	// convention order. Empty when the target passes all arguments on
	// the stack.
	ArgumentRegisters    []Register
	FpuArgumentRegisters []FpuRegister

	// HasFpuRegisters is false on soft-float targets: FPU codes still
	// encode, but population helpers skip them.
	HasFpuRegisters bool

	CpuNames []string
	FpuNames []string

	Frame FrameLayout
}

// Validate checks the description's internal consistency. Every error
// wraps ErrInvalidDesc.
func (d *Desc) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s: %s", ErrInvalidDesc, d.Name, fmt.Sprintf(format, args...))
	}

	if d.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidDesc)
	}
	if d.WordSize != 4 && d.WordSize != 8 {
		return fail("word size must be 4 or 8, got %d", d.WordSize)
	}
	if d.NumCpuRegisters <= 0 || d.NumCpuRegisters > MaxRegisters {
		return fail("cpu register count %d outside (0, %d]", d.NumCpuRegisters, MaxRegisters)
	}
	if d.NumFpuRegisters < 0 || d.NumFpuRegisters > MaxRegisters {
		return fail("fpu register count %d outside [0, %d]", d.NumFpuRegisters, MaxRegisters)
	}
	if !d.cpuInRange(d.FP) {
		return fail("frame pointer code %d out of range", d.FP)
	}
	if !d.cpuInRange(d.SP) {
		return fail("stack pointer code %d out of range", d.SP)
	}
	if d.FP == d.SP {
		return fail("frame pointer and stack pointer share code %d", d.FP)
	}
	for _, r := range d.Reserved {
		if !d.cpuInRange(r) {
			return fail("reserved register code %d out of range", r)
		}
	}
	if !containsRegister(d.Reserved, d.FP) || !containsRegister(d.Reserved, d.SP) {
		return fail("reserved set must include the frame and stack pointers")
	}
	for _, r := range d.NeverScratch {
		if !d.cpuInRange(r) {
			return fail("never-scratch register code %d out of range", r)
		}
	}
	seen := map[Register]bool{}
	for _, r := range d.ArgumentRegisters {
		if !d.cpuInRange(r) {
			return fail("argument register code %d out of range", r)
		}
		if seen[r] {
			return fail("argument register %d listed twice", r)
		}
		seen[r] = true
	}
	if !d.HasFpuRegisters && len(d.FpuArgumentRegisters) > 0 {
		return fail("soft-float targets pass no arguments in fpu registers")
	}
	seenFpu := map[FpuRegister]bool{}
	for _, f := range d.FpuArgumentRegisters {
		if f < 0 || int(f) >= d.NumFpuRegisters {
			return fail("fpu argument register code %d out of range", f)
		}
		if seenFpu[f] {
			return fail("fpu argument register %d listed twice", f)
		}
		seenFpu[f] = true
	}
	if len(d.CpuNames) != d.NumCpuRegisters {
		return fail("%d cpu names for %d registers", len(d.CpuNames), d.NumCpuRegisters)
	}
	if len(d.FpuNames) != d.NumFpuRegisters {
		return fail("%d fpu names for %d registers", len(d.FpuNames), d.NumFpuRegisters)
	}
	names := map[string]bool{}
	for i, name := range append(append([]string(nil), d.CpuNames...), d.FpuNames...) {
		if name == "" {
			return fail("register %d has an empty name", i)
		}
		if names[name] {
			return fail("register name %q used twice", name)
		}
		names[name] = true
	}
	if d.Frame.ParamEndFromFP < 0 {
		return fail("parameter end slot %d below the frame pointer", d.Frame.ParamEndFromFP)
	}
	if d.Frame.FirstLocalFromFP > 0 {
		return fail("first local slot %d above the frame pointer", d.Frame.FirstLocalFromFP)
	}
	return nil
}

func (d *Desc) cpuInRange(r Register) bool {
	return r >= 0 && int(r) < d.NumCpuRegisters
}

func containsRegister(rs []Register, r Register) bool {
	for _, c := range rs {
		if c == r {
			return true
		}
	}
	return false
}

// IsReserved reports whether r may never be handed out by an allocator.
func (d *Desc) IsReserved(r Register) bool {
	return containsRegister(d.Reserved, r)
}

// IsNeverScratch reports whether r has a hardwired role beyond FP/SP.
func (d *Desc) IsNeverScratch(r Register) bool {
	return containsRegister(d.NeverScratch, r)
}

// IsArgumentRegister reports whether r carries integer arguments under
// the target's calling convention.
func (d *Desc) IsArgumentRegister(r Register) bool {
	return containsRegister(d.ArgumentRegisters, r)
}

// IsFpuArgumentRegister reports whether f carries floating-point
// arguments under the target's calling convention.
func (d *Desc) IsFpuArgumentRegister(f FpuRegister) bool {
	for _, c := range d.FpuArgumentRegisters {
		if c == f {
			return true
		}
	}
	return false
}

// RegisterName returns the name of a general-purpose register code.
func (d *Desc) RegisterName(r Register) string {
	if !d.cpuInRange(r) {
		panic(fmt.Sprintf("target: %s has no cpu register %d", d.Name, r))
	}
	return d.CpuNames[r]
}

// FpuRegisterName returns the name of a floating-point register code.
func (d *Desc) FpuRegisterName(f FpuRegister) string {
	if f < 0 || int(f) >= d.NumFpuRegisters {
		panic(fmt.Sprintf("target: %s has no fpu register %d", d.Name, f))
	}
	return d.FpuNames[f]
}

// RegisterNamed resolves a general-purpose register by name.
func (d *Desc) RegisterNamed(name string) (Register, error) {
	for i, n := range d.CpuNames {
		if n == name {
			return Register(i), nil
		}
	}
	return NoRegister, fmt.Errorf("target: %s has no cpu register named %q", d.Name, name)
}

// FpuRegisterNamed resolves a floating-point register by name.
func (d *Desc) FpuRegisterNamed(name string) (FpuRegister, error) {
	for i, n := range d.FpuNames {
		if n == name {
			return FpuRegister(i), nil
		}
	}
	return NoFpuRegister, fmt.Errorf("target: %s has no fpu register named %q", d.Name, name)
}

func (d *Desc) String() string {
	return fmt.Sprintf("%s (%d-bit, %d cpu, %d fpu)", d.Name, d.WordSize*8, d.NumCpuRegisters, d.NumFpuRegisters)
}
