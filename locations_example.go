//go:build ignore

// This file demonstrates every public API in the locations package.
// It is excluded from the build and serves as a reference and compile-time check.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/tinyrange/locations"
)

type demoConstant struct{ v any }

func (c demoConstant) ConstantValue() any { return c.v }

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// =========================================================================
	// Target descriptions - builtin, host and custom
	// =========================================================================
	amd64, err := locations.LookupTarget("amd64")
	if err != nil {
		return fmt.Errorf("lookup amd64: %w", err)
	}

	if _, err := locations.LookupTarget("z80"); !errors.Is(err, locations.ErrUnknownTarget) {
		return fmt.Errorf("unexpected lookup result: %v", err)
	}

	host, err := locations.HostTarget()
	if err != nil {
		return fmt.Errorf("host target: %w", err)
	}
	fmt.Println("host target:", host.Name)

	for _, name := range locations.TargetNames() {
		fmt.Println("registered:", name)
	}

	// Custom descriptions come from YAML, inline or from a file.
	custom, err := locations.ParseTarget([]byte(`
name: demo
word_size: 4
cpu_registers: [a, b, c, d, bp, sp]
frame_pointer: bp
stack_pointer: sp
argument_registers: [a, b]
`))
	if err != nil {
		return fmt.Errorf("parse target: %w", err)
	}
	locations.RegisterTarget(custom) // panics on duplicates or invalid descs
	if _, err := locations.LoadTarget("testdata/demo.yaml"); err != nil {
		fmt.Println("load target:", err) // fine, the file is optional here
	}

	// Description accessors.
	fmt.Println(amd64.String())
	fmt.Println("fp:", amd64.RegisterName(amd64.FP), "sp:", amd64.RegisterName(amd64.SP))
	fmt.Println("reserved rsp:", amd64.IsReserved(amd64.SP))
	fmt.Println("rdi carries args:", amd64.IsArgumentRegister(7))
	fmt.Println("xmm0 carries args:", amd64.IsFpuArgumentRegister(0))
	fmt.Println("rax pinned:", amd64.IsNeverScratch(0))
	if r, err := amd64.RegisterNamed("rax"); err == nil {
		fmt.Println("rax code:", r)
	}
	if f, err := amd64.FpuRegisterNamed("xmm3"); err == nil {
		fmt.Println("xmm3 code:", f)
	}
	fmt.Println("frame slot of local 0:", amd64.Frame.FrameSlotForVariableIndex(0))

	// =========================================================================
	// Locations - placeholders, registers and stack slots
	// =========================================================================
	_ = locations.Invalid()
	_ = locations.NoLocation()
	_ = locations.UnallocatedLocation(locations.PolicyPrefersRegister)
	anyLoc := locations.Any()
	_ = locations.PrefersRegister()
	in := locations.RequiresRegister()
	_ = locations.RequiresFpuRegister()
	scratch := locations.WritableRegister()
	out := locations.SameAsFirstInput()

	fmt.Println("any benefits from a register:", anyLoc.IsRegisterBeneficial())
	fmt.Println("policy:", in.Policy())

	rax := locations.RegisterLocation(0)
	xmm1 := locations.FpuRegisterLocation(1)
	fmt.Println(rax.IsRegister(), rax.Reg(), xmm1.IsFpuRegister(), xmm1.FpuReg())
	fmt.Println("machine register:", rax.IsMachineRegister(), "code:", rax.RegisterCode())
	if locations.IsMachineRegisterKind(locations.KindFpuRegister) {
		_ = locations.MachineRegisterLocation(locations.KindFpuRegister, 2)
	}

	local := locations.StackSlot(-1, amd64.FP)
	wide := locations.DoubleStackSlot(0, amd64.FP)
	vector := locations.QuadStackSlot(2, amd64.SP)
	fmt.Println(local.IsStackSlot(), wide.IsDoubleStackSlot(), vector.IsQuadStackSlot())
	fmt.Println("stack kinds:", local.HasStackIndex(), local.StackIndex(), local.BaseReg())
	fmt.Println("byte offset:", local.ToStackSlotOffset(amd64))
	fmt.Println("kind:", local.Kind(), "pretty:", local.String(), "named:", local.NameOn(amd64))

	// Words survive side tables.
	if restored := locations.FromBits(local.Bits()); !restored.Equals(local) {
		return fmt.Errorf("word round-trip failed")
	}

	// =========================================================================
	// Arena - constants and pairs resolve against their arena
	// =========================================================================
	arena := locations.NewArena(amd64)
	fmt.Println("arena target:", arena.Target().Name)

	answer := arena.Constant(demoConstant{42})
	fmt.Println(answer.IsConstant(), answer.ConstantValue(arena))
	_ = answer.Constant(arena) // the node itself

	pair := arena.Pair(rax, locations.RegisterLocation(2))
	fmt.Println(pair.IsPairLocation(), pair.Component(arena, 0))
	pl := pair.AsPairLocation(arena)
	pl.SetAt(1, locations.StackSlot(-2, amd64.FP))
	*pl.SlotAt(0) = locations.RegisterLocation(1)
	fmt.Println("pair now:", pl.String(), "length:", pl.Length(), "at:", pl.At(0))

	kept := pair.Copy(arena) // deep for pairs, cheap for everything else
	fmt.Println("copied pair:", kept)

	// =========================================================================
	// LocationSummary - constraints in, allocations out
	// =========================================================================
	s := locations.NewLocationSummary(arena, 2, 1, locations.CallOnSlowPath)
	s.SetIn(0, in)
	s.SetIn(1, scratch)
	s.SetTemp(0, locations.RequiresRegister())
	s.SetOut(0, out)
	s.DiscoverWritableInputs()

	fmt.Println(s.InputCount(), s.TempCount(), s.OutputCount())
	fmt.Println(s.In(0), s.Temp(0), s.Out(0))
	fmt.Println(s.AlwaysCalls(), s.CalleeSafeCall(), s.CanCall(),
		s.HasCallOnSlowPath(), s.CallOnSharedSlowPath())
	fmt.Println("arena:", s.Arena().Target().Name)

	// Allocators rewrite the slots in place.
	*s.InSlot(0) = locations.RegisterLocation(0)
	*s.InSlot(1) = locations.RegisterLocation(2)
	*s.TempSlot(0) = locations.RegisterLocation(1)
	*s.OutSlot(0) = s.In(0)
	s.CheckWritableInputs()
	fmt.Println("allocated:", s.String())

	// Convenience constructor: every input Any, output fixed.
	call := locations.MakeSummary(arena, 2, locations.RegisterLocation(0), locations.Call)
	fmt.Println("call summary:", call.String())

	// Safepoint bookkeeping.
	call.SetStackBit(3)
	fmt.Println("stack map:", call.StackBitmap().String())
	call.LiveRegisters().Add(locations.RegisterLocation(3), locations.RepUnboxedInt64)
	fmt.Println("live:", call.LiveRegisters().String(),
		"untagged:", call.LiveRegisters().HasUntaggedValues())

	// =========================================================================
	// RegisterSet - allocator liveness tracking
	// =========================================================================
	rs := locations.NewRegisterSet(amd64)
	rs.AddAllNonReservedRegisters(true)
	rs.AddAllGeneralRegisters()
	rs.AddAllArgumentRegisters()
	rs.Add(rax, locations.RepTagged)
	rs.MarkUntagged(rax)
	fmt.Println(rs.Contains(rax), rs.ContainsRegister(0), rs.ContainsFpuRegister(1))
	fmt.Println(rs.IsTagged(0), rs.HasUntaggedValues())
	fmt.Println(rs.CpuRegisterCount(), rs.FpuRegisterCount())
	rs.Remove(rax)
	fmt.Printf("masks: %#x %#x %#x\n",
		rs.CpuRegisters(), rs.UntaggedCpuRegisters(), rs.FpuRegisters())

	small := locations.NewSmallSet(0b101)
	small.Add(6)
	small.Remove(0)
	fmt.Println(small.Contains(2), small.Size(), small.IsEmpty(), small.Data())
	small.Clear()
	fmt.Println(locations.RegisterCount(0b1100), locations.MaskContains(0b1100, 2))

	// =========================================================================
	// FrameRebase - dropping or building frames under allocated slots
	// =========================================================================
	fr := locations.NewFrameRebase(arena, amd64.FP, amd64.SP, 10)
	moved := fr.Rebase(local)
	fmt.Println("rebased:", moved.NameOn(amd64), "offset:", moved.ToStackSlotOffset(amd64))
	fmt.Println("registers stay put:", fr.Rebase(rax).Equals(rax))

	// =========================================================================
	// Representations
	// =========================================================================
	fmt.Println(locations.RepUnboxedInt64.IsUnboxedInteger(),
		locations.RepUnboxedDouble.IsUnboxed(),
		locations.RepTagged.IsUnboxed())

	return nil
}
