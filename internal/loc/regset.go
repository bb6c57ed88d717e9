package loc

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/tinyrange/locations/internal/target"
)

// SmallSet is a bitmask set over small non-negative codes, wide enough
// for any register file this package can encode.
type SmallSet struct {
	data uint64
}

// NewSmallSet returns a set holding the codes present in mask.
func NewSmallSet(mask uint64) SmallSet { return SmallSet{mask} }

func smallSetMask(code int) uint64 {
	if code < 0 || code >= target.MaxRegisters {
		panic(fmt.Sprintf("loc: code %d outside the set domain [0, %d)", code, target.MaxRegisters))
	}
	return 1 << uint(code)
}

func (s SmallSet) Contains(code int) bool { return s.data&smallSetMask(code) != 0 }

func (s *SmallSet) Add(code int) { s.data |= smallSetMask(code) }

func (s *SmallSet) Remove(code int) { s.data &^= smallSetMask(code) }

func (s SmallSet) IsEmpty() bool { return s.data == 0 }

func (s SmallSet) Size() int { return bits.OnesCount64(s.data) }

func (s *SmallSet) Clear() { s.data = 0 }

// Data returns the raw bitmask.
func (s SmallSet) Data() uint64 { return s.data }

// RegisterCount returns the population count of a raw register mask.
func RegisterCount(mask uint64) int { return bits.OnesCount64(mask) }

// MaskContains reports whether a raw register mask holds code.
func MaskContains(mask uint64, code int) bool { return mask&smallSetMask(code) != 0 }

// RegisterSet records which registers an allocator considers used or
// live, and which of the used general-purpose registers hold untagged
// (non-reference) values that garbage-collection scans must skip. FPU
// registers never hold traceable references. A set belongs to exactly
// one summary or one allocator working state while it is mutated.
type RegisterSet struct {
	target *target.Desc

	cpuRegisters         SmallSet
	untaggedCpuRegisters SmallSet
	fpuRegisters         SmallSet
}

// NewRegisterSet returns an empty set over t's register files.
func NewRegisterSet(t *target.Desc) *RegisterSet {
	if t == nil {
		panic("loc: register set requires a target description")
	}
	return &RegisterSet{target: t}
}

func (rs *RegisterSet) checkCpu(r target.Register) int {
	if r < 0 || int(r) >= rs.target.NumCpuRegisters {
		panic(fmt.Sprintf("loc: %s has no cpu register %d", rs.target.Name, r))
	}
	return int(r)
}

func (rs *RegisterSet) checkFpu(f target.FpuRegister) int {
	if f < 0 || int(f) >= rs.target.NumFpuRegisters {
		panic(fmt.Sprintf("loc: %s has no fpu register %d", rs.target.Name, f))
	}
	return int(f)
}

// AddAllNonReservedRegisters adds every general-purpose register outside
// the target's reserved set, and every FPU register when asked for.
func (rs *RegisterSet) AddAllNonReservedRegisters(includeFpuRegisters bool) {
	for i := rs.target.NumCpuRegisters - 1; i >= 0; i-- {
		r := target.Register(i)
		if rs.target.IsReserved(r) {
			continue
		}
		rs.Add(RegisterLocation(r), RepTagged)
	}
	if includeFpuRegisters {
		for i := rs.target.NumFpuRegisters - 1; i >= 0; i-- {
			rs.Add(FpuRegisterLocation(target.FpuRegister(i)), RepTagged)
		}
	}
}

// AddAllGeneralRegisters adds every register usable as a general scratch
// register: everything but the frame and stack pointers and codes with a
// hardwired role (program counter, zero register). FPU registers come
// along only when the target actually has them.
func (rs *RegisterSet) AddAllGeneralRegisters() {
	for i := rs.target.NumCpuRegisters - 1; i >= 0; i-- {
		r := target.Register(i)
		if r == rs.target.FP || r == rs.target.SP || rs.target.IsNeverScratch(r) {
			continue
		}
		rs.Add(RegisterLocation(r), RepTagged)
	}
	if rs.target.HasFpuRegisters {
		for i := rs.target.NumFpuRegisters - 1; i >= 0; i-- {
			rs.Add(FpuRegisterLocation(target.FpuRegister(i)), RepTagged)
		}
	}
}

// AddAllArgumentRegisters adds the registers the calling convention
// passes arguments in. On targets that pass everything on the stack this
// adds nothing.
func (rs *RegisterSet) AddAllArgumentRegisters() {
	for _, r := range rs.target.ArgumentRegisters {
		rs.Add(RegisterLocation(r), RepTagged)
	}
	for _, f := range rs.target.FpuArgumentRegisters {
		rs.Add(FpuRegisterLocation(f), RepTagged)
	}
}

// Add marks loc's register used. A representation other than RepTagged
// additionally marks a general-purpose register untagged. Locations that
// are not machine registers are ignored.
func (rs *RegisterSet) Add(l Location, rep Representation) {
	switch {
	case l.IsRegister():
		rs.cpuRegisters.Add(rs.checkCpu(l.Reg()))
		if rep != RepTagged {
			rs.MarkUntagged(l)
		}
	case l.IsFpuRegister():
		rs.fpuRegisters.Add(rs.checkFpu(l.FpuReg()))
	}
}

// Remove clears loc's register. Locations that are not machine registers
// are ignored.
func (rs *RegisterSet) Remove(l Location) {
	switch {
	case l.IsRegister():
		code := rs.checkCpu(l.Reg())
		rs.cpuRegisters.Remove(code)
		rs.untaggedCpuRegisters.Remove(code)
	case l.IsFpuRegister():
		rs.fpuRegisters.Remove(rs.checkFpu(l.FpuReg()))
	}
}

// Contains reports membership for a machine-register location and panics
// for anything else.
func (rs *RegisterSet) Contains(l Location) bool {
	switch {
	case l.IsRegister():
		return rs.ContainsRegister(l.Reg())
	case l.IsFpuRegister():
		return rs.ContainsFpuRegister(l.FpuReg())
	}
	panic("loc: Contains on a location that is not a machine register")
}

// MarkUntagged records that the register holds a value the garbage
// collector must not trace.
func (rs *RegisterSet) MarkUntagged(l Location) {
	if !l.IsRegister() {
		panic("loc: MarkUntagged on a non-register location")
	}
	rs.untaggedCpuRegisters.Add(rs.checkCpu(l.Reg()))
}

// HasUntaggedValues reports whether any used register holds a
// non-reference value; FPU registers always count.
func (rs *RegisterSet) HasUntaggedValues() bool {
	return !rs.untaggedCpuRegisters.IsEmpty() || !rs.fpuRegisters.IsEmpty()
}

// IsTagged reports whether reg is absent from the untagged set.
func (rs *RegisterSet) IsTagged(reg target.Register) bool {
	return !rs.untaggedCpuRegisters.Contains(rs.checkCpu(reg))
}

func (rs *RegisterSet) ContainsRegister(reg target.Register) bool {
	return rs.cpuRegisters.Contains(rs.checkCpu(reg))
}

func (rs *RegisterSet) ContainsFpuRegister(reg target.FpuRegister) bool {
	return rs.fpuRegisters.Contains(rs.checkFpu(reg))
}

func (rs *RegisterSet) CpuRegisterCount() int { return rs.cpuRegisters.Size() }

func (rs *RegisterSet) FpuRegisterCount() int { return rs.fpuRegisters.Size() }

// CpuRegisters returns the raw used-register mask.
func (rs *RegisterSet) CpuRegisters() uint64 { return rs.cpuRegisters.Data() }

// UntaggedCpuRegisters returns the raw untagged-register mask.
func (rs *RegisterSet) UntaggedCpuRegisters() uint64 { return rs.untaggedCpuRegisters.Data() }

// FpuRegisters returns the raw used-fpu-register mask.
func (rs *RegisterSet) FpuRegisters() uint64 { return rs.fpuRegisters.Data() }

func (rs *RegisterSet) String() string {
	var b strings.Builder
	b.WriteString("cpu:{")
	first := true
	for i := 0; i < rs.target.NumCpuRegisters; i++ {
		if !rs.cpuRegisters.Contains(i) {
			continue
		}
		if !first {
			b.WriteByte(' ')
		}
		first = false
		b.WriteString(rs.target.RegisterName(target.Register(i)))
		if !rs.untaggedCpuRegisters.Contains(i) {
			continue
		}
		b.WriteByte('*')
	}
	b.WriteString("} fpu:{")
	first = true
	for i := 0; i < rs.target.NumFpuRegisters; i++ {
		if !rs.fpuRegisters.Contains(i) {
			continue
		}
		if !first {
			b.WriteByte(' ')
		}
		first = false
		b.WriteString(rs.target.FpuRegisterName(target.FpuRegister(i)))
	}
	b.WriteByte('}')
	return b.String()
}
