// locverify sweeps a target description through the packed location
// encoding: every register and a sampled range of stack indexes must
// round-trip, no kind may read as a constant or pair handle, and frame
// rebasing must agree with the target's frame layout. It exists to vet
// custom target descriptions before a compiler is pointed at them.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/tinyrange/locations"
	"golang.org/x/term"
)

type intConstant struct {
	v int
}

func (c intConstant) ConstantValue() any { return c.v }

type verifier struct {
	target  *locations.Target
	samples int
	rng     *rand.Rand
	bar     *progressbar.ProgressBar
}

func (v *verifier) checkRegisters() error {
	d := v.target
	for i := 0; i < d.NumCpuRegisters; i++ {
		r := locations.Register(i)
		l := locations.RegisterLocation(r)
		if !l.IsRegister() || l.Reg() != r {
			return fmt.Errorf("cpu register %d does not round-trip", i)
		}
		if got, want := l.NameOn(d), d.RegisterName(r); got != want {
			return fmt.Errorf("cpu register %d renders as %q, want %q", i, got, want)
		}
	}
	for i := 0; i < d.NumFpuRegisters; i++ {
		r := locations.FpuRegister(i)
		l := locations.FpuRegisterLocation(r)
		if !l.IsFpuRegister() || l.FpuReg() != r {
			return fmt.Errorf("fpu register %d does not round-trip", i)
		}
	}

	rs := locations.NewRegisterSet(d)
	rs.AddAllNonReservedRegisters(true)
	want := 0
	for i := 0; i < d.NumCpuRegisters; i++ {
		if !d.IsReserved(locations.Register(i)) {
			want++
		}
	}
	if got := rs.CpuRegisterCount(); got != want {
		return fmt.Errorf("non-reserved set has %d registers, want %d", got, want)
	}

	args := locations.NewRegisterSet(d)
	args.AddAllArgumentRegisters()
	if got, want := args.CpuRegisterCount(), len(d.ArgumentRegisters); got != want {
		return fmt.Errorf("argument set has %d registers, want %d", got, want)
	}
	if got, want := args.FpuRegisterCount(), len(d.FpuArgumentRegisters); got != want {
		return fmt.Errorf("argument set has %d fpu registers, want %d", got, want)
	}
	return nil
}

func (v *verifier) checkStackSlots() error {
	d := v.target
	makers := []func(int, locations.Register) locations.Location{
		locations.StackSlot,
		locations.DoubleStackSlot,
		locations.QuadStackSlot,
	}
	const span = 1 << 30
	for n := 0; n < v.samples; n++ {
		index := int(v.rng.Int63n(2*span+1) - span)
		base := d.FP
		if n%2 == 1 {
			base = d.SP
		}
		l := makers[n%len(makers)](index, base)
		if got := l.StackIndex(); got != index {
			return fmt.Errorf("index %d came back as %d", index, got)
		}
		if got := l.BaseReg(); got != base {
			return fmt.Errorf("base %s came back as %s", d.RegisterName(base), d.RegisterName(got))
		}
		if l.IsConstant() || l.IsPairLocation() {
			return fmt.Errorf("stack slot %v reads as a handle", l)
		}
		want := index * d.WordSize
		if base == d.FP {
			want = d.Frame.FrameSlotForVariableIndex(index) * d.WordSize
		}
		if got := l.ToStackSlotOffset(d); got != want {
			return fmt.Errorf("%s resolves to offset %d, want %d", l.NameOn(d), got, want)
		}
		v.bar.Add(1)
	}
	return nil
}

func (v *verifier) checkHandles() error {
	a := locations.NewArena(v.target)
	seen := make(map[uint64]struct{})
	for i := 0; i < 512; i++ {
		c := a.Constant(intConstant{i})
		if !c.IsConstant() {
			return fmt.Errorf("constant %d does not read as a constant", i)
		}
		if got := c.ConstantValue(a); got != any(i) {
			return fmt.Errorf("constant %d dereferences to %v", i, got)
		}
		p := a.Pair(locations.RegisterLocation(0), locations.StackSlot(i, v.target.FP))
		if !p.IsPairLocation() {
			return fmt.Errorf("pair %d does not read as a pair", i)
		}
		if got := p.Component(a, 1).StackIndex(); got != i {
			return fmt.Errorf("pair %d holds stack index %d", i, got)
		}
		for _, l := range []locations.Location{c, p} {
			if _, dup := seen[l.Bits()]; dup {
				return fmt.Errorf("handle %v was minted twice", l)
			}
			seen[l.Bits()] = struct{}{}
		}
	}
	return nil
}

func (v *verifier) checkSummaries() error {
	a := locations.NewArena(v.target)
	modes := []locations.ContainsCall{
		locations.NoCall,
		locations.Call,
		locations.CallCalleeSafe,
		locations.CallOnSlowPath,
		locations.CallOnSharedSlowPath,
	}
	for _, mode := range modes {
		s := locations.MakeSummary(a, 2, locations.Invalid(), mode)
		if s.AlwaysCalls() && !s.CanCall() {
			return fmt.Errorf("%v always calls but cannot call", mode)
		}
		if got := s.HasCallOnSlowPath(); got != (s.CanCall() && !s.AlwaysCalls()) {
			return fmt.Errorf("%v disagrees about its slow path", mode)
		}
		for i := 0; i < s.InputCount(); i++ {
			if !s.In(i).Equals(locations.Any()) {
				return fmt.Errorf("%v: input %d is %v, want %v", mode, i, s.In(i), locations.Any())
			}
		}
	}

	s := locations.NewLocationSummary(a, 0, 0, locations.Call)
	s.SetStackBit(3)
	if !s.StackBitmap().Get(3) || s.StackBitmap().Get(2) {
		return fmt.Errorf("stack bitmap did not record the marked slot")
	}
	return nil
}

func (v *verifier) checkRebase() error {
	d := v.target
	a := locations.NewArena(d)
	for n := 0; n < 256; n++ {
		delta := int(v.rng.Int63n(1<<16)) - 1<<15
		index := int(v.rng.Int63n(1<<16)) - 1<<15
		fr := locations.NewFrameRebase(a, d.FP, d.SP, delta)

		got := fr.Rebase(locations.StackSlot(index, d.FP))
		if got.BaseReg() != d.SP || got.StackIndex() != index+delta {
			return fmt.Errorf("slot %d rebased to %s, want index %d off %s",
				index, got.NameOn(d), index+delta, d.RegisterName(d.SP))
		}
		if kept := fr.Rebase(locations.RegisterLocation(0)); !kept.Equals(locations.RegisterLocation(0)) {
			return fmt.Errorf("register location moved during rebase")
		}
		p := fr.Rebase(a.Pair(locations.StackSlot(index, d.FP), locations.Any()))
		if got := p.Component(a, 0).StackIndex(); got != index+delta {
			return fmt.Errorf("pair component rebased to %d, want %d", got, index+delta)
		}
	}
	return nil
}

func run(targetName, descPath string, samples int, seed int64, quiet bool) error {
	if samples <= 0 {
		return fmt.Errorf("samples must be positive, got %d", samples)
	}

	var (
		d   *locations.Target
		err error
	)
	switch {
	case descPath != "":
		d, err = locations.LoadTarget(descPath)
	case targetName == "host":
		d, err = locations.HostTarget()
	default:
		d, err = locations.LookupTarget(targetName)
	}
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	if quiet || !term.IsTerminal(int(os.Stdout.Fd())) {
		bar = progressbar.DefaultSilent(int64(samples))
	} else {
		bar = progressbar.Default(int64(samples))
	}
	defer bar.Close()

	v := &verifier{
		target:  d,
		samples: samples,
		rng:     rand.New(rand.NewSource(seed)),
		bar:     bar,
	}

	slog.Info("verifying location encoding", "target", d.Name, "samples", samples)

	phases := []struct {
		name  string
		check func() error
	}{
		{"registers", v.checkRegisters},
		{"stack slots", v.checkStackSlots},
		{"handles", v.checkHandles},
		{"summaries", v.checkSummaries},
		{"frame rebase", v.checkRebase},
	}
	for _, p := range phases {
		if err := p.check(); err != nil {
			return fmt.Errorf("%s: %w", p.name, err)
		}
		slog.Debug("phase passed", "phase", p.name)
	}

	slog.Info("encoding verified", "target", d.Name)
	return nil
}

func main() {
	targetName := flag.String("target", "host", "builtin target description to verify")
	descPath := flag.String("desc", "", "YAML target description to verify instead of a builtin")
	samples := flag.Int("samples", 65536, "number of stack indexes to sweep")
	seed := flag.Int64("seed", 1, "seed for the sampled sweep")
	quiet := flag.Bool("quiet", false, "suppress the progress bar")
	dbg := flag.Bool("debug", false, "enable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Sweep a target description and verify the packed location encoding.\n\n")
		fmt.Fprintf(os.Stderr, "Examples:\n")
		fmt.Fprintf(os.Stderr, "  %s -target amd64\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -desc riscv64.yaml -samples 1048576 -seed 42\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	if *dbg {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(
		os.Stderr,
		&slog.HandlerOptions{Level: level},
	)))

	if err := run(*targetName, *descPath, *samples, *seed, *quiet); err != nil {
		fmt.Fprintf(os.Stderr, "locverify: %v\n", err)
		os.Exit(1)
	}
}
