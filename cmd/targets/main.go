// targets prints a target description the way the location encoding
// sees it: the register files with their roles, the calling convention,
// and where frame-relative slot indexes land as byte offsets.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/tinyrange/locations"
	"golang.org/x/term"
)

var (
	headStyle     = ansi.Style{}.Bold()
	pointerStyle  = ansi.Style{}.ForegroundColor(ansi.Cyan)
	reservedStyle = ansi.Style{}.ForegroundColor(ansi.Red)
	argStyle      = ansi.Style{}.ForegroundColor(ansi.Green)
	noteStyle     = ansi.Style{}.Faint()
)

type printer struct {
	color bool
}

func (p printer) paint(st ansi.Style, text string) string {
	if !p.color {
		return text
	}
	return st.Styled(text)
}

func cpuRoles(d *locations.Target, r locations.Register) []string {
	var roles []string
	if r == d.FP {
		roles = append(roles, "fp")
	}
	if r == d.SP {
		roles = append(roles, "sp")
	}
	if d.IsReserved(r) && r != d.FP && r != d.SP {
		roles = append(roles, "reserved")
	}
	if d.IsNeverScratch(r) {
		roles = append(roles, "never-scratch")
	}
	for i, a := range d.ArgumentRegisters {
		if a == r {
			roles = append(roles, fmt.Sprintf("arg%d", i))
		}
	}
	return roles
}

func cpuStyle(d *locations.Target, r locations.Register) (ansi.Style, bool) {
	switch {
	case r == d.FP || r == d.SP:
		return pointerStyle, true
	case d.IsReserved(r) || d.IsNeverScratch(r):
		return reservedStyle, true
	case d.IsArgumentRegister(r):
		return argStyle, true
	}
	return ansi.Style{}, false
}

func (p printer) describe(d *locations.Target) {
	fmt.Printf("%s\n", p.paint(headStyle, "target "+d.Name))
	fmt.Printf("  word size    %d bytes\n", d.WordSize)
	fmt.Printf("  frame        parameters end at fp%+d, locals start at fp%+d\n",
		d.Frame.ParamEndFromFP, d.Frame.FirstLocalFromFP)
	if !d.HasFpuRegisters {
		fmt.Printf("  float        soft-float, no fpu register file\n")
	}
	fmt.Println()

	fmt.Printf("%s\n", p.paint(headStyle, "  cpu registers"))
	for i := 0; i < d.NumCpuRegisters; i++ {
		r := locations.Register(i)
		// Pad before styling; SGR bytes would count toward the width.
		name := fmt.Sprintf("%-8s", d.RegisterName(r))
		if st, ok := cpuStyle(d, r); ok {
			name = p.paint(st, name)
		}
		line := fmt.Sprintf("    %3d  %s", i, name)
		if roles := cpuRoles(d, r); len(roles) > 0 {
			line += p.paint(noteStyle, strings.Join(roles, ", "))
		}
		fmt.Println(strings.TrimRight(line, " "))
	}
	fmt.Println()

	fmt.Printf("%s\n", p.paint(headStyle, "  fpu registers"))
	for i := 0; i < d.NumFpuRegisters; i++ {
		r := locations.FpuRegister(i)
		name := fmt.Sprintf("%-8s", d.FpuRegisterName(r))
		if d.IsFpuArgumentRegister(r) {
			name = p.paint(argStyle, name)
		}
		line := fmt.Sprintf("    %3d  %s", i, name)
		for j, a := range d.FpuArgumentRegisters {
			if a == r {
				line += p.paint(noteStyle, fmt.Sprintf("arg%d", j))
			}
		}
		fmt.Println(strings.TrimRight(line, " "))
	}
	fmt.Println()

	// Show where slot indexes land so a frame layout mistake is visible
	// at a glance.
	fmt.Printf("%s\n", p.paint(headStyle, "  frame offsets"))
	fp := d.RegisterName(d.FP)
	for _, index := range []int{2, 1, 0, -1, -2} {
		l := locations.StackSlot(index, d.FP)
		fmt.Printf("    %-10s %s%+d\n", l.NameOn(d), fp, l.ToStackSlotOffset(d))
	}
}

func run(targetName, descPath string, all, noColor bool) error {
	if all {
		for _, name := range locations.TargetNames() {
			fmt.Println(name)
		}
		return nil
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

	p := printer{color: !noColor && term.IsTerminal(int(os.Stdout.Fd()))}
	p.describe(d)
	return nil
}

func main() {
	targetName := flag.String("target", "host", "builtin target description to print")
	descPath := flag.String("desc", "", "YAML target description to print instead of a builtin")
	all := flag.Bool("all", false, "list registered targets and exit")
	noColor := flag.Bool("no-color", false, "disable styled output")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Print the register file and frame layout of a target description.\n\n")
		fmt.Fprintf(os.Stderr, "Examples:\n")
		fmt.Fprintf(os.Stderr, "  %s -all\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -target arm\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -desc riscv64.yaml -no-color\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(*targetName, *descPath, *all, *noColor); err != nil {
		fmt.Fprintf(os.Stderr, "targets: %v\n", err)
		os.Exit(1)
	}
}
