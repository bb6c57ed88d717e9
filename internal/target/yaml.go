package target

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// descFile is the on-disk form of a custom target description. Registers
// are referred to by name; the position in cpu_registers/fpu_registers
// assigns the code.
type descFile struct {
	Name         string   `yaml:"name"`
	WordSize     int      `yaml:"word_size"`
	CpuRegisters []string `yaml:"cpu_registers"`
	FpuRegisters []string `yaml:"fpu_registers"`

	FramePointer string `yaml:"frame_pointer"`
	StackPointer string `yaml:"stack_pointer"`

	Reserved     []string `yaml:"reserved"`
	NeverScratch []string `yaml:"never_scratch"`

	ArgumentRegisters    []string `yaml:"argument_registers"`
	FpuArgumentRegisters []string `yaml:"fpu_argument_registers"`

	SoftFloat bool `yaml:"soft_float"`

	Frame FrameLayout `yaml:"frame"`
}

func (f *descFile) normalize() {
	if f.WordSize == 0 {
		f.WordSize = 8
	}
	if f.Frame == (FrameLayout{}) {
		f.Frame = FrameLayout{ParamEndFromFP: 1, FirstLocalFromFP: -1}
	}
}

// LoadDesc reads a custom target description from a YAML file. The
// result is validated but not registered; call RegisterDesc to make it
// visible to Lookup.
func LoadDesc(path string) (*Desc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("target: read description: %w", err)
	}
	d, err := ParseDesc(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// ParseDesc builds a description from YAML.
func ParseDesc(data []byte) (*Desc, error) {
	var f descFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("target: parse description: %w", err)
	}
	f.normalize()

	d := &Desc{
		Name:            f.Name,
		WordSize:        f.WordSize,
		NumCpuRegisters: len(f.CpuRegisters),
		NumFpuRegisters: len(f.FpuRegisters),
		HasFpuRegisters: len(f.FpuRegisters) > 0 && !f.SoftFloat,
		CpuNames:        f.CpuRegisters,
		FpuNames:        f.FpuRegisters,
		Frame:           f.Frame,
	}

	cpu := func(field, name string) (Register, error) {
		if name == "" {
			return NoRegister, fmt.Errorf("target: %s: %s is required", f.Name, field)
		}
		r, err := d.RegisterNamed(name)
		if err != nil {
			return NoRegister, fmt.Errorf("target: %s: %s: %w", f.Name, field, err)
		}
		return r, nil
	}

	var err error
	if d.FP, err = cpu("frame_pointer", f.FramePointer); err != nil {
		return nil, err
	}
	if d.SP, err = cpu("stack_pointer", f.StackPointer); err != nil {
		return nil, err
	}
	for _, name := range f.Reserved {
		r, err := cpu("reserved", name)
		if err != nil {
			return nil, err
		}
		d.Reserved = append(d.Reserved, r)
	}
	// The pointers are reserved whether or not the file repeats them.
	if !containsRegister(d.Reserved, d.FP) {
		d.Reserved = append(d.Reserved, d.FP)
	}
	if !containsRegister(d.Reserved, d.SP) {
		d.Reserved = append(d.Reserved, d.SP)
	}
	for _, name := range f.NeverScratch {
		r, err := cpu("never_scratch", name)
		if err != nil {
			return nil, err
		}
		d.NeverScratch = append(d.NeverScratch, r)
	}
	for _, name := range f.ArgumentRegisters {
		r, err := cpu("argument_registers", name)
		if err != nil {
			return nil, err
		}
		d.ArgumentRegisters = append(d.ArgumentRegisters, r)
	}
	for _, name := range f.FpuArgumentRegisters {
		r, err := d.FpuRegisterNamed(name)
		if err != nil {
			return nil, fmt.Errorf("target: %s: fpu_argument_registers: %w", f.Name, err)
		}
		d.FpuArgumentRegisters = append(d.FpuArgumentRegisters, r)
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}
