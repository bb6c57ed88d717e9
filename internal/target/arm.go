package target

// AAPCS: r11 frames, r13 is sp, r15 is pc and never usable as scratch,
// arguments in r0-r3 and d0-d7 on hard-float builds. The soft-float
// variant keeps the VFP register codes encodable but stops population
// helpers from touching them.
func newARM(vfp bool) *Desc {
	name := "arm"
	var fpuArgs []FpuRegister
	if vfp {
		fpuArgs = []FpuRegister{0, 1, 2, 3, 4, 5, 6, 7}
	} else {
		name = "arm-softfp"
	}
	return &Desc{
		Name:                 name,
		WordSize:             4,
		NumCpuRegisters:      16,
		NumFpuRegisters:      16,
		FP:                   11,
		SP:                   13,
		Reserved:             []Register{11, 13, 15},
		NeverScratch:         []Register{15}, // pc
		ArgumentRegisters:    []Register{0, 1, 2, 3},
		FpuArgumentRegisters: fpuArgs,
		HasFpuRegisters:      vfp,
		CpuNames: []string{
			"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7",
			"r8", "r9", "r10", "fp", "ip", "sp", "lr", "pc",
		},
		FpuNames: []string{
			"d0", "d1", "d2", "d3", "d4", "d5", "d6", "d7",
			"d8", "d9", "d10", "d11", "d12", "d13", "d14", "d15",
		},
		Frame: FrameLayout{ParamEndFromFP: 1, FirstLocalFromFP: -1},
	}
}

func init() {
	RegisterDesc(newARM(true))
	RegisterDesc(newARM(false))
}
