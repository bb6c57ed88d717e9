package target

// 32-bit x86 passes every argument on the stack, so both argument lists
// stay empty and argument-population helpers are no-ops here.
func new386() *Desc {
	return &Desc{
		Name:            "386",
		WordSize:        4,
		NumCpuRegisters: 8,
		NumFpuRegisters: 8,
		FP:              5, // ebp
		SP:              4, // esp
		Reserved:        []Register{4, 5},
		HasFpuRegisters: true,
		CpuNames: []string{
			"eax", "ecx", "edx", "ebx", "esp", "ebp", "esi", "edi",
		},
		FpuNames: []string{
			"xmm0", "xmm1", "xmm2", "xmm3", "xmm4", "xmm5", "xmm6", "xmm7",
		},
		Frame: FrameLayout{ParamEndFromFP: 1, FirstLocalFromFP: -1},
	}
}

func init() {
	RegisterDesc(new386())
}
