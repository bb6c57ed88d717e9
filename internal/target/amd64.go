package target

// System V AMD64: rbp frames, arguments in rdi/rsi/rdx/rcx/r8/r9 and
// xmm0-xmm7.
func newAMD64() *Desc {
	return &Desc{
		Name:            "amd64",
		WordSize:        8,
		NumCpuRegisters: 16,
		NumFpuRegisters: 16,
		FP:              5, // rbp
		SP:              4, // rsp
		Reserved:        []Register{4, 5},
		ArgumentRegisters: []Register{
			7, // rdi
			6, // rsi
			2, // rdx
			1, // rcx
			8, // r8
			9, // r9
		},
		FpuArgumentRegisters: []FpuRegister{0, 1, 2, 3, 4, 5, 6, 7},
		HasFpuRegisters:      true,
		CpuNames: []string{
			"rax", "rcx", "rdx", "rbx", "rsp", "rbp", "rsi", "rdi",
			"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15",
		},
		FpuNames: []string{
			"xmm0", "xmm1", "xmm2", "xmm3", "xmm4", "xmm5", "xmm6", "xmm7",
			"xmm8", "xmm9", "xmm10", "xmm11", "xmm12", "xmm13", "xmm14", "xmm15",
		},
		Frame: FrameLayout{ParamEndFromFP: 1, FirstLocalFromFP: -1},
	}
}

func init() {
	RegisterDesc(newAMD64())
}
