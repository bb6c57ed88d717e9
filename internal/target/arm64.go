package target

// AAPCS64: code 31 is sp, x29 frames, x18 is the platform register,
// arguments in x0-x7 and v0-v7.
func newARM64() *Desc {
	return &Desc{
		Name:            "arm64",
		WordSize:        8,
		NumCpuRegisters: 32,
		NumFpuRegisters: 32,
		FP:              29,
		SP:              31,
		Reserved:        []Register{18, 29, 31},
		ArgumentRegisters: []Register{
			0, 1, 2, 3, 4, 5, 6, 7,
		},
		FpuArgumentRegisters: []FpuRegister{0, 1, 2, 3, 4, 5, 6, 7},
		HasFpuRegisters:      true,
		CpuNames: []string{
			"x0", "x1", "x2", "x3", "x4", "x5", "x6", "x7",
			"x8", "x9", "x10", "x11", "x12", "x13", "x14", "x15",
			"x16", "x17", "x18", "x19", "x20", "x21", "x22", "x23",
			"x24", "x25", "x26", "x27", "x28", "fp", "lr", "sp",
		},
		FpuNames: []string{
			"v0", "v1", "v2", "v3", "v4", "v5", "v6", "v7",
			"v8", "v9", "v10", "v11", "v12", "v13", "v14", "v15",
			"v16", "v17", "v18", "v19", "v20", "v21", "v22", "v23",
			"v24", "v25", "v26", "v27", "v28", "v29", "v30", "v31",
		},
		Frame: FrameLayout{ParamEndFromFP: 1, FirstLocalFromFP: -1},
	}
}

func init() {
	RegisterDesc(newARM64())
}
