package matrix

// Default returns the built-in test matrix.
func Default() *Registry {
	return MustRegistry(superFilter(), analyseFilter())
}

func superFilter() Filter {
	return Filter{
		ID:       "super",
		Generate: GenerateSuper,
		Tests: []ParameterSet{
			{Name: "default"},
			{Name: "pel1", Params: P("pel", 1)},
			{Name: "pel4", Params: P("pel", 4)},
			{Name: "sharp_bilinear", Params: P("sharp", 0)},
			{Name: "sharp_bicubic", Params: P("sharp", 1)},
			{Name: "sharp_wiener", Params: P("sharp", 2)},
			{Name: "rfilter_average", Params: P("rfilter", 0)},
			{Name: "rfilter_cubic", Params: P("rfilter", 4)},
			{Name: "no_chroma", Params: P("chroma", 0)},
			{Name: "small_pad", Params: P("hpad", 4, "vpad", 4)},
			{Name: "large_pad", Params: P("hpad", 32, "vpad", 32)},
		},
	}
}

// Search modes follow the MVTools numbering (2 is unused).
func analyseFilter() Filter {
	return Filter{
		ID:       "analyse",
		Generate: GenerateAnalyse,
		Tests: []ParameterSet{
			{Name: "default"},
			{Name: "search_onetime", Params: P("search", 0)},
			{Name: "search_nstep", Params: P("search", 1)},
			{Name: "search_exhaustive", Params: P("search", 3)},
			{Name: "search_hex2", Params: P("search", 4)},
			{Name: "search_umh", Params: P("search", 5)},
			{Name: "backward", Params: P("isb", true)},
			{Name: "blksize8", Params: P("blksize", 8)},
			{Name: "blksize32", Params: P("blksize", 32)},
			{Name: "overlap", Params: P("blksize", 16, "overlap", 8)},
			{Name: "dct_sad_satd", Params: P("dct", 5)},
			{Name: "divide_original", Params: P("divide", 1)},
			{Name: "truemotion_off", Params: P("truemotion", false)},
		},
	}
}
