package recipe

import (
	"maps"
	"slices"
	"strings"
)

// Define names passed to cmake. The ":BOOL" suffix is part of the name.
const (
	DefBenchmarks = "VCL_BUILD_BENCHMARKS:BOOL"
	DefTests      = "VCL_BUILD_TESTS:BOOL"
	DefTools      = "VCL_BUILD_TOOLS:BOOL"
	DefExamples   = "VCL_BUILD_EXAMPLES:BOOL"
	DefPIC        = "CMAKE_POSITION_INDEPENDENT_CODE:BOOL"

	vectorizePrefix = "VCL_VECTORIZE_"
	boolSuffix      = ":BOOL"

	On  = "on"
	Off = "off"
)

// DefineMap maps define names to their string values.
type DefineMap map[string]string

// VectorizeDefine returns the define name enabling v.
func VectorizeDefine(v Vectorization) string {
	return vectorizePrefix + strings.ToUpper(string(v)) + boolSuffix
}

// Defines derives the cmake defines for set. It has no side effects.
func Defines(set OptionSet) DefineMap {
	defs := DefineMap{
		DefBenchmarks: Off,
		DefTests:      On,
		DefTools:      Off,
		DefExamples:   Off,

		VectorizeDefine(set.Vectorization): On,
	}
	if fpic, ok := set.FPIC(); ok && fpic {
		defs[DefPIC] = On
	}
	return defs
}

// Keys returns the define names in sorted order.
func (d DefineMap) Keys() []string {
	return slices.Sorted(maps.Keys(d))
}

// Args renders the defines as sorted -D<name>=<value> arguments.
func (d DefineMap) Args() []string {
	args := make([]string, 0, len(d))
	for _, k := range d.Keys() {
		args = append(args, "-D"+k+"="+d[k])
	}
	return args
}
