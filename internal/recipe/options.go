package recipe

import (
	"maps"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
)

// Option names as accepted in overrides and config files.
const (
	OptVectorization = "vectorization"
	OptFPIC          = "fPIC"
)

// PICManagedToolchain is the compiler that handles position-independent code
// on its own; the fPIC option does not exist for it.
const PICManagedToolchain = "Visual Studio"

// ----------------------------------------------------------------------------
// Vectorization
// ----------------------------------------------------------------------------

// Vectorization selects the SIMD instruction-set family VCL is compiled for.
type Vectorization string

const (
	VectorizeAVX    Vectorization = "AVX"
	VectorizeAVX2   Vectorization = "AVX2"
	VectorizeSSE4_2 Vectorization = "SSE4_2"
)

// Vectorizations lists the legal values in declaration order.
var Vectorizations = []Vectorization{VectorizeAVX, VectorizeAVX2, VectorizeSSE4_2}

func (v Vectorization) Valid() bool {
	return slices.Contains(Vectorizations, v)
}

// ----------------------------------------------------------------------------
// Model
// ----------------------------------------------------------------------------

// Option declares one configuration knob.
type Option struct {
	Name    string
	Values  []string
	Default string
	// Excluded lists toolchains on which the option does not exist.
	Excluded []string
}

func (o Option) legal(value string) (string, bool) {
	for _, v := range o.Values {
		if v == value || (isBoolValue(v) && strings.EqualFold(v, value)) {
			return v, true
		}
	}
	return "", false
}

func (o Option) availableOn(toolchain string) bool {
	return !slices.Contains(o.Excluded, toolchain)
}

// Model is the immutable set of declared options. Build one with
// DefaultModel and share it freely.
type Model struct {
	options []Option
}

// DefaultModel returns the VCL option declarations.
func DefaultModel() Model {
	vec := make([]string, len(Vectorizations))
	for i, v := range Vectorizations {
		vec[i] = string(v)
	}
	return Model{options: []Option{
		{Name: OptVectorization, Values: vec, Default: string(VectorizeAVX)},
		{Name: OptFPIC, Values: []string{"True", "False"}, Default: "False", Excluded: []string{PICManagedToolchain}},
	}}
}

// Options returns a copy of the declarations.
func (m Model) Options() []Option {
	return slices.Clone(m.options)
}

func (m Model) lookup(name string) (Option, bool) {
	for _, o := range m.options {
		if o.Name == name {
			return o, true
		}
	}
	return Option{}, false
}

// Resolve applies defaults, drops options unavailable on toolchain and then
// applies overrides. Overrides for dropped options are ignored.
func (m Model) Resolve(toolchain string, overrides map[string]string) (OptionSet, error) {
	values := make(map[string]string, len(m.options))
	for _, o := range m.options {
		if o.availableOn(toolchain) {
			values[o.Name] = o.Default
		}
	}

	for _, name := range slices.Sorted(maps.Keys(overrides)) {
		opt, ok := m.lookup(name)
		if !ok {
			return OptionSet{}, errors.WithHintf(
				errors.Wrapf(ErrUnknownOption, "%q", name),
				"declared options: %s", strings.Join(m.names(), ", "))
		}
		if !opt.availableOn(toolchain) {
			continue
		}
		v, ok := opt.legal(overrides[name])
		if !ok {
			return OptionSet{}, errors.WithHintf(
				errors.Wrapf(ErrInvalidOptionValue, "%s=%q", name, overrides[name]),
				"legal values: %s", strings.Join(opt.Values, ", "))
		}
		values[name] = v
	}

	set := OptionSet{Vectorization: Vectorization(values[OptVectorization])}
	if v, ok := values[OptFPIC]; ok {
		set.hasFPIC = true
		set.fpic = v == "True"
	}
	return set, nil
}

func (m Model) names() []string {
	names := make([]string, len(m.options))
	for i, o := range m.options {
		names[i] = o.Name
	}
	return names
}

func isBoolValue(v string) bool {
	return v == "True" || v == "False"
}

// ----------------------------------------------------------------------------
// OptionSet
// ----------------------------------------------------------------------------

// OptionSet is a resolved, validated selection. It is a comparable value.
type OptionSet struct {
	Vectorization Vectorization

	fpic    bool
	hasFPIC bool
}

// FPIC reports the fPIC selection and whether the option exists at all.
func (s OptionSet) FPIC() (value, ok bool) {
	return s.fpic, s.hasFPIC
}

// Values returns the selection keyed by option name, booleans as True/False.
func (s OptionSet) Values() map[string]string {
	m := map[string]string{OptVectorization: string(s.Vectorization)}
	if s.hasFPIC {
		m[OptFPIC] = "False"
		if s.fpic {
			m[OptFPIC] = "True"
		}
	}
	return m
}

// String renders the selection as sorted name=value pairs.
func (s OptionSet) String() string {
	values := s.Values()
	parts := make([]string, 0, len(values))
	for _, k := range slices.Sorted(maps.Keys(values)) {
		parts = append(parts, k+"="+values[k])
	}
	return strings.Join(parts, " ")
}
