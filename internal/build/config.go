package build

import (
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
)

const ConfigFile = "vclpkg.toml"

var ErrConfigNotFound = errors.New("config file not found")

// Config represents the vclpkg.toml configuration file.
type Config struct {
	Default  Default   `toml:"default"`
	Profiles []Profile `toml:"profile"`
}

// Default holds values inherited by all profiles unless overridden.
type Default struct {
	// Toolchain
	Compiler   string `toml:"compiler"`
	ZigVersion string `toml:"zig-version"`

	// Recipe options (merged, profile wins)
	Options map[string]string `toml:"options"`

	// Source
	Source    string `toml:"source"`
	Revision  string `toml:"revision"`
	SourceDir string `toml:"source-dir"`

	// CMake
	Generator string `toml:"generator"`
	BuildType string `toml:"build-type"`
	Jobs      int    `toml:"jobs"`

	// Dependencies
	Eigen string `toml:"eigen"`

	Verbose bool `toml:"verbose"`
}

// Profile is a named set of build parameters.
type Profile struct {
	Name string `toml:"name"`

	// Toolchain (overrides default)
	Compiler   string `toml:"compiler"`
	ZigVersion string `toml:"zig-version"`
	OS         string `toml:"os"`
	Arch       string `toml:"arch"`
	Target     string `toml:"target"`

	Options map[string]string `toml:"options"`

	// Source
	Source    string `toml:"source"`
	Revision  string `toml:"revision"`
	SourceDir string `toml:"source-dir"`

	// Output
	BuildDir   string `toml:"build-dir"`
	PackageDir string `toml:"package-dir"`
	Pack       bool   `toml:"pack"`
	PackFormat string `toml:"pack-format"`

	// CMake
	Generator string `toml:"generator"`
	BuildType string `toml:"build-type"`
	Jobs      int    `toml:"jobs"`

	Eigen   string `toml:"eigen"`
	Verbose bool   `toml:"verbose"`
}

// LoadConfig decodes path, or the nearest ConfigFile found walking up from
// the working directory when path is empty. Unknown keys are rejected so that
// typos do not silently fall back to defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = findConfig()
	}
	if path == "" {
		return nil, ErrConfigNotFound
	}

	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, ErrConfigNotFound
	case err != nil:
		return nil, errors.Wrapf(err, "parse %s", path)
	}

	if extra := md.Undecoded(); len(extra) > 0 {
		keys := make([]string, len(extra))
		for i, k := range extra {
			keys[i] = k.String()
		}
		return nil, errors.WithHint(
			errors.Newf("%s: unknown keys %s", path, strings.Join(keys, ", ")),
			"keys mirror the long flags of 'vclpkg build', e.g. zig-version")
	}
	return &cfg, nil
}

// findConfig returns the first ConfigFile in the working directory or one of
// its parents.
func findConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, ConfigFile)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		up := filepath.Dir(dir)
		if up == dir {
			return ""
		}
		dir = up
	}
}

// ToOptions converts selected profiles to an Options slice. Without profiles
// the default table alone yields one Options.
func (c *Config) ToOptions(names []string) ([]*Options, error) {
	profiles, err := c.selectProfiles(names)
	if err != nil {
		return nil, err
	}

	if len(profiles) == 0 {
		return []*Options{c.defaultOptions()}, nil
	}

	opts := make([]*Options, len(profiles))
	for i, p := range profiles {
		opts[i] = c.toOptions(p)
	}
	return opts, nil
}

func (c *Config) selectProfiles(names []string) ([]*Profile, error) {
	if len(names) == 0 {
		profiles := make([]*Profile, len(c.Profiles))
		for i := range c.Profiles {
			profiles[i] = &c.Profiles[i]
		}
		return profiles, nil
	}

	profiles := make([]*Profile, 0, len(names))
	for _, name := range names {
		found := false
		for i := range c.Profiles {
			if c.Profiles[i].Name == name {
				profiles = append(profiles, &c.Profiles[i])
				found = true
				break
			}
		}
		if !found {
			return nil, errors.Newf("profile %q not found", name)
		}
	}
	return profiles, nil
}

func (c *Config) defaultOptions() *Options {
	d := &c.Default
	return &Options{
		Compiler:   d.Compiler,
		ZigVersion: d.ZigVersion,
		Overrides:  mergeOptions(d.Options, nil),
		Source:     d.Source,
		Revision:   d.Revision,
		SourceDir:  d.SourceDir,
		Generator:  d.Generator,
		BuildType:  d.BuildType,
		Jobs:       d.Jobs,
		Eigen:      d.Eigen,
		Verbose:    d.Verbose,
	}
}

func (c *Config) toOptions(p *Profile) *Options {
	d := &c.Default
	o := &Options{
		// Toolchain: profile overrides default
		Compiler:   or(p.Compiler, d.Compiler),
		ZigVersion: or(p.ZigVersion, d.ZigVersion),
		OS:         p.OS,
		Arch:       p.Arch,
		Target:     p.Target,

		// Recipe options: default + profile (profile wins)
		Overrides: mergeOptions(d.Options, p.Options),

		Source:    or(p.Source, d.Source),
		Revision:  or(p.Revision, d.Revision),
		SourceDir: or(p.SourceDir, d.SourceDir),

		BuildDir:   p.BuildDir,
		PackageDir: p.PackageDir,
		Pack:       p.Pack,
		PackFormat: p.PackFormat,

		Generator: or(p.Generator, d.Generator),
		BuildType: or(p.BuildType, d.BuildType),
		Jobs:      d.Jobs,

		Eigen: or(p.Eigen, d.Eigen),

		// Behavior: either true wins
		Verbose: d.Verbose || p.Verbose,
	}
	if p.Jobs != 0 {
		o.Jobs = p.Jobs
	}
	if o.BuildDir == "" {
		o.BuildDir = filepath.Join(DefaultBuildDir, p.Name)
	}
	if o.PackageDir == "" {
		o.PackageDir = filepath.Join(DefaultPackageDir, p.Name)
	}
	return o
}

func mergeOptions(base, over map[string]string) map[string]string {
	if len(base) == 0 && len(over) == 0 {
		return nil
	}
	m := make(map[string]string, len(base)+len(over))
	maps.Copy(m, base)
	maps.Copy(m, over)
	return m
}
