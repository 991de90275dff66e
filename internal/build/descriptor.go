package build

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"

	"github.com/qntx/vclpkg/internal/recipe"
)

const (
	// DescriptorFile is written to the package root.
	DescriptorFile = "vclinfo.toml"
	// PkgConfigFile is written below lib/pkgconfig.
	PkgConfigFile = "vcl.pc"
)

// PackageInfo is the content of DescriptorFile.
type PackageInfo struct {
	Name        string            `toml:"name"`
	Version     string            `toml:"version"`
	License     string            `toml:"license"`
	URL         string            `toml:"url"`
	Description string            `toml:"description"`
	Compiler    string            `toml:"compiler"`
	Options     map[string]string `toml:"options"`
	Requires    []string          `toml:"requires"`

	CppInfo recipe.Descriptor `toml:"cpp_info"`
}

// NewPackageInfo describes a package built with compiler and set.
func NewPackageInfo(compiler string, set recipe.OptionSet) PackageInfo {
	requires := make([]string, len(recipe.Requires))
	for i, r := range recipe.Requires {
		requires[i] = r.Name + "/" + r.Version
	}
	return PackageInfo{
		Name:        recipe.Name,
		Version:     recipe.Version,
		License:     recipe.License,
		URL:         recipe.URL,
		Description: recipe.Description,
		Compiler:    compiler,
		Options:     set.Values(),
		Requires:    requires,
		CppInfo:     recipe.ConsumerDescriptor(),
	}
}

// WriteDescriptor writes DescriptorFile and the pkg-config file into pkgDir.
func WriteDescriptor(pkgDir string, info PackageInfo) error {
	abs, err := filepath.Abs(pkgDir)
	if err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(abs, DescriptorFile))
	if err != nil {
		return errors.Wrap(err, "write descriptor")
	}
	err = toml.NewEncoder(f).Encode(info)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return errors.Wrap(err, "write descriptor")
	}

	pcDir := filepath.Join(abs, "lib", "pkgconfig")
	if err := os.MkdirAll(pcDir, dirPerm); err != nil {
		return err
	}
	pc := info.CppInfo.PkgConfig(abs)
	if err := os.WriteFile(filepath.Join(pcDir, PkgConfigFile), []byte(pc), filePerm); err != nil {
		return errors.Wrap(err, "write pkg-config file")
	}
	return nil
}

// ReadDescriptor loads DescriptorFile from pkgDir.
func ReadDescriptor(pkgDir string) (*PackageInfo, error) {
	var info PackageInfo
	path := filepath.Join(pkgDir, DescriptorFile)
	if _, err := toml.DecodeFile(path, &info); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.WithHint(errors.Newf("%s: no package descriptor", pkgDir),
				"run 'vclpkg build' first or pass the package directory")
		}
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return &info, nil
}
