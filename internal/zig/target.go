package zig

import "fmt"

var (
	targetArch = map[string]string{
		"amd64":   "x86_64",
		"386":     "x86",
		"arm64":   "aarch64",
		"arm":     "arm",
		"riscv64": "riscv64",
		"loong64": "loongarch64",
		"ppc64le": "powerpc64le",
		"s390x":   "s390x",
	}
	targetOS = map[string]string{
		"linux":   "linux-gnu",
		"darwin":  "macos",
		"windows": "windows-gnu",
		"freebsd": "freebsd",
		"netbsd":  "netbsd",
	}
)

// Triple returns the zig -target value for a GOOS/GOARCH pair.
func Triple(goos, goarch string) string {
	arch, ok := targetArch[goarch]
	if !ok {
		arch = goarch
	}
	os, ok := targetOS[goos]
	if !ok {
		os = goos
	}
	if goos == "linux" && goarch == "arm" {
		os = "linux-gnueabihf"
	}
	return arch + "-" + os
}

// Env returns CC and CXX entries that route the C and C++ compilers of a
// cmake configure through the zig installation in dir.
func Env(dir, triple string) []string {
	bin := Bin(dir)
	return []string{
		fmt.Sprintf("CC=%s cc -target %s", bin, triple),
		fmt.Sprintf("CXX=%s c++ -target %s", bin, triple),
	}
}
