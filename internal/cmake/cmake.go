// Package cmake drives the cmake configure and build phases through a Runner.
package cmake

import (
	"context"
	"strconv"
)

const bin = "cmake"

// CMake holds the directories and settings shared by both phases.
type CMake struct {
	runner    Runner
	sourceDir string
	buildDir  string
	generator string
	buildType string
	jobs      int
	env       []string
}

// New returns a CMake for sourceDir, building into buildDir.
func New(runner Runner, sourceDir, buildDir string) *CMake {
	return &CMake{runner: runner, sourceDir: sourceDir, buildDir: buildDir}
}

// Generator sets the cmake generator (e.g. "Ninja", "Unix Makefiles").
func (c *CMake) Generator(name string) *CMake {
	c.generator = name
	return c
}

// BuildType sets CMAKE_BUILD_TYPE and the --config of multi-config generators.
func (c *CMake) BuildType(name string) *CMake {
	c.buildType = name
	return c
}

// Jobs sets --parallel for the build phase; zero leaves it to cmake.
func (c *CMake) Jobs(n int) *CMake {
	c.jobs = n
	return c
}

// Env adds KEY=VALUE entries to the configure environment (CC, CXX).
func (c *CMake) Env(kv ...string) *CMake {
	c.env = append(c.env, kv...)
	return c
}

// Configure runs the configure phase with the given -D arguments.
func (c *CMake) Configure(ctx context.Context, defines []string) ([]byte, error) {
	return c.runner.Run(ctx, bin, c.ConfigureArgs(defines), c.env)
}

// Build compiles a single named target.
func (c *CMake) Build(ctx context.Context, target string) ([]byte, error) {
	return c.runner.Run(ctx, bin, c.BuildArgs(target), c.env)
}

// ConfigureArgs returns the configure command line after "cmake".
func (c *CMake) ConfigureArgs(defines []string) []string {
	args := []string{"-S", c.sourceDir, "-B", c.buildDir}
	if c.generator != "" {
		args = append(args, "-G", c.generator)
	}
	if c.buildType != "" {
		args = append(args, "-DCMAKE_BUILD_TYPE:STRING="+c.buildType)
	}
	return append(args, defines...)
}

// BuildArgs returns the build command line after "cmake".
func (c *CMake) BuildArgs(target string) []string {
	args := []string{"--build", c.buildDir, "--target", target}
	if c.buildType != "" {
		args = append(args, "--config", c.buildType)
	}
	if c.jobs > 0 {
		args = append(args, "--parallel", strconv.Itoa(c.jobs))
	}
	return args
}
