package cli

import (
	"bytes"
	"io"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/qntx/vclpkg/internal/recipe"
	"github.com/qntx/vclpkg/internal/ui"
)

func TestRootCmd(t *testing.T) {
	t.Run("use", func(t *testing.T) {
		if rootCmd.Use != "vclpkg" {
			t.Errorf("Use = %q, want 'vclpkg'", rootCmd.Use)
		}
	})

	for _, name := range []string{"build", "options", "info", "patch", "pkg", "zig"} {
		t.Run("has "+name+" command", func(t *testing.T) {
			found := false
			for _, cmd := range rootCmd.Commands() {
				if cmd.Name() == name {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("missing '%s' subcommand", name)
			}
		})
	}

	t.Run("persistent flags", func(t *testing.T) {
		for _, name := range []string{"verbose", "log-json"} {
			if rootCmd.PersistentFlags().Lookup(name) == nil {
				t.Errorf("missing persistent flag: %s", name)
			}
		}
	})
}

func TestBrandColors(t *testing.T) {
	if brandPrimary == "" {
		t.Error("brandPrimary not defined")
	}
	if brandMuted == "" {
		t.Error("brandMuted not defined")
	}
}

func TestReport(t *testing.T) {
	err := errors.WithDetail(
		errors.WithHint(errors.Mark(errors.New("cmake configure"), recipe.ErrConfigureFailed), "check the cmake output"),
		"CMake Error at CMakeLists.txt:3")

	tests := []struct {
		name       string
		verbose    bool
		wantDetail bool
	}{
		{"quiet shows captured output", false, true},
		{"verbose already streamed it", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := captureOutput(t)
			old := verbose
			defer func() { verbose = old }()
			verbose = tt.verbose

			report(err)

			got := out.String()
			if !bytes.Contains(out.Bytes(), []byte("cmake configure")) {
				t.Errorf("report() missing message:\n%s", got)
			}
			if !bytes.Contains(out.Bytes(), []byte("hint: check the cmake output")) {
				t.Errorf("report() missing hint:\n%s", got)
			}
			if has := bytes.Contains(out.Bytes(), []byte("CMakeLists.txt:3")); has != tt.wantDetail {
				t.Errorf("detail shown = %v, want %v:\n%s", has, tt.wantDetail, got)
			}
		})
	}
}

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := ui.Output
	ui.Output = &buf
	t.Cleanup(func() { ui.Output = prev })
	return &buf
}

func discardOutput(t *testing.T) {
	t.Helper()
	prev := ui.Output
	ui.Output = io.Discard
	t.Cleanup(func() { ui.Output = prev })
}
