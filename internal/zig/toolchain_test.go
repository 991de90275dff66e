package zig

import (
	"archive/tar"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/ulikunitz/xz"
)

func TestHostKey(t *testing.T) {
	arch, goos, ok := strings.Cut(hostKey(), "-")
	if !ok {
		t.Fatalf("hostKey() = %q, want arch-os", hostKey())
	}
	if runtime.GOARCH == "amd64" && arch != "x86_64" {
		t.Errorf("arch = %q, want x86_64", arch)
	}
	if runtime.GOOS == "darwin" && goos != "macos" {
		t.Errorf("os = %q, want macos", goos)
	}
	if runtime.GOOS == "linux" && goos != "linux" {
		t.Errorf("os = %q, want linux", goos)
	}
}

func TestPath(t *testing.T) {
	path := Path("0.15.0")

	if filepath.Base(path) != "0.15.0" {
		t.Errorf("Path() = %q, should end in version", path)
	}
	if !strings.Contains(path, "vclpkg") {
		t.Errorf("Path() = %q, should contain 'vclpkg'", path)
	}
}

func TestIsInstalled(t *testing.T) {
	if isInstalled("/nonexistent/path") {
		t.Error("isInstalled() = true for nonexistent path")
	}

	dir := t.TempDir()
	if err := os.WriteFile(Bin(dir), []byte("fake"), 0o755); err != nil {
		t.Fatal(err)
	}
	if !isInstalled(dir) {
		t.Error("isInstalled() = false for valid installation")
	}
}

const testIndex = `{
	"master": {
		"version": "0.16.0-dev.1+abc",
		"date": "2025-01-01",
		"docs": "https://ziglang.org/documentation/master/",
		"x86_64-linux": {"tarball": "https://example.com/zig-linux.tar.xz", "shasum": "abc123", "size": "12345678"},
		"src": {"tarball": "https://example.com/zig-src.tar.xz"}
	},
	"0.15.1": {
		"date": "2025-08-19",
		"aarch64-macos": {"tarball": "https://example.com/zig-macos.tar.xz", "shasum": "def456", "size": "1"}
	}
}`

func TestIndex_Lookup(t *testing.T) {
	var idx index
	if err := json.Unmarshal([]byte(testIndex), &idx); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		version, host string
		want          string
		wantErr       string
	}{
		{"master", "x86_64-linux", "https://example.com/zig-linux.tar.xz", ""},
		{"0.15.1", "aarch64-macos", "https://example.com/zig-macos.tar.xz", ""},
		{"0.15.1", "x86_64-linux", "", "no zig 0.15.1 build"},
		{"master", "version", "", "master"},
		{"0.1.0", "x86_64-linux", "", "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.version+"/"+tt.host, func(t *testing.T) {
			b, err := idx.lookup(tt.version, tt.host)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("lookup() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("lookup() error = %v", err)
			}
			if b.Tarball != tt.want {
				t.Errorf("Tarball = %q, want %q", b.Tarball, tt.want)
			}
		})
	}
}

func TestIndex_ResolvedVersion(t *testing.T) {
	var idx index
	if err := json.Unmarshal([]byte(testIndex), &idx); err != nil {
		t.Fatal(err)
	}
	if got := idx.resolvedVersion("master"); got != "0.16.0-dev.1+abc" {
		t.Errorf("resolvedVersion(master) = %q", got)
	}
	if got := idx.resolvedVersion("0.15.1"); got != "0.15.1" {
		t.Errorf("resolvedVersion(0.15.1) = %q", got)
	}
}

func TestFetchIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/index.json" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, testIndex)
	}))
	defer srv.Close()

	idx, err := fetchIndex(t.Context(), srv.URL+"/index.json")
	if err != nil {
		t.Fatalf("fetchIndex() error = %v", err)
	}
	if len(idx) != 2 {
		t.Errorf("len(index) = %d, want 2", len(idx))
	}
	if _, err := fetchIndex(t.Context(), srv.URL+"/missing"); err == nil {
		t.Error("fetchIndex() error = nil for HTTP 404")
	}
}

func TestEnsure(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("cache location is redirected through XDG_CACHE_HOME")
	}
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	tarball := zigTarball(t)
	digest := sha256.Sum256(tarball)
	shasum := hex.EncodeToString(digest[:])

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/index.json":
			fmt.Fprintf(w, `{"0.15.1": {"%s": {"tarball": "http://%s/zig.tar.xz", "shasum": "%s"}},
				"0.0.1": {"%s": {"tarball": "http://%s/zig.tar.xz", "shasum": "00"}}}`,
				hostKey(), r.Host, shasum, hostKey(), r.Host)
		case "/zig.tar.xz":
			w.Write(tarball)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	old := indexURL
	indexURL = srv.URL + "/index.json"
	t.Cleanup(func() { indexURL = old })

	dir, err := Ensure(t.Context(), "0.15.1", nil)
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if dir != Path("0.15.1") || !isInstalled(dir) {
		t.Errorf("Ensure() = %q, installed = %v", dir, isInstalled(dir))
	}

	versions, err := Installed()
	if err != nil || len(versions) != 1 || versions[0] != "0.15.1" {
		t.Errorf("Installed() = %v, %v", versions, err)
	}

	if _, err := Ensure(t.Context(), "0.0.1", nil); err == nil || !strings.Contains(err.Error(), "checksum mismatch") {
		t.Errorf("Ensure() with bad digest error = %v", err)
	}
	if _, err := os.Stat(Path("0.0.1")); !os.IsNotExist(err) {
		t.Errorf("failed install left %s behind", Path("0.0.1"))
	}

	if err := RemoveAll(); err != nil {
		t.Fatal(err)
	}
	if versions, _ := Installed(); len(versions) != 0 {
		t.Errorf("Installed() after RemoveAll = %v", versions)
	}
}

// zigTarball returns a tar.xz holding a single zig executable below a
// versioned root directory.
func zigTarball(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	xw, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	tw := tar.NewWriter(xw)
	body := "#!/bin/sh\n"
	for _, h := range []*tar.Header{
		{Name: "zig-linux-0.15.1/", Mode: 0o755, Typeflag: tar.TypeDir},
		{Name: "zig-linux-0.15.1/zig", Mode: 0o755, Typeflag: tar.TypeReg, Size: int64(len(body))},
	} {
		if err := tw.WriteHeader(h); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := io.WriteString(tw, body); err != nil {
		t.Fatal(err)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := xw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestTriple(t *testing.T) {
	tests := []struct {
		goos, goarch string
		want         string
	}{
		{"linux", "amd64", "x86_64-linux-gnu"},
		{"linux", "arm64", "aarch64-linux-gnu"},
		{"linux", "arm", "arm-linux-gnueabihf"},
		{"darwin", "arm64", "aarch64-macos"},
		{"windows", "amd64", "x86_64-windows-gnu"},
		{"plan9", "mips", "mips-plan9"},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			if got := Triple(tt.goos, tt.goarch); got != tt.want {
				t.Errorf("Triple(%q, %q) = %q, want %q", tt.goos, tt.goarch, got, tt.want)
			}
		})
	}
}

func TestEnv(t *testing.T) {
	env := Env("/opt/zig", "x86_64-linux-gnu")
	if len(env) != 2 {
		t.Fatalf("len(Env()) = %d, want 2", len(env))
	}

	bin := Bin("/opt/zig")
	if want := "CC=" + bin + " cc -target x86_64-linux-gnu"; env[0] != want {
		t.Errorf("CC = %q, want %q", env[0], want)
	}
	if want := "CXX=" + bin + " c++ -target x86_64-linux-gnu"; env[1] != want {
		t.Errorf("CXX = %q, want %q", env[1], want)
	}
}
