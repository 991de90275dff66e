package zig

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"

	"github.com/cockroachdb/errors"
)

var indexURL = "https://ziglang.org/download/index.json"

// Build is a downloadable Zig archive for one host.
type Build struct {
	Tarball string `json:"tarball"`
	Shasum  string `json:"shasum"`
	Size    string `json:"size"`
}

// index maps a version to its raw release object. A release mixes metadata
// strings with per-host build objects, so entries are decoded on lookup.
type index map[string]map[string]json.RawMessage

// lookup returns the build of version for host.
func (idx index) lookup(version, host string) (Build, error) {
	rel, ok := idx[version]
	if !ok {
		return Build{}, errors.WithHint(
			errors.Newf("zig version %q not found", version),
			"run 'vclpkg zig list' to see installed versions, or use \"master\"")
	}

	var b Build
	if raw, ok := rel[host]; ok {
		if err := json.Unmarshal(raw, &b); err != nil {
			return Build{}, errors.Wrapf(err, "zig %s %s", version, host)
		}
	}
	if b.Tarball == "" {
		return Build{}, errors.Newf("no zig %s build for %s", version, host)
	}
	return b, nil
}

// resolvedVersion returns the concrete version string recorded for a
// release, e.g. the dev build behind "master".
func (idx index) resolvedVersion(version string) string {
	var v string
	if raw, ok := idx[version]["version"]; ok && json.Unmarshal(raw, &v) == nil && v != "" {
		return v
	}
	return version
}

func fetchIndex(ctx context.Context, url string) (index, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("HTTP %d", resp.StatusCode)
	}

	var idx index
	if err := json.NewDecoder(resp.Body).Decode(&idx); err != nil {
		return nil, errors.Wrap(err, "decode")
	}
	return idx, nil
}

// hostKey is the index key for the running platform, e.g. x86_64-linux.
func hostKey() string {
	arch := map[string]string{"amd64": "x86_64", "386": "x86", "arm64": "aarch64", "arm": "armv7a"}[runtime.GOARCH]
	if arch == "" {
		arch = runtime.GOARCH
	}
	goos := runtime.GOOS
	if goos == "darwin" {
		goos = "macos"
	}
	return arch + "-" + goos
}
