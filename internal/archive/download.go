package archive

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// ReaderFunc wraps a download body, typically to report progress. total is
// -1 when the server does not send a length.
type ReaderFunc func(r io.Reader, total int64) io.Reader

// Download fetches url into a temporary file and extracts it into destDir.
// wrap may be nil.
func Download(ctx context.Context, url, destDir string, wrap ReaderFunc) error {
	tmp, err := os.MkdirTemp("", "vclpkg-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	file := filepath.Join(tmp, "archive"+Detect(url).Ext())
	if err := fetch(ctx, url, file, wrap); err != nil {
		return errors.Wrapf(err, "download %s", url)
	}

	if err := os.MkdirAll(filepath.Dir(destDir), defaultPerm); err != nil {
		return err
	}
	return Extract(file, destDir)
}

func fetch(ctx context.Context, url, file string, wrap ReaderFunc) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Newf("HTTP %d", resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if wrap != nil {
		body = wrap(body, resp.ContentLength)
	}
	return writeFile(file, body, 0o644)
}
