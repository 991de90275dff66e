package ui

import (
	"io"
	"path/filepath"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Progress manages concurrent download bars.
type Progress struct {
	p *mpb.Progress
}

// NewProgress creates a progress container writing to Output.
func NewProgress() *Progress {
	return &Progress{
		p: mpb.New(
			mpb.WithOutput(Output),
			mpb.WithWidth(40),
			mpb.WithAutoRefresh(),
		),
	}
}

// Proxy returns a reader wrapper that draws a bar for the named download.
// It matches archive.ReaderFunc.
func (p *Progress) Proxy(name string) func(io.Reader, int64) io.Reader {
	return func(r io.Reader, total int64) io.Reader {
		bar := p.addBar(name, total)
		return &barReader{ReadCloser: bar.ProxyReader(r), bar: bar}
	}
}

// Wait blocks until every bar has completed or been aborted.
func (p *Progress) Wait() {
	p.p.Wait()
}

// Finish waits for the bars after a successful run and cancels them after a
// failed one, where a bar may never see EOF.
func (p *Progress) Finish(err error) {
	if err != nil {
		p.p.Shutdown()
		return
	}
	p.p.Wait()
}

func (p *Progress) addBar(name string, total int64) *mpb.Bar {
	displayName := filepath.Base(name)
	if len(displayName) > 40 {
		displayName = displayName[:37] + "..."
	}
	if total < 0 {
		total = 0
	}

	return p.p.New(total,
		mpb.BarStyle().Lbound("[").Filler("=").Tip(">").Padding("-").Rbound("]"),
		mpb.PrependDecorators(
			decor.Name(displayName, decor.WC{W: 40, C: decor.DindentRight}),
		),
		mpb.AppendDecorators(
			decor.CountersKibiByte("% .1f / % .1f"),
			decor.Percentage(decor.WC{W: 5}),
		),
	)
}

// barReader completes its bar at EOF so Wait returns even when the server
// sent no length.
type barReader struct {
	io.ReadCloser
	bar *mpb.Bar
}

func (r *barReader) Read(b []byte) (int, error) {
	n, err := r.ReadCloser.Read(b)
	if err == io.EOF {
		r.bar.SetTotal(-1, true)
	} else if err != nil {
		r.bar.Abort(false)
	}
	return n, err
}
