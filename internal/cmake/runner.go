package cmake

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/qntx/vclpkg/internal/logger"
)

// Runner executes an external program and returns its combined output.
// The call blocks until the process exits or ctx is done.
type Runner interface {
	Run(ctx context.Context, name string, args, env []string) ([]byte, error)
}

// ExecRunner runs programs with os/exec. Output is always captured; when
// Stream is set it is also copied there as it arrives.
type ExecRunner struct {
	Stream io.Writer
	Dir    string
}

// Run implements Runner. env entries are appended to the current environment.
func (r *ExecRunner) Run(ctx context.Context, name string, args, env []string) ([]byte, error) {
	logger.Logger.Debugw("exec", "cmd", name, "args", args, "env", env)

	var buf bytes.Buffer
	out := io.Writer(&buf)
	if r.Stream != nil {
		out = io.MultiWriter(&buf, r.Stream)
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	cmd.Stdout = out
	cmd.Stderr = out
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}

	err := cmd.Run()
	return buf.Bytes(), err
}
