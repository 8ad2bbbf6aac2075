package upscaler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/backmassage/upscayv/internal/config"
)

// Transform is the opaque per-image upscale. Implementations must be safe for
// concurrent use; the worker pool calls Upscale from multiple goroutines.
type Transform interface {
	// Upscale reads inputPath, applies the transform, and returns the encoded
	// output image bytes. The context bounds the attempt; cancellation is
	// advisory for work already handed to the subprocess.
	Upscale(ctx context.Context, inputPath string) ([]byte, error)
}

// TransformFunc adapts a plain function to the Transform interface.
type TransformFunc func(ctx context.Context, inputPath string) ([]byte, error)

// Upscale calls f.
func (f TransformFunc) Upscale(ctx context.Context, inputPath string) ([]byte, error) {
	return f(ctx, inputPath)
}

// Binary runs upscayl-bin as one subprocess per attempt. The subprocess
// writes into a private staging directory; the bytes are read back and the
// staging file removed, so a crashing attempt never leaves partial output at
// the destination.
type Binary struct {
	opts    Options
	staging string
	timeout time.Duration
}

// NewBinary resolves the binary, model directory, and model from cfg and
// creates the staging directory. Call Close when the run is finished.
func NewBinary(cfg *config.Config) (*Binary, error) {
	bin, err := FindBinary(cfg.BinaryPath)
	if err != nil {
		return nil, err
	}
	modelDir, err := FindModelDir(bin, cfg.ModelDir)
	if err != nil {
		return nil, err
	}
	available, err := ListModels(modelDir)
	if err != nil {
		return nil, err
	}
	model, err := PickModel(available, cfg.Model)
	if err != nil {
		return nil, err
	}

	staging, err := os.MkdirTemp("", "upscayv-*")
	if err != nil {
		return nil, err
	}

	return &Binary{
		opts: Options{
			Binary:   bin,
			ModelDir: modelDir,
			Model:    model,
			Scale:    cfg.Scale,
			Format:   string(cfg.Format),
		},
		staging: staging,
		timeout: cfg.TaskTimeout,
	}, nil
}

// Opts returns the resolved invocation parameters, for startup logging.
func (b *Binary) Opts() Options { return b.opts }

// Close removes the staging directory.
func (b *Binary) Close() error {
	return os.RemoveAll(b.staging)
}

// Upscale runs one subprocess for inputPath and returns the upscaled bytes.
// Failures are returned as *Error with stderr captured for classification.
func (b *Binary) Upscale(ctx context.Context, inputPath string) ([]byte, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	outPath := filepath.Join(b.staging, uuid.NewString()+"."+b.opts.Format)
	defer os.Remove(outPath)

	args := b.opts.Args(inputPath, outPath)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	var stderrBuf bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	if err != nil {
		e := &Error{Stderr: tail(stderrBuf.String()), Err: err}
		if ctx.Err() == context.DeadlineExceeded {
			e.TimedOut = true
			e.Err = ctx.Err()
			return nil, e
		}
		var exitErr *exec.ExitError
		// ExitCode -1 means the process was terminated by a signal.
		if errors.As(err, &exitErr) && exitErr.ExitCode() == -1 {
			e.Crashed = true
		}
		return nil, e
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, &Error{
			Stderr: tail(stderrBuf.String()),
			Err:    fmt.Errorf("no output produced for %s", filepath.Base(inputPath)),
		}
	}
	return data, nil
}

// tail keeps the last 4 KiB of stderr; enough for classification without
// carrying megabytes of progress output through the result queue.
func tail(s string) string {
	const limit = 4096
	if len(s) <= limit {
		return s
	}
	return s[len(s)-limit:]
}
