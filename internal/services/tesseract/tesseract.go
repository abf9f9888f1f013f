package tesseract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultLanguage is the traineddata code used when none is configured.
const DefaultLanguage = "eng"

// ErrTimeout is returned when a recognition call exceeds its deadline.
var ErrTimeout = errors.New("tesseract: recognition timed out")

// OutputRunner executes a command and returns its stdout.
type OutputRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Engine runs tesseract against single images.
type Engine struct {
	binary   string
	language string
	timeout  time.Duration
	run      OutputRunner
}

// New constructs an Engine. A zero timeout disables the per-call deadline.
func New(binary, language string, timeout time.Duration) *Engine {
	if strings.TrimSpace(binary) == "" {
		binary = "tesseract"
	}
	if strings.TrimSpace(language) == "" {
		language = DefaultLanguage
	}
	return &Engine{binary: binary, language: language, timeout: timeout, run: defaultRunner}
}

// WithOutputRunner overrides process execution (for testing).
func (e *Engine) WithOutputRunner(runner OutputRunner) *Engine {
	if runner != nil {
		e.run = runner
	}
	return e
}

// Language returns the traineddata code passed with -l.
func (e *Engine) Language() string {
	return e.language
}

// Available reports whether the tesseract binary resolves on PATH.
func (e *Engine) Available() bool {
	_, err := exec.LookPath(e.binary)
	return err == nil
}

// Args returns the recognition argument vector for imagePath.
func (e *Engine) Args(imagePath string) []string {
	return []string{imagePath, "stdout", "-l", e.language}
}

// Recognize returns the trimmed text tesseract reads from imagePath.
func (e *Engine) Recognize(ctx context.Context, imagePath string) (string, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	out, err := e.run(ctx, e.binary, e.Args(imagePath)...)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s: %s", ErrTimeout, e.timeout, imagePath)
		}
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func defaultRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if detail := strings.TrimSpace(stderr.String()); detail != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, detail)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}
