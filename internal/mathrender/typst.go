package mathrender

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Compiler turns a complete Typst document into a PNG of its first page.
type Compiler interface {
	Compile(ctx context.Context, document string, ppi float64) ([]byte, error)
}

// SourceError carries the compiler's diagnostics for a document that does
// not compile. Its text is safe to show to the author.
type SourceError struct {
	Diagnostics []string
}

func (e *SourceError) Error() string {
	var b strings.Builder
	b.WriteString("Syntax error(s):\n")
	for _, d := range e.Diagnostics {
		b.WriteString(d)
		b.WriteString("\n")
	}
	return b.String()
}

var ErrTimeout = errors.New("Rendering took too long...")

// TypstCLI runs the typst binary with the document on stdin and the PNG on stdout.
type TypstCLI struct {
	Bin      string
	FontPath string
	Timeout  time.Duration
}

func (c *TypstCLI) Compile(ctx context.Context, document string, ppi float64) ([]byte, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	args := []string{
		"compile",
		"--format", "png",
		"--ppi", strconv.FormatFloat(ppi, 'f', 2, 64),
		"--pages", "1",
	}
	if c.FontPath != "" {
		args = append(args, "--font-path", c.FontPath)
	}
	args = append(args, "-", "-")

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Bin, args...)
	cmd.Stdin = strings.NewReader(document)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, ParseDiagnostics(stderr.String())
		}
		return nil, fmt.Errorf("failed to run typst: %w", err)
	}
	return stdout.Bytes(), nil
}

// ParseDiagnostics keeps the "error:" lines of typst's output and drops
// warnings, source excerpts and hints.
func ParseDiagnostics(stderr string) *SourceError {
	var diags []string
	for _, line := range strings.Split(stderr, "\n") {
		if msg, ok := strings.CutPrefix(strings.TrimSpace(line), "error:"); ok {
			diags = append(diags, strings.TrimSpace(msg))
		}
	}
	if len(diags) == 0 {
		if s := strings.TrimSpace(stderr); s != "" {
			diags = append(diags, s)
		} else {
			diags = append(diags, "typst exited without output")
		}
	}
	return &SourceError{Diagnostics: diags}
}
