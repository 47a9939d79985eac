// Package xelatex compiles LaTeX sources to PDF with an external XeLaTeX.
package xelatex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fwojciec/folio"
)

// DefaultPasses is enough for the table of contents and hyperlinks to
// resolve.
const DefaultPasses = 2

// Ensure Typesetter implements folio.Typesetter.
var _ folio.Typesetter = (*Typesetter)(nil)

// Typesetter runs the compiler in the source's directory. Compiler output
// of every pass is appended to <name>.build.log next to the source.
type Typesetter struct {
	command string
	passes  int
}

// Option configures a Typesetter.
type Option func(*Typesetter)

// WithCommand sets the compiler executable. Defaults to "xelatex".
func WithCommand(command string) Option {
	return func(t *Typesetter) {
		t.command = command
	}
}

// WithPasses sets how many times the compiler runs.
func WithPasses(n int) Option {
	return func(t *Typesetter) {
		if n > 0 {
			t.passes = n
		}
	}
}

// NewTypesetter creates a Typesetter.
func NewTypesetter(opts ...Option) *Typesetter {
	t := &Typesetter{command: "xelatex", passes: DefaultPasses}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Typeset compiles sourcePath and returns the path of the PDF.
func (t *Typesetter) Typeset(ctx context.Context, sourcePath string) (string, error) {
	bin, err := exec.LookPath(t.command)
	if err != nil {
		return "", folio.Errorf(folio.EINVALID, "%s not found; install TeX Live or pass --no-pdf", t.command)
	}

	dir, name := filepath.Split(sourcePath)
	if dir == "" {
		dir = "."
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	logPath := filepath.Join(dir, stem+".build.log")

	log, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("create build log: %w", err)
	}
	defer log.Close()

	for pass := 1; pass <= t.passes; pass++ {
		fmt.Fprintf(log, "=== pass %d ===\n", pass)

		cmd := exec.CommandContext(ctx, bin, "-interaction=nonstopmode", "-halt-on-error", name)
		cmd.Dir = dir
		cmd.Stdout = log
		cmd.Stderr = log

		if err := cmd.Run(); err != nil {
			if ctx.Err() != nil {
				return "", folio.Errorf(folio.ECANCELED, "typesetting canceled")
			}
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				return "", fmt.Errorf("%s pass %d failed with exit code %d; see %s", t.command, pass, exitErr.ExitCode(), logPath)
			}
			return "", fmt.Errorf("run %s: %w", t.command, err)
		}
	}

	pdf := filepath.Join(dir, stem+".pdf")
	if _, err := os.Stat(pdf); err != nil {
		return "", fmt.Errorf("%s produced no PDF; see %s", t.command, logPath)
	}
	return pdf, nil
}
