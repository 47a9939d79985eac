package xelatex_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/fwojciec/folio"
	"github.com/fwojciec/folio/xelatex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCompiler writes a script that records each run and, unless fail is
// set, creates a PDF next to the source it was given.
func fakeCompiler(t *testing.T, fail bool) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script compiler")
	}

	script := `#!/bin/sh
echo "run $*"
echo run >> passes
`
	if fail {
		script += "echo '! Undefined control sequence.' >&2\nexit 1\n"
	} else {
		script += "for a; do f=\"$a\"; done\ntouch \"${f%.tex}.pdf\"\n"
	}

	path := filepath.Join(t.TempDir(), "fakelatex")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestTypesetter_Typeset(t *testing.T) {
	t.Parallel()

	t.Run("runs two passes and returns the PDF", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		src := filepath.Join(dir, "output.tex")
		require.NoError(t, os.WriteFile(src, []byte(`\documentclass{article}`), 0o644))
		ts := xelatex.NewTypesetter(xelatex.WithCommand(fakeCompiler(t, false)))

		pdf, err := ts.Typeset(context.Background(), src)

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "output.pdf"), pdf)
		passes, err := os.ReadFile(filepath.Join(dir, "passes"))
		require.NoError(t, err)
		assert.Equal(t, 2, strings.Count(string(passes), "run"))
		log, err := os.ReadFile(filepath.Join(dir, "output.build.log"))
		require.NoError(t, err)
		assert.Contains(t, string(log), "=== pass 2 ===")
		assert.Contains(t, string(log), "-interaction=nonstopmode -halt-on-error output.tex")
	})

	t.Run("honors the pass count", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		src := filepath.Join(dir, "output.tex")
		require.NoError(t, os.WriteFile(src, nil, 0o644))
		ts := xelatex.NewTypesetter(xelatex.WithCommand(fakeCompiler(t, false)), xelatex.WithPasses(1))

		_, err := ts.Typeset(context.Background(), src)

		require.NoError(t, err)
		passes, err := os.ReadFile(filepath.Join(dir, "passes"))
		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(string(passes), "run"))
	})

	t.Run("keeps the log and points at it on failure", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		src := filepath.Join(dir, "output.tex")
		require.NoError(t, os.WriteFile(src, nil, 0o644))
		ts := xelatex.NewTypesetter(xelatex.WithCommand(fakeCompiler(t, true)))

		_, err := ts.Typeset(context.Background(), src)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "pass 1 failed with exit code 1")
		assert.Contains(t, err.Error(), "output.build.log")
		log, err := os.ReadFile(filepath.Join(dir, "output.build.log"))
		require.NoError(t, err)
		assert.Contains(t, string(log), "Undefined control sequence")
	})

	t.Run("reports a missing compiler", func(t *testing.T) {
		t.Parallel()

		ts := xelatex.NewTypesetter(xelatex.WithCommand(filepath.Join(t.TempDir(), "no-such-latex")))

		_, err := ts.Typeset(context.Background(), "output.tex")

		assert.Equal(t, folio.EINVALID, folio.ErrorCode(err))
	})
}
