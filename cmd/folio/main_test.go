package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/folio"
	main "github.com/fwojciec/folio/cmd/folio"
	"github.com/fwojciec/folio/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLI_HelpShowsAllCommands(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	stdout := &bytes.Buffer{}

	parser, err := kong.New(cli,
		kong.Writers(stdout, &bytes.Buffer{}),
		kong.Exit(func(int) {}),
	)
	require.NoError(t, err)

	_, _ = parser.Parse([]string{"--help"})

	for _, cmd := range []string{"convert", "classify", "--delay", "--guess", "--cache"} {
		assert.Contains(t, stdout.String(), cmd)
	}
}

func TestCLI_Defaults(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	parser, err := kong.New(cli, kong.Exit(func(int) {}))
	require.NoError(t, err)

	_, err = parser.Parse([]string{"convert", "https://example.org/a.htm", "-o", "out", "--no-pdf"})

	require.NoError(t, err)
	assert.Equal(t, "https://example.org/a.htm", cli.Convert.URL)
	assert.True(t, cli.Convert.NoPDF)
	assert.True(t, strings.HasSuffix(cli.Convert.OutputDir, "out"))
	assert.Equal(t, 40, cli.GuessLimit)
	assert.Equal(t, 10, cli.GuessMisses)
	assert.Equal(t, "350ms", cli.Delay.String())
	assert.Equal(t, "20s", cli.Timeout.String())
}

func TestMain_Run(t *testing.T) {
	t.Parallel()

	t.Run("help shows kong output", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}

		err := main.NewMain().Run(context.Background(), []string{"--help"}, stdout, &bytes.Buffer{})

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Usage:")
		assert.Contains(t, stdout.String(), "convert")
	})

	t.Run("fails without a command", func(t *testing.T) {
		t.Parallel()

		err := main.NewMain().Run(context.Background(), nil, &bytes.Buffer{}, &bytes.Buffer{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no command specified")
	})

	t.Run("converts an article end to end", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		body := strings.Repeat("Education is the kindling of a flame, not the filling of a vessel. ", 40)
		var closed bool
		m := main.NewMain()
		m.Fetcher = &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*folio.Page, error) {
				return &folio.Page{
					URL:  url,
					HTML: "<html><head><title>On Education</title></head><body><h1>On Education</h1><p>" + body + "</p></body></html>",
				}, nil
			},
			CloseFn: func() error {
				closed = true
				return nil
			},
		}
		var typeset string
		m.Typesetter = &mock.Typesetter{
			TypesetFn: func(_ context.Context, path string) (string, error) {
				typeset = path
				return strings.TrimSuffix(path, ".tex") + ".pdf", nil
			},
		}
		stdout := &bytes.Buffer{}
		cache := filepath.Join(t.TempDir(), "cache.db")

		err := m.Run(context.Background(), []string{
			"convert", "https://example.org/essays/education.htm",
			"-o", dir, "--delay=0s", "--cache", cache,
		}, stdout, &bytes.Buffer{})

		require.NoError(t, err)
		src, err := os.ReadFile(filepath.Join(dir, "output.tex"))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(src), "% fingerprint: "))
		assert.Contains(t, string(src), "On Education")
		assert.Contains(t, string(src), "kindling of a flame")
		assert.Equal(t, filepath.Join(dir, "output.tex"), typeset)
		assert.Contains(t, stdout.String(), "article: 1 of 1 chapters")
		assert.True(t, closed)
		_, err = os.Stat(cache)
		assert.NoError(t, err)
	})

	t.Run("rejects an invalid style file", func(t *testing.T) {
		t.Parallel()

		style := filepath.Join(t.TempDir(), "style.toml")
		require.NoError(t, os.WriteFile(style, []byte(`paper = "napkin"`), 0o644))
		m := main.NewMain()
		m.Fetcher = &mock.Fetcher{CloseFn: func() error { return nil }}

		err := m.Run(context.Background(), []string{
			"convert", "https://example.org/a.htm", "--style", style,
		}, &bytes.Buffer{}, &bytes.Buffer{})

		assert.Equal(t, folio.EINVALID, folio.ErrorCode(err))
	})
}
