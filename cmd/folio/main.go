package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/folio"
	"github.com/fwojciec/folio/crawl"
	"github.com/fwojciec/folio/goquery"
	foliohttp "github.com/fwojciec/folio/http"
	"github.com/fwojciec/folio/latex"
	folioslog "github.com/fwojciec/folio/slog"
	"github.com/fwojciec/folio/sqlite"
	"github.com/fwojciec/folio/trafilatura"
	"github.com/fwojciec/folio/xelatex"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		var reported reportedError
		switch {
		case errors.As(err, &reported):
		case folio.ErrorCode(err) == folio.EINTERNAL:
			fmt.Fprintln(os.Stderr, err)
		default:
			fmt.Fprintf(os.Stderr, "error: %s\n", folio.ErrorMessage(err))
		}
		os.Exit(1)
	}
}

// reportedError marks an error a command has already shown to the user.
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error {
	return e.error
}

// Main represents the program.
type Main struct {
	// Fetcher and Typesetter replace the network fetcher and the XeLaTeX
	// runner when set. Used by end-to-end tests.
	Fetcher    folio.Fetcher
	Typesetter folio.Typesetter

	// DB is the page cache database, opened when --cache is set.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("folio"),
		kong.Description("Typeset web-published articles and books with XeLaTeX."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'folio --help' to see available commands")
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	deps.Logger = newLogger(cli, stderr)

	fetcher := m.Fetcher
	if fetcher == nil {
		fetcher = foliohttp.NewFetcher(
			foliohttp.WithTimeout(cli.Timeout),
			foliohttp.WithUserAgent(cli.UserAgent),
		)
	}
	defer fetcher.Close()

	conv := crawl.NewConverter(
		folioslog.NewLoggingFetcher(fetcher, deps.Logger),
		folioslog.NewLoggingClassifier(goquery.NewClassifier(), deps.Logger),
		folioslog.NewLoggingExtractor(goquery.NewExtractor(trafilatura.NewMetadataExtractor()), deps.Logger),
	)
	conv.Delay = cli.Delay
	conv.Guess = cli.Guess
	conv.Guesser = crawl.Guesser{Limit: cli.GuessLimit, MaxMisses: cli.GuessMisses}

	if cli.Cache != "" {
		m.DB = sqlite.NewDB(cli.Cache)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set FOLIO_CACHE or --cache to another path, or leave it empty to disable caching\n")
			return fmt.Errorf("failed to open cache at %q: %w", cli.Cache, err)
		}
		defer m.Close()
		conv.Cache = sqlite.NewPageCache(m.DB)
	}
	deps.Converter = conv

	if strings.HasPrefix(kongCtx.Command(), "convert") {
		style := latex.DefaultStyle()
		if cli.Convert.Style != "" {
			if style, err = latex.LoadStyle(cli.Convert.Style); err != nil {
				return err
			}
		}
		if deps.Renderer, err = latex.NewRenderer(style); err != nil {
			return err
		}

		deps.Typesetter = m.Typesetter
		if deps.Typesetter == nil {
			deps.Typesetter = xelatex.NewTypesetter()
		}
	}

	if err := kongCtx.Run(deps); err != nil {
		return reportedError{err}
	}
	return nil
}

// newLogger returns a discard logger unless verbose output was asked for.
func newLogger(cli *CLI, stderr io.Writer) *slog.Logger {
	switch {
	case cli.JSON:
		return slog.New(slog.NewJSONHandler(stderr, nil))
	case cli.Verbose:
		return slog.New(slog.NewTextHandler(stderr, nil))
	default:
		return slog.New(slog.DiscardHandler)
	}
}
