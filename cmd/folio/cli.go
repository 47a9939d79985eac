package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/folio"
	"github.com/fwojciec/folio/crawl"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx        context.Context
	Stdout     io.Writer
	Stderr     io.Writer
	Logger     *slog.Logger
	Converter  *crawl.Converter
	Renderer   folio.Renderer
	Typesetter folio.Typesetter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Convert  ConvertCmd  `cmd:"" help:"Convert an article or book into a LaTeX document and PDF"`
	Classify ClassifyCmd `cmd:"" help:"Show whether a page is an article or a book and list its chapters"`

	Delay       time.Duration `default:"350ms" env:"FOLIO_DELAY" help:"Minimum spacing between requests to a site"`
	Guess       bool          `help:"Probe for chapters when a book index looks incomplete"`
	GuessLimit  int           `default:"40" help:"Highest chapter number to probe"`
	GuessMisses int           `default:"10" help:"Stop probing after this many consecutive misses"`
	Cache       string        `env:"FOLIO_CACHE" type:"path" help:"SQLite page cache (disabled when empty)"`
	Timeout     time.Duration `default:"20s" help:"Timeout for each HTTP request"`
	UserAgent   string        `help:"User-Agent header sent with every request"`
	Verbose     bool          `short:"v" help:"Log requests and extraction to stderr"`
	JSON        bool          `name:"json" help:"Log as JSON (implies --verbose)"`
}

// ConvertCmd is the "convert" subcommand.
type ConvertCmd struct {
	URL       string `arg:"" help:"Article or book index URL"`
	OutputDir string `short:"o" name:"output-dir" type:"path" help:"Output directory (default: derived from the URL)"`
	Style     string `type:"path" help:"TOML style file"`
	NoPDF     bool   `name:"no-pdf" help:"Write LaTeX only; do not run XeLaTeX"`
}

// ClassifyCmd is the "classify" subcommand.
type ClassifyCmd struct {
	URL string `arg:"" help:"Article or book index URL"`
}
