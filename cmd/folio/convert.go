package main

import (
	"bytes"
	"fmt"

	"github.com/fwojciec/folio"
	"github.com/fwojciec/folio/crawl"
	"github.com/fwojciec/folio/fs"
)

// Output file names inside the output directory.
const (
	SourceFile   = "output.tex"
	WarningsFile = "warnings.txt"
)

// statusWidth is how much of a URL progress lines show.
const statusWidth = 60

// Run executes the convert command. A canceled job still writes the
// chapters completed so far, but no PDF.
func (c *ConvertCmd) Run(deps *Dependencies) error {
	res, err := deps.Converter.Convert(deps.Ctx, c.URL, func(e crawl.ProgressEvent) {
		fmt.Fprintln(deps.Stderr, crawl.FormatEvent(e, statusWidth))
	})
	if res == nil || res.Document == nil {
		if err == nil {
			err = folio.Errorf(folio.EINTERNAL, "conversion produced no document")
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", folio.ErrorMessage(err))
		return err
	}
	jobErr := err

	var src bytes.Buffer
	if err := deps.Renderer.Render(&src, res.Document); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", folio.ErrorMessage(err))
		return err
	}

	dir := c.OutputDir
	if dir == "" {
		dir = fs.DirName(c.URL)
	}
	out := fs.NewOutputDir(dir)
	if err := writeOutput(out, src.Bytes(), res.Warnings); err != nil {
		_ = out.Abort()
		fmt.Fprintf(deps.Stderr, "error: writing output: %v\n", err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "%s: %d of %d chapters, %d warnings\n",
		res.Kind, len(res.Document.Chapters), res.Requested, len(res.Warnings))
	fmt.Fprintf(deps.Stdout, "  Wrote %s (%s)\n", out.Path(SourceFile), crawl.FormatBytes(src.Len()))
	if len(res.Warnings) > 0 {
		fmt.Fprintf(deps.Stdout, "  Warnings in %s\n", out.Path(WarningsFile))
	}

	if jobErr != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", folio.ErrorMessage(jobErr))
		return jobErr
	}

	if c.NoPDF || deps.Typesetter == nil {
		return nil
	}

	pdf, err := deps.Typesetter.Typeset(deps.Ctx, out.Path(SourceFile))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", folio.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "  Wrote %s\n", pdf)
	return nil
}

func writeOutput(out *fs.OutputDir, src []byte, warnings []folio.Warning) error {
	if err := out.WriteFile(SourceFile, src); err != nil {
		return err
	}
	if err := out.WriteFile(WarningsFile, []byte(folio.FormatWarnings(warnings))); err != nil {
		return err
	}
	return out.Commit()
}
