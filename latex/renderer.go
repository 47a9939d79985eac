// Package latex serializes assembled documents to LaTeX for XeLaTeX.
package latex

import (
	_ "embed"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aymerick/raymond"
	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/folio"
)

// MaxLineLength is the longest source line emitted. Longer lines are
// broken at spaces.
const MaxLineLength = 10000

//go:embed preamble.tex.hbs
var preambleSource string

// Ensure Renderer implements folio.Renderer.
var _ folio.Renderer = (*Renderer)(nil)

// Renderer writes documents as LaTeX source.
type Renderer struct {
	style    Style
	preamble *raymond.Template
}

// NewRenderer creates a Renderer for the given style.
func NewRenderer(style Style) (*Renderer, error) {
	if err := style.Validate(); err != nil {
		return nil, err
	}
	tpl, err := raymond.Parse(preambleSource)
	if err != nil {
		return nil, fmt.Errorf("parse preamble template: %w", err)
	}
	return &Renderer{style: style, preamble: tpl}, nil
}

// Render serializes doc to w. The output is validated before anything is
// written; a malformed result is an ESERIALIZE error and w is untouched.
func (r *Renderer) Render(w io.Writer, doc *folio.Document) error {
	if doc == nil {
		return folio.Errorf(folio.EINVALID, "document is required")
	}

	pre, err := r.preamble.Exec(r.context(doc))
	if err != nil {
		return folio.Errorf(folio.ESERIALIZE, "render preamble: %v", err)
	}

	var b strings.Builder
	b.WriteString(pre)
	writeBody(&b, doc)
	b.WriteString("\\end{document}\n")

	src := breakLines(b.String(), MaxLineLength)
	if err := Validate(src); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "%% fingerprint: %s\n", Fingerprint(src)); err != nil {
		return err
	}
	_, err = io.WriteString(w, src)
	return err
}

// Fingerprint returns a stable hash of rendered source for change
// detection.
func Fingerprint(src string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(src))
}

func (r *Renderer) context(doc *folio.Document) map[string]any {
	meta := make([]string, 0, len(doc.Meta))
	for _, m := range doc.Meta {
		meta = append(meta, `\textbf{`+Escape(m.Label)+`:} `+inline(m.Value)+`\\[0.3em]`)
	}
	return map[string]any{
		"fontSize":   r.style.FontSize,
		"paper":      r.style.Paper,
		"font":       r.style.MainFont,
		"lineSpread": strconv.FormatFloat(r.style.LineSpread, 'f', -1, 64),
		"top":        r.style.Margins.Top,
		"bottom":     r.style.Margins.Bottom,
		"left":       r.style.Margins.Left,
		"right":      r.style.Margins.Right,
		"title":      Escape(doc.Title),
		"author":     Escape(doc.Author),
		"date":       Escape(doc.Date),
		"meta":       meta,
		"toc":        doc.HasTOC,
	}
}

func writeBody(b *strings.Builder, doc *folio.Document) {
	part := ""
	for _, ch := range doc.Chapters {
		if ch.Part != "" && ch.Part != part {
			part = ch.Part
			p := Escape(part)
			fmt.Fprintf(b, "\\part*{%s}\n\\addcontentsline{toc}{part}{%s}\n\n", p, p)
		}

		fmt.Fprintf(b, "\\hypertarget{chapter-%d}{}\n", ch.Number)
		if doc.HasTOC {
			fmt.Fprintf(b, "\\section*{%s}\n\\addcontentsline{toc}{section}{%s}\n\n", Escape(ch.Heading), Escape(ch.TOCTitle))
		} else if ch.Heading != "" && ch.Heading != doc.Title {
			fmt.Fprintf(b, "\\section*{%s}\n\n", Escape(ch.Heading))
		}

		if ch.Unit != nil {
			for _, blk := range ch.Unit.Blocks {
				writeBlock(b, blk)
			}
		}
		writeNotes(b, ch.Notes)
	}
}

func writeBlock(b *strings.Builder, blk folio.Block) {
	switch blk := blk.(type) {
	case folio.Heading:
		cmd := "paragraph"
		switch {
		case blk.Level <= 2:
			cmd = "subsection"
		case blk.Level == 3:
			cmd = "subsubsection"
		}
		fmt.Fprintf(b, "\\%s*{%s%s}\n\n", cmd, Escape(blk.Text), inline(blk.Notes))

	case folio.Paragraph:
		b.WriteString(inline(blk.Text))
		b.WriteString("\n\n")

	case folio.BlockQuote:
		b.WriteString("\\begin{quoting}\n")
		for i, p := range blk.Paragraphs {
			text := inline(p)
			if i == 0 {
				text = guard(text)
			} else {
				b.WriteString("\n")
			}
			b.WriteString(text)
			b.WriteString("\n")
		}
		b.WriteString("\\end{quoting}\n\n")

	case folio.Verse:
		b.WriteString("\\begin{verse}\n")
		for _, line := range blk.Lines {
			b.WriteString(guard(inline(line)))
			b.WriteString("\\\\\n")
		}
		b.WriteString("\\end{verse}\n\n")

	case folio.Table:
		writeTable(b, blk)

	case folio.List:
		env := "itemize"
		if blk.Ordered {
			env = "enumerate"
		}
		fmt.Fprintf(b, "\\begin{%s}\n", env)
		for _, item := range blk.Items {
			b.WriteString("\\item ")
			b.WriteString(guard(inline(item)))
			b.WriteString("\n")
		}
		fmt.Fprintf(b, "\\end{%s}\n\n", env)
	}
}

// writeTable emits a longtable as wide as the widest row. Short rows are
// padded with empty cells.
func writeTable(b *strings.Builder, t folio.Table) {
	cols := 0
	for _, row := range t.Rows {
		cols = max(cols, len(row))
	}
	if cols == 0 {
		return
	}

	width := strconv.FormatFloat(0.9/float64(cols), 'f', 3, 64)
	layout := strings.Repeat("|p{"+width+"\\linewidth}", cols) + "|"
	fmt.Fprintf(b, "\\begin{longtable}{%s}\n\\hline\n", layout)
	for _, row := range t.Rows {
		cells := make([]string, cols)
		for i, c := range row {
			cells[i] = inline(c)
		}
		cells[0] = guard(cells[0])
		b.WriteString(strings.Join(cells, " & "))
		b.WriteString(" \\\\ \\hline\n")
	}
	b.WriteString("\\end{longtable}\n\n")
}

// writeNotes lists the notes a chapter introduced.
func writeNotes(b *strings.Builder, notes []folio.Footnote) {
	if len(notes) == 0 {
		return
	}
	b.WriteString("\\subsection*{Notes}\n\n")
	for _, n := range notes {
		fmt.Fprintf(b, "\\hypertarget{note-%d}{\\textbf{%d.}} %s\n\n", n.Ordinal, n.Ordinal, inline(n.Body))
	}
}

// inline renders spans as running text.
func inline(in folio.Inline) string {
	var b strings.Builder
	for _, s := range in {
		switch s.Kind {
		case folio.SpanText:
			b.WriteString(Escape(s.Text))
		case folio.SpanEmphasis:
			if s.Text != "" {
				b.WriteString(`\emph{` + Escape(s.Text) + `}`)
			}
		case folio.SpanStrong:
			if s.Text != "" {
				b.WriteString(`\textbf{` + Escape(s.Text) + `}`)
			}
		case folio.SpanLink:
			switch {
			case s.Internal && s.Chapter > 0:
				fmt.Fprintf(&b, `\hyperlink{chapter-%d}{%s}`, s.Chapter, Escape(s.Text))
			default:
				fmt.Fprintf(&b, `\href{%s}{%s}`, EscapeURL(s.Target), Escape(s.Text))
			}
		case folio.SpanNoteRef:
			if s.Ordinal > 0 {
				fmt.Fprintf(&b, `\textsuperscript{\hyperlink{note-%d}{%d}}`, s.Ordinal, s.Ordinal)
				continue
			}
			b.WriteString(Escape("[" + s.Label + "]"))
		}
	}
	return b.String()
}
