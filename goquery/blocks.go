package goquery

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/folio"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// shortLine is the length in characters under which a line counts as
	// short for verse detection.
	shortLine = 80

	// minVerseLines is the fewest lines a block needs to be read as verse.
	minVerseLines = 3
)

var (
	verseClassRE = regexp.MustCompile(`(?i)poem|verse|stanza|poetry`)
	quoteClassRE = regexp.MustCompile(`(?i)quote|indent`)
)

var blockAtoms = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Table: true, atom.Blockquote: true,
	atom.Ul: true, atom.Ol: true, atom.Dl: true, atom.Pre: true, atom.Hr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Section: true, atom.Article: true, atom.Main: true, atom.Center: true,
	atom.Aside: true, atom.Address: true,
}

// walker turns a content subtree into blocks. Loose inline content between
// block elements collects in pending and is flushed as paragraphs.
type walker struct {
	x       *extraction
	blocks  []folio.Block
	pending *inlineBuilder
}

func (w *walker) root(n *html.Node) []folio.Block {
	if n.Type == html.ElementNode {
		w.node(n)
	} else {
		w.walk(n)
	}
	w.flush()
	return w.blocks
}

func (w *walker) walk(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.node(c)
	}
}

func (w *walker) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.inline(n)
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		w.flush()
		w.heading(n)
	case atom.P, atom.Dd, atom.Dt:
		w.flush()
		w.paragraph(n)
	case atom.Blockquote:
		w.flush()
		w.quote(n)
	case atom.Pre:
		w.flush()
		w.verse(n, true)
	case atom.Table:
		w.flush()
		w.table(n)
	case atom.Ul, atom.Ol:
		w.flush()
		w.list(n)
	case atom.Hr:
		w.flush()
	case atom.Script, atom.Style:
	case atom.Div, atom.Section, atom.Article, atom.Main, atom.Center, atom.Body,
		atom.Html, atom.Dl, atom.Aside, atom.Address, atom.Figure:
		w.flush()
		switch {
		case verseClassRE.MatchString(attr(n, "class")):
			w.verse(n, false)
		case quoteClassRE.MatchString(attr(n, "class")):
			w.quote(n)
		case hasBlockChild(n):
			w.walk(n)
			w.flush()
		default:
			w.paragraph(n)
		}
	default:
		if hasBlockChild(n) {
			w.flush()
			w.walk(n)
			w.flush()
			return
		}
		w.inline(n)
	}
}

func (w *walker) inline(n *html.Node) {
	if w.pending == nil {
		w.pending = &inlineBuilder{x: w.x, markers: true}
	}
	w.pending.node(n, folio.SpanText)
}

// flush emits pending loose content. Short lines separated by breaks read
// as verse; anything else becomes one paragraph per stanza.
func (w *walker) flush() {
	if w.pending == nil {
		return
	}
	out := w.pending.out
	w.pending = nil

	stanzas := splitVerse(out)
	if verseLike(stanzas, countBreaks(out)) {
		for _, lines := range stanzas {
			w.add(folio.Verse{Lines: lines})
		}
		return
	}
	for _, lines := range stanzas {
		if in := joinLines(lines); in != nil {
			w.add(folio.Paragraph{Text: in})
		}
	}
}

func (w *walker) add(b folio.Block) {
	w.blocks = append(w.blocks, b)
}

// read builds the inline content of n's children.
func (w *walker) read(n *html.Node, markers, pre bool) folio.Inline {
	b := &inlineBuilder{x: w.x, markers: markers, pre: pre}
	b.children(n, folio.SpanText)
	return b.out
}

// heading reads a section heading. Note markers move out of the text into
// the heading's Notes.
func (w *walker) heading(n *html.Node) {
	b := &inlineBuilder{x: w.x, markers: true, dropUnresolved: true}
	b.children(n, folio.SpanText)

	var text strings.Builder
	var notes folio.Inline
	for _, s := range finishProse(b.out) {
		if s.Kind == folio.SpanNoteRef {
			notes = append(notes, s)
			text.WriteString(" ")
			continue
		}
		text.WriteString(s.Text)
	}
	title := squash(text.String())
	if title == "" {
		return
	}
	w.add(folio.Heading{Level: int(n.Data[1] - '0'), Text: title, Notes: notes})
}

func (w *walker) paragraph(n *html.Node) {
	class := attr(n, "class")
	switch {
	case verseClassRE.MatchString(class) || w.looksLikeVerse(n):
		w.verse(n, false)
	case quoteClassRE.MatchString(class):
		w.quote(n)
	case hasBlockChild(n):
		w.walk(n)
		w.flush()
	default:
		if in := finishProse(w.read(n, true, false)); in != nil {
			w.add(folio.Paragraph{Text: in})
		}
	}
}

func (w *walker) verse(n *html.Node, pre bool) {
	for _, lines := range splitVerse(w.read(n, true, pre)) {
		w.add(folio.Verse{Lines: lines})
	}
}

// quote emits a block quotation. Nested paragraphs become the quote's
// paragraphs; verse and other structure inside it are emitted in place.
func (w *walker) quote(n *html.Node) {
	if verseClassRE.MatchString(attr(n, "class")) || w.looksLikeVerse(n) {
		w.verse(n, false)
		return
	}
	if !hasBlockChild(n) {
		if in := finishProse(w.read(n, true, false)); in != nil {
			w.add(folio.BlockQuote{Paragraphs: []folio.Inline{in}})
		}
		return
	}

	sub := &walker{x: w.x}
	sub.walk(n)
	sub.flush()

	var paras []folio.Inline
	emit := func() {
		if len(paras) > 0 {
			w.add(folio.BlockQuote{Paragraphs: paras})
			paras = nil
		}
	}
	for _, b := range sub.blocks {
		switch b := b.(type) {
		case folio.Paragraph:
			paras = append(paras, b.Text)
		case folio.BlockQuote:
			paras = append(paras, b.Paragraphs...)
		default:
			emit()
			w.add(b)
		}
	}
	emit()
}

// table emits a table, or unpacks it when it is only used for layout: a
// single column, or any cell holding poetry.
func (w *walker) table(n *html.Node) {
	rows := tableRows(n)
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	if width == 0 {
		return
	}

	layout := width == 1
	for _, r := range rows {
		for _, c := range r {
			if !layout && w.poetryCell(c) {
				layout = true
			}
		}
	}
	if layout {
		single := len(rows) == 1 && width == 1
		for _, r := range rows {
			for _, c := range r {
				w.cell(c, single)
			}
		}
		return
	}

	var t folio.Table
	for _, r := range rows {
		cells := make([]folio.Inline, 0, len(r))
		empty := true
		for _, c := range r {
			in := finishProse(w.read(c, true, false))
			if in != nil {
				empty = false
			}
			cells = append(cells, in)
		}
		if !empty {
			t.Rows = append(t.Rows, cells)
		}
	}
	if len(t.Rows) > 0 {
		w.add(t)
	}
}

// cell emits the content of a layout table cell. A lone cell holding only
// prose is an indented quotation.
func (w *walker) cell(c *html.Node, single bool) {
	switch {
	case w.poetryCell(c):
		w.verse(c, false)
	case hasBlockChild(c):
		w.walk(c)
		w.flush()
	default:
		in := finishProse(w.read(c, true, false))
		if in == nil {
			return
		}
		if single {
			w.add(folio.BlockQuote{Paragraphs: []folio.Inline{in}})
			return
		}
		w.add(folio.Paragraph{Text: in})
	}
}

func (w *walker) list(n *html.Node) {
	l := folio.List{Ordered: n.DataAtom == atom.Ol}
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}
		if in := finishProse(w.read(li, true, false)); in != nil {
			l.Items = append(l.Items, in)
		}
	}
	if len(l.Items) > 0 {
		w.add(l)
	}
}

// looksLikeVerse reports whether an element's line breaks set out verse.
func (w *walker) looksLikeVerse(n *html.Node) bool {
	out := w.read(n, false, false)
	return verseLike(splitVerse(out), countBreaks(out))
}

// poetryCell reports whether a table cell holds verse: three or more
// explicit breaks, or mostly short lines.
func (w *walker) poetryCell(c *html.Node) bool {
	out := w.read(c, false, false)
	if countBreaks(out) >= 3 {
		return true
	}
	stanzas := splitVerse(out)
	return verseLike(stanzas, countBreaks(out)+len(stanzas)-1)
}

// verseLike applies the verse heuristic: at least two breaks, three lines,
// and seven in ten lines short.
func verseLike(stanzas [][]folio.Inline, breaks int) bool {
	if breaks < 2 {
		return false
	}
	lines, short := 0, 0
	for _, st := range stanzas {
		for _, l := range st {
			lines++
			if utf8.RuneCountInString(l.Text()) < shortLine {
				short++
			}
		}
	}
	return lines >= minVerseLines && short*10 >= lines*7
}

func tableRows(table *html.Node) [][]*html.Node {
	var rows [][]*html.Node
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Thead, atom.Tbody, atom.Tfoot:
				visit(c)
			case atom.Tr:
				var cells []*html.Node
				for td := c.FirstChild; td != nil; td = td.NextSibling {
					if td.Type == html.ElementNode && (td.DataAtom == atom.Td || td.DataAtom == atom.Th) {
						cells = append(cells, td)
					}
				}
				rows = append(rows, cells)
			}
		}
	}
	visit(table)
	return rows
}

// hasBlockChild reports whether n contains a block-level element.
func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if blockAtoms[c.DataAtom] || hasBlockChild(c) {
			return true
		}
	}
	return false
}
