package goquery

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/folio"
)

// chapterHeadingRE matches headings that name a chapter, such as
// "Chapter 3", "Part II" or "IV. The Working Day".
var chapterHeadingRE = regexp.MustCompile(`(?i)^(?:chapter|part|book|section)\b|^[IVXLC]+[.:)]?(?:\s|$)`)

// Ensure Extractor implements folio.Extractor.
var _ folio.Extractor = (*Extractor)(nil)

// Extractor reads archive pages into document units.
type Extractor struct {
	meta folio.MetadataExtractor
}

// NewExtractor creates an Extractor. meta fills in title, author and date
// when the page's own markers are missing; it may be nil.
func NewExtractor(meta folio.MetadataExtractor) *Extractor {
	return &Extractor{meta: meta}
}

// Extract removes boilerplate, reads metadata, collects note definitions
// and converts the main content into blocks.
func (e *Extractor) Extract(page *folio.Page, opts folio.ExtractOptions) (*folio.ExtractResult, error) {
	if page == nil {
		return nil, folio.Errorf(folio.EINVALID, "page is required")
	}
	base, err := url.Parse(page.URL)
	if err != nil {
		return nil, folio.Errorf(folio.EINVALID, "invalid page URL: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, folio.Errorf(folio.EINVALID, "failed to parse HTML: %v", err)
	}

	chapter := len(opts.Chapters) > 0
	x := &extraction{url: page.URL, base: base, chapters: opts.Chapters}

	removeBoilerplate(doc)
	m := readMetadata(doc, x)
	if !chapter {
		if m.titleNode != nil {
			m.titleNode.Remove()
		}
		if m.authorNode != nil {
			m.authorNode.Remove()
		}
	}
	x.notes = collectNotes(doc, x)
	removeBackLinks(doc)

	unit := &folio.Unit{
		URL:    page.URL,
		Title:  m.title,
		Author: m.author,
		Date:   m.date,
		Meta:   m.meta,
	}
	e.fallback(page, unit, x)

	w := &walker{x: x}
	blocks := w.root(contentNode(doc).Nodes[0])
	if chapter {
		var title string
		blocks, title = chapterTitle(blocks, opts.BookTitle, opts.BookAuthor)
		if title != "" {
			unit.Title = title
		}
	}
	if len(blocks) == 0 {
		return nil, folio.Errorf(folio.ENOTFOUND, "no content found at %s", page.URL)
	}

	unit.Blocks = blocks
	unit.Footnotes = x.notes.footnotes()
	return &folio.ExtractResult{Unit: unit, Warnings: x.warnings}, nil
}

func (e *Extractor) fallback(page *folio.Page, unit *folio.Unit, x *extraction) {
	if e.meta == nil || (unit.Title != "" && unit.Author != "" && unit.Date != "") {
		return
	}
	md, err := e.meta.ExtractMetadata(page)
	if err != nil {
		x.warn(folio.WarnMetadata, "metadata fallback failed: %v", err)
		return
	}
	if unit.Title == "" {
		unit.Title = md.Title
	}
	if unit.Author == "" {
		unit.Author = md.Author
	}
	if unit.Date == "" {
		unit.Date = md.Date
	}
}

// chapterTitle drops headings repeating the book's title or author and
// takes the chapter title from the leading headings, preferring one that
// names a chapter. The chosen heading is removed.
func chapterTitle(blocks []folio.Block, bookTitle, bookAuthor string) ([]folio.Block, string) {
	repeat := func(text string) bool {
		return (bookTitle != "" && strings.EqualFold(text, bookTitle)) ||
			(bookAuthor != "" && strings.EqualFold(text, bookAuthor))
	}

	kept := make([]folio.Block, 0, len(blocks))
	for _, b := range blocks {
		if h, ok := b.(folio.Heading); ok && repeat(h.Text) {
			continue
		}
		kept = append(kept, b)
	}

	pick := -1
	for i, b := range kept {
		h, ok := b.(folio.Heading)
		if !ok {
			break
		}
		if pick < 0 {
			pick = i
		}
		if chapterHeadingRE.MatchString(h.Text) {
			pick = i
			break
		}
	}
	if pick < 0 {
		for i, b := range kept {
			if _, ok := b.(folio.Heading); ok {
				pick = i
				break
			}
		}
	}
	if pick < 0 {
		return kept, ""
	}

	title := kept[pick].(folio.Heading).Text
	return append(kept[:pick:pick], kept[pick+1:]...), title
}

// extraction is the state of one Extract call.
type extraction struct {
	url      string
	base     *url.URL
	chapters folio.ChapterSet
	notes    *noteSet
	warnings []folio.Warning

	// ambiguous holds labels already reported as ambiguous.
	ambiguous map[string]bool
}

func (x *extraction) warn(kind folio.WarningKind, format string, args ...any) {
	x.warnings = append(x.warnings, folio.Warning{
		Kind:    kind,
		URL:     x.url,
		Message: fmt.Sprintf(format, args...),
	})
}

// marker resolves a note marker. id is the anchor fragment, empty for
// bracket markers; label is the visible number. An unresolved marker is
// reported and the caller keeps its literal text.
func (x *extraction) marker(id, label, literal string) (folio.Span, bool) {
	var def *noteDef
	if id != "" {
		def, _ = x.notes.resolveAnchor(id)
	}
	if def == nil && label != "" {
		var n int
		def, n = x.notes.resolveLabel(label)
		if n > 1 {
			def.lowConfidence = true
			if !x.ambiguous[label] {
				if x.ambiguous == nil {
					x.ambiguous = make(map[string]bool)
				}
				x.ambiguous[label] = true
				x.warn(folio.WarnFootnoteAmbiguous, "marker %s matches %d note definitions; using the first", literal, n)
			}
		}
	}
	if def == nil {
		x.warn(folio.WarnFootnoteUnresolved, "marker %s has no matching note definition", literal)
		return folio.Span{}, false
	}

	x.notes.use(def)
	shown := def.label
	if shown == "" {
		shown = label
	}
	if shown == "" {
		shown = strings.Trim(literal, "[]() ")
	}
	return folio.Span{Kind: folio.SpanNoteRef, Note: def.key, Label: shown}, true
}
