package folio

// Unit is the extracted content of one fetched page. It is immutable once
// produced; the assembler copies what it rewrites.
type Unit struct {
	URL       string
	Title     string
	Author    string
	Date      string
	Meta      []MetaEntry
	Blocks    []Block
	Footnotes []Footnote
}

// MetaEntry is a labelled piece of front matter such as "Written:" or
// "Source:" found in a page's information block.
type MetaEntry struct {
	Label string
	Value Inline
}

// Block is one structural node of a unit. The set of variants is closed.
type Block interface {
	block()
}

// Heading is a section heading inside a unit. Level 1 is the largest.
// Notes holds the note references the heading carries, shown after its
// text.
type Heading struct {
	Level int
	Text  string
	Notes Inline
}

// Paragraph is a run of prose whose whitespace may be reflowed.
type Paragraph struct {
	Text Inline
}

// BlockQuote holds one or more quoted paragraphs.
type BlockQuote struct {
	Paragraphs []Inline
}

// Verse holds lines whose breaks are preserved exactly.
type Verse struct {
	Lines []Inline
}

// Table holds rows of cells. Rows may have different widths.
type Table struct {
	Rows [][]Inline
}

// List is an itemized or enumerated list.
type List struct {
	Ordered bool
	Items   []Inline
}

func (Heading) block()    {}
func (Paragraph) block()  {}
func (BlockQuote) block() {}
func (Verse) block()      {}
func (Table) block()      {}
func (List) block()       {}

// SpanKind identifies the type of an inline span.
type SpanKind int

const (
	SpanText SpanKind = iota
	SpanEmphasis
	SpanStrong
	SpanLink
	SpanNoteRef
)

// Span is one typed piece of inline content.
//
// For SpanLink, Target is an absolute URL. Internal links point at a chapter
// of the current book by its canonical URL until assembly, after which
// Chapter holds the chapter number. For SpanNoteRef, Note is the local
// footnote id, Label is the number shown on the source page and Ordinal is
// assigned by the assembler.
type Span struct {
	Kind     SpanKind
	Text     string
	Target   string
	Internal bool
	Chapter  int
	Note     string
	Label    string
	Ordinal  int
}

// Inline is an ordered run of spans.
type Inline []Span

// Text returns the inline as plain text, rendering note references by label.
func (in Inline) Text() string {
	var n int
	for _, s := range in {
		n += len(s.Text)
	}
	b := make([]byte, 0, n)
	for _, s := range in {
		if s.Kind == SpanNoteRef {
			b = append(b, '[')
			b = append(b, s.Label...)
			b = append(b, ']')
			continue
		}
		b = append(b, s.Text...)
	}
	return string(b)
}

// Plain returns an inline holding a single text span.
func Plain(text string) Inline {
	return Inline{{Kind: SpanText, Text: text}}
}

// Footnote is a note definition. LocalID is the identifier used on the
// source page; Ordinal is the final render number assigned by the assembler.
type Footnote struct {
	LocalID       string
	Label         string
	Ordinal       int
	Body          Inline
	LowConfidence bool
}

// Chapter is a unit placed in an assembled document.
type Chapter struct {
	Number   int
	TOCTitle string
	Heading  string
	Part     string
	Unit     *Unit

	// Notes are the global notes first referenced in this chapter.
	Notes []Footnote
}

// Document is the assembled result handed to a Renderer.
type Document struct {
	Title    string
	Author   string
	Date     string
	Meta     []MetaEntry
	Chapters []*Chapter

	// Notes is the global footnote table ordered by Ordinal.
	Notes []Footnote

	HasTOC bool
}
