package folio

import "fmt"

// DefaultBookTitle is used when a book index has no usable title.
const DefaultBookTitle = "Collected Works"

// Front is document-level information taken from the root page.
type Front struct {
	Title  string
	Author string
	Date   string
	Meta   []MetaEntry
}

// Source pairs an extracted unit with the index link that led to it.
// Link is zero for an article.
type Source struct {
	Link ChapterLink
	Unit *Unit
}

// Assemble composes units into one document. Chapters are numbered 1..N in
// the order given. Footnotes get global ordinals in chapter order, then in
// order of first reference within the chapter. Markers without a
// definition become literal bracketed text and are reported as warnings.
// Units are not modified.
func Assemble(front Front, sources []Source) (*Document, []Warning, error) {
	if len(sources) == 0 {
		return nil, nil, Errorf(EASSEMBLY, "no usable chapters")
	}

	a := &assembler{
		chapters: make(ChapterSet, len(sources)*2),
		next:     1,
	}
	for i, src := range sources {
		if src.Unit == nil {
			return nil, nil, Errorf(EASSEMBLY, "chapter %d has no content", i+1)
		}
		a.chapters[CanonicalURL(src.Unit.URL)] = i + 1
		if src.Link.URL != "" {
			a.chapters[CanonicalURL(src.Link.URL)] = i + 1
		}
	}

	doc := &Document{
		Title:  front.Title,
		Author: front.Author,
		Date:   front.Date,
		Meta:   front.Meta,
		HasTOC: len(sources) > 1,
	}
	if len(sources) == 1 {
		u := sources[0].Unit
		doc.Title = firstNonEmpty(doc.Title, u.Title)
		doc.Author = firstNonEmpty(doc.Author, u.Author)
		doc.Date = firstNonEmpty(doc.Date, u.Date)
		if len(doc.Meta) == 0 {
			doc.Meta = u.Meta
		}
	}
	if doc.Title == "" {
		doc.Title = DefaultBookTitle
	}

	for i, src := range sources {
		n := i + 1
		unit, notes := a.chapter(src.Unit)
		toc := firstNonEmpty(src.Link.Title, src.Unit.Title, fmt.Sprintf("Chapter %d", n))
		doc.Chapters = append(doc.Chapters, &Chapter{
			Number:   n,
			TOCTitle: toc,
			Heading:  firstNonEmpty(src.Unit.Title, toc),
			Part:     src.Link.Part,
			Unit:     unit,
			Notes:    notes,
		})
		doc.Notes = append(doc.Notes, notes...)
	}

	return doc, a.warnings, nil
}

type assembler struct {
	chapters ChapterSet
	next     int
	warnings []Warning

	// per-chapter state
	unit     *Unit
	byID     map[string]int
	assigned map[string]int
	notes    []Footnote
}

// chapter returns a rewritten copy of u and the notes it introduces.
func (a *assembler) chapter(u *Unit) (*Unit, []Footnote) {
	a.unit = u
	a.byID = make(map[string]int, len(u.Footnotes))
	a.assigned = make(map[string]int, len(u.Footnotes))
	a.notes = nil
	for i, fn := range u.Footnotes {
		if _, dup := a.byID[fn.LocalID]; !dup {
			a.byID[fn.LocalID] = i
		}
	}

	out := *u
	out.Blocks = make([]Block, 0, len(u.Blocks))
	for _, b := range u.Blocks {
		out.Blocks = append(out.Blocks, a.block(b))
	}
	for _, fn := range u.Footnotes {
		a.ordinal(fn.LocalID)
	}
	for i := range a.notes {
		a.notes[i].Body = a.body(a.notes[i].Body)
	}
	out.Footnotes = a.notes
	out.Meta = make([]MetaEntry, len(u.Meta))
	for i, m := range u.Meta {
		out.Meta[i] = MetaEntry{Label: m.Label, Value: a.body(m.Value)}
	}
	return &out, a.notes
}

func (a *assembler) block(b Block) Block {
	switch b := b.(type) {
	case Heading:
		if b.Notes != nil {
			b.Notes = a.inline(b.Notes)
		}
		return b
	case Paragraph:
		return Paragraph{Text: a.inline(b.Text)}
	case BlockQuote:
		return BlockQuote{Paragraphs: a.inlines(b.Paragraphs)}
	case Verse:
		return Verse{Lines: a.inlines(b.Lines)}
	case List:
		return List{Ordered: b.Ordered, Items: a.inlines(b.Items)}
	case Table:
		rows := make([][]Inline, len(b.Rows))
		for i, row := range b.Rows {
			rows[i] = a.inlines(row)
		}
		return Table{Rows: rows}
	}
	return b
}

func (a *assembler) inlines(in []Inline) []Inline {
	out := make([]Inline, len(in))
	for i, x := range in {
		out[i] = a.inline(x)
	}
	return out
}

func (a *assembler) inline(in Inline) Inline {
	out := make(Inline, 0, len(in))
	for _, s := range in {
		switch s.Kind {
		case SpanNoteRef:
			ord, ok := a.ordinal(s.Note)
			if !ok {
				label := firstNonEmpty(s.Label, s.Note)
				a.warnings = append(a.warnings, Warning{
					Kind:    WarnFootnoteDangling,
					URL:     a.unit.URL,
					Message: fmt.Sprintf("marker [%s] has no footnote body, kept as text", label),
				})
				out = append(out, Span{Kind: SpanText, Text: "[" + label + "]"})
				continue
			}
			s.Ordinal = ord
		case SpanLink:
			s = a.link(s)
		}
		out = append(out, s)
	}
	return out
}

// body rewrites footnote bodies and metadata, where note markers are
// flattened to text.
func (a *assembler) body(in Inline) Inline {
	out := make(Inline, 0, len(in))
	for _, s := range in {
		switch s.Kind {
		case SpanNoteRef:
			s = Span{Kind: SpanText, Text: "[" + firstNonEmpty(s.Label, s.Note) + "]"}
		case SpanLink:
			s = a.link(s)
		}
		out = append(out, s)
	}
	return out
}

func (a *assembler) link(s Span) Span {
	if !s.Internal {
		return s
	}
	if n, ok := a.chapters.Lookup(s.Target); ok {
		s.Chapter = n
		return s
	}
	s.Internal = false
	s.Chapter = 0
	return s
}

func (a *assembler) ordinal(id string) (int, bool) {
	if ord, ok := a.assigned[id]; ok {
		return ord, true
	}
	idx, ok := a.byID[id]
	if !ok {
		return 0, false
	}
	ord := a.next
	a.next++
	a.assigned[id] = ord

	fn := a.unit.Footnotes[idx]
	fn.Ordinal = ord
	a.notes = append(a.notes, fn)
	return ord, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
