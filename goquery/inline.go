package goquery

import (
	"strings"

	"github.com/fwojciec/folio"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Internal span kinds marking line and stanza boundaries while a subtree is
// read. They never leave this package: prose turns them into spaces and
// verse splits on them.
const (
	spanBreak  folio.SpanKind = -1
	spanStanza folio.SpanKind = -2
)

// inlineBuilder reads an HTML subtree into spans.
type inlineBuilder struct {
	x   *extraction
	out folio.Inline

	// markers enables note marker resolution. Trial reads used by the
	// layout heuristics leave it off so they have no side effects.
	markers bool

	// noteBody drops links back to the marker inside a definition.
	noteBody bool

	// pre keeps source newlines as line breaks.
	pre bool

	// dropUnresolved omits the literal text of markers that resolve to
	// nothing. The warning is still recorded.
	dropUnresolved bool
}

func (b *inlineBuilder) children(n *html.Node, kind folio.SpanKind) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.node(c, kind)
	}
}

func (b *inlineBuilder) node(n *html.Node, kind folio.SpanKind) {
	switch n.Type {
	case html.TextNode:
		b.textNode(n.Data, kind)
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.DataAtom {
	case atom.Br:
		b.mark(spanBreak)
	case atom.Em, atom.I, atom.Cite, atom.Var, atom.Dfn:
		b.children(n, folio.SpanEmphasis)
	case atom.Strong, atom.B:
		if kind == folio.SpanEmphasis {
			b.children(n, kind)
			return
		}
		b.children(n, folio.SpanStrong)
	case atom.A:
		b.anchor(n, kind)
	case atom.Script, atom.Style, atom.Img:
	case atom.P, atom.Div, atom.Blockquote, atom.Li, atom.Dd, atom.Dt, atom.Tr,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Ul, atom.Ol, atom.Table, atom.Pre:
		b.mark(spanStanza)
		b.children(n, kind)
		b.mark(spanStanza)
	case atom.Td, atom.Th:
		b.text(kind, " ")
		b.children(n, kind)
		b.text(kind, " ")
	default:
		b.children(n, kind)
	}
}

func (b *inlineBuilder) mark(kind folio.SpanKind) {
	b.out = append(b.out, folio.Span{Kind: kind})
}

func (b *inlineBuilder) textNode(data string, kind folio.SpanKind) {
	if !b.pre {
		b.markedText(cleanText(data), kind)
		return
	}
	for i, line := range strings.Split(data, "\n") {
		if i > 0 {
			b.mark(spanBreak)
		}
		b.markedText(cleanText(line), kind)
	}
}

// markedText adds s, turning bracketed numbers into note references when
// marker resolution is on. A number that resolves to nothing stays as
// literal text.
func (b *inlineBuilder) markedText(s string, kind folio.SpanKind) {
	if !b.markers {
		b.text(kind, s)
		return
	}
	last := 0
	for _, m := range bracketRE.FindAllStringSubmatchIndex(s, -1) {
		b.text(kind, s[last:m[0]])
		literal := s[m[0]:m[1]]
		if span, ok := b.x.marker("", normalizeNumber(s[m[2]:m[3]]), literal); ok {
			b.out = append(b.out, span)
		} else if !b.dropUnresolved {
			b.text(kind, literal)
		}
		last = m[1]
	}
	b.text(kind, s[last:])
}

func (b *inlineBuilder) anchor(n *html.Node, kind folio.SpanKind) {
	href := strings.TrimSpace(attr(n, "href"))
	if href == "" || isNonHTTPLink(href) || b.x == nil {
		b.children(n, kind)
		return
	}

	raw := cleanText(nodeText(n))
	text := strings.TrimSpace(raw)

	if frag, ok := pageFragment(b.x.base, href); ok {
		switch {
		case b.noteBody && backLinkRE.MatchString(text):
		case b.markers:
			label, numeric := markerLabel(text)
			if !b.x.notes.hasID(frag) && !numeric {
				b.plain(n, kind)
				return
			}
			if span, ok := b.x.marker(frag, label, text); ok {
				b.out = append(b.out, span)
				return
			}
			if !b.dropUnresolved {
				b.text(kind, text)
			}
		default:
			b.plain(n, kind)
		}
		return
	}

	u, ok := resolveURL(b.x.base, href)
	if !ok || (u.Scheme != "http" && u.Scheme != "https") {
		b.plain(n, kind)
		return
	}
	if text == "" {
		return
	}
	if strings.HasPrefix(raw, " ") {
		b.text(kind, " ")
	}
	span := folio.Span{Kind: folio.SpanLink, Text: text, Target: u.String()}
	if _, ok := b.x.chapters.Lookup(span.Target); ok {
		span.Internal = true
	}
	b.out = append(b.out, span)
	if strings.HasSuffix(raw, " ") {
		b.text(kind, " ")
	}
}

// plain reads an anchor's content as ordinary text.
func (b *inlineBuilder) plain(n *html.Node, kind folio.SpanKind) {
	saved := b.markers
	b.markers = false
	b.children(n, kind)
	b.markers = saved
}

// text appends s, merging with the previous span of the same kind and
// never producing two spaces in a row.
func (b *inlineBuilder) text(kind folio.SpanKind, s string) {
	if s == "" {
		return
	}
	if s[0] == ' ' && b.endsWithSpace() {
		s = s[1:]
		if s == "" {
			return
		}
	}
	if kind != folio.SpanText && s[0] == ' ' {
		b.text(folio.SpanText, " ")
		s = s[1:]
		if s == "" {
			return
		}
	}
	if n := len(b.out); n > 0 && b.out[n-1].Kind == kind && isTextKind(kind) {
		b.out[n-1].Text += s
		return
	}
	b.out = append(b.out, folio.Span{Kind: kind, Text: s})
}

func (b *inlineBuilder) endsWithSpace() bool {
	if len(b.out) == 0 {
		return true
	}
	last := b.out[len(b.out)-1]
	switch last.Kind {
	case spanBreak, spanStanza:
		return true
	case folio.SpanNoteRef:
		return false
	}
	return strings.HasSuffix(last.Text, " ")
}

func isTextKind(k folio.SpanKind) bool {
	return k == folio.SpanText || k == folio.SpanEmphasis || k == folio.SpanStrong
}

// finishProse resolves boundaries to spaces and trims the result. It
// returns nil when nothing but whitespace remains.
func finishProse(in folio.Inline) folio.Inline {
	b := &inlineBuilder{}
	for _, s := range in {
		switch {
		case s.Kind == spanBreak || s.Kind == spanStanza:
			b.text(folio.SpanText, " ")
		case isTextKind(s.Kind):
			b.text(s.Kind, s.Text)
		default:
			b.out = append(b.out, s)
		}
	}
	return trimSpaces(b.out)
}

func trimSpaces(in folio.Inline) folio.Inline {
	for len(in) > 0 && isTextKind(in[len(in)-1].Kind) {
		last := &in[len(in)-1]
		last.Text = strings.TrimRight(last.Text, " ")
		if last.Text != "" {
			break
		}
		in = in[:len(in)-1]
	}
	for len(in) > 0 && isTextKind(in[0].Kind) {
		in[0].Text = strings.TrimLeft(in[0].Text, " ")
		if in[0].Text != "" {
			break
		}
		in = in[1:]
	}
	if len(in) == 0 {
		return nil
	}
	return in
}

// trimInline drops the first n bytes of text from in.
func trimInline(in folio.Inline, n int) folio.Inline {
	out := make(folio.Inline, 0, len(in))
	for _, s := range in {
		if n > 0 && isTextKind(s.Kind) {
			if len(s.Text) <= n {
				n -= len(s.Text)
				continue
			}
			s.Text = s.Text[n:]
			n = 0
		}
		out = append(out, s)
	}
	return trimSpaces(out)
}

// splitVerse splits spans into stanzas of lines. A line break ends a line;
// an empty line or a block boundary ends a stanza.
func splitVerse(in folio.Inline) [][]folio.Inline {
	var (
		stanzas [][]folio.Inline
		lines   []folio.Inline
		cur     folio.Inline
		blank   bool
	)
	endLine := func() {
		line := finishProse(cur)
		cur = nil
		if line == nil {
			blank = true
			return
		}
		if blank && len(lines) > 0 {
			stanzas = append(stanzas, lines)
			lines = nil
		}
		blank = false
		lines = append(lines, line)
	}
	for _, s := range in {
		switch s.Kind {
		case spanBreak:
			endLine()
		case spanStanza:
			endLine()
			blank = true
		default:
			cur = append(cur, s)
		}
	}
	endLine()
	if len(lines) > 0 {
		stanzas = append(stanzas, lines)
	}
	return stanzas
}

// joinLines reflows lines into one run of prose.
func joinLines(lines []folio.Inline) folio.Inline {
	var in folio.Inline
	for i, l := range lines {
		if i > 0 {
			in = append(in, folio.Span{Kind: folio.SpanText, Text: " "})
		}
		in = append(in, l...)
	}
	return finishProse(in)
}

func countBreaks(in folio.Inline) int {
	n := 0
	for _, s := range in {
		if s.Kind == spanBreak {
			n++
		}
	}
	return n
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeText(c))
	}
	return sb.String()
}
