package goquery

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/folio"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	// notesHeadingRE matches the heading that opens a trailing notes section.
	notesHeadingRE = regexp.MustCompile(`(?i)^(?:foot|end)?notes?:?$|^references:?$`)

	// noteClassRE matches class or id values of note definition containers.
	noteClassRE = regexp.MustCompile(`(?i)footnote|endnote|fnote`)

	// backLinkRE matches the text of links that jump back to a marker.
	backLinkRE = regexp.MustCompile(`(?i)back|return|^\s*[↩↑^]\s*$`)
)

// noteDef is one footnote definition found on a page.
type noteDef struct {
	key   string
	ids   []string
	label string
	body  folio.Inline
	order int

	used          bool
	lowConfidence bool
}

// noteSet holds a page's definitions and resolves markers against them.
//
// Two resolvers exist. The anchor resolver matches a marker's link target
// against definition ids. The label resolver matches a marker's visible
// number against definition labels. A marker that carries an anchor which
// names a definition is resolved by anchor only; every other marker is
// resolved by label. Several distinct definitions sharing a label are
// ambiguous: the first in document order wins and the match is flagged.
type noteSet struct {
	defs    []*noteDef
	byID    map[string]*noteDef
	byLabel map[string][]*noteDef
	uses    []*noteDef
}

func newNoteSet(defs []*noteDef) *noteSet {
	sort.SliceStable(defs, func(i, j int) bool { return defs[i].order < defs[j].order })
	ns := &noteSet{
		defs:    defs,
		byID:    make(map[string]*noteDef),
		byLabel: make(map[string][]*noteDef),
	}
	for _, d := range defs {
		for _, id := range d.ids {
			if _, dup := ns.byID[id]; !dup {
				ns.byID[id] = d
			}
		}
		if d.label != "" {
			ns.byLabel[d.label] = append(ns.byLabel[d.label], d)
		}
	}
	return ns
}

// hasID reports whether id names a definition.
func (ns *noteSet) hasID(id string) bool {
	_, ok := ns.byID[id]
	return ok
}

// resolveAnchor finds the definition an anchor marker points at.
func (ns *noteSet) resolveAnchor(id string) (*noteDef, bool) {
	d, ok := ns.byID[id]
	return d, ok
}

// resolveLabel finds the definition with the given visible number and
// reports how many distinct definitions carry it.
func (ns *noteSet) resolveLabel(label string) (*noteDef, int) {
	c := ns.byLabel[label]
	if len(c) == 0 {
		return nil, 0
	}
	return c[0], len(c)
}

func (ns *noteSet) use(d *noteDef) {
	if !d.used {
		d.used = true
		ns.uses = append(ns.uses, d)
	}
}

// footnotes returns referenced definitions in order of first reference,
// followed by unreferenced ones in document order.
func (ns *noteSet) footnotes() []folio.Footnote {
	out := make([]folio.Footnote, 0, len(ns.defs))
	add := func(d *noteDef) {
		out = append(out, folio.Footnote{
			LocalID:       d.key,
			Label:         d.label,
			Body:          d.body,
			LowConfidence: d.lowConfidence,
		})
	}
	for _, d := range ns.uses {
		add(d)
	}
	for _, d := range ns.defs {
		if !d.used {
			add(d)
		}
	}
	return out
}

// noteCollector finds note definitions in a document and detaches them so
// they never show up as body text.
type noteCollector struct {
	x *extraction

	refs     map[string]bool
	idPos    map[string]int
	nodePos  map[*html.Node]int
	consumed map[*html.Node]bool
	remove   []*goquery.Selection
	defs     []*noteDef
	keys     map[string]int
}

// collectNotes gathers definitions from notes sections, note-classed
// containers and stand-alone anchors that some marker links to.
func collectNotes(doc *goquery.Document, x *extraction) *noteSet {
	c := &noteCollector{
		x:        x,
		refs:     make(map[string]bool),
		idPos:    make(map[string]int),
		nodePos:  make(map[*html.Node]int),
		consumed: make(map[*html.Node]bool),
		keys:     make(map[string]int),
	}
	c.index(doc)

	doc.Find("h1, h2, h3, h4, h5, h6, p").Each(func(_ int, s *goquery.Selection) {
		if !notesHeadingRE.MatchString(squash(s.Text())) {
			return
		}
		if s.Is("p") && s.Find("b, strong").Length() == 0 {
			return
		}
		c.remove = append(c.remove, s)
		for sib := s.Next(); sib.Length() > 0 && !sib.Is("h1, h2, h3, h4, h5, h6"); sib = sib.Next() {
			c.section(sib)
		}
	})

	doc.Find("p, div, li, dd, td, tr, aside, section").Each(func(_ int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		id, _ := s.Attr("id")
		if !noteClassRE.MatchString(class) && !noteClassRE.MatchString(id) {
			return
		}
		if c.isConsumed(s.Nodes[0]) {
			return
		}
		if children := s.ChildrenFiltered("p, li, div, dd, tr"); children.Length() > 0 {
			c.remove = append(c.remove, s)
			children.Each(func(_ int, child *goquery.Selection) {
				c.entry(child, "", false)
			})
			return
		}
		c.entry(s, "", false)
	})

	doc.Find("a[name], a[id]").Each(func(_ int, s *goquery.Selection) {
		id := anchorID(s.Nodes[0])
		if id == "" || !c.refs[id] || c.isConsumed(s.Nodes[0]) || c.isForwardMarker(s) {
			return
		}
		label, ok := markerLabel(s.Text())
		if !ok {
			return
		}
		block := s.Closest("p, li, dd, td, div")
		if block.Length() == 0 || block.Is("body") || hasBlocks(block) {
			return
		}
		lead, _, ok := parseLabel(squash(block.Text()))
		if !ok || lead != label {
			return
		}
		c.entry(block, "", false)
	})

	for _, s := range c.remove {
		s.Remove()
	}
	return newNoteSet(c.defs)
}

// index records document positions of nodes and ids, and every fragment
// some link on the page points at.
func (c *noteCollector) index(doc *goquery.Document) {
	pos := 0
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		c.nodePos[n] = pos
		pos++
		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				if a.Key == "id" || a.Key == "name" {
					id := strings.ToLower(strings.TrimSpace(a.Val))
					if _, seen := c.idPos[id]; !seen && id != "" {
						c.idPos[id] = c.nodePos[n]
					}
				}
			}
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if frag, ok := pageFragment(c.x.base, href); ok {
			c.refs[frag] = true
		}
	})
}

// isForwardMarker reports whether an anchor links forward in the page.
// Markers point ahead to their notes; definitions point back.
func (c *noteCollector) isForwardMarker(s *goquery.Selection) bool {
	href, ok := s.Attr("href")
	if !ok {
		return false
	}
	frag, ok := pageFragment(c.x.base, href)
	if !ok {
		return false
	}
	target, ok := c.idPos[frag]
	return ok && target > c.nodePos[s.Nodes[0]]
}

func (c *noteCollector) isConsumed(n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if c.consumed[n] {
			return true
		}
	}
	return false
}

// section collects the entries of one element following a notes heading.
func (c *noteCollector) section(s *goquery.Selection) {
	switch {
	case s.Is("ol, ul"):
		start := 1
		if v, ok := s.Attr("start"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				start = n
			}
		}
		ordered := s.Is("ol")
		c.remove = append(c.remove, s)
		s.ChildrenFiltered("li").Each(func(i int, li *goquery.Selection) {
			label := ""
			if ordered {
				label = strconv.Itoa(start + i)
				if v, ok := li.Attr("value"); ok {
					label = normalizeNumber(strings.TrimSpace(v))
				}
			}
			c.entry(li, label, true)
		})
	case s.Is("table"):
		c.remove = append(c.remove, s)
		s.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			c.entry(tr, "", true)
		})
	case s.Is("div, section, aside") && s.ChildrenFiltered("p, div, ol, ul, table, dl").Length() > 0:
		c.remove = append(c.remove, s)
		s.Children().Each(func(_ int, child *goquery.Selection) {
			c.section(child)
		})
	case s.Is("hr, br"):
	default:
		c.entry(s, "", true)
	}
}

// entry turns an element into one or more definitions. An element may
// hold several notes, each opened by its own anchor or, inside a notes
// section, by a numbered line after a <br>.
func (c *noteCollector) entry(s *goquery.Selection, fallbackLabel string, numbered bool) {
	n := s.Nodes[0]
	if c.isConsumed(n) {
		return
	}
	c.consumed[n] = true
	c.remove = append(c.remove, s)

	own := anchorID(n)
	segs := c.segments(n, numbered)
	if len(segs) == 1 {
		c.define(segs[0], fallbackLabel, own)
		return
	}
	for i, seg := range segs {
		if i > 0 {
			own = ""
		}
		c.define(seg, "", own)
	}
}

func (c *noteCollector) segments(n *html.Node, numbered bool) [][]*html.Node {
	var segs [][]*html.Node
	var cur []*html.Node
	afterBreak := false
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if hasText(cur) && (c.opensDefinition(ch) || (numbered && afterBreak && opensNumbered(ch))) {
			segs = append(segs, cur)
			cur = nil
		}
		switch {
		case ch.Type == html.ElementNode && ch.DataAtom == atom.Br:
			afterBreak = true
		case ch.Type == html.TextNode && strings.TrimSpace(ch.Data) == "":
		default:
			afterBreak = false
		}
		cur = append(cur, ch)
	}
	if len(cur) > 0 {
		segs = append(segs, cur)
	}
	return segs
}

// opensDefinition reports whether n is, or starts with, an anchor whose id
// some marker links to.
func (c *noteCollector) opensDefinition(n *html.Node) bool {
	for ; n != nil && n.Type == html.ElementNode; n = firstElement(n) {
		if n.DataAtom == atom.A {
			id := anchorID(n)
			return id != "" && c.refs[id]
		}
	}
	return false
}

func opensNumbered(n *html.Node) bool {
	if n.Type != html.TextNode {
		return false
	}
	_, rest, ok := parseLabel(cleanText(n.Data))
	return ok && strings.TrimSpace(rest) != ""
}

func (c *noteCollector) define(nodes []*html.Node, fallbackLabel, own string) {
	var ids []string
	if own != "" {
		ids = append(ids, own)
	}
	for _, n := range nodes {
		ids = appendIDs(ids, n)
	}
	// Ids that markers link to come first.
	sort.SliceStable(ids, func(i, j int) bool { return c.refs[ids[i]] && !c.refs[ids[j]] })

	b := &inlineBuilder{x: c.x, noteBody: true}
	for _, n := range nodes {
		b.node(n, folio.SpanText)
	}
	body := finishProse(b.out)
	text := body.Text()

	label, rest, ok := parseLabel(text)
	if ok {
		body = trimInline(body, len(text)-len(rest))
	} else {
		label = fallbackLabel
	}
	if len(ids) == 0 && label == "" {
		return
	}
	if strings.TrimSpace(body.Text()) == "" {
		return
	}

	key := ""
	if len(ids) > 0 {
		key = ids[0]
	} else {
		key = "note-" + label
	}
	if n := c.keys[key]; n > 0 {
		c.keys[key] = n + 1
		key = fmt.Sprintf("%s-%d", key, n+1)
	} else {
		c.keys[key] = 1
	}

	c.defs = append(c.defs, &noteDef{
		key:   key,
		ids:   ids,
		label: label,
		body:  body,
		order: c.nodePos[nodes[0]],
	})
}

// anchorID returns the lowercased id or name of an element.
func anchorID(n *html.Node) string {
	for _, a := range n.Attr {
		if a.Key == "id" || a.Key == "name" {
			if v := strings.ToLower(strings.TrimSpace(a.Val)); v != "" {
				return v
			}
		}
	}
	return ""
}

func appendIDs(ids []string, n *html.Node) []string {
	if n.Type != html.ElementNode {
		return ids
	}
	if id := anchorID(n); id != "" {
		ids = append(ids, id)
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		ids = appendIDs(ids, ch)
	}
	return ids
}

func firstElement(n *html.Node) *html.Node {
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		switch {
		case ch.Type == html.ElementNode:
			return ch
		case ch.Type == html.TextNode && strings.TrimSpace(ch.Data) != "":
			return nil
		}
	}
	return nil
}

func hasText(nodes []*html.Node) bool {
	for _, n := range nodes {
		if strings.TrimSpace(nodeText(n)) != "" {
			return true
		}
	}
	return false
}
