package goquery

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/folio"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// infoKeys are the labels accepted from an archive information block.
var infoKeys = []string{
	"Written", "Published", "First Published", "Source", "Publisher",
	"Translated", "Transcription", "Transcribed", "Markup", "HTML Markup",
	"Online Version", "Public Domain",
}

var yearRE = regexp.MustCompile(`\b1[5-9]\d\d\b|\b20\d\d\b`)

// pageMeta is what a page says about itself.
type pageMeta struct {
	title  string
	author string
	date   string
	meta   []folio.MetaEntry

	// titleNode and authorNode are the headings the title and author were
	// read from, if any.
	titleNode  *goquery.Selection
	authorNode *goquery.Selection
}

// readMetadata reads title, author, date and the information block. The
// information block is removed from doc.
func readMetadata(doc *goquery.Document, x *extraction) pageMeta {
	var m pageMeta

	if s := doc.Find("h3.title").First(); s.Length() > 0 {
		m.title, m.titleNode = squash(s.Text()), s
	}
	if m.title == "" {
		if s := doc.Find("h1").First(); s.Length() > 0 {
			m.title, m.titleNode = squash(s.Text()), s
		}
	}
	if m.title == "" {
		m.title = squash(doc.Find("title").First().Text())
	}

	if s := doc.Find("h2").First(); s.Length() > 0 {
		if c := squash(s.Text()); c != "" && wordCount(c) <= 5 {
			m.author, m.authorNode = c, s
		}
	}
	if m.author == "" {
		m.author = authorFromURL(x.base)
	}

	m.meta = readInfo(doc, x)
	m.date = dateFromMeta(m.meta)
	return m
}

// readInfo reads "Label: value" entries from p.information. Each value runs
// from its span.info label to the next label or line break.
func readInfo(doc *goquery.Document, x *extraction) []folio.MetaEntry {
	info := doc.Find("p.information").First()
	if info.Length() == 0 {
		return nil
	}
	defer info.Remove()

	var out []folio.MetaEntry
	info.Find("span.info").Each(func(_ int, s *goquery.Selection) {
		label := infoKey(s.Text())
		if label == "" {
			return
		}
		b := &inlineBuilder{x: x}
		for n := s.Nodes[0].NextSibling; n != nil; n = n.NextSibling {
			if n.Type == html.ElementNode && (n.DataAtom == atom.Br || (n.DataAtom == atom.Span && hasClass(n, "info"))) {
				break
			}
			b.node(n, folio.SpanText)
		}
		if v := finishProse(b.out); v != nil {
			out = append(out, folio.MetaEntry{Label: label, Value: v})
		}
	})
	return out
}

func infoKey(text string) string {
	text = strings.TrimSpace(strings.TrimRight(squash(text), ":–- "))
	for _, k := range infoKeys {
		if strings.EqualFold(text, k) {
			return k
		}
	}
	return ""
}

// dateFromMeta takes the date from the Written or Published entry.
func dateFromMeta(meta []folio.MetaEntry) string {
	for _, key := range []string{"Written", "First Published", "Published"} {
		for _, e := range meta {
			if e.Label != key {
				continue
			}
			if text := e.Value.Text(); yearRE.MatchString(text) {
				return strings.TrimRight(text, ";.,")
			}
		}
	}
	return ""
}

// authorFromURL reads the author from archive paths like
// /archive/karl-marx/works/.
func authorFromURL(u *url.URL) string {
	parts := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	for i, p := range parts {
		if p != "archive" || i+1 >= len(parts) {
			continue
		}
		name := strings.NewReplacer("-", " ", "_", " ").Replace(parts[i+1])
		words := strings.Fields(name)
		for j, w := range words {
			words[j] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
		}
		return strings.Join(words, " ")
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
