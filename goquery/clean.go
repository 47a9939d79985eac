package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// boilerplateTags are removed wholesale before any text is read.
const boilerplateTags = "script, style, noscript, iframe, header, footer, nav, form, button, input, select, textarea, img, object, embed, svg"

var (
	// boilerplateAttrRE matches class or id values of navigation, page
	// chrome and advertisement containers.
	boilerplateAttrRE = regexp.MustCompile(`(?i)footer|terms|\bnav|\bheader|crumbs|breadcrumb|advert|\bads?\b|banner|sidebar|menu|t2h-`)

	// breadcrumbRE matches archive breadcrumb trails such as
	// "MIA > Archive > Marx > Works".
	breadcrumbRE = regexp.MustCompile(`(?i)^(MIA|Archive)\b.*>`)

	// navHeadingRE matches headings that only carry navigation.
	navHeadingRE = regexp.MustCompile(`(?i)>>|<<|top of the page`)

	contentIDRE    = regexp.MustCompile(`(?i)content|main|text`)
	contentClassRE = regexp.MustCompile(`(?i)content|main|text|body`)
)

// removeBoilerplate strips navigation, page chrome and generator artifacts
// from doc in place.
func removeBoilerplate(doc *goquery.Document) {
	doc.Find(boilerplateTags).Remove()

	doc.Find("[class], [id]").Each(func(_ int, s *goquery.Selection) {
		if s.Is("html, body") {
			return
		}
		class, _ := s.Attr("class")
		id, _ := s.Attr("id")
		if boilerplateAttrRE.MatchString(class) || boilerplateAttrRE.MatchString(id) {
			s.Remove()
		}
	})

	doc.Find("span").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(strings.ToLower(s.Text()), "t2h-")
	}).Remove()

	doc.Find("p, div, span").Each(func(_ int, s *goquery.Selection) {
		text := squash(s.Text())
		if breadcrumbRE.MatchString(text) && !hasBlocks(s) {
			s.Remove()
		}
	})

	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		if navHeadingRE.MatchString(s.Text()) {
			s.Remove()
		}
	})
}

// removeBackLinks drops "back to" and "return to" navigation links along
// with the line holding them. It runs after note collection so that
// definitions carrying such links are not lost.
func removeBackLinks(doc *goquery.Document) {
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		text := strings.ToLower(s.Text())
		if !strings.Contains(text, "back to") && !strings.Contains(text, "return to") {
			return
		}
		parent := s.Parent()
		if parent.Length() == 0 || parent.Is("html, body") || hasBlocks(parent) {
			s.Remove()
			return
		}
		parent.Remove()
	})
}

// hasBlocks reports whether s contains block-level elements.
func hasBlocks(s *goquery.Selection) bool {
	return s.Find("p, div, table, blockquote, ul, ol, h1, h2, h3, h4, h5, h6").Length() > 0
}

// contentNode picks the element holding the main text: the longest element
// whose id, then class, names it as content. Falls back to body.
func contentNode(doc *goquery.Document) *goquery.Selection {
	candidates := doc.Find("div, article, section, main").FilterFunction(func(_ int, s *goquery.Selection) bool {
		id, _ := s.Attr("id")
		return contentIDRE.MatchString(id)
	})
	if candidates.Length() == 0 {
		candidates = doc.Find("div, article, section, main, table").FilterFunction(func(_ int, s *goquery.Selection) bool {
			class, _ := s.Attr("class")
			return contentClassRE.MatchString(class)
		})
	}

	var best *goquery.Selection
	bestLen := -1
	candidates.Each(func(_ int, s *goquery.Selection) {
		if n := len(squash(s.Text())); n > bestLen {
			best, bestLen = s, n
		}
	})
	if best != nil && bestLen > 0 {
		return best
	}

	if body := doc.Find("body"); body.Length() > 0 {
		return body.First()
	}
	return doc.Selection
}
