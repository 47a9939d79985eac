package goquery

import (
	"net/url"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/folio"
)

// Thresholds for telling a book index from an article.
const (
	minBookLinks     = 4
	minTOCLinks      = 3
	minCompleteLinks = 3
	bookLinkDensity  = 0.25
	thinProse        = 2000
)

var (
	tocHeadingRE  = regexp.MustCompile(`(?i)^(?:table of )?contents:?$`)
	partHeadingRE = regexp.MustCompile(`(?i)^part\s+(?:[IVXLC]+|\d+)\b`)
	chapterNumRE  = regexp.MustCompile(`(?i)^ch(?:apter)?[-_]?(\d+)`)
)

// Ensure Classifier implements folio.Classifier.
var _ folio.Classifier = (*Classifier)(nil)

// Classifier tells a single article from a book index by looking at the
// root page alone.
type Classifier struct{}

// NewClassifier creates a Classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// linkCandidate is a chapter link found on an index page.
type linkCandidate struct {
	url   string
	title string
	part  string
}

// Classify applies the classification predicates in order.
func (c *Classifier) Classify(page *folio.Page) (*folio.Classification, error) {
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
	doc.Find("script, style, noscript, nav, header, footer").Remove()

	links := chapterLinks(doc, base)
	toc := tocLinks(doc, base)
	links = tocFirst(links, toc)
	density := linkDensity(doc)
	prose := proseLength(doc)

	result := &folio.Classification{
		Kind: folio.KindArticle,
		URL:  page.URL,
	}
	warn := func(kind folio.WarningKind, msg string) {
		result.Warnings = append(result.Warnings, folio.Warning{Kind: kind, URL: page.URL, Message: msg})
	}

	switch {
	case len(links) == 0:
		if prose < thinProse {
			warn(folio.WarnClassification, "no chapter links and little prose; treating as article")
		}
	case isIndexPath(base):
		result.Kind = folio.KindBook
	case len(links) >= minBookLinks && (len(toc) >= minTOCLinks || density >= bookLinkDensity || prose < thinProse):
		result.Kind = folio.KindBook
	}

	if result.Kind == folio.KindArticle {
		return result, nil
	}

	result.Title, result.Author = bookMetadata(doc, base)
	for i, l := range links {
		result.Links = append(result.Links, folio.ChapterLink{
			Ordinal: i + 1,
			Title:   l.title,
			URL:     l.url,
			Part:    l.part,
		})
	}
	result.Incomplete = (len(links) < minCompleteLinks && len(toc) == 0) || hasGaps(links)
	return result, nil
}

// chapterLinks collects links to chapter pages in document order, deduped
// by canonical URL, with the part heading each falls under.
func chapterLinks(doc *goquery.Document, base *url.URL) []linkCandidate {
	var (
		links []linkCandidate
		seen  = make(map[string]int)
		part  string
	)
	doc.Find("h2, h3, h4, a[href]").Each(func(_ int, s *goquery.Selection) {
		if !s.Is("a") {
			if text := squash(s.Text()); partHeadingRE.MatchString(text) {
				part = text
			}
			return
		}
		href, _ := s.Attr("href")
		if isNonHTTPLink(href) {
			return
		}
		u, ok := resolveURL(base, href)
		if !ok || !isChapterURL(base, u) {
			return
		}
		key := folio.CanonicalURL(u.String())
		title := squash(s.Text())
		if i, dup := seen[key]; dup {
			if links[i].title == "" {
				links[i].title = title
			}
			return
		}
		seen[key] = len(links)
		links = append(links, linkCandidate{url: u.String(), title: title, part: part})
	})
	return links
}

// tocLinks returns the canonical URLs of chapter links that sit in a table
// of contents: after a "Contents" heading, or in a list or table holding at
// least three chapter links.
func tocLinks(doc *goquery.Document, base *url.URL) map[string]bool {
	toc := make(map[string]bool)
	collect := func(s *goquery.Selection) []string {
		var keys []string
		s.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			if u, ok := resolveURL(base, href); ok && isChapterURL(base, u) {
				keys = append(keys, folio.CanonicalURL(u.String()))
			}
		})
		return keys
	}

	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, h *goquery.Selection) {
		if !tocHeadingRE.MatchString(squash(h.Text())) {
			return
		}
		for sib := h.Next(); sib.Length() > 0 && !sib.Is("h1, h2, h3, h4, h5, h6"); sib = sib.Next() {
			for _, k := range collect(sib) {
				toc[k] = true
			}
		}
	})

	doc.Find("ul, ol, table").Each(func(_ int, s *goquery.Selection) {
		keys := collect(s)
		if len(keys) < minTOCLinks {
			return
		}
		for _, k := range keys {
			toc[k] = true
		}
	})
	return toc
}

// tocFirst moves table of contents links ahead of the rest, keeping
// document order within each group.
func tocFirst(links []linkCandidate, toc map[string]bool) []linkCandidate {
	if len(toc) == 0 {
		return links
	}
	out := make([]linkCandidate, 0, len(links))
	for _, l := range links {
		if toc[folio.CanonicalURL(l.url)] {
			out = append(out, l)
		}
	}
	for _, l := range links {
		if !toc[folio.CanonicalURL(l.url)] {
			out = append(out, l)
		}
	}
	return out
}

// linkDensity is the share of body text that sits inside anchors.
func linkDensity(doc *goquery.Document) float64 {
	body := doc.Find("body")
	total := len(squash(body.Text()))
	if total == 0 {
		return 0
	}
	anchors := 0
	body.Find("a").Each(func(_ int, s *goquery.Selection) {
		anchors += len(squash(s.Text()))
	})
	return float64(anchors) / float64(total)
}

// proseLength is the amount of paragraph text outside anchors.
func proseLength(doc *goquery.Document) int {
	n := 0
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		n += len(squash(p.Text()))
		p.Find("a").Each(func(_ int, a *goquery.Selection) {
			n -= len(squash(a.Text()))
		})
	})
	return max(n, 0)
}

// hasGaps reports whether numbered chapter file names skip a number.
func hasGaps(links []linkCandidate) bool {
	var nums []int
	for _, l := range links {
		u, err := url.Parse(l.url)
		if err != nil {
			continue
		}
		m := chapterNumRE.FindStringSubmatch(path.Base(u.Path))
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil {
			nums = append(nums, n)
		}
	}
	if len(nums) < 2 {
		return false
	}
	sort.Ints(nums)
	for i := 1; i < len(nums); i++ {
		if nums[i]-nums[i-1] > 1 {
			return true
		}
	}
	return false
}

// bookMetadata reads a book's title and author from its index page.
func bookMetadata(doc *goquery.Document, base *url.URL) (title, author string) {
	for _, sel := range []string{"h1", "h3.title", "title"} {
		if title = squash(doc.Find(sel).First().Text()); title != "" {
			break
		}
	}
	if title == "" {
		title = folio.DefaultBookTitle
	}
	if c := squash(doc.Find("h2").First().Text()); c != "" && wordCount(c) <= 5 && !partHeadingRE.MatchString(c) && !tocHeadingRE.MatchString(c) {
		author = c
	}
	if author == "" {
		author = authorFromURL(base)
	}
	return title, author
}
