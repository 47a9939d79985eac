package folio

import (
	"net/url"
	"strings"
)

// CanonicalURL returns a comparison key for a URL: lowercased, without
// fragment and without a trailing slash. It is never used for fetching.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if u, err := url.Parse(raw); err == nil {
		u.Fragment = ""
		u.RawFragment = ""
		raw = u.String()
	}
	return strings.TrimRight(strings.ToLower(raw), "/")
}

// ChapterSet maps canonical chapter URLs to chapter ordinals.
type ChapterSet map[string]int

// NewChapterSet builds a set from chapter links.
func NewChapterSet(links []ChapterLink) ChapterSet {
	set := make(ChapterSet, len(links))
	for _, l := range links {
		set[CanonicalURL(l.URL)] = l.Ordinal
	}
	return set
}

// Lookup reports the ordinal of the chapter at url, if it is in the set.
func (s ChapterSet) Lookup(url string) (int, bool) {
	n, ok := s[CanonicalURL(url)]
	return n, ok
}
