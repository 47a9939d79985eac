package goquery

import (
	"net/url"
	"path"
	"strings"
)

// resolveURL resolves href against base and strips the fragment.
func resolveURL(base *url.URL, href string) (*url.URL, bool) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return nil, false
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	resolved.RawFragment = ""
	return resolved, true
}

// pageFragment returns the lowercased fragment of href when it points into
// the page at base, as "#n1" or "thispage.htm#n1" do.
func pageFragment(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	i := strings.IndexByte(href, '#')
	if i < 0 || i == len(href)-1 {
		return "", false
	}
	frag := strings.ToLower(href[i+1:])
	if i == 0 {
		return frag, true
	}
	resolved, ok := resolveURL(base, href[:i])
	if !ok || !samePage(base, resolved) {
		return "", false
	}
	return frag, true
}

// samePage compares two URLs ignoring fragment, case and trailing slash.
func samePage(a, b *url.URL) bool {
	x, y := *a, *b
	x.Fragment, y.Fragment = "", ""
	x.RawFragment, y.RawFragment = "", ""
	return strings.TrimRight(strings.ToLower(x.String()), "/") == strings.TrimRight(strings.ToLower(y.String()), "/")
}

// isSameHost checks if the resolved URL has the same host as the base URL.
// This uses exact host matching - subdomains are considered different hosts.
func isSameHost(base, u *url.URL) bool {
	return strings.EqualFold(u.Host, base.Host)
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}

// isIndexPath reports whether u names a directory index page.
func isIndexPath(u *url.URL) bool {
	name := strings.ToLower(path.Base(u.Path))
	return name == "index.htm" || name == "index.html"
}

// dirOf returns the directory part of a URL path, with a trailing slash.
func dirOf(p string) string {
	if strings.HasSuffix(p, "/") {
		return p
	}
	d := path.Dir(p)
	if d == "/" || d == "." {
		return "/"
	}
	return d + "/"
}

// isChapterURL reports whether u looks like a chapter of the work whose
// index is base: an .htm/.html page on the same host, in or below the
// index's directory, that is neither an index nor the index page itself.
func isChapterURL(base, u *url.URL) bool {
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if !isSameHost(base, u) || samePage(base, u) || isIndexPath(u) {
		return false
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if ext != ".htm" && ext != ".html" {
		return false
	}
	return strings.HasPrefix(strings.ToLower(u.Path), strings.ToLower(dirOf(base.Path)))
}
