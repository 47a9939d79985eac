package folio

import "context"

// Page is a fetched HTML page. URL is the final address after redirects and
// HTML is the body decoded to UTF-8.
type Page struct {
	URL         string
	HTML        string
	ContentType string
}

// Size returns the length of the page body in bytes.
func (p *Page) Size() int {
	return len(p.HTML)
}

// Fetcher retrieves HTML pages.
type Fetcher interface {
	// Fetch issues a single GET for url. Failures are reported as
	// *FetchError. Fetch never retries.
	Fetch(ctx context.Context, url string) (*Page, error)

	// Close releases resources held by the fetcher.
	Close() error
}

// PageCache stores previously fetched pages so that repeated conversions
// of the same work do not hit the source site again.
type PageCache interface {
	// FindPage returns a cached page. Returns ENOTFOUND on a miss.
	FindPage(ctx context.Context, url string) (*Page, error)

	// SavePage stores or replaces the page for page.URL.
	SavePage(ctx context.Context, page *Page) error
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
