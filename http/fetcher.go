// Package http provides an HTTP-based implementation of folio.Fetcher for
// static HTML sites.
package http

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/folio"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 20 * time.Second

// DefaultUserAgent identifies the converter to the source site.
const DefaultUserAgent = "folio/1.0 (+https://www.marxists.org/)"

// maxBodySize bounds how much of a response is read.
const maxBodySize = 32 << 20

// Ensure Fetcher implements folio.Fetcher at compile time.
var _ folio.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML pages using plain HTTP GET requests. It does not
// execute JavaScript and never retries.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (20s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves url and returns its body decoded to UTF-8. Errors are
// *folio.FetchError with reason network, http_status or parse.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*folio.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &folio.FetchError{URL: url, Reason: folio.FetchNetwork, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &folio.FetchError{URL: url, Reason: folio.FetchNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &folio.FetchError{URL: url, Reason: folio.FetchHTTPStatus, StatusCode: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	if !isHTML(contentType) {
		return nil, &folio.FetchError{URL: url, Reason: folio.FetchParse, Err: errors.New("unexpected content type " + contentType)}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &folio.FetchError{URL: url, Reason: folio.FetchNetwork, Err: err}
	}

	body, err := decode(raw, contentType)
	if err != nil {
		return nil, &folio.FetchError{URL: url, Reason: folio.FetchParse, Err: err}
	}

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &folio.Page{
		URL:         finalURL,
		HTML:        body,
		ContentType: contentType,
	}, nil
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}

// isHTML accepts a missing content type, since old static hosts often
// omit it.
func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(strings.ToLower(contentType), "html")
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// decode converts raw to UTF-8 using the declared or sniffed charset and
// checks that the result parses as HTML.
func decode(raw []byte, contentType string) (string, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return "", errors.New("empty body")
	}

	r, err := charset.NewReader(strings.NewReader(string(raw)), contentType)
	if err != nil {
		return "", err
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	body := string(decoded)
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return "", err
	}
	if !hasElement(doc) {
		return "", errors.New("no HTML elements")
	}
	return body, nil
}

// hasElement reports whether the tree has any element besides the implied
// html, head and body wrappers.
func hasElement(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			switch c.Data {
			case "html", "head", "body":
			default:
				return true
			}
		}
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) != "" {
			return true
		}
		if hasElement(c) {
			return true
		}
	}
	return false
}
