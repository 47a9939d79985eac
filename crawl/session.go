package crawl

import (
	"context"
	"net/url"

	"github.com/fwojciec/folio"
)

var _ folio.Fetcher = (*Session)(nil)

// Session is the fetch path of a single job. Every network request waits
// on the limiter first, so at most one request per interval reaches a
// site. Pages already seen in the job are served from memory, and an
// optional cache is consulted before the limiter. A Session is not safe
// for concurrent use; jobs do not share sessions.
type Session struct {
	fetcher folio.Fetcher
	limiter folio.DomainLimiter
	cache   folio.PageCache

	memo     map[string]*folio.Page
	requests int
	warnings []folio.Warning
}

// NewSession creates a Session. cache may be nil.
func NewSession(fetcher folio.Fetcher, limiter folio.DomainLimiter, cache folio.PageCache) *Session {
	return &Session{
		fetcher: fetcher,
		limiter: limiter,
		cache:   cache,
		memo:    make(map[string]*folio.Page),
	}
}

// Fetch returns the page at rawURL.
func (s *Session) Fetch(ctx context.Context, rawURL string) (*folio.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := folio.CanonicalURL(rawURL)
	if page, ok := s.memo[key]; ok {
		return page, nil
	}

	if s.cache != nil {
		page, err := s.cache.FindPage(ctx, rawURL)
		switch {
		case err == nil:
			s.memo[key] = page
			return page, nil
		case folio.ErrorCode(err) != folio.ENOTFOUND:
			s.warn(rawURL, "cache lookup failed: "+err.Error())
		}
	}

	if err := s.limiter.Wait(ctx, host(rawURL)); err != nil {
		return nil, err
	}

	s.requests++
	page, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	s.memo[key] = page

	if s.cache != nil {
		if err := s.cache.SavePage(ctx, page); err != nil {
			s.warn(rawURL, "cache write failed: "+err.Error())
		}
	}

	return page, nil
}

// Close is a no-op; the session does not own its fetcher.
func (s *Session) Close() error {
	return nil
}

// Requests returns the number of network requests issued.
func (s *Session) Requests() int {
	return s.requests
}

// Warnings returns problems with the cache seen so far.
func (s *Session) Warnings() []folio.Warning {
	return s.warnings
}

func (s *Session) warn(rawURL, msg string) {
	s.warnings = append(s.warnings, folio.Warning{Kind: folio.WarnCache, URL: rawURL, Message: msg})
}

func host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
