package mock

import (
	"context"

	"github.com/fwojciec/folio"
)

var _ folio.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of folio.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*folio.Page, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*folio.Page, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

var _ folio.PageCache = (*PageCache)(nil)

// PageCache is a mock implementation of folio.PageCache.
type PageCache struct {
	FindPageFn func(ctx context.Context, url string) (*folio.Page, error)
	SavePageFn func(ctx context.Context, page *folio.Page) error
}

func (c *PageCache) FindPage(ctx context.Context, url string) (*folio.Page, error) {
	return c.FindPageFn(ctx, url)
}

func (c *PageCache) SavePage(ctx context.Context, page *folio.Page) error {
	return c.SavePageFn(ctx, page)
}

var _ folio.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of folio.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
