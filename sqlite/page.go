package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fwojciec/folio"
	"github.com/google/uuid"
)

var _ folio.PageCache = (*PageCache)(nil)

// PageCache implements folio.PageCache using SQLite. Pages are keyed by
// canonical URL, so "…/ch01.htm#top" and "…/ch01.htm" share an entry.
type PageCache struct {
	db *DB

	// MaxAge bounds how old a cached page may be. Zero means forever.
	MaxAge time.Duration

	now func() time.Time
}

// NewPageCache creates a new PageCache.
func NewPageCache(db *DB) *PageCache {
	return &PageCache{db: db, now: time.Now}
}

// CachedPage is a page row with its bookkeeping columns.
type CachedPage struct {
	ID          string
	Page        *folio.Page
	ContentHash string
	FetchedAt   time.Time
}

// FindPage returns the cached page for url.
func (c *PageCache) FindPage(ctx context.Context, url string) (*folio.Page, error) {
	cp, err := c.FindCachedPage(ctx, url)
	if err != nil {
		return nil, err
	}
	if c.MaxAge > 0 && c.now().Sub(cp.FetchedAt) > c.MaxAge {
		return nil, folio.Errorf(folio.ENOTFOUND, "cached page expired")
	}
	return cp.Page, nil
}

// FindCachedPage returns the row stored for url.
func (c *PageCache) FindCachedPage(ctx context.Context, url string) (*CachedPage, error) {
	var (
		cp        CachedPage
		page      folio.Page
		fetchedAt string
	)

	err := c.db.QueryRowContext(ctx, `
		SELECT id, url, html, content_type, content_hash, fetched_at
		FROM pages
		WHERE url_key = ?
	`, folio.CanonicalURL(url)).Scan(&cp.ID, &page.URL, &page.HTML, &page.ContentType, &cp.ContentHash, &fetchedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, folio.Errorf(folio.ENOTFOUND, "page not cached")
	}
	if err != nil {
		return nil, err
	}

	cp.FetchedAt, err = parseRFC3339(fetchedAt, "fetched_at")
	if err != nil {
		return nil, err
	}
	cp.Page = &page
	return &cp, nil
}

// SavePage stores page, replacing any earlier copy of the same URL. The
// row id of an existing entry is kept.
func (c *PageCache) SavePage(ctx context.Context, page *folio.Page) error {
	if page == nil || page.URL == "" {
		return folio.Errorf(folio.EINVALID, "page URL required")
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO pages (id, url_key, url, html, content_type, content_hash, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url_key) DO UPDATE SET
			url = excluded.url,
			html = excluded.html,
			content_type = excluded.content_type,
			content_hash = excluded.content_hash,
			fetched_at = excluded.fetched_at
	`, uuid.New().String(), folio.CanonicalURL(page.URL), page.URL, page.HTML, page.ContentType,
		hashContent(page.HTML), c.now().UTC().Format(time.RFC3339))

	return err
}

// DeletePage removes the cached copy of url.
func (c *PageCache) DeletePage(ctx context.Context, url string) error {
	result, err := c.db.ExecContext(ctx, "DELETE FROM pages WHERE url_key = ?", folio.CanonicalURL(url))
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return folio.Errorf(folio.ENOTFOUND, "page not cached")
	}
	return nil
}
