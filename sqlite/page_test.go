package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/folio"
	"github.com/fwojciec/folio/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageCache(t *testing.T) {
	t.Parallel()

	t.Run("returns ENOTFOUND on a miss", func(t *testing.T) {
		t.Parallel()

		cache := sqlite.NewPageCache(setupTestDB(t))

		_, err := cache.FindPage(context.Background(), "https://example.org/ch01.htm")

		assert.Equal(t, folio.ENOTFOUND, folio.ErrorCode(err))
	})

	t.Run("round trips a page by canonical URL", func(t *testing.T) {
		t.Parallel()

		cache := sqlite.NewPageCache(setupTestDB(t))
		ctx := context.Background()
		page := &folio.Page{URL: "https://example.org/Works/ch01.htm", HTML: "<p>Text</p>", ContentType: "text/html"}

		require.NoError(t, cache.SavePage(ctx, page))
		got, err := cache.FindPage(ctx, "https://EXAMPLE.org/works/ch01.htm#top")

		require.NoError(t, err)
		assert.Equal(t, page, got)
	})

	t.Run("records id, hash and fetch time", func(t *testing.T) {
		t.Parallel()

		cache := sqlite.NewPageCache(setupTestDB(t))
		ctx := context.Background()
		before := time.Now().Add(-time.Second)

		require.NoError(t, cache.SavePage(ctx, &folio.Page{URL: "https://example.org/a.htm", HTML: "one"}))
		cp, err := cache.FindCachedPage(ctx, "https://example.org/a.htm")

		require.NoError(t, err)
		assert.NotEmpty(t, cp.ID)
		assert.Len(t, cp.ContentHash, 16)
		assert.True(t, cp.FetchedAt.After(before))
	})

	t.Run("replaces a page and keeps its id", func(t *testing.T) {
		t.Parallel()

		cache := sqlite.NewPageCache(setupTestDB(t))
		ctx := context.Background()

		require.NoError(t, cache.SavePage(ctx, &folio.Page{URL: "https://example.org/a.htm", HTML: "one"}))
		first, err := cache.FindCachedPage(ctx, "https://example.org/a.htm")
		require.NoError(t, err)

		require.NoError(t, cache.SavePage(ctx, &folio.Page{URL: "https://example.org/a.htm", HTML: "two"}))
		second, err := cache.FindCachedPage(ctx, "https://example.org/a.htm")
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "two", second.Page.HTML)
		assert.NotEqual(t, first.ContentHash, second.ContentHash)
	})

	t.Run("treats expired pages as missing", func(t *testing.T) {
		t.Parallel()

		cache := sqlite.NewPageCache(setupTestDB(t))
		ctx := context.Background()
		require.NoError(t, cache.SavePage(ctx, &folio.Page{URL: "https://example.org/a.htm", HTML: "one"}))

		cache.MaxAge = time.Nanosecond
		_, err := cache.FindPage(ctx, "https://example.org/a.htm")

		assert.Equal(t, folio.ENOTFOUND, folio.ErrorCode(err))
	})

	t.Run("rejects a page without URL", func(t *testing.T) {
		t.Parallel()

		cache := sqlite.NewPageCache(setupTestDB(t))

		err := cache.SavePage(context.Background(), &folio.Page{HTML: "x"})

		assert.Equal(t, folio.EINVALID, folio.ErrorCode(err))
	})

	t.Run("deletes a page", func(t *testing.T) {
		t.Parallel()

		cache := sqlite.NewPageCache(setupTestDB(t))
		ctx := context.Background()
		require.NoError(t, cache.SavePage(ctx, &folio.Page{URL: "https://example.org/a.htm", HTML: "one"}))

		require.NoError(t, cache.DeletePage(ctx, "https://example.org/a.htm"))
		_, err := cache.FindPage(ctx, "https://example.org/a.htm")

		assert.Equal(t, folio.ENOTFOUND, folio.ErrorCode(err))
		assert.Equal(t, folio.ENOTFOUND, folio.ErrorCode(cache.DeletePage(ctx, "https://example.org/a.htm")))
	})
}
