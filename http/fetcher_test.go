package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/folio"
	foliohttp "github.com/fwojciec/folio/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns HTML body from server", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><body>Hello World</body></html>"))
		}))
		defer server.Close()

		fetcher := foliohttp.NewFetcher()
		defer fetcher.Close()

		page, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "<html><body>Hello World</body></html>", page.HTML)
		assert.Equal(t, server.URL, page.URL)
		assert.Equal(t, 37, page.Size())
	})

	t.Run("sends user agent", func(t *testing.T) {
		t.Parallel()

		var got string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("User-Agent")
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<p>x</p>"))
		}))
		defer server.Close()

		fetcher := foliohttp.NewFetcher(foliohttp.WithUserAgent("test-agent/2"))
		_, err := fetcher.Fetch(context.Background(), server.URL)

		require.NoError(t, err)
		assert.Equal(t, "test-agent/2", got)
	})

	t.Run("decodes legacy charsets to UTF-8", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
			_, _ = w.Write([]byte("<p>Caf\xe9</p>"))
		}))
		defer server.Close()

		fetcher := foliohttp.NewFetcher()
		page, err := fetcher.Fetch(context.Background(), server.URL)

		require.NoError(t, err)
		assert.Contains(t, page.HTML, "Café")
	})

	t.Run("follows redirects and reports final URL", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/old.htm", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/new.htm", http.StatusMovedPermanently)
		})
		mux.HandleFunc("/new.htm", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<p>moved</p>"))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		fetcher := foliohttp.NewFetcher()
		page, err := fetcher.Fetch(context.Background(), server.URL+"/old.htm")

		require.NoError(t, err)
		assert.Equal(t, server.URL+"/new.htm", page.URL)
	})

	t.Run("respects custom timeout option", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte("response"))
		}))
		defer server.Close()

		fetcher := foliohttp.NewFetcher(foliohttp.WithTimeout(10 * time.Millisecond))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.Error(t, err)
		assertReason(t, err, folio.FetchNetwork)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte("response"))
		}))
		defer server.Close()

		fetcher := foliohttp.NewFetcher()
		defer fetcher.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := fetcher.Fetch(ctx, server.URL)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("returns network error for non-existent host", func(t *testing.T) {
		t.Parallel()

		fetcher := foliohttp.NewFetcher(foliohttp.WithTimeout(100 * time.Millisecond))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), "http://non-existent-host.invalid/page")
		require.Error(t, err)
		assertReason(t, err, folio.FetchNetwork)
	})

	t.Run("returns status error for non-200 status codes", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("404 Not Found"))
		}))
		defer server.Close()

		fetcher := foliohttp.NewFetcher()
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
		assertReason(t, err, folio.FetchHTTPStatus)
		assert.Equal(t, folio.EFETCH, folio.ErrorCode(err))
	})

	t.Run("returns parse error for non-HTML content", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write([]byte("%PDF-1.4"))
		}))
		defer server.Close()

		fetcher := foliohttp.NewFetcher()
		_, err := fetcher.Fetch(context.Background(), server.URL)

		require.Error(t, err)
		assertReason(t, err, folio.FetchParse)
	})

	t.Run("returns parse error for empty body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("   \n"))
		}))
		defer server.Close()

		fetcher := foliohttp.NewFetcher()
		_, err := fetcher.Fetch(context.Background(), server.URL)

		require.Error(t, err)
		assertReason(t, err, folio.FetchParse)
	})
}

func assertReason(t *testing.T, err error, want folio.FetchReason) {
	t.Helper()

	var fe *folio.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, want, fe.Reason)
}

// Compile-time verification that Fetcher implements folio.Fetcher
var _ folio.Fetcher = (*foliohttp.Fetcher)(nil)
