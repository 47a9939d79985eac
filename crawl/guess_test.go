package crawl_test

import (
	"context"
	"strings"
	"testing"

	"github.com/fwojciec/folio"
	"github.com/fwojciec/folio/crawl"
	"github.com/fwojciec/folio/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bookDir = "https://www.marxists.org/archive/marx/works/1867-c1/"

// siteFetcher serves the given pages and answers 404 for anything else.
func siteFetcher(pages map[string]string, requested *[]string) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (*folio.Page, error) {
			if requested != nil {
				*requested = append(*requested, url)
			}
			html, ok := pages[url]
			if !ok {
				return nil, &folio.FetchError{URL: url, Reason: folio.FetchHTTPStatus, StatusCode: 404}
			}
			return &folio.Page{URL: url, HTML: html}, nil
		},
	}
}

var chapterBody = "<html><body><p>" + strings.Repeat("text ", 60) + "</p></body></html>"

func TestGuesser_Guess(t *testing.T) {
	t.Parallel()

	t.Run("finds numbered chapters and stops after misses", func(t *testing.T) {
		t.Parallel()

		var requested []string
		fetcher := siteFetcher(map[string]string{
			bookDir + "ch01.htm": chapterBody,
			bookDir + "ch02.htm": chapterBody,
			bookDir + "ch3.htm":  chapterBody,
		}, &requested)
		g := crawl.Guesser{Limit: 40, MaxMisses: 3}
		known := []folio.ChapterLink{{Ordinal: 1, Title: "Commodities", URL: bookDir + "ch01.htm"}}

		links, err := g.Guess(context.Background(), fetcher, bookDir+"index.htm", known)

		require.NoError(t, err)
		require.Len(t, links, 3)
		assert.Equal(t, folio.ChapterLink{Ordinal: 1, Title: "Commodities", URL: bookDir + "ch01.htm"}, links[0])
		assert.Equal(t, bookDir+"ch02.htm", links[1].URL)
		assert.Empty(t, links[1].Title)
		assert.Equal(t, bookDir+"ch3.htm", links[2].URL)
		assert.Equal(t, 3, links[2].Ordinal)
		assert.NotContains(t, requested, bookDir+"ch07.htm")
	})

	t.Run("treats tiny pages as misses", func(t *testing.T) {
		t.Parallel()

		fetcher := siteFetcher(map[string]string{
			bookDir + "ch01.htm": "<p>Not found</p>",
		}, nil)
		g := crawl.Guesser{Limit: 5, MaxMisses: 2}

		links, err := g.Guess(context.Background(), fetcher, bookDir+"index.htm", nil)

		require.NoError(t, err)
		assert.Empty(t, links)
	})

	t.Run("returns hits so far on cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*folio.Page, error) {
				if strings.HasSuffix(url, "ch01.htm") {
					return &folio.Page{URL: url, HTML: chapterBody}, nil
				}
				cancel()
				return nil, context.Canceled
			},
		}
		g := crawl.Guesser{Limit: 5, MaxMisses: 2}

		links, err := g.Guess(ctx, fetcher, bookDir+"index.htm", nil)

		require.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, links)
	})
}
