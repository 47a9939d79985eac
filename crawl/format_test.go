package crawl_test

import (
	"errors"
	"testing"

	"github.com/fwojciec/folio/crawl"
	"github.com/stretchr/testify/assert"
)

func TestTruncateURL(t *testing.T) {
	t.Parallel()

	t.Run("keeps short URLs", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "https://x.org", crawl.TruncateURL("https://x.org", 50))
	})

	t.Run("keeps the informative tail", func(t *testing.T) {
		t.Parallel()
		result := crawl.TruncateURL("https://www.marxists.org/archive/marx/works/1867-c1/ch01.htm", 16)
		assert.Equal(t, "...7-c1/ch01.htm", result)
		assert.Len(t, result, 16)
	})

	t.Run("returns empty string for non-positive width", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, crawl.TruncateURL("https://x.org", 0))
		assert.Empty(t, crawl.TruncateURL("https://x.org", -3))
	})

	t.Run("returns a prefix when the width cannot hold dots", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "ht", crawl.TruncateURL("https://x.org", 2))
	})
}

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "900 B", crawl.FormatBytes(900))
	assert.Equal(t, "2.0 KB", crawl.FormatBytes(2048))
	assert.Equal(t, "1.5 MB", crawl.FormatBytes(3*512*1024))
}

func TestFormatEvent(t *testing.T) {
	t.Parallel()

	t.Run("shows chapter position", func(t *testing.T) {
		t.Parallel()

		line := crawl.FormatEvent(crawl.ProgressEvent{
			State:   crawl.StateFetching,
			Chapter: 3,
			Total:   12,
			URL:     "https://x.org/w/ch03.htm",
		}, 80)

		assert.Equal(t, "[3/12] fetching https://x.org/w/ch03.htm", line)
	})

	t.Run("appends error", func(t *testing.T) {
		t.Parallel()

		line := crawl.FormatEvent(crawl.ProgressEvent{
			State: crawl.StateClassifying,
			URL:   "https://x.org/",
			Err:   errors.New("HTTP 500"),
		}, 80)

		assert.Equal(t, "classifying https://x.org/: HTTP 500", line)
	})
}
