package slog_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/fwojciec/folio"
	"github.com/fwojciec/folio/mock"
	folioslog "github.com/fwojciec/folio/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingClassifier_Classify(t *testing.T) {
	t.Parallel()

	t.Run("logs kind and chapter count", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Classifier{
			ClassifyFn: func(page *folio.Page) (*folio.Classification, error) {
				return &folio.Classification{
					Kind:  folio.KindBook,
					URL:   page.URL,
					Links: []folio.ChapterLink{{Ordinal: 1}, {Ordinal: 2}},
				}, nil
			},
		}

		cl, err := folioslog.NewLoggingClassifier(inner, logger).Classify(&folio.Page{URL: "https://example.org/index.htm"})

		require.NoError(t, err)
		assert.Equal(t, folio.KindBook, cl.Kind)
		output := buf.String()
		assert.Contains(t, output, "msg=classify")
		assert.Contains(t, output, "url=https://example.org/index.htm")
		assert.Contains(t, output, "kind=book")
		assert.Contains(t, output, "chapters=2")
		assert.Contains(t, output, "incomplete=false")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Classifier{
			ClassifyFn: func(page *folio.Page) (*folio.Classification, error) {
				return nil, folio.Errorf(folio.EINVALID, "page is required")
			},
		}

		_, err := folioslog.NewLoggingClassifier(inner, logger).Classify(nil)

		require.Error(t, err)
		assert.Contains(t, buf.String(), "page is required")
		assert.NotContains(t, buf.String(), "kind=")
	})
}
