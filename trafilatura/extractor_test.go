package trafilatura_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/folio"
	"github.com/fwojciec/folio/trafilatura"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataExtractor_ExtractMetadata(t *testing.T) {
	t.Parallel()

	t.Run("reads title from meta tags", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<head>
<title>Wage Labour and Capital</title>
<meta property="og:title" content="Wage Labour and Capital">
<meta name="author" content="Karl Marx">
</head>
<body>
<article>
<h1>Wage Labour and Capital</h1>
<p>` + strings.Repeat("From various quarters we have been reproached for not presenting the economic relations. ", 5) + `</p>
</article>
</body>
</html>`

		meta, err := trafilatura.NewMetadataExtractor().ExtractMetadata(&folio.Page{URL: "https://example.org/wage-labour.htm", HTML: html})

		require.NoError(t, err)
		assert.Contains(t, meta.Title, "Wage Labour")
	})

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		_, err := trafilatura.NewMetadataExtractor().ExtractMetadata(&folio.Page{URL: "https://example.org/"})

		assert.Equal(t, folio.EINVALID, folio.ErrorCode(err))
	})

	t.Run("rejects nil page", func(t *testing.T) {
		t.Parallel()

		_, err := trafilatura.NewMetadataExtractor().ExtractMetadata(nil)

		assert.Equal(t, folio.EINVALID, folio.ErrorCode(err))
	})
}
