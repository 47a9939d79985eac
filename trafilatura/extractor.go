// Package trafilatura reads generic page metadata with go-trafilatura.
package trafilatura

import (
	"strings"

	"github.com/fwojciec/folio"
	"github.com/markusmobius/go-trafilatura"
)

// Ensure MetadataExtractor implements folio.MetadataExtractor at compile time.
var _ folio.MetadataExtractor = (*MetadataExtractor)(nil)

// MetadataExtractor reads title, author and date from meta tags, JSON-LD
// and other generic conventions.
type MetadataExtractor struct{}

// NewMetadataExtractor creates a new MetadataExtractor.
func NewMetadataExtractor() *MetadataExtractor {
	return &MetadataExtractor{}
}

// ExtractMetadata returns whatever metadata trafilatura finds. Missing
// fields are empty.
func (e *MetadataExtractor) ExtractMetadata(page *folio.Page) (*folio.Metadata, error) {
	if page == nil || strings.TrimSpace(page.HTML) == "" {
		return nil, folio.Errorf(folio.EINVALID, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(page.HTML), trafilatura.Options{})
	if err != nil {
		return nil, err
	}

	meta := &folio.Metadata{
		Title:  strings.TrimSpace(result.Metadata.Title),
		Author: strings.TrimSpace(result.Metadata.Author),
	}
	if !result.Metadata.Date.IsZero() {
		meta.Date = result.Metadata.Date.Format("2006-01-02")
	}
	return meta, nil
}
