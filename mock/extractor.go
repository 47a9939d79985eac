package mock

import "github.com/fwojciec/folio"

var _ folio.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of folio.Extractor.
type Extractor struct {
	ExtractFn func(page *folio.Page, opts folio.ExtractOptions) (*folio.ExtractResult, error)
}

func (e *Extractor) Extract(page *folio.Page, opts folio.ExtractOptions) (*folio.ExtractResult, error) {
	return e.ExtractFn(page, opts)
}

var _ folio.MetadataExtractor = (*MetadataExtractor)(nil)

// MetadataExtractor is a mock implementation of folio.MetadataExtractor.
type MetadataExtractor struct {
	ExtractMetadataFn func(page *folio.Page) (*folio.Metadata, error)
}

func (e *MetadataExtractor) ExtractMetadata(page *folio.Page) (*folio.Metadata, error) {
	return e.ExtractMetadataFn(page)
}

var _ folio.Classifier = (*Classifier)(nil)

// Classifier is a mock implementation of folio.Classifier.
type Classifier struct {
	ClassifyFn func(page *folio.Page) (*folio.Classification, error)
}

func (c *Classifier) Classify(page *folio.Page) (*folio.Classification, error) {
	return c.ClassifyFn(page)
}
