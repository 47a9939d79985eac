package folio

// ExtractOptions carries book context into extraction of a single page.
type ExtractOptions struct {
	// Chapters is the set of chapters in the current book. Links to these
	// pages become internal links.
	Chapters ChapterSet

	// BookTitle and BookAuthor are dropped when they are repeated as
	// headings at the top of a chapter page.
	BookTitle  string
	BookAuthor string
}

// ExtractResult holds one page's unit and the warnings raised while
// extracting it.
type ExtractResult struct {
	Unit     *Unit
	Warnings []Warning
}

// Extractor turns a page into a structured unit, removing boilerplate and
// reconciling footnotes.
type Extractor interface {
	Extract(page *Page, opts ExtractOptions) (*ExtractResult, error)
}

// Metadata is descriptive information about a page.
type Metadata struct {
	Title  string
	Author string
	Date   string
}

// MetadataExtractor reads generic page metadata. It is used when the
// site's own markers are missing.
type MetadataExtractor interface {
	ExtractMetadata(page *Page) (*Metadata, error)
}
