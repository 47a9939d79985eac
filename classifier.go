package folio

// Kind tells whether a root page is a single article or a book index.
type Kind int

const (
	KindArticle Kind = iota
	KindBook
)

func (k Kind) String() string {
	if k == KindBook {
		return "book"
	}
	return "article"
}

// ChapterLink is a chapter discovered on a book index page. Ordinal is the
// position in the index's link sequence, starting at 1.
type ChapterLink struct {
	Ordinal int
	Title   string
	URL     string
	Part    string
}

// Classification is the outcome of inspecting a root page.
type Classification struct {
	Kind   Kind
	URL    string
	Title  string
	Author string

	// Links holds the ordered chapters of a book. Empty for an article.
	Links []ChapterLink

	// Incomplete reports that the index looks sparse or has gaps in its
	// numbered chapter sequence.
	Incomplete bool

	Warnings []Warning
}

// Classifier decides whether a root page is an article or a book.
// Implementations are pure: they never fetch.
type Classifier interface {
	Classify(page *Page) (*Classification, error)
}
