package folio

import "fmt"

// WarningKind identifies a non-fatal problem recorded during a job.
type WarningKind string

const (
	WarnChapterSkipped     WarningKind = "chapter_skipped"
	WarnClassification     WarningKind = "classification_ambiguous"
	WarnIncompleteIndex    WarningKind = "incomplete_index"
	WarnFootnoteUnresolved WarningKind = "footnote_unresolved"
	WarnFootnoteAmbiguous  WarningKind = "footnote_low_confidence"
	WarnFootnoteDangling   WarningKind = "footnote_dangling"
	WarnMetadata           WarningKind = "metadata"
	WarnCache              WarningKind = "cache"
)

// Warning is a non-fatal problem attached to a job result.
type Warning struct {
	Kind    WarningKind
	URL     string
	Message string
}

func (w Warning) String() string {
	if w.URL == "" {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", w.Kind, w.Message, w.URL)
}
