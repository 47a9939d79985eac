package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/folio"
)

// Ensure LoggingClassifier implements folio.Classifier.
var _ folio.Classifier = (*LoggingClassifier)(nil)

// LoggingClassifier wraps a Classifier with logging.
type LoggingClassifier struct {
	next   folio.Classifier
	logger *slog.Logger
}

// NewLoggingClassifier creates a new LoggingClassifier.
func NewLoggingClassifier(next folio.Classifier, logger *slog.Logger) *LoggingClassifier {
	return &LoggingClassifier{next: next, logger: logger}
}

// Classify delegates to the wrapped classifier and logs the decision.
func (c *LoggingClassifier) Classify(page *folio.Page) (cl *folio.Classification, err error) {
	defer func(begin time.Time) {
		attrs := []any{"duration", time.Since(begin), "err", err}
		if page != nil {
			attrs = append(attrs, "url", page.URL)
		}
		if cl != nil {
			attrs = append(attrs,
				"kind", cl.Kind.String(),
				"chapters", len(cl.Links),
				"incomplete", cl.Incomplete,
			)
		}
		c.logger.Info("classify", attrs...)
	}(time.Now())
	return c.next.Classify(page)
}
