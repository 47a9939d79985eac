package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/folio"
)

// Ensure LoggingExtractor implements folio.Extractor.
var _ folio.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with logging. Each warning raised
// during extraction is also logged at warn level.
type LoggingExtractor struct {
	next   folio.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next folio.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the result.
func (e *LoggingExtractor) Extract(page *folio.Page, opts folio.ExtractOptions) (res *folio.ExtractResult, err error) {
	defer func(begin time.Time) {
		var url string
		if page != nil {
			url = page.URL
		}
		var blocks, notes int
		if res != nil && res.Unit != nil {
			blocks, notes = len(res.Unit.Blocks), len(res.Unit.Footnotes)
		}
		e.logger.Info("extract",
			"url", url,
			"blocks", blocks,
			"footnotes", notes,
			"duration", time.Since(begin),
			"err", err,
		)
		if res != nil {
			for _, w := range res.Warnings {
				e.logger.Warn(w.Message, "kind", string(w.Kind), "url", w.URL)
			}
		}
	}(time.Now())
	return e.next.Extract(page, opts)
}
