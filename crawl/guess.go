package crawl

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/fwojciec/folio"
)

// Guessing defaults.
const (
	DefaultGuessLimit  = 40
	DefaultGuessMisses = 10

	// minGuessSize is the body length below which a probe counts as a miss.
	minGuessSize = 200
)

// guessPatterns are tried in order for each chapter number. The first hit
// for a number wins.
var guessPatterns = []string{
	"ch%02d.htm",
	"ch%d.htm",
	"ch%02d.html",
	"ch%d.html",
}

// Guesser probes a predictable sequence of chapter URLs next to a book
// index when the index's own links look incomplete.
type Guesser struct {
	// Limit is the highest chapter number probed (exclusive).
	Limit int

	// MaxMisses stops probing after this many consecutive numbers
	// produced no page.
	MaxMisses int
}

// Guess probes ch00..ch<Limit> in the index's directory through fetcher.
// Known links keep their titles when a guessed URL matches them. Fetch
// failures count as misses; cancellation aborts and returns the hits so
// far with the context error.
func (g *Guesser) Guess(ctx context.Context, fetcher folio.Fetcher, indexURL string, known []folio.ChapterLink) ([]folio.ChapterLink, error) {
	base, err := url.Parse(indexURL)
	if err != nil {
		return nil, folio.Errorf(folio.EINVALID, "invalid index URL: %v", err)
	}
	base, _ = base.Parse("./")

	limit := g.Limit
	if limit <= 0 {
		limit = DefaultGuessLimit
	}
	maxMisses := g.MaxMisses
	if maxMisses <= 0 {
		maxMisses = DefaultGuessMisses
	}

	titles := make(map[string]string, len(known))
	for _, l := range known {
		titles[folio.CanonicalURL(l.URL)] = l.Title
	}

	var links []folio.ChapterLink
	misses := 0
	for num := 0; num < limit && misses < maxMisses; num++ {
		tried := make(map[string]bool, len(guessPatterns))
		hit := false
		for _, pattern := range guessPatterns {
			candidate := base.JoinPath(fmt.Sprintf(pattern, num)).String()
			if tried[candidate] {
				continue
			}
			tried[candidate] = true

			page, err := fetcher.Fetch(ctx, candidate)
			if err != nil {
				var fe *folio.FetchError
				if errors.As(err, &fe) && ctx.Err() == nil {
					continue
				}
				return links, err
			}
			if page.Size() <= minGuessSize {
				continue
			}

			links = append(links, folio.ChapterLink{
				Ordinal: len(links) + 1,
				Title:   titles[folio.CanonicalURL(candidate)],
				URL:     candidate,
			})
			hit = true
			break
		}
		if hit {
			misses = 0
		} else {
			misses++
		}
	}

	return links, nil
}
