// Package crawl runs conversion jobs: it fetches a root page and its
// chapters through a polite per-job session, extracts each page, and
// assembles the result.
package crawl

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/folio"
	"github.com/google/uuid"
)

// State is the stage a conversion job is in.
type State string

const (
	StateClassifying State = "classifying"
	StateFetching    State = "fetching"
	StateExtracting  State = "extracting"
	StateAssembling  State = "assembling"
	StateDone        State = "done"
	StateFailed      State = "failed"
	StateCanceled    State = "canceled"
)

// ProgressEvent reports progress during a conversion job.
type ProgressEvent struct {
	State   State
	Chapter int
	Total   int
	URL     string
	Err     error
}

// ProgressFunc is a callback for reporting job progress.
type ProgressFunc func(event ProgressEvent)

// Result is the outcome of one conversion job. It is returned even when
// the job fails or is canceled.
type Result struct {
	ID       string
	URL      string
	Kind     folio.Kind
	State    State
	Document *folio.Document
	Warnings []folio.Warning

	// Completed lists the pages that were fetched and extracted, in order.
	Completed []string

	// Requested is the number of chapters the job set out to convert.
	Requested int

	// Requests is the number of network requests issued.
	Requests int
}

// Converter runs conversion jobs. Each call to Convert or Classify gets
// its own session, so a Converter may serve concurrent jobs as long as its
// collaborators are safe for concurrent use.
type Converter struct {
	Fetcher    folio.Fetcher
	Classifier folio.Classifier
	Extractor  folio.Extractor

	// Cache is optional.
	Cache folio.PageCache

	// Delay is the minimum spacing between requests. Zero disables it.
	Delay time.Duration

	// Guess enables probing for chapters when an index looks incomplete.
	Guess   bool
	Guesser Guesser
}

// NewConverter returns a Converter with the default delay.
func NewConverter(fetcher folio.Fetcher, classifier folio.Classifier, extractor folio.Extractor) *Converter {
	return &Converter{
		Fetcher:    fetcher,
		Classifier: classifier,
		Extractor:  extractor,
		Delay:      DefaultDelay,
	}
}

func (c *Converter) session() *Session {
	return NewSession(c.Fetcher, NewDomainLimiter(c.Delay), c.Cache)
}

// Classify fetches the root page and decides whether it is an article or
// a book, guessing chapters when enabled and the index looks incomplete.
func (c *Converter) Classify(ctx context.Context, rootURL string) (*folio.Classification, error) {
	cls, _, err := c.classify(ctx, c.session(), rootURL)
	return cls, err
}

func (c *Converter) classify(ctx context.Context, s *Session, rootURL string) (*folio.Classification, *folio.Page, error) {
	root, err := s.Fetch(ctx, rootURL)
	if err != nil {
		return nil, nil, err
	}

	cls, err := c.Classifier.Classify(root)
	if err != nil {
		return nil, nil, err
	}

	if cls.Kind == folio.KindBook && cls.Incomplete {
		if c.Guess {
			guessed, err := c.Guesser.Guess(ctx, s, root.URL, cls.Links)
			if err != nil {
				return nil, nil, err
			}
			if len(guessed) > len(cls.Links) {
				cls.Links = guessed
			}
		} else {
			cls.Warnings = append(cls.Warnings, folio.Warning{
				Kind:    folio.WarnIncompleteIndex,
				URL:     root.URL,
				Message: fmt.Sprintf("index lists %d chapters and looks incomplete; chapter guessing is off", len(cls.Links)),
			})
		}
	}

	if cls.Kind == folio.KindBook && len(cls.Links) == 0 {
		cls.Kind = folio.KindArticle
		cls.Warnings = append(cls.Warnings, folio.Warning{
			Kind:    folio.WarnClassification,
			URL:     root.URL,
			Message: "index page has no chapter links, converting it as an article",
		})
	}

	return cls, root, nil
}

// Convert runs a full job for rootURL. A failed chapter is skipped with a
// warning; a failed root page, a failed article or zero usable chapters
// fail the job. On cancellation the result carries the chapters completed
// so far and the error has code ECANCELED.
func (c *Converter) Convert(ctx context.Context, rootURL string, progress ProgressFunc) (*Result, error) {
	j := &job{
		ctx:      ctx,
		session:  c.session(),
		progress: progress,
		result: &Result{
			ID:    uuid.NewString(),
			URL:   rootURL,
			State: StateClassifying,
		},
	}
	res := j.result

	j.notify(ProgressEvent{State: StateClassifying, URL: rootURL})
	cls, root, err := c.classify(ctx, j.session, rootURL)
	if err != nil {
		return j.fail(err)
	}
	res.Kind = cls.Kind
	res.Warnings = append(res.Warnings, cls.Warnings...)

	if cls.Kind == folio.KindArticle {
		res.Requested = 1
		j.enter(StateExtracting, 1, 1, root.URL)
		ex, err := c.Extractor.Extract(root, folio.ExtractOptions{})
		if err != nil {
			return j.fail(err)
		}
		res.Warnings = append(res.Warnings, ex.Warnings...)
		res.Completed = append(res.Completed, root.URL)
		j.sources = append(j.sources, folio.Source{Unit: ex.Unit})
		return j.assemble()
	}

	j.front = folio.Front{Title: cls.Title, Author: cls.Author}
	res.Requested = len(cls.Links)
	opts := folio.ExtractOptions{
		Chapters:   folio.NewChapterSet(cls.Links),
		BookTitle:  cls.Title,
		BookAuthor: cls.Author,
	}
	total := len(cls.Links)
	for i, link := range cls.Links {
		if err := ctx.Err(); err != nil {
			return j.cancel()
		}

		j.enter(StateFetching, i+1, total, link.URL)
		page, err := j.session.Fetch(ctx, link.URL)
		if err != nil {
			if ctx.Err() != nil {
				return j.cancel()
			}
			j.skip(i+1, total, link, err)
			continue
		}

		j.enter(StateExtracting, i+1, total, link.URL)
		ex, err := c.Extractor.Extract(page, opts)
		if err != nil {
			j.skip(i+1, total, link, err)
			continue
		}
		res.Warnings = append(res.Warnings, ex.Warnings...)
		res.Completed = append(res.Completed, link.URL)
		j.sources = append(j.sources, folio.Source{Link: link, Unit: ex.Unit})
	}

	return j.assemble()
}

// job is the mutable state of one Convert call.
type job struct {
	ctx      context.Context
	session  *Session
	progress ProgressFunc
	result   *Result
	front    folio.Front
	sources  []folio.Source
}

func (j *job) notify(e ProgressEvent) {
	if j.progress != nil {
		j.progress(e)
	}
}

func (j *job) enter(state State, chapter, total int, url string) {
	j.result.State = state
	j.notify(ProgressEvent{State: state, Chapter: chapter, Total: total, URL: url})
}

func (j *job) skip(chapter, total int, link folio.ChapterLink, err error) {
	j.result.Warnings = append(j.result.Warnings, folio.Warning{
		Kind:    folio.WarnChapterSkipped,
		URL:     link.URL,
		Message: fmt.Sprintf("chapter %d skipped: %s", link.Ordinal, folio.ErrorMessage(err)),
	})
	j.notify(ProgressEvent{State: j.result.State, Chapter: chapter, Total: total, URL: link.URL, Err: err})
}

func (j *job) finish() {
	j.result.Requests = j.session.Requests()
	j.result.Warnings = append(j.result.Warnings, j.session.Warnings()...)
}

func (j *job) assemble() (*Result, error) {
	j.enter(StateAssembling, len(j.sources), j.result.Requested, j.result.URL)
	doc, warnings, err := folio.Assemble(j.front, j.sources)
	if err != nil {
		return j.fail(err)
	}
	j.result.Document = doc
	j.result.Warnings = append(j.result.Warnings, warnings...)
	j.finish()
	j.enter(StateDone, len(doc.Chapters), j.result.Requested, j.result.URL)
	return j.result, nil
}

func (j *job) fail(err error) (*Result, error) {
	if j.ctx.Err() != nil {
		return j.cancel()
	}
	j.finish()
	j.result.State = StateFailed
	j.notify(ProgressEvent{State: StateFailed, URL: j.result.URL, Err: err})
	return j.result, err
}

// cancel assembles whatever chapters are complete so the caller can still
// report or keep them.
func (j *job) cancel() (*Result, error) {
	if len(j.sources) > 0 {
		if doc, warnings, err := folio.Assemble(j.front, j.sources); err == nil {
			j.result.Document = doc
			j.result.Warnings = append(j.result.Warnings, warnings...)
		}
	}
	j.finish()
	j.result.State = StateCanceled
	err := folio.Errorf(folio.ECANCELED, "canceled after %d of %d chapters", len(j.result.Completed), j.result.Requested)
	j.notify(ProgressEvent{State: StateCanceled, URL: j.result.URL, Err: err})
	return j.result, err
}
