package mock

import (
	"context"
	"io"

	"github.com/fwojciec/folio"
)

var _ folio.Renderer = (*Renderer)(nil)

// Renderer is a mock implementation of folio.Renderer.
type Renderer struct {
	RenderFn func(w io.Writer, doc *folio.Document) error
}

func (r *Renderer) Render(w io.Writer, doc *folio.Document) error {
	return r.RenderFn(w, doc)
}

var _ folio.Typesetter = (*Typesetter)(nil)

// Typesetter is a mock implementation of folio.Typesetter.
type Typesetter struct {
	TypesetFn func(ctx context.Context, sourcePath string) (string, error)
}

func (t *Typesetter) Typeset(ctx context.Context, sourcePath string) (string, error) {
	return t.TypesetFn(ctx, sourcePath)
}
