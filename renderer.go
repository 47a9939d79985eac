package folio

import (
	"context"
	"io"
)

// Renderer serializes an assembled document into the target markup.
// Implementations must fail with ESERIALIZE rather than write malformed
// output.
type Renderer interface {
	Render(w io.Writer, doc *Document) error
}

// Typesetter compiles a serialized document into a paginated file and
// returns the path of the result.
type Typesetter interface {
	Typeset(ctx context.Context, sourcePath string) (string, error)
}
