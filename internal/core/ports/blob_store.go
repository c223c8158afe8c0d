package ports

import (
	"context"
	"io"
)

// BlobStore is the opaque document store for ownership documents. A stored
// blob is addressed by the reference string returned from Save.
type BlobStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Delete(ctx context.Context, ref string) error
}
