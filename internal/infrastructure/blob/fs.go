// Package blob stores ownership documents on the local filesystem. The
// store hands out opaque reference strings; callers never touch paths.
package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FSStore implements ports.BlobStore on a flat directory.
type FSStore struct {
	dir string
}

func NewFSStore(dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &FSStore{dir: dir}, nil
}

// Save writes the document under a uuid-prefixed name so uploads with the
// same original filename never collide.
func (s *FSStore) Save(_ context.Context, filename string, r io.Reader) (string, error) {
	ref := uuid.NewString() + "-" + sanitize(filename)

	f, err := os.Create(filepath.Join(s.dir, ref))
	if err != nil {
		return "", fmt.Errorf("create blob: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write blob: %w", err)
	}
	return ref, nil
}

// Delete removes a stored document. Deleting a reference that no longer
// exists is not an error.
func (s *FSStore) Delete(_ context.Context, ref string) error {
	// A ref is always a bare name; reject anything path-like.
	if ref == "" || ref != filepath.Base(ref) {
		return fmt.Errorf("invalid blob reference %q", ref)
	}
	if err := os.Remove(filepath.Join(s.dir, ref)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

func sanitize(filename string) string {
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "document"
	}
	return strings.ReplaceAll(name, " ", "_")
}
