// Package blob stores evidence photo files on the local filesystem and
// serves them by URL path.
package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DiskStore writes evidence files under a root directory, one subtree per
// farmer, and returns URLs under a configured base path.
type DiskStore struct {
	root    string
	baseURL string
}

// NewDiskStore creates a disk-backed evidence store. baseURL is the public
// prefix served for root, e.g. "/media".
func NewDiskStore(root, baseURL string) *DiskStore {
	return &DiskStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

// Store writes the file and returns its serving URL. The path is validated
// against escapes from the farmer's subtree.
func (d *DiskStore) Store(ctx context.Context, farmerID uuid.UUID, path string, data []byte) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(path))
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid evidence path %q", path)
	}

	full := filepath.Join(d.root, farmerID.String(), cleaned)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create evidence dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write evidence file: %w", err)
	}

	return d.baseURL + "/" + farmerID.String() + "/" + filepath.ToSlash(cleaned), nil
}
