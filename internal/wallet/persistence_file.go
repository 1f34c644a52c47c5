package wallet

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists wallet blobs as files on disk, one per wallet ID,
// using a write-temp-then-rename sequence so a crash mid-write can
// never leave a half-written blob behind (spec.md §5: "either the prior
// blob remains valid or the new blob replaces it; no partial writes").
//
// No file-backed persistence library appears anywhere in the example
// pack; os.WriteFile plus os.Rename is the standard Go idiom for atomic
// single-file replace and needs no third-party dependency (see
// DESIGN.md's standard-library justifications).
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir, creating it if
// necessary.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("wallet: create store dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(walletID string) string {
	return filepath.Join(s.dir, walletID+".json")
}

// SaveBlob writes blob atomically: it is first written to a temp file
// in the same directory (guaranteeing the subsequent rename is on the
// same filesystem) and then renamed over the final path.
func (s *FileStore) SaveBlob(_ context.Context, walletID string, blob []byte) error {
	final := s.path(walletID)
	tmp := final + ".tmp"

	if err := os.WriteFile(tmp, blob, 0o600); err != nil {
		return fmt.Errorf("wallet: write temp blob: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("wallet: rename blob: %w", err)
	}
	return nil
}

// LoadBlob reads the blob for walletID.
func (s *FileStore) LoadBlob(_ context.Context, walletID string) ([]byte, error) {
	raw, err := os.ReadFile(s.path(walletID))
	if err != nil {
		return nil, fmt.Errorf("wallet: read blob: %w", err)
	}
	return raw, nil
}
