package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go-ledger-api/logger"
	"go-ledger-api/model"
)

// FileStore keeps each owner's ledger in its own JSON file under a data
// directory. Writes go to a temp file first and are renamed into place, so
// a crash mid-write can never leave a half-written ledger behind.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create data dir: %v", ErrPersistence, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(ownerID string) string {
	// Hex-encode the id so the filename can never contain a path separator.
	return filepath.Join(s.dir, fmt.Sprintf("ledger-%x.json", ownerID))
}

func (s *FileStore) Load(ctx context.Context, ownerID string) (*model.Ledger, error) {
	data, err := os.ReadFile(s.path(ownerID))
	if os.IsNotExist(err) {
		return model.NewLedger(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read ledger file: %v", ErrPersistence, err)
	}

	var ledger model.Ledger
	if err := json.Unmarshal(data, &ledger); err != nil {
		// Corrupt blob: recover with an empty ledger rather than failing the
		// read. The next save overwrites the bad file.
		logger.Log.WithField("owner_id", ownerID).WithError(err).
			Warn("Malformed ledger file, substituting empty ledger")
		return model.NewLedger(), nil
	}
	ledger.Normalize()
	return &ledger, nil
}

func (s *FileStore) Save(ctx context.Context, ownerID string, ledger *model.Ledger) error {
	data, err := json.MarshalIndent(ledger, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode ledger: %v", ErrPersistence, err)
	}

	target := s.path(ownerID)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: write ledger file: %v", ErrPersistence, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("%w: replace ledger file: %v", ErrPersistence, err)
	}
	return nil
}
