package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go-ledger-api/logger"
	"go-ledger-api/model"
)

// PostgresStore persists each owner's ledger as a single jsonb document in
// the ledgers table. The store deliberately keeps the same get-whole /
// put-whole contract as the file backend; there are no partial-field
// updates.
type PostgresStore struct {
	DB *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{DB: db}
}

func (s *PostgresStore) Load(ctx context.Context, ownerID string) (*model.Ledger, error) {
	log := logger.Log.WithField("owner_id", ownerID)

	var data []byte
	query := `SELECT document FROM ledgers WHERE owner_id = $1`
	err := s.DB.QueryRowContext(ctx, query, ownerID).Scan(&data)
	if err == sql.ErrNoRows {
		return model.NewLedger(), nil
	}
	if err != nil {
		log.WithError(err).Error("Failed to load ledger document")
		return nil, fmt.Errorf("%w: load ledger: %v", ErrPersistence, err)
	}

	var ledger model.Ledger
	if err := json.Unmarshal(data, &ledger); err != nil {
		log.WithError(err).Warn("Malformed ledger document, substituting empty ledger")
		return model.NewLedger(), nil
	}
	ledger.Normalize()
	return &ledger, nil
}

func (s *PostgresStore) Save(ctx context.Context, ownerID string, ledger *model.Ledger) error {
	log := logger.Log.WithField("owner_id", ownerID)

	data, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("%w: encode ledger: %v", ErrPersistence, err)
	}

	query := `
		INSERT INTO ledgers (owner_id, document, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (owner_id)
		DO UPDATE SET document = EXCLUDED.document, updated_at = NOW()`
	if _, err := s.DB.ExecContext(ctx, query, ownerID, data); err != nil {
		log.WithError(err).Error("Failed to save ledger document")
		return fmt.Errorf("%w: save ledger: %v", ErrPersistence, err)
	}
	return nil
}
