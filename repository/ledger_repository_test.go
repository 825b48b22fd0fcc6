package repository

import (
	"context"
	"errors"
	"os"
	"testing"

	"go-ledger-api/logger"
	"go-ledger-api/model"
	"go-ledger-api/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func newTestLedgerRepo(t *testing.T) *LedgerRepository {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return NewLedgerRepository(store)
}

func TestLedgerRepository_UpdatePersistsOnSuccess(t *testing.T) {
	repo := newTestLedgerRepo(t)
	ctx := context.Background()

	err := repo.Update(ctx, "owner-1", func(l *model.Ledger) error {
		l.AddAccount(&model.Account{ID: "acc-1", DisplayName: "Checking"})
		return nil
	})
	require.NoError(t, err)

	err = repo.View(ctx, "owner-1", func(l *model.Ledger) error {
		assert.Len(t, l.Accounts, 1)
		return nil
	})
	assert.NoError(t, err)
}

func TestLedgerRepository_UpdateDiscardsOnError(t *testing.T) {
	repo := newTestLedgerRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Update(ctx, "owner-1", func(l *model.Ledger) error {
		l.AddAccount(&model.Account{ID: "acc-1", Balance: decimal.RequireFromString("100.00")})
		return nil
	}))

	boom := errors.New("mutation failed halfway")
	err := repo.Update(ctx, "owner-1", func(l *model.Ledger) error {
		// Partially mutate, then fail: nothing may be written.
		l.Accounts[0].Balance = decimal.Zero
		l.Append(&model.Transaction{ID: "txn-1"})
		return boom
	})
	assert.ErrorIs(t, err, boom)

	err = repo.View(ctx, "owner-1", func(l *model.Ledger) error {
		assert.True(t, l.Accounts[0].Balance.Equal(decimal.RequireFromString("100.00")))
		assert.Empty(t, l.Transactions)
		return nil
	})
	assert.NoError(t, err)
}

func TestLedgerRepository_ViewDoesNotPersist(t *testing.T) {
	repo := newTestLedgerRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.View(ctx, "owner-1", func(l *model.Ledger) error {
		l.AddAccount(&model.Account{ID: "acc-x"})
		return nil
	}))

	err := repo.View(ctx, "owner-1", func(l *model.Ledger) error {
		assert.Empty(t, l.Accounts)
		return nil
	})
	assert.NoError(t, err)
}
