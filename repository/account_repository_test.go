package repository

import (
	"context"
	"fmt"
	"testing"

	"go-ledger-api/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_CreateRequiresDescriptiveFields(t *testing.T) {
	repo := NewAccountRepository(newTestLedgerRepo(t))
	ctx := context.Background()

	err := repo.CreateAccount(ctx, "owner-1", &model.Account{
		DisplayName:   "",
		AccountNumber: "1234",
	})
	assert.ErrorIs(t, err, model.ErrValidation)

	accounts, err := repo.GetAccountsByOwner(ctx, "owner-1")
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestAccountRepository_CreateAssignsIDAndKeepsOrder(t *testing.T) {
	repo := NewAccountRepository(newTestLedgerRepo(t))
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		err := repo.CreateAccount(ctx, "owner-1", &model.Account{
			DisplayName:     fmt.Sprintf("Account %d", i),
			InstitutionName: "First Bank",
			AccountNumber:   fmt.Sprintf("1000%d", i),
		})
		require.NoError(t, err)
	}

	accounts, err := repo.GetAccountsByOwner(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	for i, a := range accounts {
		assert.NotEmpty(t, a.ID)
		assert.Equal(t, "owner-1", a.OwnerID)
		assert.Equal(t, fmt.Sprintf("Account %d", i+1), a.DisplayName)
	}
}

func TestAccountRepository_GetAccountNotFound(t *testing.T) {
	repo := NewAccountRepository(newTestLedgerRepo(t))

	_, err := repo.GetAccount(context.Background(), "owner-1", "missing")
	assert.ErrorIs(t, err, model.ErrAccountNotFound)
}

func TestAccountRepository_ApplyDeltaRefusesOverdraw(t *testing.T) {
	ledgers := newTestLedgerRepo(t)
	repo := NewAccountRepository(ledgers)
	ctx := context.Background()

	account := &model.Account{
		DisplayName:     "Checking",
		InstitutionName: "First Bank",
		AccountNumber:   "12345",
		Balance:         decimal.RequireFromString("50.00"),
	}
	require.NoError(t, repo.CreateAccount(ctx, "owner-1", account))

	_, err := repo.ApplyDelta(ctx, "owner-1", account.ID, decimal.RequireFromString("-75.00"))
	assert.ErrorIs(t, err, model.ErrInsufficientFunds)

	got, err := repo.GetAccount(ctx, "owner-1", account.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("50.00")))

	updated, err := repo.ApplyDelta(ctx, "owner-1", account.ID, decimal.RequireFromString("-50.00"))
	require.NoError(t, err)
	assert.True(t, updated.Balance.IsZero())
}

func TestAccountRepository_ListIsIdempotent(t *testing.T) {
	repo := NewAccountRepository(newTestLedgerRepo(t))
	ctx := context.Background()

	require.NoError(t, repo.CreateAccount(ctx, "owner-1", &model.Account{
		DisplayName:     "Checking",
		InstitutionName: "First Bank",
		AccountNumber:   "12345",
	}))

	first, err := repo.GetAccountsByOwner(ctx, "owner-1")
	require.NoError(t, err)
	second, err := repo.GetAccountsByOwner(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
