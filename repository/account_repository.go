package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-ledger-api/logger"
	"go-ledger-api/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// IAccountRepository defines the contract for account persistence.
type IAccountRepository interface {
	CreateAccount(ctx context.Context, ownerID string, account *model.Account) error
	GetAccountsByOwner(ctx context.Context, ownerID string) ([]*model.Account, error)
	GetAccount(ctx context.Context, ownerID, accountID string) (*model.Account, error)
	ApplyDelta(ctx context.Context, ownerID, accountID string, delta decimal.Decimal) (*model.Account, error)
}

// AccountRepository implements IAccountRepository on top of the per-owner
// ledger blob.
type AccountRepository struct {
	ledgers ILedgerRepository
}

func NewAccountRepository(ledgers ILedgerRepository) *AccountRepository {
	return &AccountRepository{ledgers: ledgers}
}

// CreateAccount validates the descriptive fields, assigns an id and
// timestamp, and appends the account to the owner's ledger.
func (r *AccountRepository) CreateAccount(ctx context.Context, ownerID string, account *model.Account) error {
	log := logger.Log.WithFields(logrus.Fields{
		"owner_id":     ownerID,
		"display_name": account.DisplayName,
	})
	log.Info("Creating a new account")

	if strings.TrimSpace(account.DisplayName) == "" ||
		strings.TrimSpace(account.InstitutionName) == "" ||
		strings.TrimSpace(account.AccountNumber) == "" {
		return fmt.Errorf("%w: display name, institution and account number are required", model.ErrValidation)
	}
	if account.Balance.IsNegative() {
		return fmt.Errorf("%w: initial balance cannot be negative", model.ErrValidation)
	}

	account.ID = uuid.NewString()
	account.OwnerID = ownerID
	account.CreatedAt = time.Now().UTC()

	return r.ledgers.Update(ctx, ownerID, func(l *model.Ledger) error {
		l.AddAccount(account)
		return nil
	})
}

// GetAccountsByOwner returns the owner's accounts in insertion order.
func (r *AccountRepository) GetAccountsByOwner(ctx context.Context, ownerID string) ([]*model.Account, error) {
	var accounts []*model.Account
	err := r.ledgers.View(ctx, ownerID, func(l *model.Ledger) error {
		accounts = make([]*model.Account, 0, len(l.Accounts))
		for _, a := range l.Accounts {
			cp := *a
			accounts = append(accounts, &cp)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// GetAccount returns one account or model.ErrAccountNotFound.
func (r *AccountRepository) GetAccount(ctx context.Context, ownerID, accountID string) (*model.Account, error) {
	var account *model.Account
	err := r.ledgers.View(ctx, ownerID, func(l *model.Ledger) error {
		a := l.Account(accountID)
		if a == nil {
			return model.ErrAccountNotFound
		}
		cp := *a
		account = &cp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// ApplyDelta adjusts a single balance outside of a transfer (manual
// entries). Overdrawing debits are refused.
func (r *AccountRepository) ApplyDelta(ctx context.Context, ownerID, accountID string, delta decimal.Decimal) (*model.Account, error) {
	var account *model.Account
	err := r.ledgers.Update(ctx, ownerID, func(l *model.Ledger) error {
		if err := l.ApplyDelta(accountID, delta); err != nil {
			return err
		}
		cp := *l.Account(accountID)
		account = &cp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}
