// service/transfer_service_test.go
package service

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go-ledger-api/logger"
	"go-ledger-api/model"
	"go-ledger-api/notify"
	"go-ledger-api/payment"
	"go-ledger-api/repository"
	"go-ledger-api/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// TestMain runs setup before any tests in this package are executed.
func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// MockTokenizer is a mock for payment.Tokenizer.
type MockTokenizer struct{ mock.Mock }

func (m *MockTokenizer) Tokenize(ctx context.Context, card *model.CardDetails) (*payment.CardToken, error) {
	args := m.Called(ctx, card)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.CardToken), args.Error(1)
}

type transferFixture struct {
	ledgers  *repository.LedgerRepository
	accounts *repository.AccountRepository
	service  *TransferService
	mockTok  *MockTokenizer
	hub      *notify.Hub
}

func newTransferFixture(t *testing.T) *transferFixture {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	ledgers := repository.NewLedgerRepository(store)
	mockTok := new(MockTokenizer)
	hub := notify.NewHub()
	return &transferFixture{
		ledgers:  ledgers,
		accounts: repository.NewAccountRepository(ledgers),
		service:  NewTransferService(ledgers, mockTok, hub, time.Second),
		mockTok:  mockTok,
		hub:      hub,
	}
}

func (f *transferFixture) createAccount(t *testing.T, ownerID, name, balance string) *model.Account {
	t.Helper()
	account := &model.Account{
		DisplayName:     name,
		InstitutionName: "First Bank",
		AccountNumber:   "1000" + name,
		Balance:         decimal.RequireFromString(balance),
	}
	require.NoError(t, f.accounts.CreateAccount(context.Background(), ownerID, account))
	return account
}

func (f *transferFixture) balance(t *testing.T, ownerID, accountID string) decimal.Decimal {
	t.Helper()
	account, err := f.accounts.GetAccount(context.Background(), ownerID, accountID)
	require.NoError(t, err)
	return account.Balance
}

func (f *transferFixture) transactions(t *testing.T, ownerID string) []*model.Transaction {
	t.Helper()
	var out []*model.Transaction
	require.NoError(t, f.ledgers.View(context.Background(), ownerID, func(l *model.Ledger) error {
		for _, txn := range l.Transactions {
			cp := *txn
			out = append(out, &cp)
		}
		return nil
	}))
	return out
}

func TestTransferService_TransferInternal(t *testing.T) {
	ctx := context.Background()

	t.Run("success moves funds and records both legs", func(t *testing.T) {
		f := newTransferFixture(t)
		from := f.createAccount(t, "owner-1", "A", "1000.00")
		to := f.createAccount(t, "owner-1", "B", "500.00")

		receipt, err := f.service.TransferInternal(ctx, "owner-1", model.InternalTransferRequest{
			FromAccountID: from.ID,
			ToAccountID:   to.ID,
			Amount:        "250.00",
			Description:   "rebalance",
		})
		require.NoError(t, err)

		assert.True(t, f.balance(t, "owner-1", from.ID).Equal(decimal.RequireFromString("750.00")))
		assert.True(t, f.balance(t, "owner-1", to.ID).Equal(decimal.RequireFromString("750.00")))

		require.Len(t, receipt.Transactions, 2)
		debit, credit := receipt.Transactions[0], receipt.Transactions[1]
		assert.Equal(t, model.KindInternalTransferDebit, debit.Kind)
		assert.Equal(t, model.KindInternalTransferCredit, credit.Kind)
		assert.Equal(t, debit.CorrelationID, credit.CorrelationID)
		assert.NotEmpty(t, receipt.CorrelationID)
		assert.True(t, debit.Amount.Equal(decimal.RequireFromString("250.00")))
		assert.True(t, credit.Amount.Equal(decimal.RequireFromString("250.00")))
		assert.Equal(t, to.ID, debit.Counterparty)
		assert.Equal(t, from.ID, credit.Counterparty)
	})

	t.Run("conserves total funds", func(t *testing.T) {
		f := newTransferFixture(t)
		from := f.createAccount(t, "owner-1", "A", "1000.00")
		to := f.createAccount(t, "owner-1", "B", "500.00")
		before := f.balance(t, "owner-1", from.ID).Add(f.balance(t, "owner-1", to.ID))

		for _, amount := range []string{"100.00", "0.01", "399.99"} {
			_, err := f.service.TransferInternal(ctx, "owner-1", model.InternalTransferRequest{
				FromAccountID: from.ID,
				ToAccountID:   to.ID,
				Amount:        amount,
			})
			require.NoError(t, err)
		}

		after := f.balance(t, "owner-1", from.ID).Add(f.balance(t, "owner-1", to.ID))
		assert.True(t, before.Equal(after), "total funds changed: %s -> %s", before, after)
		assert.False(t, f.balance(t, "owner-1", from.ID).IsNegative())
	})

	t.Run("insufficient funds leaves ledger untouched", func(t *testing.T) {
		f := newTransferFixture(t)
		from := f.createAccount(t, "owner-1", "A", "100.00")
		to := f.createAccount(t, "owner-1", "B", "500.00")

		_, err := f.service.TransferInternal(ctx, "owner-1", model.InternalTransferRequest{
			FromAccountID: from.ID,
			ToAccountID:   to.ID,
			Amount:        "150.00",
		})
		assert.ErrorIs(t, err, ErrInsufficientFunds)

		assert.True(t, f.balance(t, "owner-1", from.ID).Equal(decimal.RequireFromString("100.00")))
		assert.True(t, f.balance(t, "owner-1", to.ID).Equal(decimal.RequireFromString("500.00")))
		assert.Empty(t, f.transactions(t, "owner-1"))
	})

	t.Run("same account is rejected", func(t *testing.T) {
		f := newTransferFixture(t)
		from := f.createAccount(t, "owner-1", "A", "100.00")

		_, err := f.service.TransferInternal(ctx, "owner-1", model.InternalTransferRequest{
			FromAccountID: from.ID,
			ToAccountID:   from.ID,
			Amount:        "10.00",
		})
		assert.ErrorIs(t, err, ErrSameAccountTransfer)
	})

	t.Run("invalid amounts are rejected", func(t *testing.T) {
		f := newTransferFixture(t)
		from := f.createAccount(t, "owner-1", "A", "100.00")
		to := f.createAccount(t, "owner-1", "B", "0.00")

		for _, amount := range []string{"0", "-5.00", "abc", ""} {
			_, err := f.service.TransferInternal(ctx, "owner-1", model.InternalTransferRequest{
				FromAccountID: from.ID,
				ToAccountID:   to.ID,
				Amount:        amount,
			})
			assert.ErrorIs(t, err, ErrInvalidAmount, "amount %q", amount)
		}
		assert.Empty(t, f.transactions(t, "owner-1"))
	})

	t.Run("unknown accounts are rejected", func(t *testing.T) {
		f := newTransferFixture(t)
		from := f.createAccount(t, "owner-1", "A", "100.00")

		_, err := f.service.TransferInternal(ctx, "owner-1", model.InternalTransferRequest{
			FromAccountID: "missing",
			ToAccountID:   from.ID,
			Amount:        "10.00",
		})
		assert.ErrorIs(t, err, ErrSenderAccountNotFound)

		_, err = f.service.TransferInternal(ctx, "owner-1", model.InternalTransferRequest{
			FromAccountID: from.ID,
			ToAccountID:   "missing",
			Amount:        "10.00",
		})
		assert.ErrorIs(t, err, ErrReceiverAccountNotFound)
	})

	t.Run("idempotency key replays original receipt", func(t *testing.T) {
		f := newTransferFixture(t)
		from := f.createAccount(t, "owner-1", "A", "1000.00")
		to := f.createAccount(t, "owner-1", "B", "0.00")

		req := model.InternalTransferRequest{
			FromAccountID:  from.ID,
			ToAccountID:    to.ID,
			Amount:         "100.00",
			IdempotencyKey: "txn-key-1",
		}
		first, err := f.service.TransferInternal(ctx, "owner-1", req)
		require.NoError(t, err)

		second, err := f.service.TransferInternal(ctx, "owner-1", req)
		require.NoError(t, err)
		assert.Equal(t, first.CorrelationID, second.CorrelationID)

		// Money moved exactly once.
		assert.True(t, f.balance(t, "owner-1", from.ID).Equal(decimal.RequireFromString("900.00")))
		assert.True(t, f.balance(t, "owner-1", to.ID).Equal(decimal.RequireFromString("100.00")))
		assert.Len(t, f.transactions(t, "owner-1"), 2)
	})

	t.Run("publishes a change event on commit", func(t *testing.T) {
		f := newTransferFixture(t)
		from := f.createAccount(t, "owner-1", "A", "100.00")
		to := f.createAccount(t, "owner-1", "B", "0.00")

		changes, cancel := f.hub.Subscribe("owner-1")
		defer cancel()

		_, err := f.service.TransferInternal(ctx, "owner-1", model.InternalTransferRequest{
			FromAccountID: from.ID,
			ToAccountID:   to.ID,
			Amount:        "10.00",
		})
		require.NoError(t, err)

		select {
		case c := <-changes:
			assert.Equal(t, "owner-1", c.OwnerID)
		case <-time.After(time.Second):
			t.Fatal("expected a change event after commit")
		}
	})
}

func TestTransferService_TransferExternal(t *testing.T) {
	ctx := context.Background()

	t.Run("bank method records one debit transaction", func(t *testing.T) {
		f := newTransferFixture(t)
		from := f.createAccount(t, "owner-1", "A", "100.00")

		txn, err := f.service.TransferExternal(ctx, "owner-1", model.ExternalTransferRequest{
			FromAccountID:  from.ID,
			RecipientEmail: "friend@example.com",
			Amount:         "50.00",
			Description:    "lunch",
			Method:         "bank",
		})
		require.NoError(t, err)

		assert.Equal(t, model.KindExternalTransfer, txn.Kind)
		assert.Equal(t, model.DirectionDebit, txn.Direction)
		assert.Equal(t, "friend@example.com", txn.Counterparty)
		assert.True(t, txn.Amount.Equal(decimal.RequireFromString("50.00")))
		assert.Equal(t, "lunch", txn.Description)

		assert.True(t, f.balance(t, "owner-1", from.ID).Equal(decimal.RequireFromString("50.00")))
		assert.Len(t, f.transactions(t, "owner-1"), 1)
	})

	t.Run("card method records token descriptors", func(t *testing.T) {
		f := newTransferFixture(t)
		from := f.createAccount(t, "owner-1", "A", "100.00")

		card := &model.CardDetails{Number: "4242424242424242", ExpiryMonth: 12, ExpiryYear: 2030, CVV: "123", HolderName: "J Doe"}
		f.mockTok.On("Tokenize", mock.Anything, card).
			Return(&payment.CardToken{Token: "tok_abc", Brand: "visa", LastFour: "4242"}, nil).Once()

		txn, err := f.service.TransferExternal(ctx, "owner-1", model.ExternalTransferRequest{
			FromAccountID:  from.ID,
			RecipientEmail: "friend@example.com",
			Amount:         "25.00",
			Method:         "card",
			Card:           card,
		})
		require.NoError(t, err)

		assert.Equal(t, model.KindCardPayment, txn.Kind)
		assert.Equal(t, "visa", txn.CardBrand)
		assert.Equal(t, "4242", txn.CardLastFour)
		f.mockTok.AssertExpectations(t)
	})

	t.Run("tokenization failure aborts with nothing recorded", func(t *testing.T) {
		f := newTransferFixture(t)
		from := f.createAccount(t, "owner-1", "A", "100.00")

		card := &model.CardDetails{Number: "4242424242424242", ExpiryMonth: 12, ExpiryYear: 2030, CVV: "123", HolderName: "J Doe"}
		f.mockTok.On("Tokenize", mock.Anything, card).
			Return(nil, errors.New("provider timeout")).Once()

		_, err := f.service.TransferExternal(ctx, "owner-1", model.ExternalTransferRequest{
			FromAccountID:  from.ID,
			RecipientEmail: "friend@example.com",
			Amount:         "25.00",
			Method:         "card",
			Card:           card,
		})
		assert.ErrorIs(t, err, ErrPaymentMethod)

		assert.True(t, f.balance(t, "owner-1", from.ID).Equal(decimal.RequireFromString("100.00")))
		assert.Empty(t, f.transactions(t, "owner-1"))
		f.mockTok.AssertExpectations(t)
	})

	t.Run("card method without card details is rejected", func(t *testing.T) {
		f := newTransferFixture(t)
		from := f.createAccount(t, "owner-1", "A", "100.00")

		_, err := f.service.TransferExternal(ctx, "owner-1", model.ExternalTransferRequest{
			FromAccountID:  from.ID,
			RecipientEmail: "friend@example.com",
			Amount:         "25.00",
			Method:         "card",
		})
		assert.ErrorIs(t, err, ErrPaymentMethod)
	})

	t.Run("insufficient funds applies to external transfers too", func(t *testing.T) {
		f := newTransferFixture(t)
		from := f.createAccount(t, "owner-1", "A", "10.00")

		_, err := f.service.TransferExternal(ctx, "owner-1", model.ExternalTransferRequest{
			FromAccountID:  from.ID,
			RecipientEmail: "friend@example.com",
			Amount:         "25.00",
			Method:         "bank",
		})
		assert.ErrorIs(t, err, ErrInsufficientFunds)
		assert.Empty(t, f.transactions(t, "owner-1"))
	})
}

func TestTransferService_RecordManualEntry(t *testing.T) {
	ctx := context.Background()
	f := newTransferFixture(t)
	account := f.createAccount(t, "owner-1", "A", "100.00")

	txn, err := f.service.RecordManualEntry(ctx, "owner-1", model.ManualEntryRequest{
		AccountID:   account.ID,
		Amount:      "40.00",
		Direction:   "debit",
		Description: "groceries",
		Category:    "Food",
	})
	require.NoError(t, err)
	assert.Equal(t, model.KindManualEntry, txn.Kind)
	assert.True(t, f.balance(t, "owner-1", account.ID).Equal(decimal.RequireFromString("60.00")))

	_, err = f.service.RecordManualEntry(ctx, "owner-1", model.ManualEntryRequest{
		AccountID: account.ID,
		Amount:    "1000.00",
		Direction: "debit",
	})
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.True(t, f.balance(t, "owner-1", account.ID).Equal(decimal.RequireFromString("60.00")))
}
