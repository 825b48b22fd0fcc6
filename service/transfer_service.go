package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-ledger-api/logger"
	"go-ledger-api/model"
	"go-ledger-api/notify"
	"go-ledger-api/payment"
	"go-ledger-api/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	ErrSenderAccountNotFound   = errors.New("sender account not found")
	ErrReceiverAccountNotFound = errors.New("receiver account not found")
	ErrSameAccountTransfer     = errors.New("cannot transfer money to the same account")
	ErrInvalidAmount           = errors.New("transfer amount must be greater than zero")
	ErrPaymentMethod           = errors.New("payment method could not be processed")

	// Surfaced from the ledger layer; re-exported so handlers map one set.
	ErrInsufficientFunds = model.ErrInsufficientFunds
	ErrAccountNotFound   = model.ErrAccountNotFound
)

// errReplayed aborts the ledger update without treating the call as failed:
// the transfer was already committed under the same idempotency key.
var errReplayed = errors.New("transfer already recorded for idempotency key")

// TransferService is the only path by which money moves. Each transfer runs
// inside a single ledger update, so balances and the transaction log are
// committed together or not at all.
type TransferService struct {
	ledgers         repository.ILedgerRepository
	tokenizer       payment.Tokenizer
	hub             *notify.Hub
	tokenizeTimeout time.Duration
}

func NewTransferService(ledgers repository.ILedgerRepository, tokenizer payment.Tokenizer, hub *notify.Hub, tokenizeTimeout time.Duration) *TransferService {
	if tokenizeTimeout <= 0 {
		tokenizeTimeout = 2 * time.Second
	}
	return &TransferService{
		ledgers:         ledgers,
		tokenizer:       tokenizer,
		hub:             hub,
		tokenizeTimeout: tokenizeTimeout,
	}
}

// TransferInternal moves money between two of the owner's accounts. It
// records a debit and a credit leg sharing a correlation id. A repeated
// idempotency key replays the original receipt without moving money again.
func (s *TransferService) TransferInternal(ctx context.Context, ownerID string, req model.InternalTransferRequest) (*model.TransferReceipt, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"owner_id":        ownerID,
		"from_account_id": req.FromAccountID,
		"to_account_id":   req.ToAccountID,
		"amount":          req.Amount,
	})
	log.Info("Starting internal transfer")

	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	if req.FromAccountID == req.ToAccountID {
		return nil, ErrSameAccountTransfer
	}

	var receipt *model.TransferReceipt
	err = s.ledgers.Update(ctx, ownerID, func(l *model.Ledger) error {
		if existing := l.FindByIdempotencyKey(req.IdempotencyKey); existing != nil {
			receipt = receiptForCorrelation(l, existing.CorrelationID)
			return errReplayed
		}

		from := l.Account(req.FromAccountID)
		if from == nil {
			return ErrSenderAccountNotFound
		}
		to := l.Account(req.ToAccountID)
		if to == nil {
			return ErrReceiverAccountNotFound
		}
		if from.Balance.LessThan(amount) {
			return ErrInsufficientFunds
		}

		if err := l.ApplyDelta(from.ID, amount.Neg()); err != nil {
			return err
		}
		if err := l.ApplyDelta(to.ID, amount); err != nil {
			return err
		}

		correlationID := uuid.NewString()
		now := time.Now().UTC()
		debit := &model.Transaction{
			ID:             uuid.NewString(),
			OwnerID:        ownerID,
			AccountID:      from.ID,
			Kind:           model.KindInternalTransferDebit,
			Direction:      model.DirectionDebit,
			Amount:         amount,
			Counterparty:   to.ID,
			Description:    req.Description,
			Category:       req.Category,
			Status:         model.StatusCompleted,
			CorrelationID:  correlationID,
			IdempotencyKey: req.IdempotencyKey,
			CreatedAt:      now,
		}
		credit := &model.Transaction{
			ID:             uuid.NewString(),
			OwnerID:        ownerID,
			AccountID:      to.ID,
			Kind:           model.KindInternalTransferCredit,
			Direction:      model.DirectionCredit,
			Amount:         amount,
			Counterparty:   from.ID,
			Description:    req.Description,
			Category:       req.Category,
			Status:         model.StatusCompleted,
			CorrelationID:  correlationID,
			IdempotencyKey: req.IdempotencyKey,
			CreatedAt:      now,
		}
		l.Append(debit)
		l.Append(credit)

		receipt = &model.TransferReceipt{
			CorrelationID: correlationID,
			Transactions:  []*model.Transaction{debit, credit},
		}
		return nil
	})
	if errors.Is(err, errReplayed) {
		log.Info("Internal transfer replayed from idempotency key")
		return receipt, nil
	}
	if err != nil {
		return nil, err
	}

	s.publishChange(ownerID)
	log.WithField("correlation_id", receipt.CorrelationID).Info("Internal transfer completed")
	return receipt, nil
}

// TransferExternal debits one of the owner's accounts and records a single
// outbound transaction; no corresponding credit exists because the money
// leaves the system. For the card method the payment collaborator is asked
// for a token first, and any tokenization failure aborts before the ledger
// is touched.
func (s *TransferService) TransferExternal(ctx context.Context, ownerID string, req model.ExternalTransferRequest) (*model.Transaction, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"owner_id":        ownerID,
		"from_account_id": req.FromAccountID,
		"recipient":       req.RecipientEmail,
		"method":          req.Method,
		"amount":          req.Amount,
	})
	log.Info("Starting external transfer")

	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	var token *payment.CardToken
	if req.Method == "card" {
		if req.Card == nil {
			return nil, fmt.Errorf("%w: card details are required for the card method", ErrPaymentMethod)
		}
		tokenCtx, cancel := context.WithTimeout(ctx, s.tokenizeTimeout)
		defer cancel()
		token, err = s.tokenizer.Tokenize(tokenCtx, req.Card)
		if err != nil {
			log.WithError(err).Warn("Card tokenization failed, aborting transfer")
			return nil, fmt.Errorf("%w: %v", ErrPaymentMethod, err)
		}
	}

	var transaction *model.Transaction
	err = s.ledgers.Update(ctx, ownerID, func(l *model.Ledger) error {
		if existing := l.FindByIdempotencyKey(req.IdempotencyKey); existing != nil {
			cp := *existing
			transaction = &cp
			return errReplayed
		}

		from := l.Account(req.FromAccountID)
		if from == nil {
			return ErrSenderAccountNotFound
		}
		if from.Balance.LessThan(amount) {
			return ErrInsufficientFunds
		}
		if err := l.ApplyDelta(from.ID, amount.Neg()); err != nil {
			return err
		}

		kind := model.KindExternalTransfer
		if req.Method == "card" {
			kind = model.KindCardPayment
		}
		transaction = &model.Transaction{
			ID:             uuid.NewString(),
			OwnerID:        ownerID,
			AccountID:      from.ID,
			Kind:           kind,
			Direction:      model.DirectionDebit,
			Amount:         amount,
			Counterparty:   req.RecipientEmail,
			Description:    req.Description,
			Category:       req.Category,
			Status:         model.StatusCompleted,
			IdempotencyKey: req.IdempotencyKey,
			CreatedAt:      time.Now().UTC(),
		}
		if token != nil {
			transaction.CardBrand = token.Brand
			transaction.CardLastFour = token.LastFour
		}
		l.Append(transaction)
		return nil
	})
	if errors.Is(err, errReplayed) {
		log.Info("External transfer replayed from idempotency key")
		return transaction, nil
	}
	if err != nil {
		return nil, err
	}

	s.publishChange(ownerID)
	log.WithField("transaction_id", transaction.ID).Info("External transfer completed")
	return transaction, nil
}

// RecordManualEntry applies a one-sided adjustment (imported statement
// line, opening correction) to an account, with the balance change and the
// log entry committed together like any transfer.
func (s *TransferService) RecordManualEntry(ctx context.Context, ownerID string, req model.ManualEntryRequest) (*model.Transaction, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	delta := amount
	direction := model.DirectionCredit
	if req.Direction == "debit" {
		delta = amount.Neg()
		direction = model.DirectionDebit
	}

	var transaction *model.Transaction
	err = s.ledgers.Update(ctx, ownerID, func(l *model.Ledger) error {
		if l.Account(req.AccountID) == nil {
			return ErrAccountNotFound
		}
		if err := l.ApplyDelta(req.AccountID, delta); err != nil {
			return err
		}
		transaction = &model.Transaction{
			ID:           uuid.NewString(),
			OwnerID:      ownerID,
			AccountID:    req.AccountID,
			Kind:         model.KindManualEntry,
			Direction:    direction,
			Amount:       amount,
			Counterparty: req.Counterparty,
			Description:  req.Description,
			Category:     req.Category,
			Status:       model.StatusCompleted,
			CreatedAt:    time.Now().UTC(),
		}
		l.Append(transaction)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishChange(ownerID)
	return transaction, nil
}

func (s *TransferService) publishChange(ownerID string) {
	if s.hub != nil {
		s.hub.Publish(notify.Change{OwnerID: ownerID, Kind: "transaction"})
	}
}

func receiptForCorrelation(l *model.Ledger, correlationID string) *model.TransferReceipt {
	receipt := &model.TransferReceipt{CorrelationID: correlationID}
	for _, t := range l.Transactions {
		if correlationID != "" && t.CorrelationID == correlationID {
			cp := *t
			receipt.Transactions = append(receipt.Transactions, &cp)
		}
	}
	return receipt
}

// parseAmount turns a decimal string into a positive amount.
func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a valid amount", ErrInvalidAmount, raw)
	}
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return amount, nil
}
