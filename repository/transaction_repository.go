package repository

import (
	"context"
	"sort"
	"strings"
	"time"

	"go-ledger-api/logger"
	"go-ledger-api/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ITransactionRepository defines the contract for the transaction log.
type ITransactionRepository interface {
	Record(ctx context.Context, ownerID string, transaction *model.Transaction) error
	List(ctx context.Context, ownerID string, page, pageSize int) (*model.TransactionPage, error)
	Filter(ctx context.Context, ownerID string, filter model.TransactionFilter) ([]*model.Transaction, error)
}

// TransactionRepository implements ITransactionRepository on top of the
// per-owner ledger blob. The log is append-only: nothing here mutates or
// removes stored transactions.
type TransactionRepository struct {
	ledgers ILedgerRepository
}

func NewTransactionRepository(ledgers ILedgerRepository) *TransactionRepository {
	return &TransactionRepository{ledgers: ledgers}
}

// Record appends a standalone transaction (manual entries; transfers write
// their legs inside the transfer's own critical section instead).
func (r *TransactionRepository) Record(ctx context.Context, ownerID string, transaction *model.Transaction) error {
	log := logger.Log.WithFields(logrus.Fields{
		"owner_id": ownerID,
		"kind":     transaction.Kind,
		"amount":   transaction.Amount,
	})
	log.Info("Recording transaction")

	StampTransaction(ownerID, transaction)
	return r.ledgers.Update(ctx, ownerID, func(l *model.Ledger) error {
		l.Append(transaction)
		return nil
	})
}

// StampTransaction fills in the server-assigned fields of a transaction
// before it is appended: id, owner, status and timestamp.
func StampTransaction(ownerID string, t *model.Transaction) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.OwnerID = ownerID
	if t.Status == "" {
		t.Status = model.StatusCompleted
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
}

// List returns one page of the owner's transactions, newest first. Pages
// are 1-based; out-of-range pages return an empty slice with the real
// totals so callers can walk [1, TotalPages].
func (r *TransactionRepository) List(ctx context.Context, ownerID string, page, pageSize int) (*model.TransactionPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	var result *model.TransactionPage
	err := r.ledgers.View(ctx, ownerID, func(l *model.Ledger) error {
		sorted := sortedCopy(l.Transactions)

		total := len(sorted)
		totalPages := (total + pageSize - 1) / pageSize

		start := (page - 1) * pageSize
		if start > total {
			start = total
		}
		end := start + pageSize
		if end > total {
			end = total
		}

		result = &model.TransactionPage{
			Transactions: sorted[start:end],
			Page:         page,
			PageSize:     pageSize,
			TotalCount:   total,
			TotalPages:   totalPages,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Filter returns all transactions matching the given fields, newest first.
// The scan runs over the full in-memory set; per-owner ledgers are small
// enough that no index is warranted.
func (r *TransactionRepository) Filter(ctx context.Context, ownerID string, filter model.TransactionFilter) ([]*model.Transaction, error) {
	var matches []*model.Transaction
	err := r.ledgers.View(ctx, ownerID, func(l *model.Ledger) error {
		matches = []*model.Transaction{}
		for _, t := range sortedCopy(l.Transactions) {
			if filter.Kind != "" && t.Kind != filter.Kind {
				continue
			}
			if filter.Category != "" && !strings.EqualFold(t.Category, filter.Category) {
				continue
			}
			if filter.Search != "" {
				needle := strings.ToLower(filter.Search)
				if !strings.Contains(strings.ToLower(t.Description), needle) &&
					!strings.Contains(strings.ToLower(t.Counterparty), needle) {
					continue
				}
			}
			matches = append(matches, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// sortedCopy returns value copies sorted by timestamp descending, with id
// as a tiebreaker so ordering is stable across identical timestamps.
func sortedCopy(transactions []*model.Transaction) []*model.Transaction {
	out := make([]*model.Transaction, 0, len(transactions))
	for _, t := range transactions {
		cp := *t
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
