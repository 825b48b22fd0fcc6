package model

import (
	"github.com/shopspring/decimal"
)

// Ledger is the per-owner persisted unit: every account and every
// transaction belonging to one owner, serialized and stored as a whole.
// Balance mutation and transaction recording both happen on the same Ledger
// value inside a single repository update, which is what keeps the two
// halves consistent.
type Ledger struct {
	Accounts     []*Account     `json:"accounts"`
	Transactions []*Transaction `json:"transactions"`
}

// NewLedger returns an empty ledger. It is also the recovery value when the
// persisted blob turns out to be malformed.
func NewLedger() *Ledger {
	return &Ledger{
		Accounts:     []*Account{},
		Transactions: []*Transaction{},
	}
}

// Normalize repairs a ledger decoded from storage: nil slices (missing keys
// in the persisted document) become empty ones so callers can range freely.
func (l *Ledger) Normalize() {
	if l.Accounts == nil {
		l.Accounts = []*Account{}
	}
	if l.Transactions == nil {
		l.Transactions = []*Transaction{}
	}
}

// Account finds an account by id, or nil.
func (l *Ledger) Account(id string) *Account {
	for _, a := range l.Accounts {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// AddAccount appends an account, preserving insertion order.
func (l *Ledger) AddAccount(a *Account) {
	l.Accounts = append(l.Accounts, a)
}

// ApplyDelta adds a signed delta to an account balance. A debit that would
// take the balance negative is refused with ErrInsufficientFunds and leaves
// the ledger untouched.
func (l *Ledger) ApplyDelta(accountID string, delta decimal.Decimal) error {
	a := l.Account(accountID)
	if a == nil {
		return ErrAccountNotFound
	}
	next := a.Balance.Add(delta)
	if delta.IsNegative() && next.IsNegative() {
		return ErrInsufficientFunds
	}
	a.Balance = next
	return nil
}

// Append records a transaction.
func (l *Ledger) Append(t *Transaction) {
	l.Transactions = append(l.Transactions, t)
}

// FindByIdempotencyKey returns the transaction recorded under the given
// key, or nil. Empty keys never match.
func (l *Ledger) FindByIdempotencyKey(key string) *Transaction {
	if key == "" {
		return nil
	}
	for _, t := range l.Transactions {
		if t.IdempotencyKey == key {
			return t
		}
	}
	return nil
}
