package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind classifies how a transaction came to be.
type TransactionKind string

const (
	KindInternalTransferDebit  TransactionKind = "internal-transfer-debit"
	KindInternalTransferCredit TransactionKind = "internal-transfer-credit"
	KindExternalTransfer       TransactionKind = "external-transfer"
	KindCardPayment            TransactionKind = "card-payment"
	KindManualEntry            TransactionKind = "manual-entry"
)

// TransactionDirection tells whether the amount increased or decreased the
// account balance. Amount itself is always a positive magnitude.
type TransactionDirection string

const (
	DirectionCredit TransactionDirection = "credit"
	DirectionDebit  TransactionDirection = "debit"
)

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
)

type Transaction struct {
	ID        string               `json:"id"`
	OwnerID   string               `json:"owner_id"`
	AccountID string               `json:"account_id"`
	Kind      TransactionKind      `json:"kind"`
	Direction TransactionDirection `json:"direction"`
	Amount    decimal.Decimal      `json:"amount"`
	// Counterparty is another account id for internal transfers, or an
	// external identifier (email, card descriptor) otherwise.
	Counterparty string            `json:"counterparty"`
	Description  string            `json:"description"`
	Category     string            `json:"category"`
	Status       TransactionStatus `json:"status"`
	// CorrelationID ties together the debit and credit legs of an internal
	// transfer.
	CorrelationID  string    `json:"correlation_id,omitempty"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
	CardBrand      string    `json:"card_brand,omitempty"`
	CardLastFour   string    `json:"card_last_four,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// TransactionPage is one page of a descending-by-time transaction listing.
type TransactionPage struct {
	Transactions []*Transaction `json:"transactions"`
	Page         int            `json:"page"`
	PageSize     int            `json:"page_size"`
	TotalCount   int            `json:"total_count"`
	TotalPages   int            `json:"total_pages"`
}

// TransactionFilter narrows a transaction listing. Zero-valued fields match
// everything.
type TransactionFilter struct {
	Kind     TransactionKind
	Category string
	Search   string
}

// TransferReceipt is the result of a committed transfer: the recorded
// transactions plus the correlation id they share (internal transfers record
// two legs, external ones a single debit).
type TransferReceipt struct {
	CorrelationID string         `json:"correlation_id"`
	Transactions  []*Transaction `json:"transactions"`
}
