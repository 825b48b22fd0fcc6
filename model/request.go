// file: model/request.go

package model

// RegisterRequest defines the payload for creating a new user.
// It includes validation tags to ensure data integrity at the entry point.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest defines the payload for user authentication.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// CreateAccountRequest defines the payload for adding a new account.
// InitialBalance is a decimal string so precision survives the wire.
type CreateAccountRequest struct {
	DisplayName     string `json:"display_name" validate:"required,min=1,max=100"`
	InstitutionName string `json:"institution_name" validate:"required,min=1,max=100"`
	AccountNumber   string `json:"account_number" validate:"required,min=4,max=34"`
	RoutingCode     string `json:"routing_code" validate:"omitempty,max=34"`
	InitialBalance  string `json:"initial_balance" validate:"omitempty"`
}

// InternalTransferRequest moves money between two of the caller's accounts.
type InternalTransferRequest struct {
	FromAccountID  string `json:"from_account_id" validate:"required"`
	ToAccountID    string `json:"to_account_id" validate:"required"`
	Amount         string `json:"amount" validate:"required"`
	Description    string `json:"description" validate:"max=200"`
	Category       string `json:"category" validate:"max=50"`
	IdempotencyKey string `json:"idempotency_key" validate:"omitempty,max=100"`
}

// ExternalTransferRequest sends money out of the system to an email
// recipient, funded from one of the caller's accounts by bank rail or card.
type ExternalTransferRequest struct {
	FromAccountID  string       `json:"from_account_id" validate:"required"`
	RecipientEmail string       `json:"recipient_email" validate:"required,email"`
	Amount         string       `json:"amount" validate:"required"`
	Description    string       `json:"description" validate:"max=200"`
	Category       string       `json:"category" validate:"max=50"`
	Method         string       `json:"method" validate:"required,oneof=bank card"`
	IdempotencyKey string       `json:"idempotency_key" validate:"omitempty,max=100"`
	Card           *CardDetails `json:"card" validate:"omitempty"`
}

// ManualEntryRequest records a one-sided ledger adjustment.
type ManualEntryRequest struct {
	AccountID    string `json:"account_id" validate:"required"`
	Amount       string `json:"amount" validate:"required"`
	Direction    string `json:"direction" validate:"required,oneof=credit debit"`
	Counterparty string `json:"counterparty" validate:"max=100"`
	Description  string `json:"description" validate:"max=200"`
	Category     string `json:"category" validate:"max=50"`
}

// CardDetails carries raw card input to the tokenization collaborator. It
// is never persisted; only the returned token descriptors are.
type CardDetails struct {
	Number      string `json:"number" validate:"required,min=12,max=19"`
	ExpiryMonth int    `json:"expiry_month" validate:"required,min=1,max=12"`
	ExpiryYear  int    `json:"expiry_year" validate:"required,min=2000"`
	CVV         string `json:"cvv" validate:"required,min=3,max=4"`
	HolderName  string `json:"holder_name" validate:"required,min=1,max=100"`
}
