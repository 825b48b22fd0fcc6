package model

import "errors"

// Ledger-level errors. Services wrap or map these onto their own taxonomy
// before they reach the HTTP layer.
var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrValidation        = errors.New("invalid account data")
)
