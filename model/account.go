package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Account struct {
	ID              string          `json:"id"`
	OwnerID         string          `json:"owner_id"`
	DisplayName     string          `json:"display_name"`
	InstitutionName string          `json:"institution_name"`
	AccountNumber   string          `json:"account_number"`
	RoutingCode     string          `json:"routing_code"`
	Balance         decimal.Decimal `json:"balance"`
	CreatedAt       time.Time       `json:"created_at"`
}
