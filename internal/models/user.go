package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User captures application-facing fields for a bank customer.
type User struct {
	ID           string          `json:"id"`
	Username     string          `json:"username"`
	PasswordHash string          `json:"-"`
	Balance      decimal.Decimal `json:"balance"`
	CreatedAt    time.Time       `json:"created_at"`
}
