// Package money renders balances for display.
package money

import "github.com/shopspring/decimal"

// Format prefixes amount with symbol and always shows two decimals.
func Format(symbol string, amount decimal.Decimal) string {
	return symbol + amount.StringFixed(2)
}
