package market

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrCurrencyMismatch is returned when two Money values in different
// currencies are combined, or when a value arrives in a currency other
// than the one a position settles in.
var ErrCurrencyMismatch = errors.New("currency mismatch")

// Money is a monetary amount in a single currency.
type Money struct {
	Amount   decimal.Decimal
	Currency Currency
}

// NewMoney builds a Money from a decimal amount and currency.
func NewMoney(amount decimal.Decimal, ccy Currency) Money {
	return Money{Amount: amount, Currency: ccy}
}

// MoneyFromFloat is a convenience constructor for tests and boundaries.
// Internal accounting stays on decimals.
func MoneyFromFloat(amount float64, ccy Currency) Money {
	return Money{Amount: decimal.NewFromFloat(amount), Currency: ccy}
}

// ZeroMoney returns a zero amount in the given currency.
func ZeroMoney(ccy Currency) Money {
	return Money{Amount: decimal.Zero, Currency: ccy}
}

// Add returns m + other. Both operands must share a currency.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("add %s to %s: %w", other.Currency, m.Currency, ErrCurrencyMismatch)
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// Sub returns m - other. Both operands must share a currency.
func (m Money) Sub(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("subtract %s from %s: %w", other.Currency, m.Currency, ErrCurrencyMismatch)
	}
	return Money{Amount: m.Amount.Sub(other.Amount), Currency: m.Currency}, nil
}

// Neg returns the negated amount in the same currency.
func (m Money) Neg() Money {
	return Money{Amount: m.Amount.Neg(), Currency: m.Currency}
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.String(), m.Currency)
}
