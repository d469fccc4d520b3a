package position

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/ledger/market"
)

// ErrInvalidFill marks a fill rejected before any ledger mutation.
var ErrInvalidFill = errors.New("invalid fill")

// Fill is a single order execution applied to a position. Fills arrive
// pre-ordered by timestamp; the ledger never reorders them.
type Fill struct {
	ExecID        string
	OrderID       string
	ClientOrderID string
	Side          market.OrderSide
	Price         decimal.Decimal
	Quantity      decimal.Decimal
	Commission    market.Money
	Time          time.Time
}

// Validate checks the fill contract against the position's settlement
// currency. A fill failing here must leave the ledger untouched.
func (f Fill) Validate(quote market.Currency) error {
	if f.Side != market.Buy && f.Side != market.Sell {
		return fmt.Errorf("%w: side %q", ErrInvalidFill, f.Side)
	}
	if f.Price.Sign() <= 0 {
		return fmt.Errorf("%w: price %s must be positive", ErrInvalidFill, f.Price)
	}
	if f.Quantity.Sign() <= 0 {
		return fmt.Errorf("%w: quantity %s must be positive", ErrInvalidFill, f.Quantity)
	}
	if f.Commission.Currency != "" && f.Commission.Currency != quote {
		return fmt.Errorf("%w: commission in %s, position settles in %s: %w",
			ErrInvalidFill, f.Commission.Currency, quote, market.ErrCurrencyMismatch)
	}
	return nil
}
