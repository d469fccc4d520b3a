package market

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Instrument describes the accounting parameters of a tradable symbol.
//
// InverseQuote marks instruments whose contract value is fixed in base
// units and priced reciprocally in the quote currency (e.g. coin-margined
// perpetuals). Their money PnL uses reciprocal arithmetic.
type Instrument struct {
	Symbol        string
	BaseCurrency  Currency
	QuoteCurrency Currency
	InverseQuote  bool
	Multiplier    decimal.Decimal // contract multiplier, 1 if unset
	PricePrec     int32
	SizePrec      int32
}

// Validate checks the construction contract for an instrument.
func (i Instrument) Validate() error {
	if i.Symbol == "" {
		return fmt.Errorf("instrument: symbol is required")
	}
	if i.QuoteCurrency == "" {
		return fmt.Errorf("instrument %s: quote currency is required", i.Symbol)
	}
	if i.Multiplier.Sign() < 0 {
		return fmt.Errorf("instrument %s: multiplier must be positive", i.Symbol)
	}
	return nil
}

// EffectiveMultiplier returns the contract multiplier, defaulting to 1
// when the descriptor left it unset.
func (i Instrument) EffectiveMultiplier() decimal.Decimal {
	if i.Multiplier.IsZero() {
		return decimal.New(1, 0)
	}
	return i.Multiplier
}

// Instruments holds descriptors for commonly used symbols. Callers with
// other symbols construct an Instrument directly.
var Instruments = map[string]Instrument{
	"EUR_USD": {
		Symbol:        "EUR_USD",
		BaseCurrency:  EUR,
		QuoteCurrency: USD,
		PricePrec:     5,
		SizePrec:      0,
	},
	"USD_JPY": {
		Symbol:        "USD_JPY",
		BaseCurrency:  USD,
		QuoteCurrency: JPY,
		PricePrec:     3,
		SizePrec:      0,
	},
	"BTC_USDT": {
		Symbol:        "BTC_USDT",
		BaseCurrency:  BTC,
		QuoteCurrency: USDT,
		PricePrec:     2,
		SizePrec:      6,
	},
	"BTC_USD_INVERSE": {
		Symbol:        "BTC_USD_INVERSE",
		BaseCurrency:  BTC,
		QuoteCurrency: USD,
		InverseQuote:  true,
		PricePrec:     2,
		SizePrec:      0,
	},
}
