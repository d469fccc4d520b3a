package position

import (
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/ledger/market"
)

// fillKind says what a fill does to the currently open exposure.
type fillKind int

const (
	fillIncrease fillKind = iota // extends exposure in the current direction (or opens from flat)
	fillReduce                   // shrinks exposure, possibly to zero
	fillFlip                     // closes exposure and reopens on the other side in one event
)

// fillEffect is the result of classifying a fill against the position
// state before any mutation: the kind plus the quantity split between the
// closing and opening legs. Exactly one leg is non-zero except for a
// flip, where both are.
type fillEffect struct {
	kind     fillKind
	closeQty decimal.Decimal
	openQty  decimal.Decimal
}

// classifyFill decides how a fill applies given the signed relative
// quantity before the fill. Pure: the weighted-average updates in Apply
// branch on the returned effect rather than re-deriving the split.
func classifyFill(relative decimal.Decimal, side market.OrderSide, qty decimal.Decimal) fillEffect {
	signed := qty
	if side == market.Sell {
		signed = qty.Neg()
	}

	// Flat, or fill in the direction of current exposure: pure increase.
	if relative.IsZero() || relative.Sign() == signed.Sign() {
		return fillEffect{kind: fillIncrease, openQty: qty}
	}

	open := relative.Abs()
	if qty.LessThanOrEqual(open) {
		return fillEffect{kind: fillReduce, closeQty: qty}
	}

	return fillEffect{
		kind:     fillFlip,
		closeQty: open,
		openQty:  qty.Sub(open),
	}
}
