// Package position tracks the lifecycle of a single trading position from
// an ordered stream of order fills: net quantity, weighted average entry
// and exit prices, realized PnL and commission, under both standard and
// inverse-quote accounting.
//
// Concurrency contract: single writer, multiple readers. Exactly one
// owner calls Apply for a given position; queries may run concurrently
// with each other but not with an in-flight Apply. The ledger does no
// internal locking so the accounting path stays allocation-free.
package position

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/ledger/market"
	"github.com/rustyeddy/ledger/pkg/id"
)

// Position is the ledger for one exposure on one instrument. It is
// created from the fill that opens the exposure and mutated by every
// subsequent fill. Once net quantity returns to zero the position is
// logically closed, but the same instance re-opens if further fills
// arrive; identity and history persist across cycles.
type Position struct {
	posID      string
	accountID  string
	strategyID string
	openOrder  string // client-order id of the opening fill
	instrument market.Instrument

	entrySide market.OrderSide
	buyQty    decimal.Decimal
	sellQty   decimal.Decimal
	relative  decimal.Decimal // buyQty - sellQty
	quantity  decimal.Decimal // |relative|
	peakQty   decimal.Decimal

	avgPxOpen  decimal.Decimal
	avgPxClose decimal.Decimal
	closedQty  decimal.Decimal // weight behind avgPxClose, current cycle

	realizedPoints decimal.Decimal
	realizedReturn decimal.Decimal
	cycleGross     decimal.Decimal // gross PnL of the current cycle's closes
	priorGross     decimal.Decimal // gross PnL locked in by finished cycles
	commission     decimal.Decimal

	tsInit   time.Time
	tsOpened time.Time
	tsClosed time.Time // zero while the current cycle is open
	duration time.Duration

	events []Fill
}

// New opens a position from its first fill. The instrument descriptor is
// fixed for the life of the position.
func New(instrument market.Instrument, accountID, strategyID string, first Fill) (*Position, error) {
	return NewWithID(id.NewPosition(), instrument, accountID, strategyID, first)
}

// NewWithID is New with a caller-supplied position id, for replaying
// recorded fill logs where ids must be stable across runs.
func NewWithID(posID string, instrument market.Instrument, accountID, strategyID string, first Fill) (*Position, error) {
	if err := instrument.Validate(); err != nil {
		return nil, fmt.Errorf("new position: %w", err)
	}
	if err := first.Validate(instrument.QuoteCurrency); err != nil {
		return nil, fmt.Errorf("new position: %w", err)
	}

	p := &Position{
		posID:      posID,
		accountID:  accountID,
		strategyID: strategyID,
		openOrder:  first.ClientOrderID,
		instrument: instrument,
		tsInit:     first.Time,
		tsOpened:   first.Time,
	}
	p.mutate(first)
	return p, nil
}

// Apply feeds one fill into the ledger. The fill is validated before any
// state is touched: a rejected fill leaves the position byte-identical.
func (p *Position) Apply(fill Fill) error {
	if err := fill.Validate(p.instrument.QuoteCurrency); err != nil {
		return err
	}
	p.mutate(fill)
	return nil
}

// mutate applies a validated fill. Infallible by construction.
func (p *Position) mutate(fill Fill) {
	wasFlat := p.relative.IsZero()
	effect := classifyFill(p.relative, fill.Side, fill.Quantity)

	p.events = append(p.events, fill)

	if fill.Side == market.Buy {
		p.buyQty = p.buyQty.Add(fill.Quantity)
	} else {
		p.sellQty = p.sellQty.Add(fill.Quantity)
	}
	if !fill.Commission.IsZero() {
		p.commission = p.commission.Add(fill.Commission.Amount)
	}

	switch effect.kind {
	case fillIncrease:
		p.increase(fill, effect.openQty, wasFlat)
	case fillReduce:
		p.reduce(fill, effect.closeQty)
	case fillFlip:
		p.reduce(fill, effect.closeQty)
		p.flip(fill)
	}

	p.relative = p.buyQty.Sub(p.sellQty)
	p.quantity = p.relative.Abs()
	if p.quantity.GreaterThan(p.peakQty) {
		p.peakQty = p.quantity
	}

	if p.quantity.IsZero() && effect.kind == fillReduce {
		// Net quantity crossed back to zero: the cycle is closed.
		p.tsClosed = fill.Time
		p.duration = p.tsClosed.Sub(p.tsOpened)
	} else if wasFlat && !p.tsClosed.IsZero() {
		// A fresh fill re-opened a fully closed position: the previous
		// cycle's close markers no longer describe the live exposure.
		p.tsClosed = time.Time{}
		p.duration = 0
	}
}

// increase extends exposure in the current direction, or opens from flat.
// Re-opening a fully closed position starts a fresh cycle: the previous
// cycle's close-side state is rolled into priorGross and cleared.
func (p *Position) increase(fill Fill, qty decimal.Decimal, wasFlat bool) {
	if wasFlat {
		p.rollCycle()
		p.realizedPoints = decimal.Zero
		p.realizedReturn = decimal.Zero
		p.entrySide = fill.Side
		p.avgPxOpen = fill.Price
		return
	}
	open := p.relative.Abs()
	total := open.Add(qty)
	p.avgPxOpen = p.avgPxOpen.Mul(open).Add(fill.Price.Mul(qty)).Div(total)
}

// reduce closes part or all of the current exposure and recomputes the
// realized figures over the full closed quantity of the cycle.
func (p *Position) reduce(fill Fill, qty decimal.Decimal) {
	total := p.closedQty.Add(qty)
	if p.closedQty.IsZero() {
		p.avgPxClose = fill.Price
	} else {
		p.avgPxClose = p.avgPxClose.Mul(p.closedQty).Add(fill.Price.Mul(qty)).Div(total)
	}
	p.closedQty = total

	p.realizedPoints = p.points(p.avgPxOpen, p.avgPxClose)
	p.realizedReturn = p.realizedPoints.Div(p.avgPxOpen)
	p.cycleGross = p.grossPnL(p.avgPxOpen, p.avgPxClose, p.closedQty)
}

// flip starts a new cycle on the opposite side from the remainder of a
// fill that crossed zero. The just-closed leg's realized points and
// return stay readable until the next close recomputes them.
func (p *Position) flip(fill Fill) {
	p.rollCycle()
	p.entrySide = fill.Side
	p.avgPxOpen = fill.Price
	p.tsClosed = fill.Time
	p.duration = p.tsClosed.Sub(p.tsOpened)
}

// rollCycle locks the current cycle's gross PnL into priorGross and
// clears the close-side trackers for the next cycle.
func (p *Position) rollCycle() {
	p.priorGross = p.priorGross.Add(p.cycleGross)
	p.cycleGross = decimal.Zero
	p.closedQty = decimal.Zero
	p.avgPxClose = decimal.Zero
}

// points is the signed per-unit price move for the current entry side.
func (p *Position) points(avgOpen, avgClose decimal.Decimal) decimal.Decimal {
	pts := avgClose.Sub(avgOpen)
	if p.entrySide == market.Sell {
		pts = pts.Neg()
	}
	return pts
}

// grossPnL converts a closed (or marked) price pair and quantity into
// quote-currency PnL, before commission.
//
// Inverse-quote instruments settle in units fixed on the base side, so
// their money PnL uses reciprocal pricing. A zero price in the inverse
// path is unreachable through Apply and treated as state corruption.
func (p *Position) grossPnL(avgOpen, avgClose, qty decimal.Decimal) decimal.Decimal {
	mult := p.instrument.EffectiveMultiplier()
	if p.instrument.InverseQuote {
		if avgOpen.IsZero() || avgClose.IsZero() {
			panic(fmt.Sprintf("position %s: zero price in inverse PnL (open=%s close=%s)",
				p.posID, avgOpen, avgClose))
		}
		one := decimal.New(1, 0)
		recip := one.Div(avgOpen).Sub(one.Div(avgClose))
		if p.entrySide == market.Sell {
			recip = recip.Neg()
		}
		return qty.Mul(recip).Mul(mult)
	}
	return p.points(avgOpen, avgClose).Mul(qty).Mul(mult)
}

// NotionalValue marks the open quantity at the given price, in the quote
// currency.
func (p *Position) NotionalValue(lastPx decimal.Decimal) market.Money {
	mult := p.instrument.EffectiveMultiplier()
	var amt decimal.Decimal
	if p.instrument.InverseQuote {
		if lastPx.IsZero() {
			panic(fmt.Sprintf("position %s: zero price in inverse notional", p.posID))
		}
		amt = p.quantity.Mul(mult).Div(lastPx)
	} else {
		amt = p.quantity.Mul(lastPx).Mul(mult)
	}
	return market.NewMoney(amt, p.instrument.QuoteCurrency)
}

// UnrealizedPnL marks the open quantity to lastPx as a provisional close.
// Commission is not deducted; it is only realized on actual fills.
func (p *Position) UnrealizedPnL(lastPx decimal.Decimal) market.Money {
	if p.quantity.IsZero() {
		return market.ZeroMoney(p.instrument.QuoteCurrency)
	}
	return market.NewMoney(p.grossPnL(p.avgPxOpen, lastPx, p.quantity), p.instrument.QuoteCurrency)
}

// RealizedPnL is the PnL locked in by closing fills across all cycles,
// net of all commission paid.
func (p *Position) RealizedPnL() market.Money {
	return market.NewMoney(p.priorGross.Add(p.cycleGross).Sub(p.commission), p.instrument.QuoteCurrency)
}

// TotalPnL is realized plus unrealized at lastPx. Once the position is
// fully closed it equals RealizedPnL exactly.
func (p *Position) TotalPnL(lastPx decimal.Decimal) market.Money {
	total, _ := p.RealizedPnL().Add(p.UnrealizedPnL(lastPx))
	return total
}

// ID returns the position identifier.
func (p *Position) ID() string { return p.posID }

// AccountID returns the owning account.
func (p *Position) AccountID() string { return p.accountID }

// StrategyID returns the originating strategy.
func (p *Position) StrategyID() string { return p.strategyID }

// OpeningOrderID returns the client-order id of the fill that opened the
// position.
func (p *Position) OpeningOrderID() string { return p.openOrder }

// Instrument returns the accounting descriptor the position was built with.
func (p *Position) Instrument() market.Instrument { return p.instrument }

// EntrySide is the direction of the fill that opened the current cycle.
func (p *Position) EntrySide() market.OrderSide { return p.entrySide }

// Side is the current net direction.
func (p *Position) Side() market.PositionSide {
	switch p.relative.Sign() {
	case 1:
		return market.Long
	case -1:
		return market.Short
	}
	return market.Flat
}

// RelativeQuantity is the signed net quantity (buys minus sells).
func (p *Position) RelativeQuantity() decimal.Decimal { return p.relative }

// Quantity is the unsigned open quantity.
func (p *Position) Quantity() decimal.Decimal { return p.quantity }

// PeakQuantity is the largest open quantity the position ever reached.
func (p *Position) PeakQuantity() decimal.Decimal { return p.peakQty }

// BuyQuantity is the cumulative bought quantity.
func (p *Position) BuyQuantity() decimal.Decimal { return p.buyQty }

// SellQuantity is the cumulative sold quantity.
func (p *Position) SellQuantity() decimal.Decimal { return p.sellQty }

// AvgPxOpen is the quantity-weighted average price of the fills that
// opened the current cycle.
func (p *Position) AvgPxOpen() decimal.Decimal { return p.avgPxOpen }

// AvgPxClose is the quantity-weighted average closing price. ok is false
// until any quantity has been closed in the current cycle.
func (p *Position) AvgPxClose() (decimal.Decimal, bool) {
	if p.closedQty.IsZero() {
		return decimal.Zero, false
	}
	return p.avgPxClose, true
}

// RealizedPoints is the signed per-unit price move realized by closes.
func (p *Position) RealizedPoints() decimal.Decimal { return p.realizedPoints }

// RealizedReturn is the fractional realized return. ok is false until an
// average open price exists.
func (p *Position) RealizedReturn() (decimal.Decimal, bool) {
	if p.avgPxOpen.IsZero() {
		return decimal.Zero, false
	}
	return p.realizedReturn, true
}

// Commission is the total commission accumulated across all fills.
func (p *Position) Commission() market.Money {
	return market.NewMoney(p.commission, p.instrument.QuoteCurrency)
}

// TsInit is the creation time (time of the first fill).
func (p *Position) TsInit() time.Time { return p.tsInit }

// TsOpened is the time of the first fill.
func (p *Position) TsOpened() time.Time { return p.tsOpened }

// TsClosed reports when net quantity last returned to zero. ok is false
// while the position is open and was never closed, or after a reopen.
func (p *Position) TsClosed() (time.Time, bool) {
	if p.tsClosed.IsZero() {
		return time.Time{}, false
	}
	return p.tsClosed, true
}

// OpenDuration is the time between opening and closing. ok follows
// TsClosed.
func (p *Position) OpenDuration() (time.Duration, bool) {
	if p.tsClosed.IsZero() {
		return 0, false
	}
	return p.duration, true
}

// IsLong reports whether net quantity is positive.
func (p *Position) IsLong() bool { return p.relative.Sign() > 0 }

// IsShort reports whether net quantity is negative.
func (p *Position) IsShort() bool { return p.relative.Sign() < 0 }

// IsOpen reports whether any quantity is open.
func (p *Position) IsOpen() bool { return !p.quantity.IsZero() }

// IsClosed reports whether net quantity is zero.
func (p *Position) IsClosed() bool { return p.quantity.IsZero() }

// Status is the stable textual form of the current side, for logs and
// reports.
func (p *Position) Status() string { return p.Side().String() }

func (p *Position) String() string {
	return fmt.Sprintf("Position(%s %s %s, id=%s)",
		p.Status(), p.quantity, p.instrument.Symbol, p.posID)
}

// Events returns a copy of the applied fills in application order.
func (p *Position) Events() []Fill {
	out := make([]Fill, len(p.events))
	copy(out, p.events)
	return out
}

// EventCount returns the number of fills applied.
func (p *Position) EventCount() int { return len(p.events) }

// LastFill returns the most recently applied fill.
func (p *Position) LastFill() Fill { return p.events[len(p.events)-1] }

// ExecIDs returns the distinct execution ids seen, in first-seen order.
func (p *Position) ExecIDs() []string {
	return p.distinct(func(f Fill) string { return f.ExecID })
}

// OrderIDs returns the distinct venue order ids seen, in first-seen order.
func (p *Position) OrderIDs() []string {
	return p.distinct(func(f Fill) string { return f.OrderID })
}

// ClientOrderIDs returns the distinct client-order ids seen, in
// first-seen order.
func (p *Position) ClientOrderIDs() []string {
	return p.distinct(func(f Fill) string { return f.ClientOrderID })
}

func (p *Position) distinct(key func(Fill) string) []string {
	seen := make(map[string]struct{}, len(p.events))
	out := make([]string, 0, len(p.events))
	for _, f := range p.events {
		k := key(f)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
