// Package journal persists an append-only audit trail of ledger activity:
// one record per applied fill and one snapshot per closed position cycle.
// A recorded fill log is sufficient to rebuild ledger state exactly.
package journal

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/ledger/market"
	"github.com/rustyeddy/ledger/position"
)

// FillRecord is one applied fill, as journaled.
type FillRecord struct {
	PositionID    string
	ExecID        string
	OrderID       string
	ClientOrderID string
	Side          market.OrderSide
	Price         decimal.Decimal
	Quantity      decimal.Decimal
	Commission    decimal.Decimal
	Currency      market.Currency
	Time          time.Time
}

// PositionRecord is a snapshot of a position at the moment a cycle closes.
type PositionRecord struct {
	PositionID     string
	AccountID      string
	StrategyID     string
	Instrument     string
	EntrySide      market.OrderSide
	PeakQuantity   decimal.Decimal
	AvgPxOpen      decimal.Decimal
	AvgPxClose     decimal.Decimal
	RealizedPoints decimal.Decimal
	RealizedReturn decimal.Decimal
	RealizedPnL    decimal.Decimal
	Commission     decimal.Decimal
	Currency       market.Currency
	TsOpened       time.Time
	TsClosed       time.Time
	Duration       time.Duration
}

// NewFillRecord builds the journal row for a fill applied to a position.
func NewFillRecord(positionID string, f position.Fill) FillRecord {
	return FillRecord{
		PositionID:    positionID,
		ExecID:        f.ExecID,
		OrderID:       f.OrderID,
		ClientOrderID: f.ClientOrderID,
		Side:          f.Side,
		Price:         f.Price,
		Quantity:      f.Quantity,
		Commission:    f.Commission.Amount,
		Currency:      f.Commission.Currency,
		Time:          f.Time,
	}
}

// NewPositionRecord snapshots a just-closed position.
func NewPositionRecord(p *position.Position) PositionRecord {
	avgClose, _ := p.AvgPxClose()
	ret, _ := p.RealizedReturn()
	tsClosed, _ := p.TsClosed()
	dur, _ := p.OpenDuration()

	return PositionRecord{
		PositionID:     p.ID(),
		AccountID:      p.AccountID(),
		StrategyID:     p.StrategyID(),
		Instrument:     p.Instrument().Symbol,
		EntrySide:      p.EntrySide(),
		PeakQuantity:   p.PeakQuantity(),
		AvgPxOpen:      p.AvgPxOpen(),
		AvgPxClose:     avgClose,
		RealizedPoints: p.RealizedPoints(),
		RealizedReturn: ret,
		RealizedPnL:    p.RealizedPnL().Amount,
		Commission:     p.Commission().Amount,
		Currency:       p.Instrument().QuoteCurrency,
		TsOpened:       p.TsOpened(),
		TsClosed:       tsClosed,
		Duration:       dur,
	}
}

// Journal records ledger activity. Implementations are CSV and SQLite.
type Journal interface {
	RecordFill(FillRecord) error
	RecordPosition(PositionRecord) error
	Close() error
}
