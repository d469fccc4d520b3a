// Package replay rebuilds position state from a recorded fill log. The
// ledger takes every timestamp from the fills themselves, so replaying
// the same log always lands on the same state, which is what makes the
// journal usable for audit and backtest verification.
package replay

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/rustyeddy/ledger/journal"
	"github.com/rustyeddy/ledger/market"
	"github.com/rustyeddy/ledger/position"
)

// Runner replays fill logs into positions and journals the results.
type Runner struct {
	Instrument market.Instrument
	AccountID  string
	StrategyID string
	Journal    journal.Journal
	Logger     *zap.Logger
}

// Result summarizes one replay run.
type Result struct {
	Position     *position.Position
	FillsApplied int
	CyclesClosed int
}

// Run feeds the fills in order into a single position created from the
// first fill. Each applied fill is journaled; each time net quantity
// returns to zero a position snapshot is journaled.
func (r *Runner) Run(posID string, fills []position.Fill) (Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fills) == 0 {
		return Result{}, fmt.Errorf("replay: no fills")
	}

	p, err := position.NewWithID(posID, r.Instrument, r.AccountID, r.StrategyID, fills[0])
	if err != nil {
		return Result{}, fmt.Errorf("replay: %w", err)
	}

	res := Result{Position: p}
	for i, fill := range fills {
		if i > 0 {
			if err := p.Apply(fill); err != nil {
				return res, fmt.Errorf("replay fill %s: %w", fill.ExecID, err)
			}
		}
		res.FillsApplied++

		logger.Debug("fill applied",
			zap.String("position", p.ID()),
			zap.String("exec", fill.ExecID),
			zap.String("side", fill.Side.String()),
			zap.String("price", fill.Price.String()),
			zap.String("quantity", fill.Quantity.String()),
			zap.String("status", p.Status()),
		)

		if r.Journal != nil {
			if err := r.Journal.RecordFill(journal.NewFillRecord(p.ID(), fill)); err != nil {
				return res, fmt.Errorf("journal fill %s: %w", fill.ExecID, err)
			}
		}

		if p.IsClosed() {
			res.CyclesClosed++
			logger.Info("position cycle closed",
				zap.String("position", p.ID()),
				zap.String("realized_pnl", p.RealizedPnL().String()),
				zap.String("commission", p.Commission().String()),
			)
			if r.Journal != nil {
				if err := r.Journal.RecordPosition(journal.NewPositionRecord(p)); err != nil {
					return res, fmt.Errorf("journal position %s: %w", p.ID(), err)
				}
			}
		}
	}

	logger.Info("replay complete",
		zap.String("position", p.ID()),
		zap.Int("fills", res.FillsApplied),
		zap.Int("cycles_closed", res.CyclesClosed),
		zap.String("status", p.Status()),
		zap.String("realized_pnl", p.RealizedPnL().String()),
	)
	return res, nil
}
