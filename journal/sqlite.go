package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/ledger/market"
)

// SQLiteJournal writes fills and position snapshots to a SQLite file.
// Decimal columns are stored as TEXT so no precision is lost in the
// audit trail.
type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordFill(r FillRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO fills
		(position_id, exec_id, order_id, client_order_id, side, price, quantity, commission, currency, time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.PositionID, r.ExecID, r.OrderID, r.ClientOrderID, r.Side.String(),
		r.Price.String(), r.Quantity.String(), r.Commission.String(),
		string(r.Currency), r.Time,
	)
	return err
}

func (j *SQLiteJournal) RecordPosition(r PositionRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO positions
		(position_id, account_id, strategy_id, instrument, entry_side, peak_quantity,
		 avg_px_open, avg_px_close, realized_points, realized_return, realized_pnl,
		 commission, currency, ts_opened, ts_closed, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.PositionID, r.AccountID, r.StrategyID, r.Instrument, r.EntrySide.String(),
		r.PeakQuantity.String(), r.AvgPxOpen.String(), r.AvgPxClose.String(),
		r.RealizedPoints.String(), r.RealizedReturn.String(), r.RealizedPnL.String(),
		r.Commission.String(), string(r.Currency), r.TsOpened, r.TsClosed,
		int64(r.Duration),
	)
	return err
}

// ListFillsByPosition returns the journaled fills for one position in
// application order.
func (j *SQLiteJournal) ListFillsByPosition(positionID string) ([]FillRecord, error) {
	rows, err := j.db.Query(`
		SELECT position_id, exec_id, order_id, client_order_id, side,
		       price, quantity, commission, currency, time
		FROM fills WHERE position_id = ? ORDER BY time, exec_id`, positionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FillRecord
	for rows.Next() {
		var r FillRecord
		var side, price, qty, comm, ccy string
		var ts time.Time
		if err := rows.Scan(&r.PositionID, &r.ExecID, &r.OrderID, &r.ClientOrderID,
			&side, &price, &qty, &comm, &ccy, &ts); err != nil {
			return nil, err
		}
		if r.Side, err = parseSide(side); err != nil {
			return nil, err
		}
		if r.Price, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		if r.Quantity, err = decimal.NewFromString(qty); err != nil {
			return nil, err
		}
		if r.Commission, err = decimal.NewFromString(comm); err != nil {
			return nil, err
		}
		r.Currency = market.Currency(ccy)
		r.Time = ts
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListPositions returns all closed-cycle snapshots, oldest first.
func (j *SQLiteJournal) ListPositions() ([]PositionRecord, error) {
	rows, err := j.db.Query(`
		SELECT position_id, account_id, strategy_id, instrument, entry_side,
		       peak_quantity, avg_px_open, avg_px_close, realized_points,
		       realized_return, realized_pnl, commission, currency,
		       ts_opened, ts_closed, duration_ns
		FROM positions ORDER BY ts_closed`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PositionRecord
	for rows.Next() {
		var r PositionRecord
		var side, ccy string
		var decs [7]string
		var durNS int64
		if err := rows.Scan(&r.PositionID, &r.AccountID, &r.StrategyID, &r.Instrument,
			&side, &decs[0], &decs[1], &decs[2], &decs[3], &decs[4], &decs[5], &decs[6],
			&ccy, &r.TsOpened, &r.TsClosed, &durNS); err != nil {
			return nil, err
		}
		if r.EntrySide, err = parseSide(side); err != nil {
			return nil, err
		}
		fields := []*decimal.Decimal{
			&r.PeakQuantity, &r.AvgPxOpen, &r.AvgPxClose, &r.RealizedPoints,
			&r.RealizedReturn, &r.RealizedPnL, &r.Commission,
		}
		for i, dst := range fields {
			if *dst, err = decimal.NewFromString(decs[i]); err != nil {
				return nil, err
			}
		}
		r.Currency = market.Currency(ccy)
		r.Duration = time.Duration(durNS)
		out = append(out, r)
	}
	return out, rows.Err()
}

func parseSide(s string) (market.OrderSide, error) {
	side, ok := market.ParseOrderSide(s)
	if !ok {
		return 0, fmt.Errorf("journal: unknown side %q", s)
	}
	return side, nil
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
