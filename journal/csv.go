// journal/csv.go
package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSVJournal struct {
	fills     *csv.Writer
	positions *csv.Writer
	ff, pf    *os.File
}

func NewCSV(fillsPath, positionsPath string) (*CSVJournal, error) {
	ff, err := os.Create(fillsPath)
	if err != nil {
		return nil, err
	}
	pf, err := os.Create(positionsPath)
	if err != nil {
		return nil, err
	}

	fw := csv.NewWriter(ff)
	pw := csv.NewWriter(pf)

	if err := fw.Write([]string{"position_id", "exec_id", "order_id", "client_order_id",
		"side", "price", "quantity", "commission", "currency", "time"}); err != nil {
		return nil, err
	}
	if err := pw.Write([]string{"position_id", "account_id", "strategy_id", "instrument",
		"entry_side", "peak_quantity", "avg_px_open", "avg_px_close", "realized_points",
		"realized_return", "realized_pnl", "commission", "currency",
		"ts_opened", "ts_closed", "duration_ns"}); err != nil {
		return nil, err
	}

	fw.Flush()
	if err := fw.Error(); err != nil {
		return nil, err
	}
	pw.Flush()
	if err := pw.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{fw, pw, ff, pf}, nil
}

func (j *CSVJournal) RecordFill(r FillRecord) error {
	err := j.fills.Write([]string{
		r.PositionID,
		r.ExecID,
		r.OrderID,
		r.ClientOrderID,
		r.Side.String(),
		r.Price.String(),
		r.Quantity.String(),
		r.Commission.String(),
		string(r.Currency),
		r.Time.Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}

	j.fills.Flush()
	return j.fills.Error()
}

func (j *CSVJournal) RecordPosition(r PositionRecord) error {
	err := j.positions.Write([]string{
		r.PositionID,
		r.AccountID,
		r.StrategyID,
		r.Instrument,
		r.EntrySide.String(),
		r.PeakQuantity.String(),
		r.AvgPxOpen.String(),
		r.AvgPxClose.String(),
		r.RealizedPoints.String(),
		r.RealizedReturn.String(),
		r.RealizedPnL.String(),
		r.Commission.String(),
		string(r.Currency),
		r.TsOpened.Format(time.RFC3339Nano),
		r.TsClosed.Format(time.RFC3339Nano),
		strconv.FormatInt(int64(r.Duration), 10),
	})
	if err != nil {
		return err
	}

	j.positions.Flush()
	return j.positions.Error()
}

func (j *CSVJournal) Close() error {
	j.fills.Flush()
	j.positions.Flush()
	if err := j.ff.Close(); err != nil {
		return err
	}
	return j.pf.Close()
}
