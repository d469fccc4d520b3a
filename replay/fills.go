package replay

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/ledger/market"
	"github.com/rustyeddy/ledger/position"
)

// fillLogColumns is the expected header of a recorded fill log.
var fillLogColumns = []string{
	"time", "side", "price", "quantity", "commission",
	"exec_id", "order_id", "client_order_id",
}

// ReadFillLog parses a CSV fill log into fills ready to feed a ledger.
//
// exec_id, order_id and client_order_id may be blank in hand-written
// logs; missing ids are minted as name-based UUIDs over the row number
// so repeated replays of the same file produce identical ids.
func ReadFillLog(path string, quote market.Currency) ([]position.Fill, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fill log: %w", err)
	}
	defer f.Close()

	fills, err := parseFillLog(f, quote, path)
	if err != nil {
		return nil, fmt.Errorf("fill log %s: %w", path, err)
	}
	return fills, nil
}

func parseFillLog(r io.Reader, quote market.Currency, name string) ([]position.Fill, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var fills []position.Fill
	var prev time.Time
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		fill, err := parseFillRow(rec, quote, name, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		if fill.Time.Before(prev) {
			return nil, fmt.Errorf("row %d: timestamps must be non-decreasing", row)
		}
		prev = fill.Time
		fills = append(fills, fill)
	}
	if len(fills) == 0 {
		return nil, fmt.Errorf("no fills in log")
	}
	return fills, nil
}

func checkHeader(header []string) error {
	if len(header) != len(fillLogColumns) {
		return fmt.Errorf("expected %d columns, got %d", len(fillLogColumns), len(header))
	}
	for i, want := range fillLogColumns {
		if strings.TrimSpace(header[i]) != want {
			return fmt.Errorf("column %d: expected %q, got %q", i, want, header[i])
		}
	}
	return nil
}

func parseFillRow(rec []string, quote market.Currency, name string, row int) (position.Fill, error) {
	var fill position.Fill

	ts, err := time.Parse(time.RFC3339Nano, rec[0])
	if err != nil {
		ts, err = time.Parse(time.RFC3339, rec[0])
	}
	if err != nil {
		return fill, fmt.Errorf("time %q: %w", rec[0], err)
	}

	side, ok := market.ParseOrderSide(rec[1])
	if !ok {
		return fill, fmt.Errorf("side %q", rec[1])
	}

	price, err := decimal.NewFromString(rec[2])
	if err != nil {
		return fill, fmt.Errorf("price %q: %w", rec[2], err)
	}
	qty, err := decimal.NewFromString(rec[3])
	if err != nil {
		return fill, fmt.Errorf("quantity %q: %w", rec[3], err)
	}

	comm := decimal.Zero
	if rec[4] != "" {
		if comm, err = decimal.NewFromString(rec[4]); err != nil {
			return fill, fmt.Errorf("commission %q: %w", rec[4], err)
		}
	}

	fill = position.Fill{
		ExecID:        orMintedID(rec[5], name, "exec", row),
		OrderID:       orMintedID(rec[6], name, "order", row),
		ClientOrderID: orMintedID(rec[7], name, "client", row),
		Side:          side,
		Price:         price,
		Quantity:      qty,
		Commission:    market.NewMoney(comm, quote),
		Time:          ts,
	}
	return fill, nil
}

// orMintedID keeps a recorded id, or mints a stable one from the log
// name, field and row so replays stay deterministic.
func orMintedID(got, name, field string, row int) string {
	got = strings.TrimSpace(got)
	if got != "" {
		return got
	}
	seed := fmt.Sprintf("%s|%s|%d", name, field, row)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String()
}
