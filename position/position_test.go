package position

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/ledger/market"
)

var (
	t0 = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	btcUSDT = market.Instrument{
		Symbol:        "BTC_USDT",
		BaseCurrency:  market.BTC,
		QuoteCurrency: market.USDT,
		PricePrec:     2,
		SizePrec:      6,
	}
	btcInverse = market.Instrument{
		Symbol:        "BTC_USD_INVERSE",
		BaseCurrency:  market.BTC,
		QuoteCurrency: market.USD,
		InverseQuote:  true,
		PricePrec:     2,
	}
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func fill(exec string, side market.OrderSide, px, qty, comm string, at time.Time) Fill {
	return Fill{
		ExecID:        exec,
		OrderID:       "O-" + exec,
		ClientOrderID: "C-" + exec,
		Side:          side,
		Price:         dec(px),
		Quantity:      dec(qty),
		Commission:    market.NewMoney(dec(comm), "USDT"),
		Time:          at,
	}
}

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s got %s", want, got)
}

func TestNew_OpensFromFirstFill(t *testing.T) {
	t.Parallel()

	p, err := New(btcUSDT, "ACC-1", "S-1", fill("E1", market.Buy, "10.0", "100", "2", t0))
	require.NoError(t, err)

	assert.Equal(t, market.Long, p.Side())
	assert.Equal(t, market.Buy, p.EntrySide())
	assert.Equal(t, "LONG", p.Status())
	assertDec(t, "100", p.Quantity())
	assertDec(t, "100", p.RelativeQuantity())
	assertDec(t, "100", p.PeakQuantity())
	assertDec(t, "100", p.BuyQuantity())
	assertDec(t, "0", p.SellQuantity())
	assertDec(t, "10.0", p.AvgPxOpen())
	assert.True(t, p.IsOpen())
	assert.True(t, p.IsLong())
	assert.False(t, p.IsShort())
	assert.Equal(t, t0, p.TsOpened())
	assert.Equal(t, t0, p.TsInit())
	assert.Equal(t, "C-E1", p.OpeningOrderID())
	assert.Equal(t, 1, p.EventCount())

	_, closed := p.TsClosed()
	assert.False(t, closed)
	_, avgClose := p.AvgPxClose()
	assert.False(t, avgClose)
}

func TestNew_RejectsBadInputs(t *testing.T) {
	t.Parallel()

	good := fill("E1", market.Buy, "10.0", "100", "0", t0)

	_, err := New(market.Instrument{Symbol: "X"}, "A", "S", good)
	assert.Error(t, err, "missing quote currency")

	bad := good
	bad.Quantity = decimal.Zero
	_, err = New(btcUSDT, "A", "S", bad)
	assert.ErrorIs(t, err, ErrInvalidFill)
}

func TestApply_AveragesOpenPrice(t *testing.T) {
	t.Parallel()

	p, err := New(btcUSDT, "ACC-1", "S-1", fill("E1", market.Buy, "10.0", "100", "0", t0))
	require.NoError(t, err)
	require.NoError(t, p.Apply(fill("E2", market.Buy, "20.0", "100", "0", t0.Add(time.Minute))))

	assertDec(t, "15", p.AvgPxOpen())
	assertDec(t, "200", p.Quantity())
	assertDec(t, "200", p.PeakQuantity())
	assert.Equal(t, market.Long, p.Side())
}

func TestApply_FullCloseRealizes(t *testing.T) {
	t.Parallel()

	p, err := New(btcUSDT, "ACC-1", "S-1", fill("E1", market.Buy, "10.0", "100", "2", t0))
	require.NoError(t, err)

	closeAt := t0.Add(time.Hour)
	require.NoError(t, p.Apply(fill("E2", market.Sell, "12.0", "100", "3", closeAt)))

	assert.Equal(t, market.Flat, p.Side())
	assert.True(t, p.IsClosed())
	assertDec(t, "0", p.Quantity())
	assertDec(t, "100", p.PeakQuantity())

	assertDec(t, "2", p.RealizedPoints())
	ret, ok := p.RealizedReturn()
	require.True(t, ok)
	assertDec(t, "0.2", ret)

	// 100 * 2.0 points = 200 gross, minus 5 commission.
	assertDec(t, "195", p.RealizedPnL().Amount)
	assert.Equal(t, market.USDT, p.RealizedPnL().Currency)
	assertDec(t, "5", p.Commission().Amount)

	avgClose, ok := p.AvgPxClose()
	require.True(t, ok)
	assertDec(t, "12.0", avgClose)

	ts, ok := p.TsClosed()
	require.True(t, ok)
	assert.Equal(t, closeAt, ts)
	dur, ok := p.OpenDuration()
	require.True(t, ok)
	assert.Equal(t, time.Hour, dur)

	// Fully closed: unrealized is zero at any mark, total equals realized.
	assertDec(t, "0", p.UnrealizedPnL(dec("42")).Amount)
	assertDec(t, "195", p.TotalPnL(dec("42")).Amount)
}

func TestApply_PartialClosesWeightAvgClose(t *testing.T) {
	t.Parallel()

	p, err := New(btcUSDT, "ACC-1", "S-1", fill("E1", market.Buy, "10.0", "100", "0", t0))
	require.NoError(t, err)
	require.NoError(t, p.Apply(fill("E2", market.Sell, "12.0", "40", "0", t0.Add(time.Minute))))
	require.NoError(t, p.Apply(fill("E3", market.Sell, "11.0", "60", "0", t0.Add(2*time.Minute))))

	// (40*12 + 60*11) / 100 = 11.4
	avgClose, ok := p.AvgPxClose()
	require.True(t, ok)
	assertDec(t, "11.4", avgClose)
	assertDec(t, "1.4", p.RealizedPoints())
	assertDec(t, "140", p.RealizedPnL().Amount)
	assert.True(t, p.IsClosed())
}

func TestApply_ShortCycle(t *testing.T) {
	t.Parallel()

	p, err := New(btcUSDT, "ACC-1", "S-1", fill("E1", market.Sell, "12.0", "100", "0", t0))
	require.NoError(t, err)

	assert.Equal(t, market.Short, p.Side())
	assert.True(t, p.IsShort())
	assertDec(t, "-100", p.RelativeQuantity())

	require.NoError(t, p.Apply(fill("E2", market.Buy, "10.0", "100", "0", t0.Add(time.Minute))))

	assertDec(t, "2", p.RealizedPoints())
	assertDec(t, "200", p.RealizedPnL().Amount)
	assert.Equal(t, market.Flat, p.Side())
}

func TestApply_Flip(t *testing.T) {
	t.Parallel()

	p, err := New(btcUSDT, "ACC-1", "S-1", fill("E1", market.Buy, "10.0", "100", "0", t0))
	require.NoError(t, err)

	flipAt := t0.Add(time.Hour)
	require.NoError(t, p.Apply(fill("E2", market.Sell, "11.0", "150", "0", flipAt)))

	// Closing leg: 100 units, 1.0 point, 100 gross.
	assertDec(t, "1", p.RealizedPoints())
	assertDec(t, "100", p.RealizedPnL().Amount)
	ts, ok := p.TsClosed()
	require.True(t, ok)
	assert.Equal(t, flipAt, ts)

	// Opening leg: fresh SHORT 50 @ 11.0 under the same identity.
	assert.Equal(t, market.Short, p.Side())
	assert.Equal(t, market.Sell, p.EntrySide())
	assertDec(t, "50", p.Quantity())
	assertDec(t, "-50", p.RelativeQuantity())
	assertDec(t, "11.0", p.AvgPxOpen())
	assertDec(t, "100", p.PeakQuantity())

	// The new cycle has no closes yet.
	_, hasClose := p.AvgPxClose()
	assert.False(t, hasClose)

	// Close the short leg; money PnL accumulates across cycles.
	require.NoError(t, p.Apply(fill("E3", market.Buy, "9.0", "50", "0", flipAt.Add(time.Hour))))
	assertDec(t, "2", p.RealizedPoints())
	assertDec(t, "200", p.RealizedPnL().Amount)
}

func TestApply_ReopenAfterFullClose(t *testing.T) {
	t.Parallel()

	p, err := New(btcUSDT, "ACC-1", "S-1", fill("E1", market.Buy, "10.0", "100", "0", t0))
	require.NoError(t, err)
	require.NoError(t, p.Apply(fill("E2", market.Sell, "12.0", "100", "0", t0.Add(time.Minute))))
	require.True(t, p.IsClosed())

	require.NoError(t, p.Apply(fill("E3", market.Sell, "13.0", "30", "0", t0.Add(time.Hour))))

	assert.Equal(t, market.Short, p.Side())
	assert.Equal(t, market.Sell, p.EntrySide())
	assertDec(t, "13.0", p.AvgPxOpen())
	assertDec(t, "30", p.Quantity())
	assertDec(t, "100", p.PeakQuantity())
	assert.True(t, p.IsOpen())

	// Close markers belong to the previous cycle and are cleared.
	_, closed := p.TsClosed()
	assert.False(t, closed)
	_, hasDur := p.OpenDuration()
	assert.False(t, hasDur)
	_, hasClose := p.AvgPxClose()
	assert.False(t, hasClose)
	assertDec(t, "0", p.RealizedPoints())

	// Money locked in by the first cycle survives the reopen.
	assertDec(t, "200", p.RealizedPnL().Amount)
}

func TestApply_RejectsInvalidFillWithoutMutation(t *testing.T) {
	t.Parallel()

	p, err := New(btcUSDT, "ACC-1", "S-1", fill("E1", market.Buy, "10.0", "100", "2", t0))
	require.NoError(t, err)

	snapshot := func() []string {
		rp := p.RealizedPnL()
		return []string{
			p.Quantity().String(), p.RelativeQuantity().String(),
			p.PeakQuantity().String(), p.AvgPxOpen().String(),
			p.BuyQuantity().String(), p.SellQuantity().String(),
			rp.Amount.String(), p.Commission().Amount.String(),
			p.Status(),
		}
	}
	before := snapshot()
	eventsBefore := p.EventCount()

	bads := []Fill{
		fill("E2", market.Buy, "10.0", "0", "0", t0),
		fill("E3", market.Buy, "10.0", "-5", "0", t0),
		fill("E4", market.Buy, "0", "10", "0", t0),
		fill("E5", market.Buy, "-1", "10", "0", t0),
		{ExecID: "E6", Side: market.Buy, Price: dec("10"), Quantity: dec("10"),
			Commission: market.NewMoney(dec("1"), market.JPY), Time: t0},
		{ExecID: "E7", Price: dec("10"), Quantity: dec("10"), Time: t0}, // no side
	}
	for _, bad := range bads {
		err := p.Apply(bad)
		assert.ErrorIs(t, err, ErrInvalidFill, "fill %s", bad.ExecID)
	}

	assert.Equal(t, before, snapshot())
	assert.Equal(t, eventsBefore, p.EventCount())
}

func TestApply_CurrencyMismatchWrapsSentinels(t *testing.T) {
	t.Parallel()

	p, err := New(btcUSDT, "ACC-1", "S-1", fill("E1", market.Buy, "10.0", "100", "0", t0))
	require.NoError(t, err)

	bad := fill("E2", market.Sell, "11.0", "10", "0", t0)
	bad.Commission = market.NewMoney(dec("1"), market.USD)

	err = p.Apply(bad)
	assert.ErrorIs(t, err, ErrInvalidFill)
	assert.ErrorIs(t, err, market.ErrCurrencyMismatch)
}

func TestInvariants_AcrossFillSequence(t *testing.T) {
	t.Parallel()

	p, err := New(btcUSDT, "ACC-1", "S-1", fill("E1", market.Buy, "10", "100", "0", t0))
	require.NoError(t, err)

	seq := []Fill{
		fill("E2", market.Buy, "11", "50", "0", t0.Add(1*time.Minute)),
		fill("E3", market.Sell, "12", "120", "0", t0.Add(2*time.Minute)),
		fill("E4", market.Sell, "12", "80", "0", t0.Add(3*time.Minute)),
		fill("E5", market.Buy, "11", "50", "0", t0.Add(4*time.Minute)),
		fill("E6", market.Buy, "13", "10", "0", t0.Add(5*time.Minute)),
	}

	prevPeak := p.PeakQuantity()
	for _, f := range seq {
		require.NoError(t, p.Apply(f))

		net := p.BuyQuantity().Sub(p.SellQuantity())
		assert.True(t, p.Quantity().Equal(net.Abs()), "open qty = |buys - sells| after %s", f.ExecID)
		assert.True(t, p.RelativeQuantity().Equal(net))
		assert.True(t, p.PeakQuantity().GreaterThanOrEqual(prevPeak), "peak never decreases")
		assert.True(t, p.PeakQuantity().GreaterThanOrEqual(p.Quantity()))
		prevPeak = p.PeakQuantity()

		switch p.RelativeQuantity().Sign() {
		case 1:
			assert.Equal(t, market.Long, p.Side())
		case -1:
			assert.Equal(t, market.Short, p.Side())
		default:
			assert.Equal(t, market.Flat, p.Side())
		}
	}
}

func TestUnrealizedAndTotalPnL(t *testing.T) {
	t.Parallel()

	p, err := New(btcUSDT, "ACC-1", "S-1", fill("E1", market.Buy, "10.0", "100", "2", t0))
	require.NoError(t, err)

	// Mark at 11.0: 100 units * 1.0 point, commission not deducted.
	assertDec(t, "100", p.UnrealizedPnL(dec("11.0")).Amount)
	// Realized so far is just -commission.
	assertDec(t, "-2", p.RealizedPnL().Amount)
	assertDec(t, "98", p.TotalPnL(dec("11.0")).Amount)

	assertDec(t, "1100", p.NotionalValue(dec("11.0")).Amount)
	assert.Equal(t, market.USDT, p.NotionalValue(dec("11.0")).Currency)
}

func TestContractMultiplierScalesPnL(t *testing.T) {
	t.Parallel()

	instr := btcUSDT
	instr.Multiplier = dec("10")

	p, err := New(instr, "ACC-1", "S-1", fill("E1", market.Buy, "10.0", "100", "0", t0))
	require.NoError(t, err)
	require.NoError(t, p.Apply(fill("E2", market.Sell, "12.0", "100", "0", t0.Add(time.Minute))))

	assertDec(t, "2", p.RealizedPoints())
	assertDec(t, "2000", p.RealizedPnL().Amount)
}

func TestInverse_ReciprocalPnL(t *testing.T) {
	t.Parallel()

	first := fill("E1", market.Buy, "10.0", "1000", "0", t0)
	first.Commission = market.NewMoney(decimal.Zero, market.USD)
	p, err := New(btcInverse, "ACC-1", "S-1", first)
	require.NoError(t, err)

	// Mark to 20: 1000 * (1/10 - 1/20) = 50, not the linear 10000.
	assertDec(t, "50", p.UnrealizedPnL(dec("20.0")).Amount)
	assertDec(t, "50", p.NotionalValue(dec("20.0")).Amount)

	closeFill := fill("E2", market.Sell, "20.0", "1000", "0", t0.Add(time.Minute))
	closeFill.Commission = market.NewMoney(decimal.Zero, market.USD)
	require.NoError(t, p.Apply(closeFill))

	assertDec(t, "50", p.RealizedPnL().Amount)
	assert.Equal(t, market.USD, p.RealizedPnL().Currency)
	// Points stay in price terms for display.
	assertDec(t, "10", p.RealizedPoints())
}

func TestInverse_ShortReciprocalPnL(t *testing.T) {
	t.Parallel()

	first := fill("E1", market.Sell, "20.0", "1000", "0", t0)
	first.Commission = market.NewMoney(decimal.Zero, market.USD)
	p, err := New(btcInverse, "ACC-1", "S-1", first)
	require.NoError(t, err)

	closeFill := fill("E2", market.Buy, "10.0", "1000", "0", t0.Add(time.Minute))
	closeFill.Commission = market.NewMoney(decimal.Zero, market.USD)
	require.NoError(t, p.Apply(closeFill))

	// -(1/20 - 1/10) * 1000 = 50
	assertDec(t, "50", p.RealizedPnL().Amount)
}

func TestInverse_ZeroMarkPriceIsFatal(t *testing.T) {
	t.Parallel()

	first := fill("E1", market.Buy, "10.0", "1000", "0", t0)
	first.Commission = market.NewMoney(decimal.Zero, market.USD)
	p, err := New(btcInverse, "ACC-1", "S-1", first)
	require.NoError(t, err)

	assert.Panics(t, func() { p.UnrealizedPnL(decimal.Zero) })
	assert.Panics(t, func() { p.NotionalValue(decimal.Zero) })
}

func TestHistoryAccessors(t *testing.T) {
	t.Parallel()

	p, err := New(btcUSDT, "ACC-1", "S-1", fill("E1", market.Buy, "10.0", "100", "0", t0))
	require.NoError(t, err)

	second := fill("E2", market.Buy, "11.0", "50", "0", t0.Add(time.Minute))
	second.OrderID = "O-E1" // two executions for one order
	require.NoError(t, p.Apply(second))
	require.NoError(t, p.Apply(fill("E3", market.Sell, "12.0", "150", "0", t0.Add(2*time.Minute))))

	assert.Equal(t, []string{"E1", "E2", "E3"}, p.ExecIDs())
	assert.Equal(t, []string{"O-E1", "O-E3"}, p.OrderIDs())
	assert.Equal(t, []string{"C-E1", "C-E2", "C-E3"}, p.ClientOrderIDs())
	assert.Equal(t, "E3", p.LastFill().ExecID)

	// Events returns a snapshot, not the live history.
	events := p.Events()
	require.Len(t, events, 3)
	events[0].ExecID = "TAMPERED"
	assert.Equal(t, "E1", p.Events()[0].ExecID)
}

func TestString(t *testing.T) {
	t.Parallel()

	p, err := NewWithID("P-TEST", btcUSDT, "ACC-1", "S-1",
		fill("E1", market.Buy, "10.0", "100", "0", t0))
	require.NoError(t, err)

	assert.Equal(t, "P-TEST", p.ID())
	assert.Equal(t, "ACC-1", p.AccountID())
	assert.Equal(t, "S-1", p.StrategyID())
	assert.Contains(t, p.String(), "LONG")
	assert.Contains(t, p.String(), "BTC_USDT")
	assert.Contains(t, p.String(), "P-TEST")
}
