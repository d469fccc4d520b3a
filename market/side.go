package market

// OrderSide is the direction of an order fill.
type OrderSide int

const (
	Buy OrderSide = iota + 1
	Sell
)

func (s OrderSide) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	}
	return "UNKNOWN"
}

// Opposite returns the other side.
func (s OrderSide) Opposite() OrderSide {
	if s == Buy {
		return Sell
	}
	return Buy
}

// ParseOrderSide converts the textual form back to an OrderSide.
func ParseOrderSide(s string) (OrderSide, bool) {
	switch s {
	case "BUY", "buy":
		return Buy, true
	case "SELL", "sell":
		return Sell, true
	}
	return 0, false
}

// PositionSide is the net direction of a position.
type PositionSide int

const (
	Flat PositionSide = iota
	Long
	Short
)

func (s PositionSide) String() string {
	switch s {
	case Long:
		return "LONG"
	case Short:
		return "SHORT"
	}
	return "FLAT"
}
