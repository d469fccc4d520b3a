package market

// Currency is an ISO-4217 style currency or crypto asset code.
type Currency string

const (
	USD  Currency = "USD"
	EUR  Currency = "EUR"
	JPY  Currency = "JPY"
	GBP  Currency = "GBP"
	USDT Currency = "USDT"
	BTC  Currency = "BTC"
	ETH  Currency = "ETH"
)

func (c Currency) String() string {
	return string(c)
}
