package trader

import (
	"strconv"
	"time"
)

// TradeAction discriminates audit entries.
type TradeAction string

const (
	ActionBuy  TradeAction = "BUY"
	ActionSell TradeAction = "SELL"
)

// QuantityAll is the quantity sentinel for sells, which always close the
// entire position.
const QuantityAll = "all"

// TradeRecord is an immutable audit entry appended on every buy or sell.
type TradeRecord struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Action    TradeAction `json:"action"`
	Coin      string      `json:"coin"`
	Price     float64     `json:"price"`
	// Quantity is a decimal string for buys, or QuantityAll for sells.
	Quantity string `json:"quantity"`
	// PnL is the realized profit/loss of a sell; nil for buys.
	PnL        *float64 `json:"pnl,omitempty"`
	Reason     string   `json:"reason"`
	BalanceUSD float64  `json:"balance_usd"`
	TotalValue float64  `json:"total_value"`
}

// EquityPoint is a once-per-cycle snapshot of total book value.
type EquityPoint struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	TotalValue    float64   `json:"total_value"`
	BalanceUSD    float64   `json:"balance_usd"`
	HoldingsCount int       `json:"holdings_count"`
}

func formatQuantity(qty float64) string {
	return strconv.FormatFloat(qty, 'f', -1, 64)
}
