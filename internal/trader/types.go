package trader

// DefaultPortfolioID is the single portfolio document the simulator operates on.
const DefaultPortfolioID = "main_portfolio"

// DefaultStartingBalanceUSD seeds a fresh portfolio when no stored state exists.
const DefaultStartingBalanceUSD = 1000

// Position is one open investment in a single coin. A coin can hold at most
// one position at a time; positions are removed (not archived) on sell.
type Position struct {
	Quantity   float64 `json:"quantity"`
	EntryPrice float64 `json:"entry_price"`
	// CostUSD is the amount spent to open the position. The wire name is
	// value_usd for compatibility with the stored portfolio documents.
	CostUSD float64 `json:"value_usd"`
}

// Portfolio is the single mutable aggregate of the simulator: uninvested cash
// plus the open positions keyed by coin ID.
type Portfolio struct {
	ID         string              `json:"id"`
	BalanceUSD float64             `json:"balance_usd"`
	Holdings   map[string]Position `json:"holdings"`
}

// NewPortfolio returns a fresh portfolio with the default starting balance.
func NewPortfolio() *Portfolio {
	return &Portfolio{
		ID:         DefaultPortfolioID,
		BalanceUSD: DefaultStartingBalanceUSD,
		Holdings:   make(map[string]Position),
	}
}

// HeldCoins returns a snapshot of the coin IDs with open positions. Callers
// that mutate holdings while iterating must use this, not the live map.
func (p *Portfolio) HeldCoins() []string {
	out := make([]string, 0, len(p.Holdings))
	for coinID := range p.Holdings {
		out = append(out, coinID)
	}
	return out
}
