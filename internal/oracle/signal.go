package oracle

import "strings"

// Signal is the closed set of trading recommendations. Raw model output is
// normalized before a Signal is ever constructed, so downstream code never
// sees anything outside these three values.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
)

// Normalize maps raw model output onto a Signal. Empty, unrecognized or
// garbled output degrades to HOLD, the neutral decision.
func Normalize(raw string) Signal {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(SignalBuy):
		return SignalBuy
	case string(SignalSell):
		return SignalSell
	case string(SignalHold):
		return SignalHold
	default:
		return SignalHold
	}
}
