package indicator

import (
	"fmt"

	talib "github.com/markcheno/go-talib"

	"tradepulse/internal/market"
)

const (
	rsiPeriod     = 14
	smaPeriod     = 20
	rsiOverbought = 70
	rsiOversold   = 30
)

// Snapshot holds the latest value of each computed indicator.
type Snapshot struct {
	RSI      float64
	RSIState string
	SMA      float64
	Close    float64
}

// Compute derives an RSI/SMA snapshot from daily candles. It returns false
// when the series is too short, in which case the prompt simply goes out
// without an indicator line.
func Compute(candles []market.Candle) (Snapshot, bool) {
	if len(candles) < smaPeriod+1 {
		return Snapshot{}, false
	}
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	rsiSeries := talib.Rsi(closes, rsiPeriod)
	smaSeries := talib.Sma(closes, smaPeriod)
	if len(rsiSeries) == 0 || len(smaSeries) == 0 {
		return Snapshot{}, false
	}

	snap := Snapshot{
		RSI:   rsiSeries[len(rsiSeries)-1],
		SMA:   smaSeries[len(smaSeries)-1],
		Close: closes[len(closes)-1],
	}
	switch {
	case snap.RSI >= rsiOverbought:
		snap.RSIState = "overbought"
	case snap.RSI <= rsiOversold:
		snap.RSIState = "oversold"
	default:
		snap.RSIState = "neutral"
	}
	return snap, true
}

// PromptLine renders the snapshot as one line of prompt context.
func (s Snapshot) PromptLine() string {
	return fmt.Sprintf("Indicators: RSI(%d)=%.1f (%s), SMA(%d)=%.4f, last close=%.4f",
		rsiPeriod, s.RSI, s.RSIState, smaPeriod, s.SMA, s.Close)
}
