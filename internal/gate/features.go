package gate

import (
	"math"

	"pullback-bot/internal/indicator"
	"pullback-bot/internal/types"
)

// BuildFeatures snapshots the signal plus a small projection of the
// latest indicator values per timeframe. The record is what the
// arbiter sees; once built it is never mutated.
func BuildFeatures(symbol string, sig types.Signal, trendTF, pullbackTF, entryTF *indicator.Frame) types.Features {
	return types.Features{
		Symbol:  symbol,
		Setup:   sig.Setup,
		Reasons: sig.Reasons,
		Trend:   sig.Trend,
		Entry:   sig.Entry,
		Stop:    sig.Stop,
		TP:      sig.TP,
		RR:      sig.RR,
		Timeframes: map[string]map[string]float64{
			"1h": {
				"ema50":  round2(indicator.LastDefined(trendTF.EMA50)),
				"ema200": round2(indicator.LastDefined(trendTF.EMA200)),
			},
			"15m": {
				"rsi": round2(indicator.LastDefined(pullbackTF.RSI)),
			},
			"5m": {
				"close": round2(entryTF.Last().Close),
				"ema20": round2(indicator.LastDefined(entryTF.EMA20)),
			},
		},
	}
}

func round2(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Round(v*100) / 100
}
