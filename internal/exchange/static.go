package exchange

import (
	"math/rand"
	"time"

	"pullback-bot/internal/types"
)

// staticCandles produces a deterministic-shape synthetic series for
// running without venue access. It drifts gently upward with noise so
// the higher-timeframe gate occasionally passes.
func staticCandles(symbol, interval string, limit int) []types.Candle {
	step := intervalSeconds(interval)
	now := time.Now().Unix()
	now -= now % step

	base := 1000.0 + float64(len(symbol))*10
	candles := make([]types.Candle, 0, limit)
	for i := limit; i > 0; i-- {
		drift := float64(limit-i) * 0.3
		noise := (rand.Float64() - 0.5) * 4
		c := base + drift + noise
		open := c - (rand.Float64()-0.4)*2
		high := maxF(open, c) + rand.Float64()*2
		low := minF(open, c) - rand.Float64()*2
		candles = append(candles, types.Candle{
			Ts:    now - int64(i)*step,
			Open:  open,
			High:  high,
			Low:   low,
			Close: c,
			Vol:   rand.Float64() * 1000,
		})
	}
	return candles
}

func intervalSeconds(interval string) int64 {
	switch interval {
	case "1m":
		return 60
	case "5m":
		return 300
	case "15m":
		return 900
	case "1h":
		return 3600
	case "4h":
		return 14400
	case "1d":
		return 86400
	default:
		return 300
	}
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
