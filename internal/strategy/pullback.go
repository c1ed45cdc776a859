// Package strategy implements the trend-pullback setup detector.
// Only the long side is modeled; there is no symmetric short path.
package strategy

import (
	"math"

	"pullback-bot/internal/indicator"
	"pullback-bot/internal/types"
)

const (
	rsiPullbackLow  = 40.0
	rsiPullbackHigh = 60.0

	// Fraction of the candle range the body must cover for the
	// momentum trigger.
	momentumBodyRatio = 0.6

	// Lower wick must exceed this multiple of the body for the
	// rejection trigger.
	wickBodyRatio = 2.0

	// Swing low over the bars preceding the trigger bar, shifted
	// 0.1% lower as a safety buffer.
	swingLookback  = 5
	stopBuffer     = 0.999
	rewardMultiple = 2.2
)

// TrendPullback evaluates the three timeframes on their latest bars.
// The gates short-circuit: a non-bullish 1h trend or an out-of-zone
// 15m RSI ends evaluation immediately.
func TrendPullback(trendTF, pullbackTF, entryTF *indicator.Frame) types.Signal {
	sig := types.Signal{Trend: types.TrendNeutral}

	if trendTF.Len() == 0 || pullbackTF.Len() == 0 || entryTF.Len() == 0 {
		sig.Reasons = append(sig.Reasons, "missing candle history")
		return sig
	}

	// 1. Higher-timeframe trend gate. NaN comparisons are false, so a
	// frame without enough history fails closed here.
	ema50 := indicator.LastDefined(trendTF.EMA50)
	ema200 := indicator.LastDefined(trendTF.EMA200)
	if !(ema50 > ema200) {
		sig.Reasons = append(sig.Reasons, "1h trend not bullish")
		return sig
	}
	sig.Trend = types.TrendBullish

	// 2. Pullback gate on the 15m RSI.
	rsi := indicator.LastDefined(pullbackTF.RSI)
	if !(rsi >= rsiPullbackLow && rsi <= rsiPullbackHigh) {
		sig.Reasons = append(sig.Reasons, "15m RSI not in pullback zone")
		return sig
	}

	// 3. Entry trigger on the latest 5m bar: momentum or wick rejection.
	last := entryTF.Last()
	body := math.Abs(last.Close - last.Open)
	rng := last.High - last.Low
	lowerWick := math.Min(last.Open, last.Close) - last.Low

	momentum := last.Close > last.Open &&
		last.Close > indicator.LastDefined(entryTF.EMA20) &&
		body >= momentumBodyRatio*rng

	wickRejection := last.Close > last.Open && lowerWick >= wickBodyRatio*body

	if !momentum && !wickRejection {
		sig.Reasons = append(sig.Reasons, "no momentum or wick rejection on 5m")
		return sig
	}

	// 4. Trade levels: stop under the recent swing low, fixed-multiple
	// take-profit. An inverted stop invalidates the whole setup even
	// though the trigger fired.
	if entryTF.Len() < swingLookback+1 {
		sig.Reasons = append(sig.Reasons, "insufficient 5m history for stop")
		return sig
	}

	entry := last.Close
	stop := swingLow(entryTF.Candles) * stopBuffer
	risk := entry - stop
	if risk <= 0 {
		sig.Reasons = append(sig.Reasons, "invalid stop placement")
		return sig
	}

	tp := entry + risk*rewardMultiple
	sig.Setup = true
	sig.Entry = entry
	sig.Stop = stop
	sig.TP = tp
	sig.RR = math.Round((tp-entry)/risk*100) / 100
	return sig
}

// swingLow is the minimum low of the swingLookback bars preceding the
// latest one.
func swingLow(candles []types.Candle) float64 {
	low := math.Inf(1)
	for _, c := range candles[len(candles)-swingLookback-1 : len(candles)-1] {
		if c.Low < low {
			low = c.Low
		}
	}
	return low
}
