// Package indicator computes derived series over candle history.
// Values that cannot exist yet (not enough history) are NaN; callers
// compare against them and naturally fail closed, so nothing here
// ever returns an error.
package indicator

import (
	"math"

	"pullback-bot/internal/types"
)

const rsiPeriod = 14

// Frame is a candle sequence with its derived series, index-aligned 1:1.
type Frame struct {
	Candles []types.Candle
	EMA20   []float64
	EMA50   []float64
	EMA200  []float64
	RSI     []float64
}

// Prepare computes the standard indicator set used by the strategy.
func Prepare(candles []types.Candle) *Frame {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	return &Frame{
		Candles: candles,
		EMA20:   EMA(closes, 20),
		EMA50:   EMA(closes, 50),
		EMA200:  EMA(closes, 200),
		RSI:     RSI(closes, rsiPeriod),
	}
}

// Len returns the number of bars in the frame.
func (f *Frame) Len() int { return len(f.Candles) }

// Last returns the most recent candle. The frame must be non-empty.
func (f *Frame) Last() types.Candle { return f.Candles[len(f.Candles)-1] }

// EMA is recursive exponential smoothing with alpha = 2/(period+1),
// seeded from the first close. Every index has a defined value.
func EMA(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	if len(closes) == 0 || period <= 0 {
		return out
	}
	alpha := 2.0 / float64(period+1)
	out[0] = closes[0]
	for i := 1; i < len(closes); i++ {
		out[i] = alpha*closes[i] + (1-alpha)*out[i-1]
	}
	return out
}

// RSI is the relative strength index over a trailing rolling window of
// simple-averaged gains and losses. Indices before the window fills
// are NaN; defined values lie in [0,100], with 100 when the average
// loss is zero.
func RSI(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = math.NaN()
	}
	if period <= 0 || len(closes) < period+1 {
		return out
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gains[i] = d
		} else {
			losses[i] = -d
		}
	}

	var sumGain, sumLoss float64
	for i := 1; i < len(closes); i++ {
		sumGain += gains[i]
		sumLoss += losses[i]
		if i > period {
			sumGain -= gains[i-period]
			sumLoss -= losses[i-period]
		}
		if i < period {
			continue
		}
		if sumLoss == 0 {
			out[i] = 100.0
			continue
		}
		rs := sumGain / sumLoss
		out[i] = 100.0 - 100.0/(1.0+rs)
	}
	return out
}

// LastDefined returns the most recent value of a series, NaN when the
// series is empty.
func LastDefined(series []float64) float64 {
	if len(series) == 0 {
		return math.NaN()
	}
	return series[len(series)-1]
}
