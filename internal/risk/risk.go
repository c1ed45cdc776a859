// Package risk converts account balance and stop distance into a
// position size, failing closed on anything degenerate.
package risk

import (
	"errors"
	"fmt"
	"math"

	"pullback-bot/internal/types"
)

var (
	ErrNoBalance        = errors.New("no free balance")
	ErrDegenerateStop   = errors.New("degenerate stop distance")
	ErrBelowMinNotional = errors.New("order below minimum notional")
)

// Sizer sizes positions with a fixed risk fraction per trade.
type Sizer struct {
	Fraction    float64 // fraction of balance risked per trade, (0,1)
	MinNotional float64 // venue minimum order value in quote currency
}

// Size returns an order risking balance*Fraction between entry and
// stop. The returned amount is always positive.
func (s Sizer) Size(symbol, side string, balance, entry, stop, tp float64) (types.SizedOrder, error) {
	if balance <= 0 {
		return types.SizedOrder{}, fmt.Errorf("%w: %.2f", ErrNoBalance, balance)
	}

	priceDiff := math.Abs(entry - stop)
	if priceDiff == 0 {
		return types.SizedOrder{}, ErrDegenerateStop
	}

	riskAmount := balance * s.Fraction
	amount := riskAmount / priceDiff

	if notional := amount * entry; notional < s.MinNotional {
		return types.SizedOrder{}, fmt.Errorf("%w: %.2f < %.2f", ErrBelowMinNotional, notional, s.MinNotional)
	}

	return types.SizedOrder{
		Symbol: symbol,
		Side:   side,
		Entry:  entry,
		Stop:   stop,
		TP:     tp,
		Amount: amount,
	}, nil
}
