package interfaces

import (
	"context"

	"pullback-bot/internal/types"
)

// Exchange is the venue adapter. One instance is shared by all
// instrument tasks and must be safe for concurrent use.
type Exchange interface {
	Candles(ctx context.Context, symbol, interval string, limit int) ([]types.Candle, error)
	FreeBalance(ctx context.Context, asset string) (float64, error)
	PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error)
}
