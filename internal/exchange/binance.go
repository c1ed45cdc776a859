// Package exchange adapts Binance USD-M futures to the venue interface.
// The adapter owns transient-failure retries; the pipeline above it
// treats any returned error as that instrument's cycle failing.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/jpillora/backoff"

	"pullback-bot/internal/interfaces"
	"pullback-bot/internal/logger"
	"pullback-bot/internal/types"
)

const fetchAttempts = 3

type Params struct {
	Mode         string // DRY_RUN or LIVE
	DataSource   string // STATIC or LIVE
	APIKey       string
	APISecret    string
	Testnet      bool
	PaperBalance float64 // free balance reported in DRY_RUN
}

type Binance struct {
	p       Params
	futures *futures.Client
	simSeq  atomic.Int64
}

var _ interfaces.Exchange = (*Binance)(nil)

func New(p Params) *Binance {
	// UseTestnet is process-global in go-binance; it must be set before
	// the client is constructed so the base URL resolves to the testnet.
	if p.Testnet {
		futures.UseTestnet = true
	}
	client := futures.NewClient(p.APIKey, p.APISecret)
	return &Binance{p: p, futures: client}
}

// Candles fetches klines, retrying transient failures with jittered
// backoff before giving up for the cycle.
func (b *Binance) Candles(ctx context.Context, symbol, interval string, limit int) ([]types.Candle, error) {
	if b.p.DataSource == "STATIC" {
		return staticCandles(symbol, interval, limit), nil
	}

	bo := &backoff.Backoff{Min: 200 * time.Millisecond, Max: 2 * time.Second, Jitter: true}
	var lastErr error
	for attempt := 0; attempt < fetchAttempts; attempt++ {
		klines, err := b.futures.NewKlinesService().
			Symbol(symbol).
			Interval(interval).
			Limit(limit).
			Do(ctx)
		if err == nil {
			return convertKlines(klines)
		}
		lastErr = err
		logger.Warn(ctx, "Kline fetch failed, backing off",
			"symbol", symbol, "interval", interval, "attempt", attempt+1, "error", err)

		select {
		case <-time.After(bo.Duration()):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("fetch candles %s %s: %w", symbol, interval, lastErr)
}

func convertKlines(klines []*futures.Kline) ([]types.Candle, error) {
	candles := make([]types.Candle, 0, len(klines))
	for _, k := range klines {
		open, err1 := strconv.ParseFloat(k.Open, 64)
		high, err2 := strconv.ParseFloat(k.High, 64)
		low, err3 := strconv.ParseFloat(k.Low, 64)
		closeP, err4 := strconv.ParseFloat(k.Close, 64)
		vol, err5 := strconv.ParseFloat(k.Volume, 64)
		if err := errors.Join(err1, err2, err3, err4, err5); err != nil {
			return nil, fmt.Errorf("malformed kline: %w", err)
		}
		candles = append(candles, types.Candle{
			Ts:    k.OpenTime / 1000,
			Open:  open,
			High:  high,
			Low:   low,
			Close: closeP,
			Vol:   vol,
		})
	}
	return candles, nil
}

// FreeBalance returns the available balance for the quote asset.
func (b *Binance) FreeBalance(ctx context.Context, asset string) (float64, error) {
	if b.p.Mode == "DRY_RUN" {
		return b.p.PaperBalance, nil
	}

	balances, err := b.futures.NewGetBalanceService().Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch balance: %w", err)
	}
	for _, bal := range balances {
		if bal.Asset == asset {
			free, err := strconv.ParseFloat(bal.AvailableBalance, 64)
			if err != nil {
				return 0, fmt.Errorf("malformed balance for %s: %w", asset, err)
			}
			return free, nil
		}
	}
	return 0, fmt.Errorf("no balance entry for asset %s", asset)
}

// PlaceOrder submits one order leg. In DRY_RUN every leg is simulated
// and tagged with a SIM id so the rest of the pipeline runs unchanged.
func (b *Binance) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	if req.Amount <= 0 {
		return types.OrderResp{}, fmt.Errorf("invalid order amount %.8f", req.Amount)
	}

	if b.p.Mode == "DRY_RUN" {
		return types.OrderResp{
			OrderID: fmt.Sprintf("SIM-%d-%d", time.Now().UnixNano(), b.simSeq.Add(1)),
			Status:  "SIMULATED",
			Message: "dry-run",
		}, nil
	}

	if b.p.APIKey == "" || b.p.APISecret == "" {
		return types.OrderResp{}, errors.New("missing API key/secret for live order")
	}

	svc := b.futures.NewCreateOrderService().
		Symbol(req.Symbol).
		Side(futures.SideType(req.Side)).
		Type(futures.OrderType(req.Type)).
		Quantity(formatFloat(req.Amount))

	switch req.Type {
	case types.OrderLimit:
		svc = svc.Price(formatFloat(req.Price)).TimeInForce(futures.TimeInForceTypeGTC)
	case types.OrderStopMarket:
		svc = svc.StopPrice(formatFloat(req.StopPrice))
	}
	if req.ReduceOnly {
		svc = svc.ReduceOnly(true)
	}

	ord, err := svc.Do(ctx)
	if err != nil {
		return types.OrderResp{}, fmt.Errorf("place %s %s %s: %w", req.Type, req.Side, req.Symbol, err)
	}

	return types.OrderResp{
		OrderID: strconv.FormatInt(ord.OrderID, 10),
		Status:  string(ord.Status),
	}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
