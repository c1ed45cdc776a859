// Package engine runs the per-instrument pipeline: fetch candles on
// three timeframes, detect the pullback setup, consult the gate, size
// the position and place the bracket. Every stage below the scheduler
// fails closed into the cycle's ScanResult.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pullback-bot/internal/gate"
	"pullback-bot/internal/indicator"
	"pullback-bot/internal/interfaces"
	"pullback-bot/internal/logger"
	"pullback-bot/internal/metrics"
	"pullback-bot/internal/resultlog"
	"pullback-bot/internal/risk"
	"pullback-bot/internal/store"
	"pullback-bot/internal/strategy"
	"pullback-bot/internal/types"
)

type Engine struct {
	cfg      *store.Config
	exch     interfaces.Exchange
	gate     *gate.Gate
	sizer    risk.Sizer
	executor *orderExecutor
	dryRun   bool
}

var _ interfaces.Engine = (*Engine)(nil)

func New(cfg *store.Config, exch interfaces.Exchange, g *gate.Gate) *Engine {
	return &Engine{
		cfg:  cfg,
		exch: exch,
		gate: g,
		sizer: risk.Sizer{
			Fraction:    cfg.Risk.PerTradeFraction,
			MinNotional: cfg.Risk.MinNotional,
		},
		executor: newOrderExecutor(exch),
		dryRun:   cfg.Mode == "DRY_RUN",
	}
}

// Step runs one full cycle for one instrument. A returned error means
// the cycle could not even produce a signal (data fetch failure); all
// later-stage failures are carried inside the result instead.
func (e *Engine) Step(ctx context.Context, symbol string) (*types.ScanResult, error) {
	result := &types.ScanResult{
		Symbol: symbol,
		Time:   time.Now().UTC().Format(time.RFC3339),
	}

	trendTF, pullbackTF, entryTF, err := e.fetchFrames(ctx, symbol)
	if err != nil {
		return nil, err
	}

	sig := strategy.TrendPullback(trendTF, pullbackTF, entryTF)
	result.Signal = sig

	if !sig.Setup {
		result.Decision = types.Decision{
			Outcome: types.DecisionNoTrade,
			Reason:  "strategy conditions not met",
		}
		return result, nil
	}

	metrics.SetupsTotal.WithLabelValues(symbol).Inc()
	logger.Info(ctx, "Setup detected",
		"symbol", symbol, "entry", sig.Entry, "stop", sig.Stop, "tp", sig.TP, "rr", sig.RR)

	if sig.RR < e.cfg.Risk.MinRR {
		result.Decision = types.Decision{
			Outcome: types.DecisionNoTrade,
			Reason:  fmt.Sprintf("risk-reward %.2f below minimum %.2f", sig.RR, e.cfg.Risk.MinRR),
		}
		return result, nil
	}

	features := gate.BuildFeatures(symbol, sig, trendTF, pullbackTF, entryTF)
	gctx, gcancel := e.callCtx(ctx)
	decision := e.gate.Evaluate(gctx, features)
	gcancel()
	result.Decision = decision

	metrics.DecisionsTotal.WithLabelValues(symbol, decision.Outcome).Inc()
	logger.Decision(ctx, symbol, decision.Outcome, decision.Confidence, decision.Reason)

	if decision.Outcome != types.DecisionTrade {
		return result, nil
	}

	bctx, bcancel := e.callCtx(ctx)
	balance, err := e.exch.FreeBalance(bctx, e.cfg.Risk.QuoteAsset)
	bcancel()
	if err != nil {
		// Balance errors degrade to zero so sizing fails closed below.
		logger.ErrorWithErr(ctx, "Balance fetch failed", err, "symbol", symbol)
		balance = 0
	}

	order, err := e.sizer.Size(symbol, decision.Side, balance, sig.Entry, sig.Stop, sig.TP)
	if err != nil {
		logger.Warn(ctx, "Sizing rejected trade",
			"symbol", symbol, "balance", balance, "error", err)
		result.Err = fmt.Sprintf("sizing failed: %v", err)
		return result, nil
	}

	octx, ocancel := e.callCtx(ctx)
	exec, err := e.executor.placeBracket(octx, order)
	ocancel()
	if err != nil {
		e.reportExecutionFailure(ctx, symbol, err)
		result.Err = err.Error()
		return result, nil
	}

	result.Execution = exec
	logger.Trade(ctx, symbol, order.Side, exec.Amount, exec.EntryPrice, exec.EntryOrderID,
		"stop_order_id", exec.StopOrderID, "tp_order_id", exec.TakeProfitOrderID, "dry_run", e.dryRun)
	_ = resultlog.AppendTrade(resultlog.TradeEntry{
		Symbol:            symbol,
		Side:              order.Side,
		Amount:            exec.Amount,
		Entry:             exec.EntryPrice,
		Stop:              order.Stop,
		TP:                order.TP,
		EntryOrderID:      exec.EntryOrderID,
		StopOrderID:       exec.StopOrderID,
		TakeProfitOrderID: exec.TakeProfitOrderID,
		Confidence:        decision.Confidence,
		Reason:            decision.Reason,
	})

	return result, nil
}

func (e *Engine) fetchFrames(ctx context.Context, symbol string) (trendTF, pullbackTF, entryTF *indicator.Frame, err error) {
	tfs := e.cfg.Timeframes
	limit := e.cfg.CandleLimit

	frames := make([]*indicator.Frame, 0, 3)
	for _, interval := range []string{tfs.Trend, tfs.Pullback, tfs.Entry} {
		cctx, cancel := e.callCtx(ctx)
		candles, ferr := e.exch.Candles(cctx, symbol, interval, limit)
		cancel()
		if ferr != nil {
			return nil, nil, nil, fmt.Errorf("data fetch %s %s: %w", symbol, interval, ferr)
		}
		frames = append(frames, indicator.Prepare(candles))
	}
	return frames[0], frames[1], frames[2], nil
}

// callCtx bounds one external call so a stalled venue or arbiter fails
// this instrument's cycle instead of hanging the scheduler.
func (e *Engine) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := time.Duration(e.cfg.CallTimeoutSeconds) * time.Second
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (e *Engine) reportExecutionFailure(ctx context.Context, symbol string, err error) {
	var pErr *ProtectionError
	if errors.As(err, &pErr) {
		metrics.UnprotectedPositions.Inc()
		logger.Risk(ctx, symbol, "UNPROTECTED_POSITION",
			"entry_order_id", pErr.EntryOrderID,
			"failed_legs", pErr.Legs,
			"error", pErr.Err,
		)
		return
	}
	logger.ErrorWithErr(ctx, "Entry order failed, nothing placed", err, "symbol", symbol)
}
