package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"pullback-bot/internal/interfaces"
	"pullback-bot/internal/logger"
	"pullback-bot/internal/metrics"
	"pullback-bot/internal/resultlog"
	"pullback-bot/internal/store"
	"pullback-bot/internal/types"
)

const maxConcurrentScans = 8

// Scheduler drives the scan loop: every interval it fans out one engine
// step per configured instrument.
type Scheduler struct {
	cfg    *store.Config
	engine interfaces.Engine
}

func New(cfg *store.Config, eng interfaces.Engine) *Scheduler {
	return &Scheduler{cfg: cfg, engine: eng}
}

// Run scans immediately, then on every tick, until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.ScanSeconds) * time.Second
	tick := time.NewTicker(interval)
	defer tick.Stop()

	logger.Info(ctx, "Scheduler started",
		"symbols", len(s.cfg.Symbols), "interval_seconds", s.cfg.ScanSeconds)

	s.runCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Scheduler stopped")
			return ctx.Err()
		case <-tick.C:
			s.runCycle(ctx)
		}
	}
}

// runCycle fans out one scan per instrument and waits for all of them.
// Tasks always return nil: one instrument failing or panicking must not
// cancel its siblings mid-cycle.
func (s *Scheduler) runCycle(ctx context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentScans)
	for _, symbol := range s.cfg.Symbols {
		g.Go(func() error {
			s.scanOne(gctx, symbol)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Scheduler) scanOne(ctx context.Context, symbol string) {
	// A task gets at most one interval; a hung instrument cannot bleed
	// into later cycles.
	if s.cfg.ScanSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.cfg.ScanSeconds)*time.Second)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			metrics.ScansTotal.WithLabelValues(symbol, "panic").Inc()
			logger.Error(ctx, "Scan panicked",
				"symbol", symbol, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
		}
	}()

	res, err := s.engine.Step(ctx, symbol)
	if err != nil {
		metrics.ScansTotal.WithLabelValues(symbol, "error").Inc()
		logger.ErrorWithErr(ctx, "Scan failed", err, "symbol", symbol)
		res = &types.ScanResult{
			Symbol: symbol,
			Err:    err.Error(),
			Time:   time.Now().UTC().Format(time.RFC3339),
		}
	} else {
		metrics.ScansTotal.WithLabelValues(symbol, outcomeLabel(res)).Inc()
	}

	if lerr := resultlog.Append(symbol, res); lerr != nil {
		logger.Warn(ctx, "Result log write failed", "symbol", symbol, "error", lerr)
	}
}

func outcomeLabel(res *types.ScanResult) string {
	switch {
	case res.Execution != nil:
		return "executed"
	case res.Err != "":
		return "failed"
	default:
		return "no_trade"
	}
}
