package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"pullback-bot/internal/engine"
	"pullback-bot/internal/engine/engineobs"
	"pullback-bot/internal/exchange"
	"pullback-bot/internal/gate"
	"pullback-bot/internal/interfaces"
	"pullback-bot/internal/llm/claude"
	"pullback-bot/internal/llm/llmobs"
	"pullback-bot/internal/llm/noop"
	"pullback-bot/internal/llm/openai"
	"pullback-bot/internal/logger"
	"pullback-bot/internal/metrics"
	"pullback-bot/internal/resultlog"
	"pullback-bot/internal/scheduler"
	"pullback-bot/internal/store"
	"pullback-bot/internal/trace"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	_ = godotenv.Load()
	must(logger.Init())
	must(trace.Init())

	cfgPath := os.Getenv("BOT_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := store.LoadConfig(cfgPath)
	must(err)

	if v := os.Getenv("BOT_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		_ = resultlog.CompressOlder(n)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Addr != "" {
		metrics.Serve(cfg.Metrics.Addr)
		logger.Info(ctx, "Metrics listening", "addr", cfg.Metrics.Addr)
	}

	exch := exchange.New(exchange.Params{
		Mode:         cfg.Mode,
		DataSource:   cfg.DataSource,
		APIKey:       os.Getenv("BINANCE_API_KEY"),
		APISecret:    os.Getenv("BINANCE_API_SECRET"),
		Testnet:      cfg.Exchange.Testnet,
		PaperBalance: cfg.Risk.PaperBalance,
	})

	if cfg.Mode == "DRY_RUN" {
		logger.Info(ctx, "Running in DRY_RUN mode, orders are simulated")
	}

	arbiter := llmobs.Wrap(newArbiter(cfg))
	eng := engineobs.Wrap(engine.New(cfg, exch, gate.New(arbiter)))

	logger.Info(ctx, "Bot started", "mode", cfg.Mode, "symbols", cfg.Symbols)
	if err := scheduler.New(cfg, eng).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.ErrorWithErr(ctx, "Scheduler exited", err)
	}

	logger.Info(ctx, "Shutting down")
	_ = trace.Shutdown(context.Background())
}

func newArbiter(cfg *store.Config) interfaces.Arbiter {
	switch cfg.LLM.Provider {
	case "OPENAI":
		return openai.NewArbiter(cfg)
	case "CLAUDE":
		return claude.NewArbiter(cfg)
	default:
		return noop.NewArbiter()
	}
}
