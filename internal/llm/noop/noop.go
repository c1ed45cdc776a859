package noop

import (
	"context"

	"pullback-bot/internal/logger"
	"pullback-bot/internal/types"
)

// Arbiter is the fallback used when no LLM provider is configured.
// It emits a well-formed NO_TRADE response so the gate always vetoes.
type Arbiter struct{}

func NewArbiter() *Arbiter {
	return &Arbiter{}
}

func (a *Arbiter) Ask(ctx context.Context, features types.Features) (string, error) {
	logger.Debug(ctx, "Noop arbiter called - always vetoes", "symbol", features.Symbol)
	return `{"decision": "NO_TRADE", "side": null, "confidence": 0, "reason": "no arbiter configured"}`, nil
}
