package llmobs

import (
	"context"

	"pullback-bot/internal/interfaces"
	"pullback-bot/internal/logger"
	"pullback-bot/internal/trace"
	"pullback-bot/internal/types"
)

// observableArbiter wraps an Arbiter with logging and tracing.
type observableArbiter struct {
	arbiter interfaces.Arbiter
}

var _ interfaces.Arbiter = (*observableArbiter)(nil)

// Wrap wraps an arbiter with observability middleware.
func Wrap(arbiter interfaces.Arbiter) interfaces.Arbiter {
	return &observableArbiter{arbiter: arbiter}
}

func (oa *observableArbiter) Ask(ctx context.Context, features types.Features) (string, error) {
	ctx, span := trace.StartSpan(ctx, "arbiter.Ask")
	defer span.End()

	logger.Debug(ctx, "Requesting arbiter verdict",
		"symbol", features.Symbol,
		"entry", features.Entry,
		"rr", features.RR,
	)

	raw, err := oa.arbiter.Ask(ctx, features)
	if err != nil {
		logger.ErrorWithErr(ctx, "Arbiter call failed", err, "symbol", features.Symbol)
		return "", err
	}

	logger.Debug(ctx, "Arbiter responded",
		"symbol", features.Symbol,
		"response_bytes", len(raw),
	)
	return raw, nil
}
