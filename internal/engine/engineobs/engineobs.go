package engineobs

import (
	"context"

	"pullback-bot/internal/interfaces"
	"pullback-bot/internal/logger"
	"pullback-bot/internal/trace"
	"pullback-bot/internal/types"
)

// observableEngine wraps an Engine with logging and tracing.
type observableEngine struct {
	engine interfaces.Engine
}

var _ interfaces.Engine = (*observableEngine)(nil)

// Wrap wraps an engine with observability middleware.
func Wrap(engine interfaces.Engine) interfaces.Engine {
	return &observableEngine{engine: engine}
}

func (oe *observableEngine) Step(ctx context.Context, symbol string) (*types.ScanResult, error) {
	ctx, span := trace.StartSpan(ctx, "engine.Step")
	defer span.End()

	logger.Debug(ctx, "Scanning instrument", "symbol", symbol)

	res, err := oe.engine.Step(ctx, symbol)
	if err != nil {
		trace.RecordError(ctx, err)
		return nil, err
	}

	logger.Debug(ctx, "Scan complete",
		"symbol", symbol,
		"setup", res.Signal.Setup,
		"decision", res.Decision.Outcome,
		"executed", res.Execution != nil,
	)
	return res, nil
}
