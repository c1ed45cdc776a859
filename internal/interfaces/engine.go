package interfaces

import (
	"context"

	"pullback-bot/internal/types"
)

// Engine runs the full pipeline for one instrument on one cycle.
type Engine interface {
	Step(ctx context.Context, symbol string) (*types.ScanResult, error)
}
