package interfaces

import (
	"context"

	"pullback-bot/internal/types"
)

// Arbiter is the external decision authority. It returns the raw model
// response text; contract validation happens in the gate, not here.
type Arbiter interface {
	Ask(ctx context.Context, features types.Features) (string, error)
}
