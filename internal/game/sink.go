package game

import (
	"context"

	"github.com/jason-s-yu/cardhall/internal/engine"
	"github.com/jason-s-yu/cardhall/internal/models"
)

// Sink observes a table. StateChanged is called once at creation and once per accepted
// turn; GameFinished exactly once. Calls for one table arrive in order on a single
// goroutine per sink.
type Sink interface {
	StateChanged(ctx context.Context, st engine.State) error
	GameFinished(ctx context.Context, gameID string, variant engine.Variant, results models.Results) error
}
