package async

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/facepay-lab/facepay/pkg/utils/logging"
)

// Dispatch runs fn on its own goroutine, detached from the caller's
// cancellation. The caller's logger is carried over so background work
// stays attributable; errors and panics end up in the log instead of
// taking the process down.
func Dispatch(ctx context.Context, fn func(ctx context.Context) error) {
	bgCtx := logging.With(context.Background(), logging.From(ctx))

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logging.From(bgCtx).Error("panic in background task", "panic", r)
			}
		}()

		if err := fn(bgCtx); err != nil {
			logging.From(bgCtx).Error("background task failed", "error", goerr.Unwrap(err))
		}
	}()
}
