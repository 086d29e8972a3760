package tx

import "context"

// Manager wraps the fan-out that follows a progression mutation
// (journal rows, achievements) so adapters can share one boundary.
type Manager interface {
	Within(ctx context.Context, fn func(context.Context) error) error
}

type NoopManager struct{}

func (NoopManager) Within(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}
