package out

import (
	"context"

	"flowrpg/internal/modules/progression/domain"
)

// StateStore persists the single progression state.
// Load returns apperrors.ErrNotFound when nothing was saved yet and
// apperrors.ErrCorruptState when the saved document cannot be parsed.
type StateStore interface {
	Load(ctx context.Context) (domain.Restored, error)
	Save(ctx context.Context, state domain.State) error
}

type ChronicleExporter interface {
	Export(ctx context.Context, path string, chronicle domain.Chronicle) (string, error)
}
