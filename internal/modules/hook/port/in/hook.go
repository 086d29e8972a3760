package in

import (
	"context"

	"flowrpg/internal/modules/hook/dto"
)

type Usecase interface {
	List(ctx context.Context) ([]dto.HookInfo, error)
	Doctor(ctx context.Context) ([]dto.DoctorResult, error)
	// Dispatch delivers one event to every subscribed hook. Per-hook
	// failures are reported in the output, not as an error.
	Dispatch(ctx context.Context, input dto.EventInput) (dto.DispatchOutput, error)
}
