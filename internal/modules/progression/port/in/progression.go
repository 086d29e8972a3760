package in

import (
	"context"

	"flowrpg/internal/modules/progression/dto"
)

// Usecase drives the progression ledger and timer. An error matching
// apperrors.ErrPersistenceWriteFailed is a warning: the returned result
// still reflects the advanced state.
type Usecase interface {
	Snapshot(ctx context.Context) (dto.Snapshot, error)
	Start(ctx context.Context) (dto.Result, error)
	Pause(ctx context.Context) (dto.Result, error)
	Toggle(ctx context.Context) (dto.Result, error)
	SwitchMode(ctx context.Context) (dto.Result, error)
	Tick(ctx context.Context) (dto.Result, error)
	ApplyBlock(ctx context.Context, kind string) (dto.Result, error)
	ClaimReward(ctx context.Context, reward string) (dto.Result, error)
	SpawnNewBoss(ctx context.Context) (dto.Result, error)
	CycleDifficulty(ctx context.Context) (dto.Result, error)
	ResetAll(ctx context.Context) (dto.Result, error)
	ForgetTimes(ctx context.Context) (dto.Result, error)
	StoryTail(ctx context.Context, n int) ([]string, error)
	Chronicle(ctx context.Context, tail int) (dto.ChronicleOutput, error)
	ExportChronicle(ctx context.Context, input dto.ExportInput) (dto.ExportOutput, error)
}
