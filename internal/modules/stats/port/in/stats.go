package in

import (
	"context"

	"flowrpg/internal/modules/stats/dto"
)

type Usecase interface {
	RecordBlock(ctx context.Context, input dto.RecordBlockInput) ([]dto.AchievementOutput, error)
	UpgradeBlock(ctx context.Context, input dto.UpgradeBlockInput) ([]dto.AchievementOutput, error)
	RecordEvent(ctx context.Context, input dto.JournalInput) ([]dto.AchievementOutput, error)
	Summary(ctx context.Context) (dto.SummaryOutput, error)
	Reset(ctx context.Context) error
}
