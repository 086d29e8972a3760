package usecase

import (
	"context"

	"flowrpg/internal/modules/stats/domain"
	"flowrpg/internal/modules/stats/dto"
	statsin "flowrpg/internal/modules/stats/port/in"
	"flowrpg/internal/modules/stats/service"
)

type Interactor struct {
	svc *service.StatsService
}

func NewInteractor(svc *service.StatsService) statsin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) RecordBlock(ctx context.Context, input dto.RecordBlockInput) ([]dto.AchievementOutput, error) {
	unlocks, err := i.svc.RecordSession(ctx, input.SessionID, input.Kind, input.FocusSeconds, input.Level)
	if err != nil {
		return nil, err
	}
	return toUnlockOutputs(unlocks), nil
}

func (i *Interactor) UpgradeBlock(ctx context.Context, input dto.UpgradeBlockInput) ([]dto.AchievementOutput, error) {
	unlocks, err := i.svc.CompleteSession(ctx, input.SessionID, input.FocusSeconds, input.Level)
	if err != nil {
		return nil, err
	}
	return toUnlockOutputs(unlocks), nil
}

func (i *Interactor) RecordEvent(ctx context.Context, input dto.JournalInput) ([]dto.AchievementOutput, error) {
	unlocks, err := i.svc.Journal(ctx, input.Kind, input.Level, input.Detail)
	if err != nil {
		return nil, err
	}
	return toUnlockOutputs(unlocks), nil
}

func (i *Interactor) Summary(ctx context.Context) (dto.SummaryOutput, error) {
	summary, err := i.svc.Summary(ctx)
	if err != nil {
		return dto.SummaryOutput{}, err
	}
	out := dto.SummaryOutput{
		SessionsToday:         summary.SessionsToday,
		CompletedTotal:        summary.CompletedTotal,
		AverageSessionSeconds: summary.AverageSessionSeconds,
		WeeklyFocusSeconds:    summary.WeeklyFocusSeconds,
		CurrentStreak:         summary.CurrentStreak,
		BestStreak:            summary.BestStreak,
		BossesDefeated:        summary.BossesDefeated,
		LastSessionAt:         summary.LastSessionAt,
		HasSessions:           summary.HasSessions,
	}
	for _, a := range domain.Achievements() {
		at, ok := summary.Unlocked[a.ID]
		out.Achievements = append(out.Achievements, dto.AchievementOutput{
			ID:          a.ID,
			Name:        a.Name,
			Description: a.Description,
			Unlocked:    ok,
			UnlockedAt:  at,
		})
	}
	for _, entry := range summary.Recent {
		out.RecentJournal = append(out.RecentJournal, dto.JournalOutput{
			At:     entry.At,
			Kind:   entry.Kind,
			Level:  entry.Level,
			Detail: entry.Detail,
		})
	}
	return out, nil
}

func (i *Interactor) Reset(ctx context.Context) error {
	return i.svc.Reset(ctx)
}

func toUnlockOutputs(unlocks []service.Unlock) []dto.AchievementOutput {
	out := make([]dto.AchievementOutput, 0, len(unlocks))
	for _, u := range unlocks {
		out = append(out, dto.AchievementOutput{
			ID:          u.Achievement.ID,
			Name:        u.Achievement.Name,
			Description: u.Achievement.Description,
			Unlocked:    true,
			UnlockedAt:  u.At,
		})
	}
	return out
}
