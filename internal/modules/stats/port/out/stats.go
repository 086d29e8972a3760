package out

import (
	"context"
	"time"

	"flowrpg/internal/modules/stats/domain"
)

type Store interface {
	InsertSession(ctx context.Context, record domain.SessionRecord) error
	// CompleteSession marks a session deep and completed. It reports false
	// when no session has that id.
	CompleteSession(ctx context.Context, id string, focusSeconds int, at time.Time) (bool, error)
	AppendJournal(ctx context.Context, entry domain.JournalEntry) error
	RecentJournal(ctx context.Context, limit int) ([]domain.JournalEntry, error)

	// CountCompleted counts completed sessions on or after sinceDay; "" counts all.
	CountCompleted(ctx context.Context, sinceDay string) (int, error)
	CompletedDays(ctx context.Context) ([]string, error)
	AverageCompletedSeconds(ctx context.Context) (int, error)
	FocusSecondsSince(ctx context.Context, sinceDay string) (int, error)
	LastSessionAt(ctx context.Context) (time.Time, bool, error)
	// CountBossesDefeated counts each defeated boss once, however many
	// blocks landed on it at 0 HP.
	CountBossesDefeated(ctx context.Context) (int, error)

	Unlocked(ctx context.Context) (map[string]time.Time, error)
	// Unlock records an achievement once and reports whether it was new.
	Unlock(ctx context.Context, id string, at time.Time) (bool, error)

	Reset(ctx context.Context) error
}
