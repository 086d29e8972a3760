package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	hclog "github.com/hashicorp/go-hclog"

	hookdto "flowrpg/internal/modules/hook/dto"
	hookin "flowrpg/internal/modules/hook/port/in"
	"flowrpg/internal/modules/progression/domain"
	"flowrpg/internal/modules/progression/dto"
	progressionin "flowrpg/internal/modules/progression/port/in"
	"flowrpg/internal/modules/progression/service"
	statsdto "flowrpg/internal/modules/stats/dto"
	statsin "flowrpg/internal/modules/stats/port/in"
	apperrors "flowrpg/internal/platform/errors"
	"flowrpg/internal/platform/slug"
	"flowrpg/internal/platform/tx"
)

type Options struct {
	AutoStartOnSwitch bool
	StoryTail         int
	ExportDir         string
}

type Interactor struct {
	svc    *service.ProgressionService
	stats  statsin.Usecase
	hooks  hookin.Usecase
	txm    tx.Manager
	logger hclog.Logger
	opts   Options
}

// NewInteractor wires the progression service to its collaborators. stats,
// hooks and txm may be nil.
func NewInteractor(svc *service.ProgressionService, stats statsin.Usecase, hooks hookin.Usecase, txm tx.Manager, logger hclog.Logger, opts Options) progressionin.Usecase {
	if txm == nil {
		txm = tx.NoopManager{}
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if opts.StoryTail <= 0 {
		opts.StoryTail = 6
	}
	return &Interactor{svc: svc, stats: stats, hooks: hooks, txm: txm, logger: logger, opts: opts}
}

func (i *Interactor) Snapshot(_ context.Context) (dto.Snapshot, error) {
	return i.toSnapshot(i.svc.Snapshot()), nil
}

func (i *Interactor) Start(_ context.Context) (dto.Result, error) {
	return dto.Result{Snapshot: i.toSnapshot(i.svc.Start())}, nil
}

func (i *Interactor) Pause(_ context.Context) (dto.Result, error) {
	return dto.Result{Snapshot: i.toSnapshot(i.svc.Pause())}, nil
}

func (i *Interactor) Toggle(_ context.Context) (dto.Result, error) {
	return dto.Result{Snapshot: i.toSnapshot(i.svc.Toggle())}, nil
}

func (i *Interactor) SwitchMode(ctx context.Context) (dto.Result, error) {
	snap, events, err := i.svc.SwitchMode(ctx, i.opts.AutoStartOnSwitch)
	return i.finish(ctx, snap, events, err)
}

func (i *Interactor) Tick(ctx context.Context) (dto.Result, error) {
	snap, events, err := i.svc.Tick(ctx)
	return i.finish(ctx, snap, events, err)
}

func (i *Interactor) ApplyBlock(ctx context.Context, kind string) (dto.Result, error) {
	snap, events, err := i.svc.ApplyBlock(ctx, domain.Kind(strings.ToLower(strings.TrimSpace(kind))))
	return i.finish(ctx, snap, events, err)
}

func (i *Interactor) ClaimReward(ctx context.Context, reward string) (dto.Result, error) {
	cost, err := domain.TokenCost(strings.ToLower(strings.TrimSpace(reward)))
	if err != nil {
		return dto.Result{Snapshot: i.toSnapshot(i.svc.Snapshot())}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	snap, events, err := i.svc.ClaimToken(ctx, cost)
	return i.finish(ctx, snap, events, err)
}

func (i *Interactor) SpawnNewBoss(ctx context.Context) (dto.Result, error) {
	snap, events, err := i.svc.SpawnNewBoss(ctx)
	return i.finish(ctx, snap, events, err)
}

func (i *Interactor) CycleDifficulty(ctx context.Context) (dto.Result, error) {
	snap, events, err := i.svc.CycleDifficulty(ctx)
	return i.finish(ctx, snap, events, err)
}

func (i *Interactor) ResetAll(ctx context.Context) (dto.Result, error) {
	snap, events, err := i.svc.ResetAll(ctx)
	return i.finish(ctx, snap, events, err)
}

func (i *Interactor) ForgetTimes(ctx context.Context) (dto.Result, error) {
	snap, events, err := i.svc.ForgetTimes(ctx)
	return i.finish(ctx, snap, events, err)
}

func (i *Interactor) StoryTail(_ context.Context, n int) ([]string, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: tail must be non-negative", apperrors.ErrInvalidInput)
	}
	return i.svc.StoryTail(n), nil
}

func (i *Interactor) Chronicle(_ context.Context, tail int) (dto.ChronicleOutput, error) {
	if tail < 0 {
		return dto.ChronicleOutput{}, fmt.Errorf("%w: tail must be non-negative", apperrors.ErrInvalidInput)
	}
	snap := i.svc.Snapshot()
	entries := snap.State.StoryLog
	if tail > 0 && tail < len(entries) {
		entries = entries[len(entries)-tail:]
	}
	return dto.ChronicleOutput{
		BossName: snap.State.BossName,
		Level:    snap.Level(),
		Total:    len(snap.State.StoryLog),
		Entries:  append([]string(nil), entries...),
	}, nil
}

func (i *Interactor) ExportChronicle(ctx context.Context, input dto.ExportInput) (dto.ExportOutput, error) {
	path := strings.TrimSpace(input.Path)
	if path == "" {
		if i.opts.ExportDir == "" {
			return dto.ExportOutput{}, fmt.Errorf("%w: export path is required", apperrors.ErrInvalidInput)
		}
		path = filepath.Join(i.opts.ExportDir, slug.Make(i.svc.Snapshot().State.BossName)+".md")
	}
	written, chronicle, err := i.svc.ExportChronicle(ctx, path)
	if err != nil {
		return dto.ExportOutput{}, err
	}
	i.logger.Info("chronicle exported", "path", written, "entries", len(chronicle.Entries))
	return dto.ExportOutput{Path: written, Entries: len(chronicle.Entries), ExportedAt: chronicle.ExportedAt}, nil
}

// finish converts a service result and fans its events out to stats and
// hooks. Only persistence warnings travel back with a result.
func (i *Interactor) finish(ctx context.Context, snap domain.Snapshot, events []domain.Event, err error) (dto.Result, error) {
	if err != nil && !errors.Is(err, apperrors.ErrPersistenceWriteFailed) {
		return dto.Result{Snapshot: i.toSnapshot(snap)}, err
	}
	if err != nil {
		i.logger.Warn("progress kept in memory only", "error", err)
	}
	result := dto.Result{Snapshot: i.toSnapshot(snap)}
	for _, e := range events {
		result.Events = append(result.Events, toEvent(e))
	}
	if len(events) == 0 {
		return result, err
	}

	unlocked := i.recordStats(ctx, snap, events)
	for _, a := range unlocked {
		result.Unlocked = append(result.Unlocked, dto.Achievement{ID: a.ID, Name: a.Name})
		result.Events = append(result.Events, dto.Event{
			Kind:        string(domain.EventAchievementUnlocked),
			Level:       snap.Level(),
			Achievement: a.ID,
			Message:     fmt.Sprintf("Achievement unlocked: %s", a.Name),
		})
	}
	i.dispatch(ctx, result.Events)
	return result, err
}

func (i *Interactor) recordStats(ctx context.Context, snap domain.Snapshot, events []domain.Event) []statsdto.AchievementOutput {
	if i.stats == nil {
		return nil
	}
	var unlocked []statsdto.AchievementOutput
	err := i.txm.Within(ctx, func(ctx context.Context) error {
		for _, e := range events {
			got, err := i.recordEvent(ctx, snap, e)
			if err != nil {
				return fmt.Errorf("record %s: %w", e.Kind, err)
			}
			unlocked = append(unlocked, got...)
		}
		return nil
	})
	if err != nil {
		i.logger.Error("stats update failed", "error", err)
	}
	return unlocked
}

func (i *Interactor) recordEvent(ctx context.Context, snap domain.Snapshot, e domain.Event) ([]statsdto.AchievementOutput, error) {
	level := e.Level
	switch e.Kind {
	case domain.EventBlockApplied:
		input := statsdto.RecordBlockInput{Kind: string(e.BlockKind), Level: level}
		if e.Auto {
			input.SessionID = snap.State.FocusSessionID
			input.FocusSeconds = snap.Elapsed
		} else {
			input.FocusSeconds = nominalSeconds(e.BlockKind)
		}
		return i.stats.RecordBlock(ctx, input)
	case domain.EventBlockUpgraded:
		return i.stats.UpgradeBlock(ctx, statsdto.UpgradeBlockInput{
			SessionID:    snap.State.FocusSessionID,
			FocusSeconds: snap.Elapsed,
			Level:        level,
		})
	case domain.EventProgressReset:
		return nil, i.stats.Reset(ctx)
	default:
		return i.stats.RecordEvent(ctx, statsdto.JournalInput{Kind: string(e.Kind), Level: level, Detail: describe(e)})
	}
}

func (i *Interactor) dispatch(ctx context.Context, events []dto.Event) {
	if i.hooks == nil {
		return
	}
	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			i.logger.Error("encode hook payload", "event", e.Kind, "error", err)
			continue
		}
		out, err := i.hooks.Dispatch(ctx, hookdto.EventInput{
			Kind:        e.Kind,
			Level:       e.Level,
			Message:     e.Message,
			PayloadJSON: string(payload),
		})
		if err != nil {
			i.logger.Error("hook dispatch failed", "event", e.Kind, "error", err)
			continue
		}
		for _, f := range out.Failures {
			i.logger.Warn("hook failed", "hook", f.Hook, "event", e.Kind, "error", f.Error)
		}
	}
}

func (i *Interactor) toSnapshot(s domain.Snapshot) dto.Snapshot {
	balance := s.BalanceSeconds()
	feedback := domain.BalanceFeedback(balance)
	return dto.Snapshot{
		Mode:                string(s.Mode),
		Running:             s.Running,
		Elapsed:             s.Elapsed,
		Level:               s.Level(),
		ExperienceInLevel:   domain.ExperienceInLevel(s.State.ExperienceTotal),
		LevelSize:           domain.LevelSize,
		ExperienceTotal:     s.State.ExperienceTotal,
		BossName:            s.State.BossName,
		BossHP:              s.State.BossHP,
		HPRemaining:         s.HPRemaining(),
		DamageTotal:         s.State.DamageTotal,
		TokensAvailable:     s.TokensAvailable(),
		TokensSpent:         s.State.TokensSpent,
		TotalFocusSeconds:   s.State.TotalFocusSeconds,
		TotalBreakSeconds:   s.State.TotalBreakSeconds,
		SessionFocusSeconds: s.State.SessionFocusSeconds,
		SessionBreakSeconds: s.State.SessionBreakSeconds,
		BalanceSeconds:      balance,
		BalanceTone:         string(feedback.Tone),
		BalanceLabel:        feedback.Label,
		Buffed:              feedback.Buffed,
		Difficulty:          string(s.State.Difficulty),
		DifficultyLabel:     s.State.Difficulty.Label(),
		AutoRegistration:    string(s.State.AutoRegistration),
		HistoryLength:       len(s.State.History),
		StoryTail:           tail(s.State.StoryLog, i.opts.StoryTail),
	}
}

func toEvent(e domain.Event) dto.Event {
	return dto.Event{
		Kind:       string(e.Kind),
		Level:      e.Level,
		BlockKind:  string(e.BlockKind),
		Auto:       e.Auto,
		Index:      e.Index,
		Experience: e.Experience,
		Damage:     e.Damage,
		BossName:   e.BossName,
		BossHP:     e.BossHP,
		Cost:       e.Cost,
		Tokens:     e.Tokens,
		Minutes:    e.Minutes,
		Difficulty: string(e.Difficulty),
		Message:    describe(e),
	}
}

// describe renders an event as one status line.
func describe(e domain.Event) string {
	switch e.Kind {
	case domain.EventBlockApplied:
		how := "Logged"
		if e.Auto {
			how = "Auto-logged"
		}
		return fmt.Sprintf("%s %s block: +%d EXP, %d damage", how, e.BlockKind, e.Experience, e.Damage)
	case domain.EventBlockUpgraded:
		return fmt.Sprintf("Session upgraded to deep: +%d EXP, %d damage", e.Experience, e.Damage)
	case domain.EventLevelUp:
		if e.Message != "" {
			return e.Message
		}
		return fmt.Sprintf("Reached level %d", e.Level)
	case domain.EventBossDefeated:
		return fmt.Sprintf("%s has fallen!", e.BossName)
	case domain.EventBossSpawned:
		return fmt.Sprintf("%s appears with %d HP", e.BossName, e.BossHP)
	case domain.EventTokensClaimed:
		return fmt.Sprintf("Chest opened for %d token(s), %d left", e.Cost, e.Tokens)
	case domain.EventDifficultyChanged:
		return fmt.Sprintf("Difficulty set to %s", e.Difficulty.Label())
	case domain.EventFocusMilestone:
		return fmt.Sprintf("%d minutes of focus", e.Minutes)
	case domain.EventBreakBudgetExhausted:
		return "Break budget used up"
	case domain.EventProgressReset:
		return "All progress cleared"
	case domain.EventTimesForgotten:
		return "Time counters cleared"
	default:
		return string(e.Kind)
	}
}

func nominalSeconds(kind domain.Kind) int {
	if kind == domain.KindDeep {
		return domain.DeepThresholdSeconds
	}
	return domain.BriefThresholdSeconds
}

func tail(log []string, n int) []string {
	if n > len(log) {
		n = len(log)
	}
	return append([]string(nil), log[len(log)-n:]...)
}
