package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	hookdto "flowrpg/internal/modules/hook/dto"
	progressionout "flowrpg/internal/modules/progression/adapter/out"
	"flowrpg/internal/modules/progression/domain"
	"flowrpg/internal/modules/progression/dto"
	progressionin "flowrpg/internal/modules/progression/port/in"
	"flowrpg/internal/modules/progression/service"
	"flowrpg/internal/modules/progression/usecase"
	statsdto "flowrpg/internal/modules/stats/dto"
	apperrors "flowrpg/internal/platform/errors"
	"flowrpg/internal/platform/random"
)

type fakeStats struct {
	blocks   []statsdto.RecordBlockInput
	upgrades []statsdto.UpgradeBlockInput
	journal  []statsdto.JournalInput
	resets   int
	unlock   map[string]statsdto.AchievementOutput
	fail     error
}

func (f *fakeStats) RecordBlock(_ context.Context, in statsdto.RecordBlockInput) ([]statsdto.AchievementOutput, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	f.blocks = append(f.blocks, in)
	if a, ok := f.unlock[in.Kind]; ok {
		delete(f.unlock, in.Kind)
		return []statsdto.AchievementOutput{a}, nil
	}
	return nil, nil
}

func (f *fakeStats) UpgradeBlock(_ context.Context, in statsdto.UpgradeBlockInput) ([]statsdto.AchievementOutput, error) {
	f.upgrades = append(f.upgrades, in)
	return nil, nil
}

func (f *fakeStats) RecordEvent(_ context.Context, in statsdto.JournalInput) ([]statsdto.AchievementOutput, error) {
	f.journal = append(f.journal, in)
	return nil, nil
}

func (f *fakeStats) Summary(context.Context) (statsdto.SummaryOutput, error) {
	return statsdto.SummaryOutput{}, nil
}

func (f *fakeStats) Reset(context.Context) error {
	f.resets++
	return nil
}

type fakeHooks struct {
	events []hookdto.EventInput
}

func (f *fakeHooks) List(context.Context) ([]hookdto.HookInfo, error) { return nil, nil }

func (f *fakeHooks) Doctor(context.Context) ([]hookdto.DoctorResult, error) { return nil, nil }

func (f *fakeHooks) Dispatch(_ context.Context, in hookdto.EventInput) (hookdto.DispatchOutput, error) {
	f.events = append(f.events, in)
	return hookdto.DispatchOutput{Failures: []hookdto.DispatchFailure{{Hook: "flaky", Error: "boom"}}}, nil
}

type fixedClock struct{}

func (fixedClock) Now() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }

type seqIDs struct{ n int }

func (s *seqIDs) New() string {
	s.n++
	return fmt.Sprintf("focus-%d", s.n)
}

type fixture struct {
	uc    progressionin.Usecase
	stats *fakeStats
	hooks *fakeHooks
	dir   string
}

func newFixture(t *testing.T, opts usecase.Options) fixture {
	t.Helper()
	dir := t.TempDir()
	svc, err := service.OpenProgressionService(
		context.Background(),
		progressionout.NewFileStateStore(filepath.Join(dir, "state.json")),
		progressionout.NewMarkdownChronicleExporter(),
		fixedClock{},
		random.New(11),
		&seqIDs{},
		nil,
	)
	if err != nil {
		t.Fatalf("open service: %v", err)
	}
	stats := &fakeStats{unlock: map[string]statsdto.AchievementOutput{}}
	hooks := &fakeHooks{}
	if opts.ExportDir == "" {
		opts.ExportDir = filepath.Join(dir, "chronicle")
	}
	return fixture{uc: usecase.NewInteractor(svc, stats, hooks, nil, nil, opts), stats: stats, hooks: hooks, dir: dir}
}

func kinds(events []dto.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Kind)
	}
	return out
}

func TestApplyBlockFansOutToStatsAndHooks(t *testing.T) {
	t.Parallel()
	f := newFixture(t, usecase.Options{})
	f.stats.unlock["deep"] = statsdto.AchievementOutput{ID: "first_session", Name: "First Steps"}

	res, err := f.uc.ApplyBlock(context.Background(), " Deep ")
	if err != nil {
		t.Fatalf("apply block: %v", err)
	}
	if res.Snapshot.ExperienceTotal != domain.ExpDeep || res.Snapshot.HistoryLength != 1 {
		t.Fatalf("unexpected snapshot %+v", res.Snapshot)
	}
	got := kinds(res.Events)
	if got[0] != "block_applied" || got[len(got)-1] != "achievement_unlocked" {
		t.Fatalf("unexpected events %v", got)
	}
	if len(res.Unlocked) != 1 || res.Unlocked[0].ID != "first_session" {
		t.Fatalf("unexpected unlocked %+v", res.Unlocked)
	}
	if len(f.stats.blocks) != 1 || f.stats.blocks[0].SessionID != "" || f.stats.blocks[0].FocusSeconds != domain.DeepThresholdSeconds {
		t.Fatalf("manual block recorded wrongly: %+v", f.stats.blocks)
	}
	if len(f.hooks.events) != len(res.Events) {
		t.Fatalf("expected every event dispatched, got %d of %d", len(f.hooks.events), len(res.Events))
	}
	if !strings.Contains(f.hooks.events[0].PayloadJSON, `"kind":"block_applied"`) {
		t.Fatalf("unexpected hook payload %s", f.hooks.events[0].PayloadJSON)
	}
}

func TestAutoSessionUsesFocusSessionID(t *testing.T) {
	t.Parallel()
	f := newFixture(t, usecase.Options{})
	ctx := context.Background()
	if _, err := f.uc.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	var res dto.Result
	var err error
	for i := 0; i < domain.DeepThresholdSeconds; i++ {
		if res, err = f.uc.Tick(ctx); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	if res.Snapshot.AutoRegistration != string(domain.AutoDeep) {
		t.Fatalf("expected deep registration, got %s", res.Snapshot.AutoRegistration)
	}
	if len(f.stats.blocks) != 1 || len(f.stats.upgrades) != 1 {
		t.Fatalf("expected one mini and one upgrade, got %d blocks %d upgrades", len(f.stats.blocks), len(f.stats.upgrades))
	}
	if f.stats.blocks[0].SessionID == "" || f.stats.blocks[0].SessionID != f.stats.upgrades[0].SessionID {
		t.Fatalf("mini and upgrade must share a session id: %q vs %q", f.stats.blocks[0].SessionID, f.stats.upgrades[0].SessionID)
	}
	if f.stats.upgrades[0].FocusSeconds != domain.DeepThresholdSeconds {
		t.Fatalf("expected upgrade at %d seconds, got %d", domain.DeepThresholdSeconds, f.stats.upgrades[0].FocusSeconds)
	}
}

func TestForgetTimesStartsNewStatsSession(t *testing.T) {
	t.Parallel()
	f := newFixture(t, usecase.Options{})
	ctx := context.Background()
	if _, err := f.uc.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < domain.DeepThresholdSeconds; i++ {
		if _, err := f.uc.Tick(ctx); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	if _, err := f.uc.ForgetTimes(ctx); err != nil {
		t.Fatalf("forget times: %v", err)
	}
	for i := 0; i < domain.BriefThresholdSeconds; i++ {
		if _, err := f.uc.Tick(ctx); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	if len(f.stats.blocks) != 2 {
		t.Fatalf("expected a block per session, got %d", len(f.stats.blocks))
	}
	first, second := f.stats.blocks[0].SessionID, f.stats.blocks[1].SessionID
	if first == "" || second == "" || first == second {
		t.Fatalf("expected distinct session ids, got %q and %q", first, second)
	}
	if f.stats.upgrades[0].SessionID != first {
		t.Fatalf("upgrade belongs to the first session, got %q", f.stats.upgrades[0].SessionID)
	}
}

func TestStatsRecordTheEventLevel(t *testing.T) {
	t.Parallel()
	f := newFixture(t, usecase.Options{})
	ctx := context.Background()

	checkJournal := func(from, want int) {
		t.Helper()
		for _, j := range f.stats.journal[from:] {
			if j.Level != want {
				t.Fatalf("%s journaled at level %d, want %d", j.Kind, j.Level, want)
			}
		}
	}

	exp := 0
	var sawLevelUp bool
	for exp < domain.LevelSize+domain.ExpDeep {
		seen := len(f.stats.journal)
		res, err := f.uc.ApplyBlock(ctx, "deep")
		if err != nil {
			t.Fatalf("apply block: %v", err)
		}
		exp += domain.ExpDeep
		for _, e := range res.Events {
			if e.Kind == "level_up" {
				sawLevelUp = true
			}
		}
		last := f.stats.blocks[len(f.stats.blocks)-1]
		if last.Level != domain.Level(exp) {
			t.Fatalf("block at %d exp recorded at level %d, want %d", exp, last.Level, domain.Level(exp))
		}
		checkJournal(seen, domain.Level(exp))
	}
	if !sawLevelUp {
		t.Fatalf("expected a level-up along the way")
	}

	seen := len(f.stats.journal)
	if _, err := f.uc.CycleDifficulty(ctx); err != nil {
		t.Fatalf("cycle difficulty: %v", err)
	}
	if len(f.stats.journal) != seen+1 {
		t.Fatalf("expected one difficulty entry, got %d", len(f.stats.journal)-seen)
	}
	checkJournal(seen, domain.Level(exp))
}

func TestClaimRewardValidation(t *testing.T) {
	t.Parallel()
	f := newFixture(t, usecase.Options{})
	ctx := context.Background()
	if _, err := f.uc.ClaimReward(ctx, "huge"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := f.uc.ClaimReward(ctx, "small"); !errors.Is(err, apperrors.ErrInsufficientTokens) {
		t.Fatalf("expected ErrInsufficientTokens, got %v", err)
	}
	if len(f.hooks.events) != 0 {
		t.Fatalf("failed claims must not dispatch events")
	}

	for i := 0; i < 5; i++ {
		if _, err := f.uc.ApplyBlock(ctx, "deep"); err != nil {
			t.Fatalf("apply: %v", err)
		}
	}
	res, err := f.uc.ClaimReward(ctx, "small")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if res.Snapshot.TokensAvailable != 0 || res.Snapshot.TokensSpent != 1 {
		t.Fatalf("unexpected tokens %d/%d", res.Snapshot.TokensAvailable, res.Snapshot.TokensSpent)
	}
	last := f.stats.journal[len(f.stats.journal)-1]
	if last.Kind != "tokens_claimed" {
		t.Fatalf("expected tokens_claimed journal entry, got %+v", last)
	}
}

func TestResetAllResetsStats(t *testing.T) {
	t.Parallel()
	f := newFixture(t, usecase.Options{})
	res, err := f.uc.ResetAll(context.Background())
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if f.stats.resets != 1 {
		t.Fatalf("expected stats reset, got %d", f.stats.resets)
	}
	if got := kinds(res.Events); len(got) != 2 || got[1] != "boss_spawned" {
		t.Fatalf("unexpected reset events %v", got)
	}
}

func TestStatsFailureDoesNotFailOperation(t *testing.T) {
	t.Parallel()
	f := newFixture(t, usecase.Options{})
	f.stats.fail = errors.New("database is locked")
	res, err := f.uc.ApplyBlock(context.Background(), "mini")
	if err != nil {
		t.Fatalf("stats failures must be swallowed, got %v", err)
	}
	if res.Snapshot.ExperienceTotal != domain.ExpMini {
		t.Fatalf("expected mini credit, got %d", res.Snapshot.ExperienceTotal)
	}
}

func TestSwitchModeHonoursAutoStart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	on := newFixture(t, usecase.Options{AutoStartOnSwitch: true})
	res, err := on.uc.SwitchMode(ctx)
	if err != nil {
		t.Fatalf("switch: %v", err)
	}
	if res.Snapshot.Mode != "break" || !res.Snapshot.Running {
		t.Fatalf("expected running break, got %s running=%v", res.Snapshot.Mode, res.Snapshot.Running)
	}

	off := newFixture(t, usecase.Options{})
	res, err = off.uc.SwitchMode(ctx)
	if err != nil {
		t.Fatalf("switch: %v", err)
	}
	if res.Snapshot.Running {
		t.Fatalf("expected paused break without auto start")
	}
}

func TestSnapshotDerivedValues(t *testing.T) {
	t.Parallel()
	f := newFixture(t, usecase.Options{StoryTail: 1})
	ctx := context.Background()
	for i := 0; i < 11; i++ {
		if _, err := f.uc.ApplyBlock(ctx, "deep"); err != nil {
			t.Fatalf("apply: %v", err)
		}
	}
	snap, err := f.uc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Level != 2 || snap.ExperienceInLevel != 10 || snap.LevelSize != 100 {
		t.Fatalf("unexpected level values %d %d %d", snap.Level, snap.ExperienceInLevel, snap.LevelSize)
	}
	if snap.TokensAvailable != 2 {
		t.Fatalf("expected 2 tokens, got %d", snap.TokensAvailable)
	}
	if snap.DifficultyLabel != "normal 1:3" || snap.BalanceLabel != "Even" {
		t.Fatalf("unexpected labels %q %q", snap.DifficultyLabel, snap.BalanceLabel)
	}
	if len(snap.StoryTail) != 1 {
		t.Fatalf("expected story tail of 1, got %v", snap.StoryTail)
	}
}

func TestChronicleAndExport(t *testing.T) {
	t.Parallel()
	f := newFixture(t, usecase.Options{})
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		if _, err := f.uc.ApplyBlock(ctx, "deep"); err != nil {
			t.Fatalf("apply: %v", err)
		}
	}
	chronicle, err := f.uc.Chronicle(ctx, 1)
	if err != nil {
		t.Fatalf("chronicle: %v", err)
	}
	if chronicle.Total != 2 || len(chronicle.Entries) != 1 || !strings.HasPrefix(chronicle.Entries[0], "Level 3:") {
		t.Fatalf("unexpected chronicle %+v", chronicle)
	}
	if _, err := f.uc.Chronicle(ctx, -1); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative tail, got %v", err)
	}

	out, err := f.uc.ExportChronicle(ctx, dto.ExportInput{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if filepath.Dir(out.Path) != filepath.Join(f.dir, "chronicle") || filepath.Ext(out.Path) != ".md" {
		t.Fatalf("unexpected export path %s", out.Path)
	}
	if out.Entries != 2 {
		t.Fatalf("expected 2 entries exported, got %d", out.Entries)
	}
	if _, err := os.Stat(out.Path); err != nil {
		t.Fatalf("expected exported file: %v", err)
	}
}
