package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	hclog "github.com/hashicorp/go-hclog"

	hookinadapter "flowrpg/internal/modules/hook/adapter/in"
	hookoutadapter "flowrpg/internal/modules/hook/adapter/out"
	hookservice "flowrpg/internal/modules/hook/service"
	hookusecase "flowrpg/internal/modules/hook/usecase"
	progressioninadapter "flowrpg/internal/modules/progression/adapter/in"
	progressionoutadapter "flowrpg/internal/modules/progression/adapter/out"
	"flowrpg/internal/modules/progression/domain"
	progressionservice "flowrpg/internal/modules/progression/service"
	progressionusecase "flowrpg/internal/modules/progression/usecase"
	statsinadapter "flowrpg/internal/modules/stats/adapter/in"
	statsoutadapter "flowrpg/internal/modules/stats/adapter/out"
	statsservice "flowrpg/internal/modules/stats/service"
	statsusecase "flowrpg/internal/modules/stats/usecase"
	"flowrpg/internal/platform/clock"
	"flowrpg/internal/platform/config"
	"flowrpg/internal/platform/id"
	"flowrpg/internal/platform/logging"
	"flowrpg/internal/platform/random"
	"flowrpg/internal/platform/tx"
	uiapp "flowrpg/internal/ui/app"
)

type App struct {
	ProgressionCLI progressioninadapter.CLIHandler
	ProgressionTUI progressioninadapter.TUIHandler
	StatsCLI       statsinadapter.CLIHandler
	HookCLI        hookinadapter.CLIHandler
	Logger         hclog.Logger

	closers []io.Closer
}

func New(cfg config.Config) (*App, error) {
	logger, logCloser, err := logging.New(cfg.LogPath, cfg.Settings.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	app := &App{Logger: logger, closers: []io.Closer{logCloser}}

	clk := clock.SystemClock{}
	ids := id.UUID{}

	statsStore, err := statsoutadapter.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("open stats store: %w", err)
	}
	app.closers = append(app.closers, statsStore)
	statsUC := statsusecase.NewInteractor(statsservice.NewStatsService(clk, ids, statsStore, time.Local))

	hookUC := hookusecase.NewInteractor(hookservice.NewHookService(
		hookoutadapter.NewFileManifestStore(cfg.DataPath, cfg.HooksPath),
		hookoutadapter.NewGRPCHost(logger, time.Duration(cfg.Settings.HookTimeoutMS)*time.Millisecond),
		clk,
		ids,
		logger,
		hookservice.Options{
			KnownEvent: func(kind string) bool { return domain.EventKind(kind).Known() },
			Timeout:    time.Duration(cfg.Settings.HookTimeoutMS) * time.Millisecond,
		},
	))

	progressionSvc, err := progressionservice.OpenProgressionService(
		context.Background(),
		progressionoutadapter.NewFileStateStore(cfg.StatePath),
		progressionoutadapter.NewMarkdownChronicleExporter(),
		clk,
		random.New(cfg.Settings.Seed),
		ids,
		logger.Named("progression"),
	)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("open progression: %w", err)
	}
	progressionUC := progressionusecase.NewInteractor(
		progressionSvc,
		statsUC,
		hookUC,
		tx.NoopManager{},
		logger,
		progressionusecase.Options{
			AutoStartOnSwitch: cfg.Settings.AutoStartOnSwitch,
			StoryTail:         cfg.Settings.StoryTail,
			ExportDir:         filepath.Join(cfg.DataPath, "chronicle"),
		},
	)

	app.ProgressionCLI = progressioninadapter.NewCLIHandler(progressionUC)
	app.ProgressionTUI = progressioninadapter.NewTUIHandler(progressionUC)
	app.StatsCLI = statsinadapter.NewCLIHandler(statsUC)
	app.HookCLI = hookinadapter.NewCLIHandler(hookUC)
	return app, nil
}

// Close releases the stats database and the log file, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app.ProgressionTUI)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
