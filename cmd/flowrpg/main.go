package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"flowrpg/internal/bootstrap"
	"flowrpg/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataPath string

	root := &cobra.Command{
		Use:           "flowrpg",
		Short:         "Focus/break timer with RPG progression",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTUI(dataPath)
		},
	}
	root.PersistentFlags().StringVar(&dataPath, "data", config.DefaultDataPath(), "data directory")

	root.AddCommand(newTUICmd(&dataPath))
	root.AddCommand(newStatusCmd(&dataPath))
	root.AddCommand(newBlockCmd(&dataPath))
	root.AddCommand(newRewardCmd(&dataPath))
	root.AddCommand(newBossCmd(&dataPath))
	root.AddCommand(newDifficultyCmd(&dataPath))
	root.AddCommand(newTimesCmd(&dataPath))
	root.AddCommand(newResetCmd(&dataPath))
	root.AddCommand(newChronicleCmd(&dataPath))
	root.AddCommand(newStatsCmd(&dataPath))
	root.AddCommand(newHookCmd(&dataPath))
	return root
}

// withApp wires the application for one command and closes it afterwards.
func withApp(dataPath string, fn func(*bootstrap.App) error) (err error) {
	cfg, err := config.New(dataPath)
	if err != nil {
		return err
	}
	app, err := bootstrap.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, app.Close())
	}()
	return fn(app)
}

func runTUI(dataPath string) error {
	return withApp(dataPath, bootstrap.RunTUI)
}

func newTUICmd(dataPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the interactive timer",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTUI(*dataPath)
		},
	}
}

func newStatusCmd(dataPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show level, boss, tokens and balance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataPath, func(app *bootstrap.App) error {
				snap, err := app.ProgressionCLI.Status(context.Background())
				if err != nil {
					return err
				}
				printSnapshot(cmd.OutOrStdout(), snap)
				return nil
			})
		},
	}
}

func newBlockCmd(dataPath *string) *cobra.Command {
	return &cobra.Command{
		Use:       "block deep|mini",
		Short:     "Register a completed focus block",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"deep", "mini"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*dataPath, func(app *bootstrap.App) error {
				res, err := app.ProgressionCLI.Block(context.Background(), strings.ToLower(args[0]))
				return printResult(cmd.OutOrStdout(), res, err)
			})
		},
	}
}

func newRewardCmd(dataPath *string) *cobra.Command {
	return &cobra.Command{
		Use:       "reward small|big",
		Short:     "Spend tokens on a reward chest",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"small", "big"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*dataPath, func(app *bootstrap.App) error {
				res, err := app.ProgressionCLI.Reward(context.Background(), strings.ToLower(args[0]))
				return printResult(cmd.OutOrStdout(), res, err)
			})
		},
	}
}

func newBossCmd(dataPath *string) *cobra.Command {
	boss := &cobra.Command{Use: "boss", Short: "Boss commands"}
	boss.AddCommand(&cobra.Command{
		Use:   "new",
		Short: "Summon a new boss",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataPath, func(app *bootstrap.App) error {
				res, err := app.ProgressionCLI.NewBoss(context.Background())
				return printResult(cmd.OutOrStdout(), res, err)
			})
		},
	})
	return boss
}

func newDifficultyCmd(dataPath *string) *cobra.Command {
	difficulty := &cobra.Command{Use: "difficulty", Short: "Break allowance difficulty"}
	difficulty.AddCommand(&cobra.Command{
		Use:   "cycle",
		Short: "Cycle easy → normal → hard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataPath, func(app *bootstrap.App) error {
				res, err := app.ProgressionCLI.CycleDifficulty(context.Background())
				return printResult(cmd.OutOrStdout(), res, err)
			})
		},
	})
	return difficulty
}

func newTimesCmd(dataPath *string) *cobra.Command {
	times := &cobra.Command{Use: "times", Short: "Accumulated focus/break times"}
	times.AddCommand(&cobra.Command{
		Use:   "forget",
		Short: "Zero the accumulated times, keep progress",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataPath, func(app *bootstrap.App) error {
				res, err := app.ProgressionCLI.ForgetTimes(context.Background())
				return printResult(cmd.OutOrStdout(), res, err)
			})
		},
	})
	return times
}

func newResetCmd(dataPath *string) *cobra.Command {
	var yes bool
	reset := &cobra.Command{
		Use:   "reset --yes",
		Short: "Wipe all progress and statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("reset wipes all progress; pass --yes to confirm")
			}
			return withApp(*dataPath, func(app *bootstrap.App) error {
				res, err := app.ProgressionCLI.Reset(context.Background())
				return printResult(cmd.OutOrStdout(), res, err)
			})
		},
	}
	reset.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return reset
}

func newChronicleCmd(dataPath *string) *cobra.Command {
	var tail int
	var export string
	chronicle := &cobra.Command{
		Use:   "chronicle [--tail N] [--export[=FILE]]",
		Short: "Print or export the story log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataPath, func(app *bootstrap.App) error {
				ctx := context.Background()
				if cmd.Flags().Changed("export") {
					out, err := app.ProgressionCLI.Export(ctx, strings.TrimSpace(export))
					if err != nil {
						return err
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %d entries to %s\n", out.Entries, out.Path)
					return nil
				}
				out, err := app.ProgressionCLI.Chronicle(ctx, tail)
				if err != nil {
					return err
				}
				printChronicle(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
	chronicle.Flags().IntVar(&tail, "tail", 0, "only the last N entries (0 = all)")
	chronicle.Flags().StringVar(&export, "export", "", "write markdown to FILE (empty = <data>/chronicle/<boss>.md)")
	chronicle.Flags().Lookup("export").NoOptDefVal = " "
	return chronicle
}

func newStatsCmd(dataPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Session statistics and achievements",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataPath, func(app *bootstrap.App) error {
				out, err := app.StatsCLI.Summary(context.Background())
				if err != nil {
					return err
				}
				printStats(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
}

func newHookCmd(dataPath *string) *cobra.Command {
	hook := &cobra.Command{Use: "hook", Short: "Event hook operations"}
	hook.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List hook manifests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataPath, func(app *bootstrap.App) error {
				hooks, err := app.HookCLI.List(context.Background())
				if err != nil {
					return err
				}
				if len(hooks) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no hooks")
					return nil
				}
				for _, h := range hooks {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tenabled=%t\tevents=%s\n",
						h.Name, h.Version, h.Enabled, strings.Join(h.Events, ","))
				}
				return nil
			})
		},
	})
	hook.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Check hook binaries, checksums and handshakes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*dataPath, func(app *bootstrap.App) error {
				results, err := app.HookCLI.Doctor(context.Background())
				if err != nil {
					return err
				}
				if len(results) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no hooks")
					return nil
				}
				for _, r := range results {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\tbinary=%t\tchecksum=%t\thandshake=%t\t%s\n",
						r.Name, r.BinaryReachable, r.ChecksumValid, r.HandshakeOK, r.Error)
				}
				return nil
			})
		},
	})
	return hook
}
