package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	progressiondto "flowrpg/internal/modules/progression/dto"
	statsdto "flowrpg/internal/modules/stats/dto"
	apperrors "flowrpg/internal/platform/errors"
	"flowrpg/internal/ui/components"
)

func printSnapshot(w io.Writer, s progressiondto.Snapshot) {
	state := "paused"
	if s.Running {
		state = "running"
	}
	_, _ = fmt.Fprintf(w, "mode: %s (%s) %s\n", s.Mode, state, components.Clock(s.Elapsed))
	_, _ = fmt.Fprintf(w, "level: %d  exp: %d/%d  total: %s\n",
		s.Level, s.ExperienceInLevel, s.LevelSize, humanize.Comma(int64(s.ExperienceTotal)))
	_, _ = fmt.Fprintf(w, "boss: %s  hp: %d/%d\n", s.BossName, s.HPRemaining, s.BossHP)
	_, _ = fmt.Fprintf(w, "tokens: %d (spent %d)\n", s.TokensAvailable, s.TokensSpent)
	buff := ""
	if s.Buffed {
		buff = "  buffed"
	}
	_, _ = fmt.Fprintf(w, "balance: %s%s  difficulty: %s\n", s.BalanceLabel, buff, s.DifficultyLabel)
	_, _ = fmt.Fprintf(w, "focus: %s session / %s total  break: %s session / %s total\n",
		components.Clock(s.SessionFocusSeconds), components.Clock(s.TotalFocusSeconds),
		components.Clock(s.SessionBreakSeconds), components.Clock(s.TotalBreakSeconds))
}

// printResult prints event messages and then the snapshot. A failed save is
// reported after the output because the change itself went through.
func printResult(w io.Writer, res progressiondto.Result, err error) error {
	if err != nil && !errors.Is(err, apperrors.ErrPersistenceWriteFailed) {
		return err
	}
	for _, e := range res.Events {
		_, _ = fmt.Fprintln(w, "» "+e.Message)
	}
	printSnapshot(w, res.Snapshot)
	if err != nil {
		return fmt.Errorf("progress applied but not saved: %w", err)
	}
	return nil
}

func printChronicle(w io.Writer, out progressiondto.ChronicleOutput) {
	_, _ = fmt.Fprintf(w, "%s · level %d · %d entries\n", out.BossName, out.Level, out.Total)
	if len(out.Entries) == 0 {
		_, _ = fmt.Fprintln(w, "(empty)")
		return
	}
	for _, line := range out.Entries {
		_, _ = fmt.Fprintln(w, line)
	}
}

func printStats(w io.Writer, out statsdto.SummaryOutput) {
	last := "never"
	if out.HasSessions {
		last = humanize.Time(out.LastSessionAt)
	}
	_, _ = fmt.Fprintf(w, "sessions today: %d  completed: %s  last: %s\n",
		out.SessionsToday, humanize.Comma(int64(out.CompletedTotal)), last)
	_, _ = fmt.Fprintf(w, "average session: %s  focus this week: %s\n",
		minutes(out.AverageSessionSeconds), minutes(out.WeeklyFocusSeconds))
	_, _ = fmt.Fprintf(w, "streak: %d days (best %d)  bosses defeated: %d\n",
		out.CurrentStreak, out.BestStreak, out.BossesDefeated)

	unlocked := 0
	for _, a := range out.Achievements {
		if a.Unlocked {
			unlocked++
		}
	}
	_, _ = fmt.Fprintf(w, "achievements: %d/%d\n", unlocked, len(out.Achievements))
	for _, a := range out.Achievements {
		mark := "  "
		when := ""
		if a.Unlocked {
			mark = "✓ "
			when = " (" + humanize.Time(a.UnlockedAt) + ")"
		}
		_, _ = fmt.Fprintf(w, "  %s%s: %s%s\n", mark, a.Name, a.Description, when)
	}
	if len(out.RecentJournal) > 0 {
		_, _ = fmt.Fprintln(w, "recent:")
		for _, j := range out.RecentJournal {
			_, _ = fmt.Fprintf(w, "  %s  %s  %s\n", j.At.Local().Format(time.DateTime), j.Kind, j.Detail)
		}
	}
}

func minutes(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds < 3600 {
		return fmt.Sprintf("%dm", seconds/60)
	}
	return fmt.Sprintf("%dh%02dm", seconds/3600, seconds/60%60)
}
