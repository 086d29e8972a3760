package domain_test

import (
	"testing"

	"flowrpg/internal/modules/progression/domain"
)

func TestBalanceSecondsPerDifficulty(t *testing.T) {
	t.Parallel()
	if got := domain.BalanceSeconds(600, 0, domain.DifficultyNormal); got != 200 {
		t.Fatalf("normal: expected 200, got %d", got)
	}
	if got := domain.BalanceSeconds(600, 300, domain.DifficultyEasy); got != 0 {
		t.Fatalf("easy: expected 0, got %d", got)
	}
	if got := domain.BalanceSeconds(600, 200, domain.DifficultyHard); got != -50 {
		t.Fatalf("hard: expected -50, got %d", got)
	}
}

func TestBalanceFeedback(t *testing.T) {
	t.Parallel()
	if fb := domain.BalanceFeedback(0); fb.Tone != domain.ToneNeutral || fb.Label != "Even" {
		t.Fatalf("unexpected neutral feedback: %+v", fb)
	}
	if fb := domain.BalanceFeedback(-125); fb.Tone != domain.ToneNegative || fb.Label != "-2 min" {
		t.Fatalf("unexpected debt feedback: %+v", fb)
	}
	if fb := domain.BalanceFeedback(600); fb.Buffed {
		t.Fatalf("10 minutes must not be buffed")
	}
	if fb := domain.BalanceFeedback(21 * 60); !fb.Buffed || fb.Label != "+21 min" {
		t.Fatalf("unexpected buffed feedback: %+v", fb)
	}
}

func TestDifficultyCycleAndLegacyNames(t *testing.T) {
	t.Parallel()
	d := domain.DifficultyEasy
	for i := 0; i < 3; i++ {
		d = d.Next()
	}
	if d != domain.DifficultyEasy {
		t.Fatalf("three cycles must return to easy, got %s", d)
	}
	if got, err := domain.ParseDifficulty("avanzado"); err != nil || got != domain.DifficultyHard {
		t.Fatalf("legacy hard: %s %v", got, err)
	}
	if got, err := domain.ParseDifficulty("facil"); err != nil || got != domain.DifficultyEasy {
		t.Fatalf("legacy easy: %s %v", got, err)
	}
	if _, err := domain.ParseDifficulty("nightmare"); err == nil {
		t.Fatalf("expected unknown difficulty error")
	}
}
