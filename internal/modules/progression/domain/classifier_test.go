package domain_test

import (
	"testing"

	"flowrpg/internal/modules/progression/domain"
)

func TestClassify(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		elapsed int
		state   domain.AutoRegistration
		want    domain.Action
	}{
		{"below brief", 599, domain.AutoNone, domain.ActionNone},
		{"brief threshold", 600, domain.AutoNone, domain.ActionApplyMini},
		{"brief already credited", 900, domain.AutoBrief, domain.ActionNone},
		{"deep threshold upgrades", 1500, domain.AutoBrief, domain.ActionUpgrade},
		{"deep is idempotent", 4000, domain.AutoDeep, domain.ActionNone},
		{"resumed past deep", 1600, domain.AutoNone, domain.ActionApplyDeep},
	}
	for _, tc := range cases {
		if got := domain.Classify(tc.elapsed, tc.state); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}
