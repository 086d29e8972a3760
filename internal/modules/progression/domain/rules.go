package domain

import (
	"fmt"

	"flowrpg/internal/platform/random"
)

const (
	LevelSize = 100

	ExpDeep = 10
	ExpMini = 4

	BaseDamageDeep = 10
	BaseDamageMini = 4
	LevelBonusDeep = 2
	LevelBonusMini = 1

	ExpPerToken    = 50
	TokenCostSmall = 1
	TokenCostBig   = 3

	BaseHPMin     = 10
	BaseHPMax     = 30
	HPPerLevelMin = 8
	HPPerLevelMax = 12
)

// Kind is the reward tier of a credited focus block.
type Kind string

const (
	KindDeep Kind = "deep"
	KindMini Kind = "mini"
)

func (k Kind) Validate() error {
	switch k {
	case KindDeep, KindMini:
		return nil
	default:
		return fmt.Errorf("unknown block kind: %s", k)
	}
}

// Experience is the flat experience a block of kind k grants.
func (k Kind) Experience() int {
	if k == KindDeep {
		return ExpDeep
	}
	return ExpMini
}

func Level(exp int) int {
	if exp < 0 {
		exp = 0
	}
	return 1 + exp/LevelSize
}

func ExperienceInLevel(exp int) int {
	if exp < 0 {
		return 0
	}
	return exp % LevelSize
}

func ScaledDamage(kind Kind, level int) int {
	if level < 1 {
		level = 1
	}
	if kind == KindDeep {
		return BaseDamageDeep + (level-1)*LevelBonusDeep
	}
	return BaseDamageMini + (level-1)*LevelBonusMini
}

func TokensAvailable(exp, spent int) int {
	return max(0, exp/ExpPerToken-spent)
}

// BossHPRange is the closed interval a boss spawned at level may roll.
func BossHPRange(level int) (int, int) {
	if level < 1 {
		level = 1
	}
	lo := BaseHPMin + (level-1)*HPPerLevelMin
	hi := max(lo+10, BaseHPMax+(level-1)*HPPerLevelMax)
	return lo, hi
}

func RollBossHP(level int, src random.Source) int {
	lo, hi := BossHPRange(level)
	return random.Between(src, lo, hi)
}

// TokenCost maps a named chest to its token price.
func TokenCost(name string) (int, error) {
	switch name {
	case "small":
		return TokenCostSmall, nil
	case "big":
		return TokenCostBig, nil
	default:
		return 0, fmt.Errorf("unknown reward: %s", name)
	}
}
