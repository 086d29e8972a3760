package domain

import (
	"fmt"

	"flowrpg/internal/platform/random"
)

// DefaultBossName is used when a persisted name is unusable and no source is at hand.
const DefaultBossName = "Nameless Shadows"

var bossPrefixes = []string{
	"Thal", "Eldr", "Gor", "Varyn", "Isil", "Ner", "Kael", "Mor", "Silv", "Aur",
	"Luth", "Fjor", "Arkh", "Zar", "Tarn", "Ael", "Grim", "Veld", "Myr", "Orin",
	"Syl", "Rhel", "Vel", "Nyr", "Cor", "Ilr", "Fen", "Bryn", "Sor",
}

var bossSuffixes = []string{
	"rion", "wyn", "gorn", "eth", "drel", "vash", "hollow", "dor", "wynne", "mist",
	"thorn", "dûn", "mar", "hael", "thir", "veil", "brand", "wraith", "bane", "shade",
	"kall", "moor", "spear", "loom", "spire",
}

var storySnippets = []string{
	"Mana flows stronger through your staff.",
	"A forgotten rune glows on your gauntlet.",
	"The forest spirits whisper your name.",
	"Your blade hums with a quiet, steady light.",
	"An old map reveals a path through the mountains.",
	"The tavern bard starts a song about your deeds.",
	"A raven brings news from a distant keep.",
	"Your shield bears a new crest of honor.",
	"The ancient library opens one more of its doors.",
	"You learn to read the patterns in the stars.",
	"A wandering monk teaches you a breathing technique.",
	"Your footsteps no longer wake the sleeping dragons.",
	"The river stones arrange themselves at your passing.",
	"A lantern in the ruins lights itself as you approach.",
	"Your cloak now holds the scent of rain and victory.",
	"The village elders mark your name in the great ledger.",
	"A crystal in your pocket begins to pulse with warmth.",
	"The wind carries your focus like a banner.",
	"You find a quiet clearing where time slows down.",
	"The guild grants you access to the upper halls.",
	"An owl perches on your shoulder and refuses to leave.",
	"Your ink never smudges anymore.",
	"The frozen gate thaws at your touch.",
	"A merchant offers you a discount out of sheer respect.",
	"Your shadow seems taller than it was yesterday.",
	"The old oak bows its branches as you walk by.",
}

func BossName(src random.Source) string {
	return random.Pick(src, bossPrefixes) + random.Pick(src, bossSuffixes)
}

func StorySnippet(src random.Source) string {
	return random.Pick(src, storySnippets)
}

// StoryLine is the chronicle entry recorded when level is reached.
func StoryLine(level int, snippet string) string {
	return fmt.Sprintf("Level %d: %s", level, snippet)
}
