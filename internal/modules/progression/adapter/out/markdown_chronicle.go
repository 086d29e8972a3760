package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"flowrpg/internal/modules/progression/domain"
	progressionout "flowrpg/internal/modules/progression/port/out"
	"flowrpg/internal/platform/markdown"
)

const (
	chronicleStart = "<!-- flowrpg:chronicle:start -->"
	chronicleEnd   = "<!-- flowrpg:chronicle:end -->"
)

// MarkdownChronicleExporter writes the story log into a managed block of a
// markdown note. Text outside the block and unknown frontmatter keys survive
// re-exports.
type MarkdownChronicleExporter struct{}

func NewMarkdownChronicleExporter() progressionout.ChronicleExporter {
	return MarkdownChronicleExporter{}
}

func (MarkdownChronicleExporter) Export(_ context.Context, path string, chronicle domain.Chronicle) (string, error) {
	if path == "" {
		return "", fmt.Errorf("export path is required")
	}
	meta := map[string]any{}
	body := "# Chronicle\n"
	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		meta, body, err = markdown.SplitFrontmatter(string(existing))
		if err != nil {
			return "", fmt.Errorf("parse existing chronicle: %w", err)
		}
	case !os.IsNotExist(err):
		return "", fmt.Errorf("read existing chronicle: %w", err)
	}

	meta["type"] = "flowrpg-chronicle"
	meta["boss"] = chronicle.BossName
	meta["level"] = chronicle.Level
	meta["experience"] = chronicle.ExperienceTotal
	meta["difficulty"] = string(chronicle.Difficulty)
	meta["entries"] = len(chronicle.Entries)
	meta["exported_at"] = chronicle.ExportedAt.UTC().Format(time.RFC3339)

	body = markdown.ReplaceManagedBlock(body, chronicleStart, chronicleEnd, renderEntries(chronicle.Entries))
	content, err := markdown.RenderFrontmatter(meta, body)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create chronicle dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write chronicle: %w", err)
	}
	return path, nil
}

func renderEntries(entries []string) string {
	if len(entries) == 0 {
		return "_No chapters yet. Finish a focus session to begin the tale._"
	}
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, "- "+entry)
	}
	return strings.Join(lines, "\n")
}
