package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	fence      = "---"
	openFence  = fence + "\n"
	closeFence = "\n" + fence + "\n"
)

// SplitFrontmatter separates a YAML frontmatter block from the note body.
// Notes without frontmatter yield an empty map and the untouched content.
func SplitFrontmatter(content string) (map[string]any, string, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(content, openFence) {
		return map[string]any{}, content, nil
	}
	rest := content[len(openFence):]
	end := strings.Index(rest, closeFence)
	if end < 0 {
		return nil, "", fmt.Errorf("invalid frontmatter: missing closing fence")
	}

	meta := map[string]any{}
	if err := yaml.Unmarshal([]byte(rest[:end]), &meta); err != nil {
		return nil, "", fmt.Errorf("unmarshal frontmatter: %w", err)
	}
	return meta, rest[end+len(closeFence):], nil
}

// RenderFrontmatter prefixes body with meta as a fenced YAML block.
func RenderFrontmatter(meta map[string]any, body string) (string, error) {
	raw, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(openFence)
	buf.Write(raw)
	buf.WriteString(openFence)
	if !strings.HasPrefix(body, "\n") {
		buf.WriteByte('\n')
	}
	buf.WriteString(body)
	return buf.String(), nil
}
