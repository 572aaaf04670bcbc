package configwizard

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/mark3labs/claudemd/internal/logger"
)

// saveOutput writes content to path and, when historyDir is set, keeps a
// timestamped copy named after the project. It returns the history path.
func saveOutput(path, historyDir, project, content string, now time.Time) (string, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	logger.Debug("Writing CLAUDE.md to %s", path)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	if historyDir == "" {
		return "", nil
	}

	if err := os.MkdirAll(historyDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create history directory: %w", err)
	}
	historyPath := filepath.Join(historyDir, historyName(project, now))
	if err := os.WriteFile(historyPath, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write history copy: %w", err)
	}
	logger.Debug("History copy written to %s", historyPath)
	return historyPath, nil
}

// historyName builds "<slug>-<YYYYMMDD-HHMMSS>.md" from the first line of
// the project context, truncated to 40 runes before slugging.
func historyName(project string, now time.Time) string {
	title := []rune(firstLine(project))
	if len(title) > 40 {
		title = title[:40]
	}
	name := slug.Make(string(title))
	if name == "" {
		name = "claude-md"
	}
	return fmt.Sprintf("%s-%s.md", name, now.Format("20060102-150405"))
}

// firstLine returns the first non-empty line from a multi-line string.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
