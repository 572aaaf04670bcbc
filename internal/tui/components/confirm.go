package components

import (
	"charm.land/lipgloss/v2"
	"github.com/mark3labs/claudemd/internal/tui/theme"
)

// RenderConfirmation renders a yes/no prompt box with a warning title.
func RenderConfirmation(title, message string) string {
	t := theme.Current()

	titleText := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(t.Warning)).
		Render("⚠ " + title)

	messageText := lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.FgBase)).
		Width(46).
		Render(message)

	prompt := t.S().Muted.Render("Press Y to confirm, N or ESC to cancel")

	content := lipgloss.JoinVertical(lipgloss.Left, titleText, "", messageText, "", prompt)

	return lipgloss.NewStyle().
		Width(54).
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(t.Warning)).
		Render(content)
}
