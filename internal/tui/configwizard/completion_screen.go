package configwizard

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/claudemd/internal/tui/components"
	"github.com/mark3labs/claudemd/internal/tui/theme"
)

// Completion screen buttons.
const (
	btnStartOver = "start-over"
	btnExit      = "exit"
)

// CompletionScreen confirms the save and offers Start Over or Exit.
type CompletionScreen struct {
	path        string
	historyPath string
	buttons     *components.ButtonBar
	width       int
}

// NewCompletionScreen creates the screen with the Exit button focused.
func NewCompletionScreen(path, historyPath string) *CompletionScreen {
	bar := components.NewButtonBar(
		components.Button{ID: btnStartOver, Label: "Start Over"},
		components.Button{ID: btnExit, Label: "Exit"},
	)
	bar.FocusLast()
	return &CompletionScreen{path: path, historyPath: historyPath, buttons: bar, width: 60}
}

// Update handles messages for the screen.
func (s *CompletionScreen) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}
	switch key.String() {
	case "tab", "right":
		if !s.buttons.FocusNext() {
			s.buttons.FocusFirst()
		}
	case "shift+tab", "left":
		if !s.buttons.FocusPrev() {
			s.buttons.FocusLast()
		}
	case "enter", "space", " ":
		switch s.buttons.FocusedButton() {
		case btnStartOver:
			return func() tea.Msg { return StartOverMsg{} }
		case btnExit:
			return tea.Quit
		}
	case "q":
		return tea.Quit
	}
	return nil
}

// SetSize updates the screen width.
func (s *CompletionScreen) SetSize(width, height int) {
	s.width = width
	s.buttons.SetWidth(width)
}

// View renders the screen.
func (s *CompletionScreen) View() string {
	st := theme.Current().S()
	var b strings.Builder

	b.WriteString(st.SuccessText.Render("✓ CLAUDE.md Saved!"))
	b.WriteString("\n\n")
	b.WriteString(st.Muted.Render("Saved to: "))
	b.WriteString(st.Value.Render(s.path))
	b.WriteString("\n")
	if s.historyPath != "" {
		b.WriteString(st.Muted.Render("History copy: " + s.historyPath))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(st.Description.Render("Claude Code reads CLAUDE.md from the project root at the start of every session."))
	b.WriteString("\n\n")
	b.WriteString(s.buttons.Render())
	b.WriteString("\n")
	b.WriteString(components.RenderHintBar("tab", "navigate", "enter", "select", "q", "quit"))
	return b.String()
}
