package theme

import "charm.land/lipgloss/v2"

// Styles contains all pre-built lipgloss styles for the TUI.
type Styles struct {
	Title       lipgloss.Style
	Description lipgloss.Style
	Label       lipgloss.Style
	Muted       lipgloss.Style
	Value       lipgloss.Style

	ErrorText   lipgloss.Style
	WarningText lipgloss.Style
	SuccessText lipgloss.Style

	Modal        lipgloss.Style
	Input        lipgloss.Style
	InputFocused lipgloss.Style

	ButtonNormal   lipgloss.Style
	ButtonDisabled lipgloss.Style
	ButtonFocused  lipgloss.Style

	HintKey       lipgloss.Style
	HintDesc      lipgloss.Style
	HintSeparator lipgloss.Style
}
