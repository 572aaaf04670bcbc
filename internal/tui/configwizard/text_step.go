package configwizard

import (
	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mark3labs/claudemd/internal/logger"
	"github.com/mark3labs/claudemd/internal/tui/theme"
	"github.com/mark3labs/claudemd/internal/wizard"
)

var placeholders = map[string]string{
	wizard.FieldUniversalPrinciples: "e.g.\n- Prefer clarity over cleverness\n- Every change ships with tests\n- Ask before deleting anything",
	wizard.FieldProjectContext:      "What is the project, what is it built with, and what matters to the team?",
	wizard.FieldActivationRules:     "e.g.\n- @architect for design questions\n- @reviewer before every commit",
}

// TextStep edits a single free-text wizard field. Every keystroke is
// written through to the store so validation always sees the latest value.
type TextStep struct {
	store    *wizard.Store
	step     int
	field    string
	textarea textarea.Model
	width    int
	height   int
}

// NewTextStep creates the editor for the first field of step.
func NewTextStep(store *wizard.Store, step int) *TextStep {
	field := wizard.Steps[step].Fields[0]
	value, _ := store.Get().Field(field)

	ta := textarea.New()
	ta.Placeholder = placeholders[field]
	ta.ShowLineNumbers = false
	ta.CharLimit = 10000
	ta.SetWidth(60)
	ta.SetHeight(8)
	ta.SetValue(value)
	ta.Focus()

	return &TextStep{store: store, step: step, field: field, textarea: ta}
}

// Init initializes the step.
func (s *TextStep) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages for the step.
func (s *TextStep) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyPressMsg); ok && key.String() == "tab" {
		return func() tea.Msg { return TabExitForwardMsg{} }
	}

	var cmd tea.Cmd
	s.textarea, cmd = s.textarea.Update(msg)

	if current, _ := s.store.Get().Field(s.field); current != s.textarea.Value() {
		if err := s.store.EditField(s.step, s.field, s.textarea.Value()); err != nil {
			logger.Error("Failed to edit %s: %v", s.field, err)
		}
	}
	return cmd
}

// View renders the step content.
func (s *TextStep) View() string {
	st := theme.Current().S()
	box := st.InputFocused
	if !s.textarea.Focused() {
		box = st.Input
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		st.Label.Render(fieldTitle(s.field)),
		box.Render(s.textarea.View()),
	)
}

// SetSize updates the editor dimensions.
func (s *TextStep) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.textarea.SetWidth(max(20, width-4))
	s.textarea.SetHeight(max(4, height-4))
}

// Focus focuses the textarea.
func (s *TextStep) Focus() tea.Cmd {
	return s.textarea.Focus()
}

// Blur blurs the textarea.
func (s *TextStep) Blur() {
	s.textarea.Blur()
}

// Value returns the current text.
func (s *TextStep) Value() string {
	return s.textarea.Value()
}

func fieldTitle(field string) string {
	switch field {
	case wizard.FieldUniversalPrinciples:
		return "Universal principles"
	case wizard.FieldProjectContext:
		return "Project context"
	case wizard.FieldActivationRules:
		return "Activation rules"
	}
	return field
}
