package configwizard

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mark3labs/claudemd/internal/logger"
	"github.com/mark3labs/claudemd/internal/template"
	"github.com/mark3labs/claudemd/internal/tui/components"
	"github.com/mark3labs/claudemd/internal/tui/theme"
	"github.com/mark3labs/claudemd/internal/wizard"
)

// personaField is one row of the persona form.
type personaField struct {
	name        string
	label       string
	placeholder string
}

var personaFields = []personaField{
	{wizard.PersonaName, "Name", "e.g. Code Reviewer"},
	{wizard.PersonaRole, "Role", "e.g. Reviews every change before merge"},
	{wizard.PersonaExpertiseLevel, "Expertise", ""},
	{wizard.PersonaCorePrinciples, "Core principles", "What this persona never compromises on"},
	{wizard.PersonaTechExpertise, "Tech expertise", "Languages, frameworks, tools"},
	{wizard.PersonaCommunicationStyle, "Communication", "Terse, Socratic, detailed..."},
	{wizard.PersonaSpecificStandards, "Standards", "Concrete rules this persona enforces"},
}

const expertiseRow = 2

// PersonaStep edits the persona list one persona at a time.
type PersonaStep struct {
	store   *wizard.Store
	current int
	focus   int
	inputs  []textinput.Model // indexed like personaFields; the expertise slot is unused
	touched map[string]bool
	// showErrors reveals every inline error, set after a rejected Next.
	showErrors bool
	width      int
}

// NewPersonaStep creates the editor positioned on the first persona.
func NewPersonaStep(store *wizard.Store) *PersonaStep {
	s := &PersonaStep{store: store, touched: map[string]bool{}, width: 60}
	s.inputs = make([]textinput.Model, len(personaFields))
	for i, f := range personaFields {
		ti := textinput.New()
		ti.Placeholder = f.placeholder
		ti.CharLimit = 500
		ti.SetWidth(40)
		s.inputs[i] = ti
	}
	s.load()
	s.inputs[0].Focus()
	return s
}

// load copies the current persona's values into the inputs.
func (s *PersonaStep) load() {
	personas := s.store.Get().Personas
	if s.current >= len(personas) {
		s.current = len(personas) - 1
	}
	p := personas[s.current]
	for i, f := range personaFields {
		if i == expertiseRow {
			continue
		}
		v, _ := p.Field(f.name)
		s.inputs[i].SetValue(v)
	}
	s.touched = map[string]bool{}
}

// Init initializes the step.
func (s *PersonaStep) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the step.
func (s *PersonaStep) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return s.updateInput(msg)
	}

	switch key.String() {
	case "tab":
		return func() tea.Msg { return TabExitForwardMsg{} }
	case "down":
		return s.setFocus(s.focus + 1)
	case "up":
		return s.setFocus(s.focus - 1)
	case "ctrl+n":
		s.current = s.store.AddPersona()
		s.load()
		logger.Debug("Added persona %d", s.current+1)
		return s.setFocus(0)
	case "ctrl+x":
		s.store.RemovePersona(s.current)
		s.load()
		return s.setFocus(0)
	case "ctrl+right":
		return s.switchPersona(s.current + 1)
	case "ctrl+left":
		return s.switchPersona(s.current - 1)
	}

	if s.focus == expertiseRow {
		switch key.String() {
		case "enter", "space", " ", "right":
			p := s.store.Get().Personas[s.current]
			next := string(p.ExpertiseLevel.Next())
			if err := s.store.SetPersonaField(s.current, wizard.PersonaExpertiseLevel, next); err != nil {
				logger.Error("Failed to cycle expertise: %v", err)
			}
		}
		return nil
	}

	return s.updateInput(msg)
}

func (s *PersonaStep) updateInput(msg tea.Msg) tea.Cmd {
	if s.focus == expertiseRow {
		return nil
	}
	var cmd tea.Cmd
	s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)

	field := personaFields[s.focus].name
	value := s.inputs[s.focus].Value()
	if current, _ := s.store.Get().Personas[s.current].Field(field); current != value {
		s.touched[field] = true
		if err := s.store.SetPersonaField(s.current, field, value); err != nil {
			logger.Error("Failed to set persona %s: %v", field, err)
		}
	}
	return cmd
}

func (s *PersonaStep) switchPersona(index int) tea.Cmd {
	count := len(s.store.Get().Personas)
	if index < 0 || index >= count {
		return nil
	}
	s.current = index
	s.load()
	return s.setFocus(0)
}

func (s *PersonaStep) setFocus(index int) tea.Cmd {
	if index < 0 || index >= len(personaFields) {
		return nil
	}
	if s.focus != expertiseRow {
		s.inputs[s.focus].Blur()
	}
	s.focus = index
	if index == expertiseRow {
		return nil
	}
	return s.inputs[index].Focus()
}

// Focus returns focus to the current field.
func (s *PersonaStep) Focus() tea.Cmd {
	return s.setFocus(s.focus)
}

// Blur blurs the focused input.
func (s *PersonaStep) Blur() {
	if s.focus != expertiseRow {
		s.inputs[s.focus].Blur()
	}
}

// ShowErrors reveals inline errors for untouched fields.
func (s *PersonaStep) ShowErrors() {
	s.showErrors = true
}

// Current returns the index of the persona being edited.
func (s *PersonaStep) Current() int {
	return s.current
}

// SetSize updates the form width.
func (s *PersonaStep) SetSize(width, height int) {
	s.width = width
	for i := range s.inputs {
		s.inputs[i].SetWidth(max(20, width-22))
	}
}

// View renders the persona tabs and the form for the current persona.
func (s *PersonaStep) View() string {
	st := theme.Current().S()
	state := s.store.Get()
	p := state.Personas[s.current]

	errs := map[string]string{}
	for _, fe := range wizard.ValidatePersona(p, s.current) {
		if s.showErrors || s.touched[fe.Field] {
			errs[fe.Field] = fe.Message
		}
	}

	var b strings.Builder
	b.WriteString(s.renderTabs(state.Personas))
	b.WriteString("\n\n")

	labelStyle := st.Label.Width(16)
	for i, f := range personaFields {
		var value string
		switch {
		case i == expertiseRow:
			value = string(p.ExpertiseLevel)
			if s.focus == expertiseRow {
				value = st.Value.Render("‹ " + value + " ›")
			} else {
				value = st.Muted.Render(value)
			}
		default:
			value = s.inputs[i].View()
		}

		marker := "  "
		if i == s.focus {
			marker = st.Value.Render("▸ ")
		}
		b.WriteString(marker + labelStyle.Render(f.label) + value + "\n")
		if msg, ok := errs[f.name]; ok {
			b.WriteString(strings.Repeat(" ", 18) + st.ErrorText.Render("✗ "+msg) + "\n")
		}
	}

	if handle := template.Handle(p.Name); handle != "" {
		b.WriteString("\n" + st.Muted.Render("Activation handle: ") + st.Value.Render(handle) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(components.RenderHintBar(
		"↑↓", "field",
		"ctrl+←→", "persona",
		"ctrl+n", "add",
		"ctrl+x", "remove",
		"space", "expertise",
	))
	return b.String()
}

func (s *PersonaStep) renderTabs(personas []wizard.Persona) string {
	st := theme.Current().S()
	tabs := make([]string, len(personas))
	for i, p := range personas {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			name = fmt.Sprintf("Persona %d", i+1)
		}
		if i == s.current {
			tabs[i] = st.ButtonFocused.Render(name)
		} else {
			tabs[i] = st.ButtonNormal.Render(name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}
