package configwizard

import (
	"context"
	"errors"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/claudemd/internal/apikey"
	"github.com/mark3labs/claudemd/internal/tui/components"
	"github.com/mark3labs/claudemd/internal/tui/theme"
)

// API key screen buttons.
const (
	btnSetKey   = "set"
	btnTestKey  = "test"
	btnClearKey = "clear"
	btnContinue = "continue"
)

// APIKeyScreen lets the user enter, test and clear the session key.
type APIKeyScreen struct {
	ctx     context.Context
	keys    *apikey.Manager
	input   textinput.Model
	buttons *components.ButtonBar
	// buttonFocused is true while Tab focus is on the button row.
	buttonFocused bool
	revealed      bool
	testing       bool
	err           string
	status        string
	// notice explains why the screen was opened, e.g. a pending generation.
	notice string
	width  int
}

// NewAPIKeyScreen creates the screen.
func NewAPIKeyScreen(ctx context.Context, keys *apikey.Manager, notice string) *APIKeyScreen {
	ti := textinput.New()
	ti.Placeholder = "sk-ant-..."
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.CharLimit = 200
	ti.SetWidth(50)
	ti.Focus()

	s := &APIKeyScreen{
		ctx:    ctx,
		keys:   keys,
		input:  ti,
		notice: notice,
		width:  60,
		buttons: components.NewButtonBar(
			components.Button{ID: btnSetKey, Label: "Set API Key"},
			components.Button{ID: btnTestKey, Label: "Test Key"},
			components.Button{ID: btnClearKey, Label: "Clear Key"},
			components.Button{ID: btnContinue, Label: "Continue →"},
		),
	}
	s.refreshButtons()
	return s
}

// Init initializes the screen.
func (s *APIKeyScreen) Init() tea.Cmd {
	return textinput.Blink
}

func (s *APIKeyScreen) refreshButtons() {
	hasKey := s.keys.HasAPIKey()
	s.buttons.SetEnabled(btnSetKey, strings.TrimSpace(s.input.Value()) != "")
	s.buttons.SetEnabled(btnTestKey, hasKey && !s.testing)
	s.buttons.SetEnabled(btnClearKey, hasKey)
}

// Update handles messages for the screen.
func (s *APIKeyScreen) Update(msg tea.Msg) tea.Cmd {
	defer s.refreshButtons()

	switch msg := msg.(type) {
	case KeyTestedMsg:
		s.testing = false
		if msg.Valid {
			s.status = "✅ API key is valid"
			s.err = ""
		} else {
			s.status = ""
			s.err = "API key test failed. Check the key and its permissions."
		}
		return nil

	case tea.KeyPressMsg:
		if s.buttonFocused {
			return s.updateButtons(msg)
		}
		switch msg.String() {
		case "esc":
			return done
		case "tab":
			s.buttonFocused = true
			s.input.Blur()
			s.buttons.FocusFirst()
			return nil
		case "enter":
			return s.activate(btnSetKey)
		case "ctrl+r":
			s.revealed = !s.revealed
			if s.revealed {
				s.input.EchoMode = textinput.EchoNormal
			} else {
				s.input.EchoMode = textinput.EchoPassword
			}
			return nil
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return cmd
}

func (s *APIKeyScreen) updateButtons(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "right":
		if !s.buttons.FocusNext() {
			return s.focusInput()
		}
	case "shift+tab", "left":
		if !s.buttons.FocusPrev() {
			return s.focusInput()
		}
	case "esc":
		return s.focusInput()
	case "enter", "space", " ":
		return s.activate(s.buttons.FocusedButton())
	}
	return nil
}

func (s *APIKeyScreen) focusInput() tea.Cmd {
	s.buttonFocused = false
	s.buttons.Blur()
	return s.input.Focus()
}

func done() tea.Msg { return KeyScreenDoneMsg{} }

func (s *APIKeyScreen) activate(id string) tea.Cmd {
	switch id {
	case btnSetKey:
		if strings.TrimSpace(s.input.Value()) == "" {
			return nil
		}
		if err := s.keys.SetAPIKey(s.input.Value()); err != nil {
			var fe *apikey.FormatError
			if errors.As(err, &fe) {
				s.err = fe.Error()
			} else {
				s.err = err.Error()
			}
			s.status = ""
			return nil
		}
		s.input.SetValue("")
		s.err = ""
		s.status = "✅ API key is configured"
		return nil

	case btnTestKey:
		if !s.keys.HasAPIKey() || s.testing {
			return nil
		}
		s.testing = true
		s.status = "Testing key..."
		s.err = ""
		ctx, keys := s.ctx, s.keys
		return func() tea.Msg {
			return KeyTestedMsg{Valid: keys.TestAPIKey(ctx)}
		}

	case btnClearKey:
		s.keys.ClearAPIKey()
		s.status = "API key cleared"
		s.err = ""
		return nil

	case btnContinue:
		return done
	}
	return nil
}

// SetSize updates the screen width.
func (s *APIKeyScreen) SetSize(width, height int) {
	s.width = width
	s.input.SetWidth(max(20, width-6))
	s.buttons.SetWidth(width)
}

// View renders the screen.
func (s *APIKeyScreen) View() string {
	st := theme.Current().S()
	var b strings.Builder

	b.WriteString(st.Title.Render("Anthropic API Key"))
	b.WriteString("\n")
	b.WriteString(st.Description.Render("The key is held in memory for this session only."))
	b.WriteString("\n\n")

	if s.notice != "" {
		b.WriteString(st.WarningText.Render(s.notice))
		b.WriteString("\n\n")
	}

	meta := s.keys.Metadata()
	if key, ok := s.keys.APIKey(); ok {
		b.WriteString(st.SuccessText.Render("✅ API key is configured"))
		b.WriteString("  " + st.Muted.Render(apikey.Mask(key)))
		b.WriteString("\n")
	} else if meta.HasKey {
		b.WriteString(st.Muted.Render("A key with fingerprint " + meta.KeyHash + " was set in an earlier session. Enter it again to continue."))
		b.WriteString("\n")
	}
	if meta.LastUsed != nil {
		b.WriteString(st.Muted.Render("Last used: " + meta.LastUsed.Local().Format("2006-01-02 15:04")))
		b.WriteString("\n")
	}
	if s.keys.IsAPIKeyExpired() {
		b.WriteString(st.WarningText.Render("⚠ This key has not been used in over 30 days. Consider rotating it."))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	box := st.InputFocused
	if s.buttonFocused {
		box = st.Input
	}
	b.WriteString(box.Render(s.input.View()))
	b.WriteString("\n")

	if s.err != "" {
		b.WriteString(st.ErrorText.Render("✗ " + s.err))
		b.WriteString("\n")
	} else if s.status != "" {
		b.WriteString(st.SuccessText.Render(s.status))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	info := s.keys.SecurityInfo()
	b.WriteString(st.Label.Render("🔒 Security Information"))
	b.WriteString("\n")
	b.WriteString(st.Muted.Render("Storage: " + info.StorageMethod))
	b.WriteString("\n")
	b.WriteString(st.Muted.Render("Stored: " + info.DataStored))
	b.WriteString("\n")
	for _, r := range info.Recommendations {
		b.WriteString(st.Muted.Render("• " + r))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(s.buttons.Render())
	b.WriteString("\n")
	b.WriteString(components.RenderHintBar(
		"enter", "set",
		"ctrl+r", "reveal",
		"tab", "buttons",
		"esc", "continue",
	))
	return b.String()
}
