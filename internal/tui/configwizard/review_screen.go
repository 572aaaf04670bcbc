package configwizard

import (
	"fmt"
	"os"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/glamour/v2"
	"github.com/charmbracelet/x/editor"
	"github.com/mark3labs/claudemd/internal/generator"
	"github.com/mark3labs/claudemd/internal/logger"
	"github.com/mark3labs/claudemd/internal/tui/components"
	"github.com/mark3labs/claudemd/internal/tui/theme"
)

// Review screen buttons.
const (
	btnRegenerate = "regenerate"
	btnSave       = "save"
)

// ReviewScreen shows the generated document with its validation warnings.
type ReviewScreen struct {
	viewport   viewport.Model
	content    string
	validation generator.Validation
	outputPath string
	buttons    *components.ButtonBar
	// buttonFocused is true while Tab focus is on the button row.
	buttonFocused bool
	// confirmOverwrite shows the overwrite prompt for an existing output file.
	confirmOverwrite bool
	saveErr          string
	tmpFile          string
	edited           bool
	width            int
	height           int
}

// NewReviewScreen creates the screen for content.
func NewReviewScreen(content, outputPath string) *ReviewScreen {
	vp := viewport.New(
		viewport.WithWidth(60),
		viewport.WithHeight(10),
	)
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	s := &ReviewScreen{
		viewport:   vp,
		outputPath: outputPath,
		width:      60,
		height:     20,
		buttons: components.NewButtonBar(
			components.Button{ID: btnRegenerate, Label: "Regenerate"},
			components.Button{ID: btnSave, Label: "Save " + outputPath},
		),
	}
	s.setContent(content)
	return s
}

func (s *ReviewScreen) setContent(content string) {
	s.content = content
	s.validation = generator.ValidateGeneratedContent(content)
	s.viewport.SetContent(renderMarkdown(content, s.width))
	s.viewport.GotoTop()
}

// renderMarkdown renders markdown with glamour, falling back to the raw
// text when rendering fails.
func renderMarkdown(content string, width int) string {
	if width > 120 {
		width = 120
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimSuffix(rendered, "\n")
}

// Init initializes the screen.
func (s *ReviewScreen) Init() tea.Cmd {
	return nil
}

// SetSize updates the viewport and re-renders the document.
func (s *ReviewScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.viewport.SetWidth(width)

	// Warnings, buttons and hints take the rest.
	s.viewport.SetHeight(max(5, height-len(s.validation.Warnings)-6))
	s.viewport.SetContent(renderMarkdown(s.content, width))
	s.buttons.SetWidth(width)
}

// Update handles messages for the screen.
func (s *ReviewScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		if s.confirmOverwrite {
			switch msg.String() {
			case "y", "Y":
				s.confirmOverwrite = false
				return func() tea.Msg { return SaveMsg{} }
			case "n", "N", "esc":
				s.confirmOverwrite = false
			}
			return nil
		}

		if s.buttonFocused {
			switch msg.String() {
			case "tab", "right":
				if !s.buttons.FocusNext() {
					s.blurButtons()
				}
				return nil
			case "shift+tab", "left":
				if !s.buttons.FocusPrev() {
					s.blurButtons()
				}
				return nil
			case "esc":
				s.blurButtons()
				return nil
			case "enter", "space", " ":
				return s.activate(s.buttons.FocusedButton())
			}
		}

		switch msg.String() {
		case "tab":
			s.buttonFocused = true
			s.buttons.FocusFirst()
			return nil
		case "shift+tab":
			s.buttonFocused = true
			s.buttons.FocusLast()
			return nil
		case "e":
			if os.Getenv("EDITOR") != "" {
				return s.openEditor()
			}
		case "ctrl+s":
			return s.activate(btnSave)
		}

	case ContentEditedMsg:
		s.edited = true
		s.setContent(msg.Content)
		if s.tmpFile != "" {
			_ = os.Remove(s.tmpFile)
			s.tmpFile = ""
		}
		return nil

	case SaveErrorMsg:
		s.saveErr = msg.Err.Error()
		return nil
	}

	var cmd tea.Cmd
	s.viewport, cmd = s.viewport.Update(msg)
	return cmd
}

func (s *ReviewScreen) blurButtons() {
	s.buttonFocused = false
	s.buttons.Blur()
}

func (s *ReviewScreen) activate(id string) tea.Cmd {
	switch id {
	case btnRegenerate:
		return func() tea.Msg { return RegenerateMsg{} }
	case btnSave:
		s.saveErr = ""
		return func() tea.Msg { return CheckOutputMsg{} }
	}
	return nil
}

// ConfirmOverwrite shows the overwrite prompt.
func (s *ReviewScreen) ConfirmOverwrite() {
	s.confirmOverwrite = true
}

// openEditor launches $EDITOR on a temp copy of the document.
func (s *ReviewScreen) openEditor() tea.Cmd {
	tmpfile, err := os.CreateTemp("", "claudemd_*.md")
	if err != nil {
		logger.Warn("Failed to create temp file for editor: %v", err)
		return nil
	}
	if _, err := tmpfile.WriteString(s.content); err != nil {
		_ = tmpfile.Close()
		_ = os.Remove(tmpfile.Name())
		return nil
	}
	_ = tmpfile.Close()
	s.tmpFile = tmpfile.Name()

	cmd, err := editor.Command("claudemd", tmpfile.Name())
	if err != nil {
		_ = os.Remove(tmpfile.Name())
		s.tmpFile = ""
		return nil
	}

	path := tmpfile.Name()
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		if err != nil {
			logger.Warn("Editor exited with error: %v", err)
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		return ContentEditedMsg{Content: string(content)}
	})
}

// View renders the screen.
func (s *ReviewScreen) View() string {
	if s.confirmOverwrite {
		return components.RenderConfirmation(
			"Overwrite existing file?",
			fmt.Sprintf("%s already exists. Saving replaces its contents.", s.outputPath),
		)
	}

	st := theme.Current().S()
	var b strings.Builder

	b.WriteString(s.viewport.View())
	b.WriteString("\n\n")

	lines := st.Muted.Render(fmt.Sprintf("%d lines", s.validation.LineCount))
	if s.edited {
		lines += st.Muted.Render(" • edited")
	}
	b.WriteString(lines)
	b.WriteString("\n")
	if s.validation.IsValid {
		b.WriteString(st.SuccessText.Render("✓ Looks complete"))
		b.WriteString("\n")
	}
	for _, w := range s.validation.Warnings {
		b.WriteString(st.WarningText.Render("⚠ " + w))
		b.WriteString("\n")
	}
	if s.saveErr != "" {
		b.WriteString(st.ErrorText.Render("✗ " + s.saveErr))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(s.buttons.Render())
	b.WriteString("\n")

	pairs := []string{"↑↓", "scroll"}
	if os.Getenv("EDITOR") != "" {
		pairs = append(pairs, "e", "edit")
	}
	pairs = append(pairs, "ctrl+s", "save", "tab", "buttons", "esc", "back")
	b.WriteString(components.RenderHintBar(pairs...))
	return b.String()
}

// Content returns the current (possibly edited) document.
func (s *ReviewScreen) Content() string {
	return s.content
}

// WasEdited reports whether the document was changed in the editor.
func (s *ReviewScreen) WasEdited() bool {
	return s.edited
}

// CapturesEsc reports whether esc is handled by the screen itself rather
// than meaning "back".
func (s *ReviewScreen) CapturesEsc() bool {
	return s.confirmOverwrite || s.buttonFocused
}
