// Package components holds small widgets shared by claudemd's TUI screens.
package components

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mark3labs/claudemd/internal/tui/theme"
)

// ButtonState represents the visual state of a button.
type ButtonState int

const (
	ButtonNormal   ButtonState = iota // Normal state (enabled)
	ButtonDisabled                    // Disabled state (grayed out)
)

// Button is a single labelled action. ID is returned by FocusedButton.
type Button struct {
	ID    string
	Label string
	State ButtonState
}

// ButtonBar is a row of buttons with keyboard focus. Disabled buttons are
// skipped when moving focus and never reported as focused.
type ButtonBar struct {
	buttons []Button
	focus   int // -1 when the bar does not hold focus
	width   int
}

// NewButtonBar creates a new button bar with the given buttons.
func NewButtonBar(buttons ...Button) *ButtonBar {
	return &ButtonBar{buttons: buttons, focus: -1, width: 60}
}

// SetWidth updates the width the bar is centered in.
func (b *ButtonBar) SetWidth(width int) {
	b.width = width
}

// SetEnabled enables or disables the button with id. A focused button that
// becomes disabled loses focus to the next enabled one.
func (b *ButtonBar) SetEnabled(id string, enabled bool) {
	for i := range b.buttons {
		if b.buttons[i].ID != id {
			continue
		}
		b.buttons[i].State = ButtonNormal
		if !enabled {
			b.buttons[i].State = ButtonDisabled
		}
		if !enabled && b.focus == i && !b.FocusNext() && !b.FocusPrev() {
			b.focus = -1
		}
	}
}

// Enabled reports whether the button with id exists and is enabled.
func (b *ButtonBar) Enabled(id string) bool {
	for _, btn := range b.buttons {
		if btn.ID == id {
			return btn.State != ButtonDisabled
		}
	}
	return false
}

// IsFocused reports whether any button holds focus.
func (b *ButtonBar) IsFocused() bool {
	return b.focus >= 0
}

// FocusedButton returns the ID of the focused button, or "".
func (b *ButtonBar) FocusedButton() string {
	if b.focus < 0 {
		return ""
	}
	return b.buttons[b.focus].ID
}

// FocusFirst focuses the first enabled button.
func (b *ButtonBar) FocusFirst() bool {
	return b.focusFrom(0, 1)
}

// FocusLast focuses the last enabled button.
func (b *ButtonBar) FocusLast() bool {
	return b.focusFrom(len(b.buttons)-1, -1)
}

// FocusNext moves focus right. It returns false, leaving focus unchanged,
// when there is no enabled button further right.
func (b *ButtonBar) FocusNext() bool {
	return b.focusFrom(b.focus+1, 1)
}

// FocusPrev moves focus left. It returns false when there is no enabled
// button further left. Calling it on an unfocused bar is a no-op.
func (b *ButtonBar) FocusPrev() bool {
	if b.focus < 0 {
		return false
	}
	return b.focusFrom(b.focus-1, -1)
}

// Blur removes focus from the bar.
func (b *ButtonBar) Blur() {
	b.focus = -1
}

func (b *ButtonBar) focusFrom(start, dir int) bool {
	for i := start; i >= 0 && i < len(b.buttons); i += dir {
		if b.buttons[i].State != ButtonDisabled {
			b.focus = i
			return true
		}
	}
	return false
}

// Render renders the bar centered in its width.
func (b *ButtonBar) Render() string {
	if len(b.buttons) == 0 {
		return ""
	}

	s := theme.Current().S()
	rendered := make([]string, 0, len(b.buttons))
	for i, btn := range b.buttons {
		switch {
		case btn.State == ButtonDisabled:
			rendered = append(rendered, s.ButtonDisabled.Render(btn.Label))
		case i == b.focus:
			rendered = append(rendered, s.ButtonFocused.Render(btn.Label))
		default:
			rendered = append(rendered, s.ButtonNormal.Render(btn.Label))
		}
	}

	return lipgloss.PlaceHorizontal(b.width, lipgloss.Center, strings.Join(rendered, ""))
}
