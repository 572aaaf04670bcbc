package components

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backNext() *ButtonBar {
	return NewButtonBar(
		Button{ID: "back", Label: "← Back"},
		Button{ID: "next", Label: "Next →"},
	)
}

func TestButtonBar_FocusMovement(t *testing.T) {
	bar := backNext()
	assert.False(t, bar.IsFocused())
	assert.Equal(t, "", bar.FocusedButton())
	assert.False(t, bar.FocusPrev(), "unfocused bar cannot move left")

	require.True(t, bar.FocusFirst())
	assert.Equal(t, "back", bar.FocusedButton())

	assert.True(t, bar.FocusNext())
	assert.Equal(t, "next", bar.FocusedButton())
	assert.False(t, bar.FocusNext(), "no button past the last")
	assert.Equal(t, "next", bar.FocusedButton())

	assert.True(t, bar.FocusPrev())
	assert.Equal(t, "back", bar.FocusedButton())

	bar.Blur()
	assert.False(t, bar.IsFocused())
}

func TestButtonBar_DisabledButtonsAreSkipped(t *testing.T) {
	bar := backNext()
	bar.SetEnabled("back", false)
	assert.False(t, bar.Enabled("back"))
	assert.True(t, bar.Enabled("next"))
	assert.False(t, bar.Enabled("missing"))

	require.True(t, bar.FocusFirst())
	assert.Equal(t, "next", bar.FocusedButton())
	assert.False(t, bar.FocusPrev())

	bar.SetEnabled("next", false)
	assert.False(t, bar.IsFocused(), "focus drops when every button is disabled")
	assert.False(t, bar.FocusLast())

	bar.SetEnabled("back", true)
	require.True(t, bar.FocusLast())
	assert.Equal(t, "back", bar.FocusedButton())
}

func TestButtonBar_Render(t *testing.T) {
	bar := backNext()
	bar.SetWidth(40)
	out := bar.Render()
	assert.Contains(t, out, "← Back")
	assert.Contains(t, out, "Next →")
	assert.Equal(t, "", NewButtonBar().Render())
}

func TestRenderHintBar(t *testing.T) {
	out := RenderHintBar("tab", "buttons", "esc", "back")
	assert.Contains(t, out, "tab")
	assert.Contains(t, out, "buttons")
	assert.Equal(t, 1, strings.Count(out, "•"))
	assert.Equal(t, "", RenderHintBar("odd"))
}

func TestRenderConfirmation(t *testing.T) {
	out := RenderConfirmation("Overwrite file?", "CLAUDE.md already exists.")
	assert.Contains(t, out, "Overwrite file?")
	assert.Contains(t, out, "already exists")
	assert.Contains(t, out, "Press Y to confirm")
}
