package configwizard

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/claudemd/internal/apikey"
	"github.com/mark3labs/claudemd/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct{ valid bool }

func (f fakeVerifier) TestKey(context.Context, string) (bool, error) { return f.valid, nil }

func typeInto(update func(tea.Msg) tea.Cmd, s string) {
	for _, r := range s {
		update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func TestTextStep_WritesThrough(t *testing.T) {
	store := wizard.NewStore()
	step := NewTextStep(store, wizard.StepUniversalPrinciples)

	typeInto(step.Update, "Ship small")
	assert.Equal(t, "Ship small", store.Get().UniversalPrinciples)
	assert.Equal(t, "Ship small", step.Value())

	cmd := step.Update(press("tab"))
	require.NotNil(t, cmd)
	assert.IsType(t, TabExitForwardMsg{}, cmd())
	assert.Equal(t, "Ship small", store.Get().UniversalPrinciples, "tab is not inserted")
}

func TestTextStep_LoadsExistingValue(t *testing.T) {
	store := wizard.NewStoreFrom(wizard.State{ProjectContext: "A Go CLI"})
	step := NewTextStep(store, wizard.StepProjectContext)
	assert.Equal(t, "A Go CLI", step.Value())
	assert.Contains(t, step.View(), "Project context")
}

func TestPersonaStep_EditsFields(t *testing.T) {
	store := wizard.NewStore()
	step := NewPersonaStep(store)

	typeInto(step.Update, "Reviewer")
	step.Update(press("down"))
	typeInto(step.Update, "Reviews diffs")

	p := store.Get().Personas[0]
	assert.Equal(t, "Reviewer", p.Name)
	assert.Equal(t, "Reviews diffs", p.Role)
}

func TestPersonaStep_CyclesExpertise(t *testing.T) {
	store := wizard.NewStore()
	step := NewPersonaStep(store)
	start := store.Get().Personas[0].ExpertiseLevel

	step.Update(press("down"))
	step.Update(press("down"))
	require.Equal(t, expertiseRow, step.focus)
	step.Update(press("enter"))

	assert.Equal(t, start.Next(), store.Get().Personas[0].ExpertiseLevel)
}

func TestPersonaStep_AddSwitchRemove(t *testing.T) {
	store := wizard.NewStore()
	step := NewPersonaStep(store)
	typeInto(step.Update, "First")

	step.Update(tea.KeyPressMsg{Code: 'n', Mod: tea.ModCtrl})
	require.Len(t, store.Get().Personas, 2)
	assert.Equal(t, 1, step.Current())
	typeInto(step.Update, "Second")

	step.Update(tea.KeyPressMsg{Code: tea.KeyLeft, Mod: tea.ModCtrl})
	assert.Equal(t, 0, step.Current())
	assert.Equal(t, "First", step.inputs[0].Value())

	step.Update(tea.KeyPressMsg{Code: 'x', Mod: tea.ModCtrl})
	personas := store.Get().Personas
	require.Len(t, personas, 1)
	assert.Equal(t, "Second", personas[0].Name)

	// The last persona cannot be removed.
	step.Update(tea.KeyPressMsg{Code: 'x', Mod: tea.ModCtrl})
	assert.Len(t, store.Get().Personas, 1)
}

func TestPersonaStep_InlineErrors(t *testing.T) {
	store := wizard.NewStore()
	step := NewPersonaStep(store)
	assert.NotContains(t, step.View(), "Name is required")

	step.ShowErrors()
	view := step.View()
	assert.Contains(t, view, "Name is required")
	assert.Contains(t, view, "Role is required")
}

func TestAPIKeyScreen_SetKey(t *testing.T) {
	keys := apikey.NewManager(nil, nil)
	s := NewAPIKeyScreen(context.Background(), keys, "")
	assert.False(t, s.buttons.Enabled(btnSetKey))
	assert.False(t, s.buttons.Enabled(btnTestKey))

	typeInto(s.Update, "not-a-key")
	assert.True(t, s.buttons.Enabled(btnSetKey))
	s.Update(press("enter"))
	assert.False(t, keys.HasAPIKey())
	assert.Contains(t, s.View(), `Anthropic API keys should start with "sk-ant-"`)

	s.input.SetValue("")
	typeInto(s.Update, testKey)
	s.Update(press("enter"))
	assert.True(t, keys.HasAPIKey())
	assert.Empty(t, s.input.Value())
	assert.Contains(t, s.View(), "API key is configured")
	assert.True(t, s.buttons.Enabled(btnTestKey))
	assert.True(t, s.buttons.Enabled(btnClearKey))
}

func TestAPIKeyScreen_TestKey(t *testing.T) {
	keys := apikey.NewManager(nil, fakeVerifier{valid: true})
	require.NoError(t, keys.SetAPIKey(testKey))
	s := NewAPIKeyScreen(context.Background(), keys, "")

	cmd := s.activate(btnTestKey)
	require.NotNil(t, cmd)
	assert.True(t, s.testing)
	assert.Nil(t, s.activate(btnTestKey), "no second test while one is running")
	s.refreshButtons()
	assert.False(t, s.buttons.Enabled(btnTestKey))

	s.Update(cmd())
	assert.False(t, s.testing)
	assert.Contains(t, s.View(), "API key is valid")

	s.Update(KeyTestedMsg{Valid: false})
	assert.Contains(t, s.View(), "API key test failed")
}

func TestAPIKeyScreen_ClearAndLeave(t *testing.T) {
	keys := apikey.NewManager(nil, nil)
	require.NoError(t, keys.SetAPIKey(testKey))
	s := NewAPIKeyScreen(context.Background(), keys, "")

	s.activate(btnClearKey)
	assert.False(t, keys.HasAPIKey())

	cmd := s.Update(press("esc"))
	require.NotNil(t, cmd)
	assert.IsType(t, KeyScreenDoneMsg{}, cmd())
}

func TestAPIKeyScreen_Reveal(t *testing.T) {
	s := NewAPIKeyScreen(context.Background(), apikey.NewManager(nil, nil), "")
	s.Update(tea.KeyPressMsg{Code: 'r', Mod: tea.ModCtrl})
	assert.True(t, s.revealed)
	s.Update(tea.KeyPressMsg{Code: 'r', Mod: tea.ModCtrl})
	assert.False(t, s.revealed)
}

func TestReviewScreen_Validation(t *testing.T) {
	s := NewReviewScreen("# Short", "CLAUDE.md")
	view := s.View()
	assert.Contains(t, view, "Missing expected keyword: persona")
	assert.Contains(t, view, "Save CLAUDE.md")
}

func TestReviewScreen_Buttons(t *testing.T) {
	s := NewReviewScreen("# Doc", "CLAUDE.md")

	s.Update(press("tab"))
	assert.True(t, s.CapturesEsc())
	assert.Equal(t, btnRegenerate, s.buttons.FocusedButton())
	cmd := s.Update(press("enter"))
	require.NotNil(t, cmd)
	assert.IsType(t, RegenerateMsg{}, cmd())

	s.Update(press("tab"))
	cmd = s.Update(press("enter"))
	require.NotNil(t, cmd)
	assert.IsType(t, CheckOutputMsg{}, cmd())

	s.Update(press("esc"))
	assert.False(t, s.CapturesEsc())
}

func TestReviewScreen_ConfirmCancel(t *testing.T) {
	s := NewReviewScreen("# Doc", "CLAUDE.md")
	s.ConfirmOverwrite()
	assert.Nil(t, s.Update(press("n")))
	assert.False(t, s.CapturesEsc())
}

func TestCompletionScreen(t *testing.T) {
	s := NewCompletionScreen("/tmp/CLAUDE.md", "/tmp/history/x.md")
	view := s.View()
	assert.Contains(t, view, "CLAUDE.md Saved!")
	assert.Contains(t, view, "/tmp/history/x.md")

	cmd := s.Update(press("enter"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	s.Update(press("tab"))
	cmd = s.Update(press("enter"))
	require.NotNil(t, cmd)
	assert.IsType(t, StartOverMsg{}, cmd())
}
