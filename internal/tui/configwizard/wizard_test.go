package configwizard

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/claudemd/internal/apikey"
	"github.com/mark3labs/claudemd/internal/gateway"
	"github.com/mark3labs/claudemd/internal/generator"
	"github.com/mark3labs/claudemd/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "sk-ant-REDACTED"

type stubClient struct {
	result gateway.Result
	calls  int
}

func (s *stubClient) Generate(_ context.Context, _, _ string) gateway.Result {
	s.calls++
	return s.result
}

func press(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "pgdown":
		return tea.KeyPressMsg{Code: tea.KeyPgDown}
	case "pgup":
		return tea.KeyPressMsg{Code: tea.KeyPgUp}
	case "ctrl+c":
		return tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl}
	}
	return tea.KeyPressMsg{Text: s}
}

// typeText sends one key press per rune.
func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

// runCmd executes cmd and any batch it expands to, returning the
// resulting messages. Nested ticks are not followed.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			if c != nil {
				out = append(out, c())
			}
		}
		return out
	}
	return []tea.Msg{msg}
}

// find returns the first message of type T.
func find[T tea.Msg](t *testing.T, msgs []tea.Msg) T {
	t.Helper()
	for _, msg := range msgs {
		if v, ok := msg.(T); ok {
			return v
		}
	}
	var zero T
	t.Fatalf("no %T in %v", zero, msgs)
	return zero
}

func completeState() wizard.State {
	return wizard.State{
		CurrentStep:         wizard.LastStep,
		UniversalPrinciples: "Be precise",
		Personas: []wizard.Persona{
			{Name: "Architect", Role: "Design", ExpertiseLevel: wizard.ExpertiseSenior},
		},
		ProjectContext:  "A Go CLI",
		ActivationRules: "Architect for design",
	}
}

type fixture struct {
	model  *Model
	deps   Deps
	client *stubClient
}

func newFixture(t *testing.T, store *wizard.Store, withKey bool, result gateway.Result) *fixture {
	t.Helper()
	keys := apikey.NewManager(nil, nil)
	if withKey {
		require.NoError(t, keys.SetAPIKey(testKey))
	}
	client := &stubClient{result: result}
	dir := t.TempDir()
	deps := Deps{
		Store:      store,
		Keys:       keys,
		Generator:  generator.New(client, keys),
		OutputPath: filepath.Join(dir, "CLAUDE.md"),
		HistoryDir: filepath.Join(dir, "history"),
	}
	m := New(context.Background(), deps)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return &fixture{model: m, deps: deps, client: client}
}

func TestNew_StartScreen(t *testing.T) {
	f := newFixture(t, wizard.NewStore(), false, gateway.Result{})
	assert.Equal(t, screenAPIKey, f.model.screen)

	f = newFixture(t, wizard.NewStore(), true, gateway.Result{})
	assert.Equal(t, screenSteps, f.model.screen)
	assert.NotNil(t, f.model.textStep)
	assert.False(t, f.model.buttons.Enabled(btnBack))
	assert.False(t, f.model.buttons.Enabled(btnNext))
}

func TestKeyScreenDone_ReturnsToSteps(t *testing.T) {
	f := newFixture(t, wizard.NewStore(), false, gateway.Result{})
	f.model.Update(KeyScreenDoneMsg{})
	assert.Equal(t, screenSteps, f.model.screen)
	assert.Nil(t, f.model.keyScreen)
}

func TestWalkthrough_GenerateAndSave(t *testing.T) {
	content := "# CLAUDE.md\n\nUniversal persona activation project"
	store := wizard.NewStore()
	f := newFixture(t, store, true, gateway.Result{Success: true, Content: content})
	m := f.model

	typeText(m, "Be precise")
	assert.True(t, m.buttons.Enabled(btnNext))
	m.Update(press("pgdown"))
	require.Equal(t, wizard.StepPersonas, store.Get().CurrentStep)
	require.NotNil(t, m.personaStep)

	typeText(m, "Architect")
	m.Update(press("down"))
	typeText(m, "Design")
	assert.Equal(t, "Architect", store.Get().Personas[0].Name)
	assert.Equal(t, "Design", store.Get().Personas[0].Role)
	m.Update(press("pgdown"))
	require.Equal(t, wizard.StepProjectContext, store.Get().CurrentStep)

	typeText(m, "A Go CLI")
	m.Update(press("pgdown"))
	require.Equal(t, wizard.StepActivationRules, store.Get().CurrentStep)
	assert.Contains(t, m.renderSteps(), "Generate CLAUDE.md")

	typeText(m, "Architect for design")
	_, cmd := m.Update(press("pgdown"))
	assert.Equal(t, screenGenerating, m.screen)

	generated := find[GeneratedMsg](t, runCmd(cmd))
	assert.Equal(t, 1, f.client.calls)
	m.Update(generated)
	require.Equal(t, screenReview, m.screen)
	assert.Equal(t, content, m.review.Content())

	_, cmd = m.Update(tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl})
	check := find[CheckOutputMsg](t, runCmd(cmd))
	_, cmd = m.Update(check)
	save := find[SaveMsg](t, runCmd(cmd))
	_, cmd = m.Update(save)
	saved := find[SavedMsg](t, runCmd(cmd))
	m.Update(saved)

	assert.Equal(t, screenComplete, m.screen)
	data, err := os.ReadFile(f.deps.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
	assert.True(t, strings.HasPrefix(saved.HistoryPath, f.deps.HistoryDir))
	assert.Equal(t, f.deps.OutputPath, m.result.SavedPath)
}

func TestNext_BlockedShowsErrors(t *testing.T) {
	store := wizard.NewStore()
	f := newFixture(t, store, true, gateway.Result{})

	f.model.Update(press("pgdown"))
	assert.Equal(t, wizard.StepUniversalPrinciples, store.Get().CurrentStep)
	assert.Equal(t, []string{"Universal principles is required"}, f.model.stepErrors)
	assert.Contains(t, f.model.renderSteps(), "Universal principles is required")
}

func TestPersonaStep_NextRevealsInlineErrors(t *testing.T) {
	store := wizard.NewStoreFrom(wizard.State{CurrentStep: wizard.StepPersonas, UniversalPrinciples: "x"})
	f := newFixture(t, store, true, gateway.Result{})

	f.model.Update(press("pgdown"))
	assert.Equal(t, wizard.StepPersonas, store.Get().CurrentStep)
	assert.Equal(t, []string{"persona 1: Name is required", "persona 1: Role is required"}, f.model.stepErrors)
	assert.True(t, f.model.personaStep.showErrors)
}

func TestBack(t *testing.T) {
	st := completeState()
	st.CurrentStep = wizard.StepProjectContext
	store := wizard.NewStoreFrom(st)
	f := newFixture(t, store, true, gateway.Result{})

	f.model.Update(press("pgup"))
	assert.Equal(t, wizard.StepPersonas, store.Get().CurrentStep)
	f.model.Update(press("esc"))
	assert.Equal(t, wizard.StepUniversalPrinciples, store.Get().CurrentStep)
	assert.False(t, f.model.cancelled)
}

func TestEsc_OnFirstStepCancels(t *testing.T) {
	f := newFixture(t, wizard.NewStore(), true, gateway.Result{})
	_, cmd := f.model.Update(press("esc"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, f.model.cancelled)
}

func TestCtrlC_Cancels(t *testing.T) {
	f := newFixture(t, wizard.NewStoreFrom(completeState()), true, gateway.Result{})
	_, cmd := f.model.Update(press("ctrl+c"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, f.model.cancelled)
}

func TestTab_MovesFocusToButtons(t *testing.T) {
	f := newFixture(t, wizard.NewStoreFrom(completeState()), true, gateway.Result{})
	m := f.model

	_, cmd := m.Update(press("tab"))
	m.Update(find[TabExitForwardMsg](t, runCmd(cmd)))
	assert.True(t, m.buttonFocused)
	assert.Equal(t, btnBack, m.buttons.FocusedButton())

	m.Update(press("tab"))
	assert.Equal(t, btnNext, m.buttons.FocusedButton())
	m.Update(press("tab"))
	assert.False(t, m.buttonFocused, "tab past the last button returns to the editor")
}

func TestGenerationFailure_ShowsDismissibleError(t *testing.T) {
	store := wizard.NewStoreFrom(completeState())
	f := newFixture(t, store, true, gateway.Result{Error: "Invalid API key"})
	m := f.model

	_, cmd := m.Update(press("pgdown"))
	m.Update(find[GeneratedMsg](t, runCmd(cmd)))

	assert.Equal(t, screenSteps, m.screen)
	assert.Equal(t, wizard.LastStep, store.Get().CurrentStep)
	assert.Contains(t, m.renderSteps(), "Generation failed: Invalid API key")

	m.Update(press("esc"))
	assert.Empty(t, store.Get().GenerationError)
	assert.Equal(t, wizard.LastStep, store.Get().CurrentStep, "esc only dismissed the error")
}

func TestGenerate_WithoutKeyDetoursThroughKeyScreen(t *testing.T) {
	store := wizard.NewStoreFrom(completeState())
	f := newFixture(t, store, true, gateway.Result{Success: true, Content: "# Doc"})
	m := f.model
	f.deps.Keys.ClearAPIKey()

	m.Update(press("pgdown"))
	require.Equal(t, screenAPIKey, m.screen)
	assert.Contains(t, m.keyScreen.View(), "Set your Anthropic API key to generate CLAUDE.md.")
	assert.Equal(t, 0, f.client.calls)

	require.NoError(t, f.deps.Keys.SetAPIKey(testKey))
	_, cmd := m.Update(KeyScreenDoneMsg{})
	assert.Equal(t, screenGenerating, m.screen)
	m.Update(find[GeneratedMsg](t, runCmd(cmd)))
	assert.Equal(t, screenReview, m.screen)
}

func TestCtrlK_OpensKeyScreen(t *testing.T) {
	f := newFixture(t, wizard.NewStore(), true, gateway.Result{})
	f.model.Update(tea.KeyPressMsg{Code: 'k', Mod: tea.ModCtrl})
	assert.Equal(t, screenAPIKey, f.model.screen)
}

func TestSave_ExistingFileNeedsConfirmation(t *testing.T) {
	store := wizard.NewStoreFrom(completeState())
	f := newFixture(t, store, true, gateway.Result{Success: true, Content: "# New"})
	m := f.model
	require.NoError(t, os.WriteFile(f.deps.OutputPath, []byte("# Old"), 0o644))

	_, cmd := m.Update(press("pgdown"))
	m.Update(find[GeneratedMsg](t, runCmd(cmd)))

	_, cmd = m.Update(CheckOutputMsg{})
	assert.Nil(t, cmd)
	assert.True(t, m.review.CapturesEsc())
	assert.Contains(t, m.review.View(), "Overwrite existing file?")

	_, cmd = m.Update(press("y"))
	_, cmd = m.Update(find[SaveMsg](t, runCmd(cmd)))
	m.Update(find[SavedMsg](t, runCmd(cmd)))

	data, err := os.ReadFile(f.deps.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "# New", string(data))
}

func TestReview_EditedContentIsSaved(t *testing.T) {
	store := wizard.NewStoreFrom(completeState())
	f := newFixture(t, store, true, gateway.Result{Success: true, Content: "# Generated"})
	m := f.model

	_, cmd := m.Update(press("pgdown"))
	m.Update(find[GeneratedMsg](t, runCmd(cmd)))
	m.Update(ContentEditedMsg{Content: "# Edited"})

	assert.Equal(t, "# Edited", store.Get().GeneratedContent)
	assert.True(t, m.review.WasEdited())

	_, cmd = m.Update(SaveMsg{})
	m.Update(find[SavedMsg](t, runCmd(cmd)))
	data, err := os.ReadFile(f.deps.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "# Edited", string(data))
}

func TestReview_EscReturnsToLastStep(t *testing.T) {
	store := wizard.NewStoreFrom(completeState())
	f := newFixture(t, store, true, gateway.Result{Success: true, Content: "# Doc"})
	m := f.model

	_, cmd := m.Update(press("pgdown"))
	m.Update(find[GeneratedMsg](t, runCmd(cmd)))
	m.Update(press("esc"))
	assert.Equal(t, screenSteps, m.screen)
	assert.Equal(t, "# Doc", store.Get().GeneratedContent)
}

func TestSaveError_StaysOnReview(t *testing.T) {
	store := wizard.NewStoreFrom(completeState())
	f := newFixture(t, store, true, gateway.Result{Success: true, Content: "# Doc"})
	m := f.model
	m.deps.OutputPath = filepath.Join(t.TempDir(), "missing", "dir", "CLAUDE.md")
	m.deps.HistoryDir = ""
	// Make the parent unwritable by occupying it with a file.
	require.NoError(t, os.WriteFile(filepath.Dir(filepath.Dir(m.deps.OutputPath)), []byte("x"), 0o644))

	_, cmd := m.Update(press("pgdown"))
	m.Update(find[GeneratedMsg](t, runCmd(cmd)))
	_, cmd = m.Update(SaveMsg{})
	m.Update(find[SaveErrorMsg](t, runCmd(cmd)))

	assert.Equal(t, screenReview, m.screen)
	assert.Contains(t, m.review.View(), "✗")
}

func TestStartOver_ResetsStore(t *testing.T) {
	store := wizard.NewStoreFrom(completeState())
	f := newFixture(t, store, true, gateway.Result{Success: true, Content: "# Doc"})
	m := f.model

	m.Update(SavedMsg{Path: f.deps.OutputPath})
	require.Equal(t, screenComplete, m.screen)
	m.Update(StartOverMsg{})

	assert.Equal(t, screenSteps, m.screen)
	assert.Equal(t, wizard.DefaultState(), store.Get())
}

func TestView(t *testing.T) {
	f := newFixture(t, wizard.NewStore(), true, gateway.Result{})
	view := f.model.View()
	assert.True(t, view.AltScreen)

	modal := f.model.renderModal()
	assert.Contains(t, modal, "Configure Your CLAUDE.md")
	assert.Contains(t, modal, "Step 1 of 4")
	assert.Contains(t, modal, "Universal Principles")
}
