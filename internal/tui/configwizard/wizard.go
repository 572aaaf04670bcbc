// Package configwizard is the terminal front end of claudemd: the four
// wizard steps, the API key screen, generation, review and save.
package configwizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/mark3labs/claudemd/internal/apikey"
	"github.com/mark3labs/claudemd/internal/generator"
	"github.com/mark3labs/claudemd/internal/logger"
	"github.com/mark3labs/claudemd/internal/tui/components"
	"github.com/mark3labs/claudemd/internal/tui/theme"
	"github.com/mark3labs/claudemd/internal/wizard"
)

// ErrCancelled is returned by Run when the user quits before saving.
var ErrCancelled = errors.New("wizard cancelled by user")

// Step screen buttons.
const (
	btnBack = "back"
	btnNext = "next"
)

// Modal layout constants
const (
	minModalWidth = 60
	maxModalWidth = 100
	modalChrome   = 6 // border + horizontal padding
)

type screen int

const (
	screenSteps screen = iota
	screenAPIKey
	screenGenerating
	screenReview
	screenComplete
)

// Deps wires the wizard to the domain services.
type Deps struct {
	Store      *wizard.Store
	Keys       *apikey.Manager
	Generator  *generator.Generator
	OutputPath string
	// HistoryDir receives a timestamped copy of every save. Empty disables it.
	HistoryDir string
}

// Result describes a completed session.
type Result struct {
	SavedPath   string
	HistoryPath string
	Lines       int
}

// Model is the Bubbletea model for the whole wizard.
type Model struct {
	ctx       context.Context
	deps      Deps
	screen    screen
	width     int
	height    int
	cancelled bool
	result    Result
	now       func() time.Time

	textStep    *TextStep
	personaStep *PersonaStep
	keyScreen   *APIKeyScreen
	review      *ReviewScreen
	completion  *CompletionScreen

	buttons       *components.ButtonBar
	buttonFocused bool
	// stepErrors holds the messages of the last rejected Next.
	stepErrors []string

	spinner spinner.Model
	frame   int
	// cancelGen aborts the in-flight generation request.
	cancelGen context.CancelFunc
	// generateAfterKey resumes generation once the key screen closes.
	generateAfterKey bool
}

// New creates the model. It opens on the API key screen when no key is
// held in memory.
func New(ctx context.Context, deps Deps) *Model {
	if deps.OutputPath == "" {
		deps.OutputPath = "CLAUDE.md"
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{ctx: ctx, deps: deps, spinner: sp, now: time.Now}
	if deps.Keys.HasAPIKey() {
		m.enterStep()
	} else {
		m.openKeyScreen("")
	}
	return m
}

// Run starts the wizard on the terminal and blocks until it exits.
func Run(ctx context.Context, deps Deps) (*Result, error) {
	m := New(ctx, deps)
	p := tea.NewProgram(m, tea.WithContext(ctx))

	defer func() {
		if m.cancelGen != nil {
			m.cancelGen()
		}
	}()

	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	wizModel, ok := finalModel.(*Model)
	if !ok {
		return nil, fmt.Errorf("unexpected model type")
	}
	if wizModel.cancelled || wizModel.result.SavedPath == "" {
		return nil, ErrCancelled
	}
	return &wizModel.result, nil
}

// Init initializes the wizard model.
func (m *Model) Init() tea.Cmd {
	switch m.screen {
	case screenAPIKey:
		return m.keyScreen.Init()
	default:
		return textareaOrInputBlink(m)
	}
}

func textareaOrInputBlink(m *Model) tea.Cmd {
	if m.personaStep != nil {
		return m.personaStep.Init()
	}
	if m.textStep != nil {
		return m.textStep.Init()
	}
	return nil
}

// enterStep builds the component and buttons for the store's current step.
func (m *Model) enterStep() {
	m.screen = screenSteps
	m.stepErrors = nil
	m.buttonFocused = false

	step := m.deps.Store.Get().CurrentStep
	if step == wizard.StepPersonas {
		m.personaStep = NewPersonaStep(m.deps.Store)
		m.textStep = nil
	} else {
		m.textStep = NewTextStep(m.deps.Store, step)
		m.personaStep = nil
	}

	nextLabel := "Next →"
	if step == wizard.LastStep {
		nextLabel = "Generate CLAUDE.md"
	}
	m.buttons = components.NewButtonBar(
		components.Button{ID: btnBack, Label: "← Back"},
		components.Button{ID: btnNext, Label: nextLabel},
	)
	m.refreshStepButtons()
	m.updateSizes()
}

// refreshStepButtons mirrors CanRetreat and CanAdvance onto the buttons.
// On the last step Next means Generate and needs a valid step with no
// request in flight.
func (m *Model) refreshStepButtons() {
	if m.buttons == nil {
		return
	}
	store := m.deps.Store
	st := store.Get()

	next := store.CanAdvance()
	if store.IsTerminal() {
		next = store.Validate(wizard.LastStep).OK && !st.IsGenerating
	}
	m.buttons.SetEnabled(btnBack, store.CanRetreat())
	m.buttons.SetEnabled(btnNext, next)
	if m.buttonFocused && !m.buttons.IsFocused() {
		m.focusContent()
	}
}

func (m *Model) openKeyScreen(notice string) {
	m.screen = screenAPIKey
	m.keyScreen = NewAPIKeyScreen(m.ctx, m.deps.Keys, notice)
	m.updateSizes()
}

// Update handles messages for the wizard.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateSizes()
		return m, nil

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			m.cancelled = true
			if m.cancelGen != nil {
				m.cancelGen()
			}
			return m, tea.Quit
		}

	case KeyScreenDoneMsg:
		m.keyScreen = nil
		resume := m.generateAfterKey
		m.generateAfterKey = false
		m.enterStep()
		if resume && m.deps.Keys.HasAPIKey() {
			return m, m.startGeneration()
		}
		return m, m.Init()

	case GeneratedMsg:
		m.cancelGen = nil
		if msg.Result.Success {
			m.screen = screenReview
			m.review = NewReviewScreen(msg.Result.Content, m.deps.OutputPath)
			m.updateSizes()
			return m, nil
		}
		// The error is in the store; show it on the last step.
		m.enterStep()
		return m, m.Init()

	case RegenerateMsg:
		return m, m.startGeneration()

	case CheckOutputMsg:
		if fileExists(m.deps.OutputPath) && m.review != nil {
			logger.Debug("%s exists, asking before overwrite", m.deps.OutputPath)
			m.review.ConfirmOverwrite()
			return m, nil
		}
		return m, func() tea.Msg { return SaveMsg{} }

	case SaveMsg:
		return m, m.save()

	case SavedMsg:
		m.result = Result{
			SavedPath:   msg.Path,
			HistoryPath: msg.HistoryPath,
			Lines:       generator.LineCount(m.deps.Store.Get().GeneratedContent),
		}
		m.screen = screenComplete
		m.completion = NewCompletionScreen(msg.Path, msg.HistoryPath)
		m.updateSizes()
		return m, nil

	case StartOverMsg:
		m.deps.Store.Reset()
		m.review = nil
		m.completion = nil
		m.enterStep()
		return m, m.Init()

	case TabExitForwardMsg:
		m.focusButtons()
		return m, nil

	case spinner.TickMsg:
		if m.screen != screenGenerating {
			return m, nil
		}
		m.frame++
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	switch m.screen {
	case screenAPIKey:
		return m, m.keyScreen.Update(msg)
	case screenGenerating:
		return m.updateGenerating(msg)
	case screenReview:
		return m.updateReview(msg)
	case screenComplete:
		return m, m.completion.Update(msg)
	}
	return m.updateSteps(msg)
}

func (m *Model) updateGenerating(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Controls are disabled while the request is in flight; esc aborts it.
	if key, ok := msg.(tea.KeyPressMsg); ok && key.String() == "esc" && m.cancelGen != nil {
		logger.Info("Generation cancelled by user")
		m.cancelGen()
	}
	return m, nil
}

func (m *Model) updateReview(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		if msg.String() == "esc" && !m.review.CapturesEsc() {
			m.enterStep()
			return m, m.Init()
		}
	case ContentEditedMsg:
		m.deps.Store.SetGeneratedContent(msg.Content)
	}
	return m, m.review.Update(msg)
}

func (m *Model) updateSteps(msg tea.Msg) (tea.Model, tea.Cmd) {
	defer m.refreshStepButtons()

	key, isKey := msg.(tea.KeyPressMsg)
	if !isKey {
		return m, m.forwardToStep(msg)
	}

	if m.buttonFocused {
		switch key.String() {
		case "tab", "right":
			if !m.buttons.FocusNext() {
				return m, m.focusContent()
			}
			return m, nil
		case "shift+tab", "left":
			if !m.buttons.FocusPrev() {
				return m, m.focusContent()
			}
			return m, nil
		case "enter", "space", " ":
			return m, m.activate(m.buttons.FocusedButton())
		case "esc":
			return m, m.focusContent()
		}
		return m, nil
	}

	switch key.String() {
	case "esc":
		if m.deps.Store.Get().GenerationError != "" {
			m.deps.Store.DismissError()
			return m, nil
		}
		if !m.deps.Store.CanRetreat() {
			m.cancelled = true
			return m, tea.Quit
		}
		return m, m.activate(btnBack)
	case "shift+tab":
		m.focusButtonsFromEnd()
		return m, nil
	case "pgdown":
		return m, m.activate(btnNext)
	case "pgup":
		return m, m.activate(btnBack)
	case "ctrl+k":
		m.openKeyScreen("")
		return m, m.keyScreen.Init()
	}

	return m, m.forwardToStep(msg)
}

func (m *Model) forwardToStep(msg tea.Msg) tea.Cmd {
	if m.personaStep != nil {
		return m.personaStep.Update(msg)
	}
	if m.textStep != nil {
		return m.textStep.Update(msg)
	}
	return nil
}

func (m *Model) focusButtons() {
	m.buttonFocused = true
	m.blurContent()
	if !m.buttons.FocusFirst() {
		m.focusContent()
	}
}

func (m *Model) focusButtonsFromEnd() {
	m.buttonFocused = true
	m.blurContent()
	if !m.buttons.FocusLast() {
		m.focusContent()
	}
}

func (m *Model) blurContent() {
	if m.personaStep != nil {
		m.personaStep.Blur()
	}
	if m.textStep != nil {
		m.textStep.Blur()
	}
}

func (m *Model) focusContent() tea.Cmd {
	m.buttonFocused = false
	m.buttons.Blur()
	if m.personaStep != nil {
		return m.personaStep.Focus()
	}
	if m.textStep != nil {
		return m.textStep.Focus()
	}
	return nil
}

// activate runs a step button. Next on an incomplete step shows the
// validation errors instead of moving.
func (m *Model) activate(id string) tea.Cmd {
	store := m.deps.Store
	switch id {
	case btnBack:
		if err := store.Retreat(); err != nil {
			return nil
		}
		m.enterStep()
		return m.Init()

	case btnNext:
		if store.IsTerminal() {
			if res := store.Validate(wizard.LastStep); !res.OK {
				m.showStepErrors(res.Errors)
				return nil
			}
			return m.startGeneration()
		}
		err := store.Advance()
		var verr *wizard.ValidationError
		if errors.As(err, &verr) {
			m.showStepErrors(verr.Errors)
			return nil
		}
		if err != nil {
			logger.Error("Advance failed: %v", err)
			return nil
		}
		m.enterStep()
		return m.Init()
	}
	return nil
}

func (m *Model) showStepErrors(errs []wizard.FieldError) {
	m.stepErrors = make([]string, len(errs))
	for i := range errs {
		m.stepErrors[i] = errs[i].Error()
	}
	if m.personaStep != nil {
		m.personaStep.ShowErrors()
	}
}

// startGeneration switches to the generating screen and runs the request
// in the background. Without a key it detours through the key screen.
func (m *Model) startGeneration() tea.Cmd {
	if m.deps.Store.Get().IsGenerating {
		return nil
	}
	if !m.deps.Keys.HasAPIKey() {
		m.generateAfterKey = true
		m.openKeyScreen("Set your Anthropic API key to generate CLAUDE.md.")
		return m.keyScreen.Init()
	}

	ctx, cancel := context.WithCancel(m.ctx)
	m.cancelGen = cancel
	m.screen = screenGenerating
	m.frame = 0

	gen, store := m.deps.Generator, m.deps.Store
	run := func() tea.Msg {
		defer cancel()
		return GeneratedMsg{Result: gen.Generate(ctx, store)}
	}
	return tea.Batch(m.spinner.Tick, run)
}

func (m *Model) save() tea.Cmd {
	content := m.deps.Store.Get().GeneratedContent
	if m.review != nil {
		content = m.review.Content()
	}
	project := m.deps.Store.Get().ProjectContext
	out, history, now := m.deps.OutputPath, m.deps.HistoryDir, m.now()

	return func() tea.Msg {
		historyPath, err := saveOutput(out, history, project, content, now)
		if err != nil {
			logger.Error("Failed to save: %v", err)
			return SaveErrorMsg{Err: err}
		}
		logger.Info("Saved %s", out)
		return SavedMsg{Path: out, HistoryPath: historyPath}
	}
}

// contentSize returns the usable width and height inside the modal.
func (m *Model) contentSize() (int, int) {
	w := min(max(m.width-10, minModalWidth), maxModalWidth) - modalChrome
	h := max(m.height-12, 10)
	return w, h
}

func (m *Model) updateSizes() {
	w, h := m.contentSize()
	if m.textStep != nil {
		m.textStep.SetSize(w, h-6)
	}
	if m.personaStep != nil {
		m.personaStep.SetSize(w, h)
	}
	if m.buttons != nil {
		m.buttons.SetWidth(w)
	}
	if m.keyScreen != nil {
		m.keyScreen.SetSize(w, h)
	}
	if m.review != nil {
		m.review.SetSize(w, h)
	}
	if m.completion != nil {
		m.completion.SetSize(w, h)
	}
}

// View renders the wizard.
func (m *Model) View() tea.View {
	var view tea.View
	view.AltScreen = true

	if m.width == 0 || m.height == 0 {
		view.Content = lipgloss.NewLayer("")
		return view
	}

	centered := lipgloss.Place(m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		m.renderModal(),
	)

	canvas := uv.NewScreenBuffer(m.width, m.height)
	uv.NewStyledString(centered).Draw(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: m.width, Y: m.height},
	})

	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}

// renderModal renders the active screen inside the modal frame.
func (m *Model) renderModal() string {
	st := theme.Current().S()
	w, _ := m.contentSize()

	var body string
	switch m.screen {
	case screenAPIKey:
		body = m.keyScreen.View()
	case screenGenerating:
		body = m.renderGenerating()
	case screenReview:
		body = st.Title.Render("Review CLAUDE.md") + "\n\n" + m.review.View()
	case screenComplete:
		body = m.completion.View()
	default:
		body = m.renderSteps()
	}

	return st.Modal.Width(w + modalChrome).Render(body)
}

func (m *Model) renderSteps() string {
	st := theme.Current().S()
	state := m.deps.Store.Get()
	step := wizard.Steps[state.CurrentStep]

	var b strings.Builder
	b.WriteString(st.Title.Render("Configure Your CLAUDE.md"))
	b.WriteString("\n")
	b.WriteString(st.Muted.Render(fmt.Sprintf("Step %d of %d: ", state.CurrentStep+1, len(wizard.Steps))))
	b.WriteString(st.Label.Render(step.Title))
	b.WriteString("\n")
	b.WriteString(st.Description.Render(step.Description))
	b.WriteString("\n\n")

	if m.personaStep != nil {
		b.WriteString(m.personaStep.View())
	} else if m.textStep != nil {
		b.WriteString(m.textStep.View())
	}
	b.WriteString("\n")

	for _, e := range m.stepErrors {
		b.WriteString(st.ErrorText.Render("✗ " + e))
		b.WriteString("\n")
	}
	if state.GenerationError != "" {
		b.WriteString(st.ErrorText.Render("Generation failed: " + state.GenerationError))
		b.WriteString("\n")
		b.WriteString(st.Muted.Render("esc to dismiss"))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(m.buttons.Render())
	b.WriteString("\n")

	keyHint := "set key"
	if m.deps.Keys.HasAPIKey() {
		keyHint = "key"
	}
	b.WriteString(components.RenderHintBar(
		"tab", "buttons",
		"pgup/pgdn", "back/next",
		"ctrl+k", keyHint,
		"esc", "back",
	))
	return b.String()
}

func (m *Model) renderGenerating() string {
	t := theme.Current()
	st := t.S()

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(theme.Pulse(t.Primary, t.Secondary, m.frame, 20))).
		Render("Generating CLAUDE.md")

	var b strings.Builder
	b.WriteString(m.spinner.View() + " " + title)
	b.WriteString("\n\n")
	b.WriteString(st.Description.Render("Claude is writing your persona system. This usually takes under a minute."))
	b.WriteString("\n\n")
	b.WriteString(components.RenderHintBar("esc", "cancel"))
	return b.String()
}
