package configwizard

import "github.com/mark3labs/claudemd/internal/gateway"

// GeneratedMsg carries the outcome of a generation command.
type GeneratedMsg struct {
	Result gateway.Result
}

// KeyTestedMsg carries the outcome of a remote key test.
type KeyTestedMsg struct {
	Valid bool
}

// KeyScreenDoneMsg is sent when the user leaves the API key screen.
type KeyScreenDoneMsg struct{}

// ContentEditedMsg is sent when the external editor returns.
type ContentEditedMsg struct {
	Content string
}

// CheckOutputMsg asks the wizard to check for an existing output file
// before saving.
type CheckOutputMsg struct{}

// SaveMsg writes the document, overwriting any existing file.
type SaveMsg struct{}

// SavedMsg is sent after the document has been written.
type SavedMsg struct {
	Path        string
	HistoryPath string
}

// SaveErrorMsg is sent when writing the document fails.
type SaveErrorMsg struct {
	Err error
}

// RegenerateMsg asks for a fresh generation from the review screen.
type RegenerateMsg struct{}

// StartOverMsg resets the wizard from the completion screen.
type StartOverMsg struct{}

// TabExitForwardMsg is sent by a step when Tab leaves its last input.
type TabExitForwardMsg struct{}
