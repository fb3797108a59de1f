package chat

import (
	"context"

	"notebook/cmd/notebook/ui"
	"notebook/internal/backend"
	"notebook/internal/feedback"
	"notebook/internal/session"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"
)

// Options holds what the interface needs from the outside world.
type Options struct {
	Backend backend.Service
	Emitter feedback.Emitter
	Styles  ui.Styles
	// Markdown renders assistant turns through glamour instead of verbatim.
	Markdown bool
	// Ctx bounds every outbound request; cancelled when the program exits.
	Ctx context.Context
}

// ViewMode determines which screen is active
type ViewMode int

const (
	FormView       ViewMode = iota // credential entry and document intake
	FilePickerView                 // browsing for a document
	ChatView                       // conversing
)

// Focus is the active field on the form.
type Focus int

const (
	FocusCredential Focus = iota
	FocusPath
)

// uploadResultMsg reports the end of an upload attempt.
type uploadResultMsg struct {
	ticket session.Ticket
	err    error
}

// chatResultMsg reports the end of a chat request.
type chatResultMsg struct {
	answer string
	err    error
}

// Model is the bubbletea model for the notebook client.
type Model struct {
	ctx      context.Context
	backend  backend.Service
	emitter  feedback.Emitter
	styles   ui.Styles
	renderer *glamour.TermRenderer
	cache    *ui.RenderCache
	markdown bool
	log      *zap.Logger

	// Interaction state
	gate   *session.Gate
	intake *session.Intake
	conv   *session.Conversation

	// Components
	credentialInput textinput.Model
	pathInput       textinput.Model
	filepicker      filepicker.Model
	textarea        textarea.Model
	viewport        viewport.Model
	spinner         spinner.Model
	help            help.Model
	keys            keyMap

	viewMode ViewMode
	focus    Focus
	pathErr  string
	pathWarn bool // pathErr came from the picker, not validation
	width    int
	height   int
	ready    bool
}
