// Package chat implements the interactive terminal interface: credential
// entry, document upload and the chat transcript, built on bubbletea.
package chat

import (
	"context"
	"os"
	"strings"

	"notebook/cmd/notebook/ui"
	"notebook/internal/document"
	"notebook/internal/feedback"
	"notebook/internal/logging"
	"notebook/internal/session"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	inputHeight   = 3
	// header, divider, status line, help footer and textarea borders
	chatChrome = 7

	renderCacheSize = 256
)

// New builds the initial model on the credential form.
func New(opts Options) Model {
	if opts.Ctx == nil {
		opts.Ctx = context.Background()
	}
	if opts.Emitter == nil {
		opts.Emitter = feedback.Nop{}
	}

	keys := defaultKeyMap()
	styles := opts.Styles

	cred := textinput.New()
	cred.Placeholder = "sk-..."
	cred.Prompt = "API key  "
	cred.EchoMode = textinput.EchoPassword
	cred.EchoCharacter = '•'
	cred.Width = 48
	cred.PromptStyle = styles.Label
	cred.Focus()

	path := textinput.New()
	path.Placeholder = "~/docs/handbook.pdf"
	path.Prompt = "Document "
	path.Width = 48
	path.PromptStyle = styles.Label

	ta := textarea.New()
	ta.Placeholder = "Ask a question about your document..."
	ta.ShowLineNumbers = false
	ta.Prompt = "┃ "
	ta.CharLimit = 0
	ta.SetHeight(inputHeight)
	ta.SetWidth(defaultWidth - 4)
	ta.KeyMap.InsertNewline = keys.Newline

	vp := viewport.New(defaultWidth, defaultHeight-chatChrome-inputHeight)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	h := help.New()
	h.Styles.ShortKey = styles.Muted.Bold(true)
	h.Styles.ShortDesc = styles.Muted

	m := Model{
		ctx:             opts.Ctx,
		backend:         opts.Backend,
		emitter:         opts.Emitter,
		styles:          styles,
		cache:           ui.NewRenderCache(renderCacheSize),
		markdown:        opts.Markdown,
		log:             logging.Get(logging.CategoryUI),
		gate:            session.NewGate(),
		intake:          session.NewIntake(),
		conv:            session.NewConversation(),
		credentialInput: cred,
		pathInput:       path,
		filepicker:      newFilePicker(defaultHeight),
		textarea:        ta,
		viewport:        vp,
		spinner:         sp,
		help:            h,
		keys:            keys,
		viewMode:        FormView,
		focus:           FocusCredential,
		width:           defaultWidth,
		height:          defaultHeight,
	}
	if m.markdown {
		m.renderer = newRenderer(styles.Theme.IsDark, defaultWidth)
	}
	m.syncKeys()
	return m
}

// Init loads the feedback cues and starts the cursor blinking.
func (m Model) Init() tea.Cmd {
	m.emitter.Init()
	return textinput.Blink
}

func newFilePicker(height int) filepicker.Model {
	fp := filepicker.New()
	fp.AllowedTypes = pickerTypes()
	fp.ShowHidden = false
	if wd, err := os.Getwd(); err == nil {
		fp.CurrentDirectory = wd
	}
	fp.Height = max(height-8, 3)
	return fp
}

// pickerTypes lists the supported extensions in lower, upper and title case.
// The picker matches suffixes exactly while document.KindOf ignores case.
func pickerTypes() []string {
	var types []string
	for _, ext := range document.SupportedExtensions() {
		upper := strings.ToUpper(ext)
		types = append(types, ext, upper, upper[:2]+ext[2:])
	}
	return types
}

func newRenderer(dark bool, width int) *glamour.TermRenderer {
	style := "light"
	if dark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(width-6, 20)),
	)
	if err != nil {
		logging.Get(logging.CategoryUI).Warn("markdown renderer unavailable", zap.Error(err))
		return nil
	}
	return r
}

// Stage returns the gate's current mode.
func (m Model) Stage() session.Stage {
	return m.gate.Stage()
}

// UploadStatus returns the intake status.
func (m Model) UploadStatus() session.UploadStatus {
	return m.intake.Status()
}

// Transcript returns a copy of the conversation so far.
func (m Model) Transcript() []session.Turn {
	return m.conv.Turns()
}

// InFlight reports whether a chat request is outstanding.
func (m Model) InFlight() bool {
	return m.conv.InFlight()
}
