package chat

import (
	"notebook/internal/document"
	"notebook/internal/feedback"
	"notebook/internal/logging"
	"notebook/internal/session"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Update routes messages to the active screen.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		if m.viewMode == FilePickerView {
			var cmd tea.Cmd
			m.filepicker, cmd = m.filepicker.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		switch m.viewMode {
		case FilePickerView:
			m, cmd = m.handlePickerKey(msg)
		case ChatView:
			m, cmd = m.handleChatKey(msg)
		default:
			m, cmd = m.handleFormKey(msg)
		}
		m.syncKeys()
		return m, cmd

	case uploadResultMsg:
		m.applyUpload(msg)
		m.syncKeys()
		return m, nil

	case chatResultMsg:
		m.applyAnswer(msg)
		m.syncKeys()
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Directory listings and cursor blinks.
	var cmd tea.Cmd
	switch m.viewMode {
	case FilePickerView:
		m.filepicker, cmd = m.filepicker.Update(msg)
	case ChatView:
		m.textarea, cmd = m.textarea.Update(msg)
	default:
		cmd = m.updateFocusedInput(msg)
	}
	return m, cmd
}

// =============================================================================
// FORM SCREEN
// =============================================================================

func (m Model) handleFormKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit

	case "tab", "shift+tab":
		// The path field is hidden until a credential is typed.
		if m.gate.IntakeReachable() {
			m.toggleFocus()
		}
		return m, nil

	case "enter":
		if m.focus == FocusPath {
			m.selectPath(m.pathInput.Value())
			return m, nil
		}
		return m.confirm()

	case "ctrl+o":
		if !m.gate.IntakeReachable() {
			return m, nil
		}
		m.viewMode = FilePickerView
		m.filepicker = newFilePicker(m.height)
		return m, m.filepicker.Init()

	case "ctrl+u":
		return m.startUpload()
	}

	m.clickOnEdit(msg)
	cmd := m.updateFocusedInput(msg)
	if m.focus == FocusCredential {
		m.gate.SetCredential(m.credentialInput.Value())
	}
	if !m.gate.IntakeReachable() && m.focus != FocusCredential {
		m.focusCredential()
	}
	return m, cmd
}

func (m *Model) toggleFocus() {
	if m.focus == FocusCredential {
		m.focus = FocusPath
		m.credentialInput.Blur()
		m.pathInput.Focus()
		return
	}
	m.focusCredential()
}

func (m *Model) focusCredential() {
	m.focus = FocusCredential
	m.pathInput.Blur()
	m.credentialInput.Focus()
}

func (m *Model) updateFocusedInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if m.focus == FocusPath {
		m.pathInput, cmd = m.pathInput.Update(msg)
	} else {
		m.credentialInput, cmd = m.credentialInput.Update(msg)
	}
	return cmd
}

// selectPath validates a local file and records it as the new document.
// Selection is only possible once a credential has been typed.
func (m *Model) selectPath(path string) {
	if !m.gate.IntakeReachable() {
		return
	}
	doc, err := document.Open(path)
	if err != nil {
		m.pathErr = err.Error()
		m.pathWarn = false
		logging.SessionDebug("document rejected", zap.String("path", path), zap.Error(err))
		return
	}
	m.pathErr = ""
	m.pathWarn = false
	m.pathInput.SetValue(doc.Path)
	m.intake.Select(doc)
	logging.Session("document selected",
		zap.String("name", doc.Name),
		zap.String("kind", string(doc.Kind)),
		zap.Int64("size", doc.Size),
	)
}

func (m Model) startUpload() (Model, tea.Cmd) {
	if !m.gate.IntakeReachable() {
		return m, nil
	}
	ticket, ok := m.intake.Begin()
	if !ok {
		return m, nil
	}
	logging.Session("upload started", zap.String("name", ticket.Document().Name))
	return m, tea.Batch(
		uploadCmd(m.ctx, m.backend, ticket, m.gate.Credential()),
		m.spinner.Tick,
	)
}

func (m *Model) applyUpload(msg uploadResultMsg) {
	if !m.intake.Complete(msg.ticket, msg.err) {
		logging.SessionDebug("stale upload result dropped", zap.String("name", msg.ticket.Document().Name))
		return
	}
	if msg.err != nil {
		logging.APIError("upload failed", zap.String("name", msg.ticket.Document().Name), zap.Error(msg.err))
		return
	}
	logging.Session("upload complete", zap.String("name", msg.ticket.Document().Name))
	m.emitter.Play(feedback.CueReceive)
}

// confirm enters chat mode when the credential is set and the document is
// uploaded. Anything else is a silent no-op.
func (m Model) confirm() (Model, tea.Cmd) {
	if !m.gate.Confirm(m.intake.Ready()) {
		return m, nil
	}
	m.emitter.Play(feedback.CueClick)
	logging.Session("chat started")

	m.viewMode = ChatView
	m.credentialInput.Blur()
	m.pathInput.Blur()
	m.refreshTranscript()
	return m, m.textarea.Focus()
}

// =============================================================================
// FILE PICKER
// =============================================================================

func (m Model) handlePickerKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.viewMode = FormView
		return m, nil
	}

	var cmd tea.Cmd
	m.filepicker, cmd = m.filepicker.Update(msg)

	if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
		m.selectPath(path)
		m.viewMode = FormView
		if m.focus != FocusPath {
			m.toggleFocus()
		}
		return m, cmd
	}
	if didSelect, path := m.filepicker.DidSelectDisabledFile(msg); didSelect {
		m.pathErr = "unsupported file: " + path
		m.pathWarn = true
		m.viewMode = FormView
		return m, cmd
	}
	return m, cmd
}

// =============================================================================
// CHAT SCREEN
// =============================================================================

func (m Model) handleChatKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "enter":
		return m.submit()
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	m.clickOnEdit(msg)
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// submit sends the typed message. Blank input and submits while a request
// is outstanding are rejected without side effects.
func (m Model) submit() (Model, tea.Cmd) {
	message, ok := m.conv.Submit(m.textarea.Value())
	if !ok {
		return m, nil
	}
	m.textarea.Reset()
	m.emitter.Play(feedback.CueSend)
	m.refreshTranscript()
	logging.SessionDebug("message sent", zap.Int("turns", m.conv.Len()))

	return m, tea.Batch(
		askCmd(m.ctx, m.backend, message, m.gate.Credential()),
		m.spinner.Tick,
	)
}

func (m *Model) applyAnswer(msg chatResultMsg) {
	if !m.conv.InFlight() {
		return
	}
	m.conv.Resolve(msg.answer, msg.err)
	if msg.err != nil {
		logging.APIError("chat request failed", zap.Error(msg.err))
	} else {
		logging.API("answer received", zap.Int("length", len(msg.answer)))
		m.emitter.Play(feedback.CueReceive)
	}
	m.refreshTranscript()
}

// =============================================================================
// HELPERS
// =============================================================================

// clickOnEdit plays the keystroke cue for keys that edit text.
func (m Model) clickOnEdit(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyRunes, tea.KeySpace, tea.KeyBackspace, tea.KeyDelete:
		m.emitter.Play(feedback.CueClick)
	}
}

func (m Model) busy() bool {
	return m.intake.Status() == session.UploadUploading || m.conv.InFlight()
}

// refreshTranscript re-renders the transcript and scrolls to the newest turn.
func (m *Model) refreshTranscript() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m *Model) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	m.width = width
	m.height = height
	m.ready = true
	logging.UIDebug("window resized", zap.Int("width", width), zap.Int("height", height))

	m.textarea.SetWidth(max(width-4, 10))
	m.viewport.Width = width
	m.viewport.Height = max(height-chatChrome-inputHeight, 1)
	m.help.Width = width
	if m.markdown {
		m.renderer = newRenderer(m.styles.Theme.IsDark, width)
	}
	if m.viewMode == ChatView {
		m.refreshTranscript()
	}
}

var _ tea.Model = Model{}
