package chat

import (
	"fmt"
	"strings"

	"notebook/cmd/notebook/ui"
	"notebook/internal/session"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// View renders the active screen.
func (m Model) View() string {
	var body string
	switch m.viewMode {
	case FilePickerView:
		body = m.pickerView()
	case ChatView:
		body = m.chatView()
	default:
		body = m.formView()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		body,
		m.styles.Footer.Render(m.help.View(m.helpFor())),
	)
}

func (m Model) formView() string {
	var b strings.Builder

	b.WriteString(ui.Logo(m.styles))
	b.WriteString("\n")
	b.WriteString(m.styles.Subtitle.Render("Upload a document, then ask questions about it."))
	b.WriteString("\n\n")

	b.WriteString(m.fieldStyle(FocusCredential).Render(m.credentialInput.View()))
	b.WriteString("\n")

	if !m.gate.IntakeReachable() {
		b.WriteString(m.styles.Disabled.Render("Enter your API key to choose a document."))
		b.WriteString("\n")
		return m.styles.Content.Render(b.String())
	}

	b.WriteString(m.fieldStyle(FocusPath).Render(m.pathInput.View()))
	b.WriteString("\n")
	if m.pathErr != "" {
		style := m.styles.Error
		if m.pathWarn {
			style = m.styles.Warning
		}
		b.WriteString(style.Render(m.pathErr))
		b.WriteString("\n")
	}
	b.WriteString(m.uploadStatusLine())
	b.WriteString("\n")

	return m.styles.Content.Render(b.String())
}

func (m Model) fieldStyle(f Focus) lipgloss.Style {
	if m.focus == f {
		return m.styles.Focused
	}
	return m.styles.Blurred
}

func (m Model) uploadStatusLine() string {
	doc, ok := m.intake.Document()
	if !ok {
		return m.styles.Muted.Render("No document selected. Type a path or press ctrl+o to browse.")
	}

	switch m.intake.Status() {
	case session.UploadUploading:
		return fmt.Sprintf("%s %s", m.spinner.View(), m.styles.Body.Render("Uploading "+doc.Name+"..."))
	case session.UploadUploaded:
		return m.styles.Success.Render("✓ "+doc.Name+" uploaded") + "  " +
			m.styles.Muted.Render("Press enter on the API key to start chatting.")
	case session.UploadError:
		return m.styles.Error.Render(m.intake.Message())
	default:
		return m.styles.Bold.Render(doc.Name) + m.styles.Body.Render(fmt.Sprintf(" (%s, %d bytes)", doc.Kind, doc.Size)) + "  " +
			m.styles.Muted.Render("Press ctrl+u to upload.")
	}
}

func (m Model) pickerView() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Choose a document"))
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render(m.filepicker.CurrentDirectory))
	b.WriteString("\n\n")
	b.WriteString(m.filepicker.View())
	return m.styles.Content.Render(b.String())
}

func (m Model) chatView() string {
	title := "AI Notebook"
	if doc, ok := m.intake.Document(); ok {
		title += " · " + doc.Name
	}

	status := ""
	if m.conv.InFlight() {
		status = m.spinner.View() + " " + m.styles.Muted.Render("Thinking...")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Header.Render(title),
		m.viewport.View(),
		m.styles.RenderDivider(m.width),
		status,
		m.textarea.View(),
	)
}

// renderTranscript renders every turn in order.
func (m Model) renderTranscript() string {
	turns := m.conv.Turns()
	if len(turns) == 0 {
		return m.styles.Muted.Render("Ask anything about your document.")
	}

	width := max(m.viewport.Width-4, 10)
	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		key := ui.TurnKey(string(turn.Role), turn.Content, width, m.markdown)
		b.WriteString(m.cache.GetOrCompute(key, func() string {
			return m.renderTurn(turn, width)
		}))
	}
	return b.String()
}

func (m Model) renderTurn(turn session.Turn, width int) string {
	if turn.Role == session.RoleUser {
		return m.styles.UserLabel.Render("You") + "\n" +
			m.styles.UserBubble.Width(width).Render(turn.Content)
	}
	return m.styles.AssistantLabel.Render("Assistant") + "\n" +
		m.renderAnswer(turn.Content, width)
}

// renderAnswer keeps the answer verbatim unless markdown rendering is on.
func (m Model) renderAnswer(content string, width int) string {
	if m.markdown && m.renderer != nil {
		out, err := m.renderer.Render(content)
		if err == nil {
			return strings.TrimRight(out, "\n")
		}
		m.log.Warn("markdown render failed", zap.Error(err))
	}
	return m.styles.AssistantBody.Width(width).Render(content)
}
