package chat

import (
	"context"
	"fmt"

	"notebook/internal/backend"
	"notebook/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

// uploadCmd sends the ticket's document. A result message is always delivered,
// so the intake never stays in uploading because of a panic.
func uploadCmd(ctx context.Context, svc backend.Service, t session.Ticket, apiKey string) tea.Cmd {
	return func() (msg tea.Msg) {
		defer func() {
			if r := recover(); r != nil {
				msg = uploadResultMsg{ticket: t, err: fmt.Errorf("upload aborted: %v", r)}
			}
		}()
		if svc == nil {
			return uploadResultMsg{ticket: t, err: fmt.Errorf("no backend configured")}
		}
		err := svc.UploadDocument(ctx, t.Document(), apiKey)
		return uploadResultMsg{ticket: t, err: err}
	}
}

// askCmd sends one chat turn. Like uploadCmd it always reports back, which is
// what clears the in-flight state.
func askCmd(ctx context.Context, svc backend.Service, message, apiKey string) tea.Cmd {
	return func() (msg tea.Msg) {
		defer func() {
			if r := recover(); r != nil {
				msg = chatResultMsg{err: fmt.Errorf("chat aborted: %v", r)}
			}
		}()
		if svc == nil {
			return chatResultMsg{err: fmt.Errorf("no backend configured")}
		}
		answer, err := svc.Chat(ctx, message, apiKey)
		return chatResultMsg{answer: answer, err: err}
	}
}
