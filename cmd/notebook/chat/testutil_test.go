// Package chat provides test utilities for TUI testing.
// This file contains fakes, fixtures, and helpers for driving the model.
package chat

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"notebook/cmd/notebook/ui"
	"notebook/internal/document"
	"notebook/internal/feedback"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// FAKE BACKEND
// =============================================================================

// fakeBackend records calls and returns canned results.
type fakeBackend struct {
	mu sync.Mutex

	uploadErr error
	answer    string
	chatErr   error
	chatPanic bool

	uploads  []string
	messages []string
	keys     []string
}

func (f *fakeBackend) UploadDocument(_ context.Context, doc document.Document, apiKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, doc.Name)
	f.keys = append(f.keys, apiKey)
	return f.uploadErr
}

func (f *fakeBackend) Chat(_ context.Context, message, apiKey string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	f.keys = append(f.keys, apiKey)
	if f.chatPanic {
		panic("backend exploded")
	}
	return f.answer, f.chatErr
}

func (f *fakeBackend) chatCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func (f *fakeBackend) seenKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.keys...)
}

// =============================================================================
// RECORDING EMITTER
// =============================================================================

type recordingEmitter struct {
	mu    sync.Mutex
	inits int
	cues  []feedback.Cue
}

func (r *recordingEmitter) Init() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inits++
}

func (r *recordingEmitter) Play(c feedback.Cue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cues = append(r.cues, c)
}

func (r *recordingEmitter) count(c feedback.Cue) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, got := range r.cues {
		if got == c {
			n++
		}
	}
	return n
}

// =============================================================================
// MODEL FIXTURES
// =============================================================================

// NewTestModel returns a sized model wired to fakes.
func NewTestModel(t *testing.T) (Model, *fakeBackend, *recordingEmitter) {
	t.Helper()
	fb := &fakeBackend{answer: "ok"}
	em := &recordingEmitter{}
	m := New(Options{
		Backend: fb,
		Emitter: em,
		Styles:  ui.NewStyles(ui.LightTheme()),
		Ctx:     context.Background(),
	})
	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return m, fb, em
}

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func press(m Model, k tea.KeyType) (Model, tea.Cmd) {
	return update(m, tea.KeyMsg{Type: k})
}

func typeText(m Model, s string) Model {
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

// drain runs cmd and every command nested in a batch, returning the messages
// they produce. Leaf commands run concurrently because cursor blinks sleep.
func drain(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}

	var (
		mu   sync.Mutex
		out  []tea.Msg
		wg   sync.WaitGroup
		run  func(tea.Cmd)
		done = make(chan struct{})
	)
	run = func(c tea.Cmd) {
		defer wg.Done()
		msg := c()
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, sub := range batch {
				if sub != nil {
					wg.Add(1)
					go run(sub)
				}
			}
			return
		}
		if msg != nil {
			mu.Lock()
			out = append(out, msg)
			mu.Unlock()
		}
	}

	wg.Add(1)
	go run(cmd)
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("commands did not finish")
	}
	return out
}

func find[T tea.Msg](msgs []tea.Msg) (T, bool) {
	for _, msg := range msgs {
		if v, ok := msg.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// selectDocument types a credential and a path and selects the file.
func selectDocument(t *testing.T, m Model, credential, path string) Model {
	t.Helper()
	m = typeText(m, credential)
	m, _ = press(m, tea.KeyTab)
	m = typeText(m, path)
	m, _ = press(m, tea.KeyEnter)
	if _, ok := m.intake.Document(); !ok {
		t.Fatalf("document %s was not selected: %s", path, m.pathErr)
	}
	return m
}

// upload presses ctrl+u and feeds the result back into the model.
func upload(t *testing.T, m Model) Model {
	t.Helper()
	m, cmd := press(m, tea.KeyCtrlU)
	res, ok := find[uploadResultMsg](drain(t, cmd))
	if !ok {
		t.Fatal("upload command produced no result")
	}
	m, _ = update(m, res)
	return m
}

// enterChat drives the form to the chat screen.
func enterChat(t *testing.T, m Model, credential string) Model {
	t.Helper()
	m = selectDocument(t, m, credential, writeDoc(t, "handbook.md", "# Handbook"))
	m = upload(t, m)
	m, _ = press(m, tea.KeyShiftTab)
	m, _ = press(m, tea.KeyEnter)
	if m.viewMode != ChatView {
		t.Fatalf("expected chat view, got %v (upload %s)", m.viewMode, m.intake.Status())
	}
	return m
}

// ask types a message, submits it, and returns the command for the request.
func ask(m Model, text string) (Model, tea.Cmd) {
	m = typeText(m, text)
	return press(m, tea.KeyEnter)
}
