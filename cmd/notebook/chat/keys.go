package chat

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Quit        key.Binding
	NextField   key.Binding
	Confirm     key.Binding
	Select      key.Binding
	Browse      key.Binding
	Upload      key.Binding
	ClosePicker key.Binding
	Send        key.Binding
	Newline     key.Binding
	Scroll      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "switch field"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "start chat"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select file"),
		),
		Browse: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "browse"),
		),
		Upload: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "upload"),
		),
		ClosePicker: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Newline: key.NewBinding(
			key.WithKeys("alt+enter", "ctrl+j"),
			key.WithHelp("alt+enter", "newline"),
		),
		Scroll: key.NewBinding(
			key.WithKeys("pgup", "pgdown"),
			key.WithHelp("pgup/pgdn", "scroll"),
		),
	}
}

// bindings adapts a flat binding list to help.KeyMap.
type bindings []key.Binding

func (b bindings) ShortHelp() []key.Binding  { return b }
func (b bindings) FullHelp() [][]key.Binding { return [][]key.Binding{b} }

var _ help.KeyMap = bindings(nil)

// helpFor returns the bindings shown in the footer for the current screen.
// Disabled bindings are hidden by the help component.
func (m Model) helpFor() help.KeyMap {
	switch m.viewMode {
	case FilePickerView:
		return bindings{m.keys.ClosePicker}
	case ChatView:
		return bindings{m.keys.Send, m.keys.Newline, m.keys.Scroll, m.keys.Quit}
	}
	field := m.keys.Confirm
	if m.focus == FocusPath {
		field = m.keys.Select
	}
	return bindings{field, m.keys.NextField, m.keys.Browse, m.keys.Upload, m.keys.Quit}
}

// syncKeys enables bindings according to the interaction state.
func (m *Model) syncKeys() {
	reachable := m.gate.IntakeReachable()
	m.keys.Browse.SetEnabled(reachable)
	m.keys.Upload.SetEnabled(reachable && m.intake.CanUpload())
	m.keys.Select.SetEnabled(reachable)
	m.keys.Confirm.SetEnabled(reachable && m.intake.Ready())
	m.keys.Send.SetEnabled(!m.conv.InFlight())
}
