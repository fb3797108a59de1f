// Package session holds the interaction state machines of the notebook client:
// the credential gate, the document intake and the chat conversation.
// None of the types here perform I/O; callers drive them from the UI loop or
// the headless CLI and perform the network calls themselves.
package session

import "strings"

// Stage is the top-level mode of the client.
type Stage int

const (
	StageCredential Stage = iota // entering credential / uploading a document
	StageChat                    // conversing with the assistant
)

// String returns the display name for each stage
func (s Stage) String() string {
	switch s {
	case StageCredential:
		return "credential"
	case StageChat:
		return "chat"
	default:
		return "unknown"
	}
}

// Gate owns the credential and the transition into chat mode.
// The credential is held in memory only.
type Gate struct {
	credential string
	stage      Stage
}

// NewGate returns a gate in credential-entry mode.
func NewGate() *Gate {
	return &Gate{stage: StageCredential}
}

// SetCredential records the raw credential text. Once chat mode has been
// entered the credential is frozen and further calls are ignored.
func (g *Gate) SetCredential(value string) {
	if g.stage != StageCredential {
		return
	}
	g.credential = value
}

// Credential returns the credential exactly as entered.
func (g *Gate) Credential() string {
	return g.credential
}

// Stage returns the current mode.
func (g *Gate) Stage() Stage {
	return g.stage
}

// IntakeReachable reports whether the document intake controls may be used.
func (g *Gate) IntakeReachable() bool {
	return strings.TrimSpace(g.credential) != ""
}

// Confirm attempts the credential -> chat transition. It succeeds at most
// once, and only when the credential has a non-whitespace character and the
// document is ready. A blank credential is a silent no-op.
func (g *Gate) Confirm(docReady bool) bool {
	if g.stage != StageCredential {
		return false
	}
	if !g.IntakeReachable() || !docReady {
		return false
	}
	g.stage = StageChat
	return true
}

// Redact returns a form of the credential that is safe to log.
func Redact(credential string) string {
	c := []rune(strings.TrimSpace(credential))
	if len(c) <= 8 {
		return strings.Repeat("*", len(c))
	}
	return string(c[:4]) + "..." + string(c[len(c)-4:])
}
