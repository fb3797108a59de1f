package session

import (
	"strings"
	"time"
)

// Role identifies the speaker of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// FallbackReply replaces the assistant turn when a chat request fails.
// Error details are logged, never shown.
const FallbackReply = "Sorry, there was an error processing your request."

// Turn is one message in the transcript.
type Turn struct {
	Role    Role
	Content string
	Time    time.Time
}

// Transcript is the append-only, chronologically ordered list of turns.
type Transcript struct {
	turns []Turn
}

// Append adds a turn at the end.
func (t *Transcript) Append(turn Turn) {
	t.turns = append(t.turns, turn)
}

// Turns returns a copy of the transcript.
func (t *Transcript) Turns() []Turn {
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Len returns the number of turns.
func (t *Transcript) Len() int {
	return len(t.turns)
}

// Last returns the newest turn.
func (t *Transcript) Last() (Turn, bool) {
	if len(t.turns) == 0 {
		return Turn{}, false
	}
	return t.turns[len(t.turns)-1], true
}

// ChatState replaces the in-flight boolean with an explicit state.
type ChatState int

const (
	ChatIdle     ChatState = iota // ready to accept a message
	ChatAwaiting                  // one request outstanding; submits are rejected
)

// String returns the display name for each state
func (s ChatState) String() string {
	if s == ChatAwaiting {
		return "awaiting"
	}
	return "idle"
}

// Conversation owns the transcript and the single-flight chat state.
type Conversation struct {
	transcript Transcript
	state      ChatState
	now        func() time.Time
}

// NewConversation returns an empty, idle conversation.
func NewConversation() *Conversation {
	return &Conversation{now: time.Now}
}

// Submit accepts a user message. Whitespace-only input and any submit while a
// request is outstanding are rejected without touching the transcript.
// On success the trimmed message is appended as a user turn and returned for
// sending.
func (c *Conversation) Submit(input string) (string, bool) {
	if c.state == ChatAwaiting {
		return "", false
	}
	msg := strings.TrimSpace(input)
	if msg == "" {
		return "", false
	}
	c.transcript.Append(Turn{Role: RoleUser, Content: msg, Time: c.now()})
	c.state = ChatAwaiting
	return msg, true
}

// Resolve records the outcome of the outstanding request and returns to idle.
// The answer is kept verbatim. With no request outstanding it does nothing.
func (c *Conversation) Resolve(answer string, err error) Turn {
	if c.state != ChatAwaiting {
		return Turn{}
	}
	turn := Turn{Role: RoleAssistant, Content: answer, Time: c.now()}
	if err != nil {
		turn.Content = FallbackReply
	}
	c.transcript.Append(turn)
	c.state = ChatIdle
	return turn
}

// State returns the current chat state.
func (c *Conversation) State() ChatState {
	return c.state
}

// InFlight reports whether a request is outstanding.
func (c *Conversation) InFlight() bool {
	return c.state == ChatAwaiting
}

// Turns returns a copy of the transcript.
func (c *Conversation) Turns() []Turn {
	return c.transcript.Turns()
}

// Len returns the number of turns.
func (c *Conversation) Len() int {
	return c.transcript.Len()
}
