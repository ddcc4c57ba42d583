// internal/conversation/transcript.go
// Package conversation holds the client-visible transcript for a session.
// The transcript is append-only: messages land only after their turn
// settles, and anything arriving for a superseded turn is dropped.
package conversation

import (
	"strings"
	"sync"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one settled transcript entry.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Turn    int    `json:"turn"`
}

// Transcript tracks messages and the newest turn sequence number. Turn
// numbers strictly increase; fragments and completions from older turns
// are discarded instead of interleaving with the current one.
type Transcript struct {
	mu       sync.Mutex
	messages []Message
	lastTurn int
	pending  map[int]*strings.Builder
}

// New seeds the transcript with the assistant greeting.
func New(greeting string) *Transcript {
	t := &Transcript{pending: make(map[int]*strings.Builder)}
	if greeting != "" {
		t.messages = append(t.messages, Message{Role: RoleAssistant, Content: greeting, Turn: 0})
	}
	return t
}

// BeginTurn starts a new turn for the given user question and returns its
// sequence number. Starting a turn supersedes all earlier unfinished turns.
func (t *Transcript) BeginTurn(question string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastTurn++
	for turn := range t.pending {
		if turn < t.lastTurn {
			delete(t.pending, turn)
		}
	}
	t.messages = append(t.messages, Message{Role: RoleUser, Content: question, Turn: t.lastTurn})
	return t.lastTurn
}

// AppendFragment adds a piece of the assistant answer for the given turn.
// Returns false when the fragment belongs to a superseded turn.
func (t *Transcript) AppendFragment(turn int, fragment string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if turn != t.lastTurn {
		return false
	}
	builder, ok := t.pending[turn]
	if !ok {
		builder = &strings.Builder{}
		t.pending[turn] = builder
	}
	builder.WriteString(fragment)
	return true
}

// Complete settles the turn's assistant message from its accumulated
// fragments (or the given full text when no fragments were streamed).
// Returns false when a newer turn has already started.
func (t *Transcript) Complete(turn int, full string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if turn != t.lastTurn {
		delete(t.pending, turn)
		return false
	}

	content := full
	if builder, ok := t.pending[turn]; ok {
		if streamed := builder.String(); streamed != "" {
			content = streamed
		}
		delete(t.pending, turn)
	}

	t.messages = append(t.messages, Message{Role: RoleAssistant, Content: content, Turn: turn})
	return true
}

// Fail settles the turn with the apology text instead of model output.
func (t *Transcript) Fail(turn int, apology string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if turn != t.lastTurn {
		delete(t.pending, turn)
		return false
	}
	delete(t.pending, turn)
	t.messages = append(t.messages, Message{Role: RoleAssistant, Content: apology, Turn: turn})
	return true
}

// Messages returns a snapshot of the settled transcript.
func (t *Transcript) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// CurrentTurn returns the newest turn sequence number.
func (t *Transcript) CurrentTurn() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastTurn
}
