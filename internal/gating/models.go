// internal/gating/models.go
// Package gating tracks per-session question counts against the free-tier
// quota and decides whether a request proceeds or asks for an upgrade.
package gating

import "context"

// Session is the wish-counting state for one conversation. It is mutated
// only by the gate, exactly once per accepted question, and never reset
// except by a new session.
type Session struct {
	ID            string `json:"id"`
	QuestionsUsed int    `json:"questionsUsed"`
	MaxFree       int    `json:"maxFree"`
	Upgraded      bool   `json:"upgraded"`
	Credential    string `json:"credential,omitempty"`
}

// Store persists sessions. Load returns (nil, nil) for an unknown session;
// the gate creates zero state on first contact.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Session, error)
	Save(ctx context.Context, session *Session) error
}
