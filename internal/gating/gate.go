// internal/gating/gate.go
package gating

import (
	"context"
	"strings"
	"sync"

	stderrors "github.com/anyanwuihueze/japa-genie-active/internal/common/errors"
	"github.com/anyanwuihueze/japa-genie-active/internal/common/logger"
	"github.com/anyanwuihueze/japa-genie-active/internal/common/metrics"
)

// UpgradeNotifier sends a best-effort confirmation after an upgrade.
type UpgradeNotifier interface {
	SendUpgradeConfirmation(ctx context.Context, from, to string) error
}

// Gate is the only component allowed to mutate wish sessions. It serializes
// turns per session with an in-flight guard so a double submission can
// never increment the counter twice.
type Gate struct {
	store     Store
	maxFree   int
	notifier  UpgradeNotifier
	fromEmail string
	logger    logger.Logger

	mu       sync.Mutex
	inFlight map[string]bool
}

func NewGate(store Store, maxFree int, log logger.Logger) *Gate {
	return &Gate{
		store:   store,
		maxFree: maxFree,
		logger: log.With(map[string]interface{}{
			"component": "gating",
		}),
		inFlight: make(map[string]bool),
	}
}

// WithNotifier enables upgrade confirmation mail.
func (g *Gate) WithNotifier(notifier UpgradeNotifier, fromEmail string) *Gate {
	g.notifier = notifier
	g.fromEmail = fromEmail
	return g
}

// Accept admits one user question. On success the session counter has
// already been incremented and persisted, and the turn holds the in-flight
// slot until Release. The question that reaches the quota is still
// admitted; only the one after it is rejected.
func (g *Gate) Accept(ctx context.Context, sessionID string) (*Session, error) {
	g.mu.Lock()
	if g.inFlight[sessionID] {
		g.mu.Unlock()
		metrics.GateDecisions.WithLabelValues("duplicate").Inc()
		return nil, stderrors.NewDuplicateInFlightError(sessionID)
	}
	g.inFlight[sessionID] = true
	g.mu.Unlock()

	session, err := g.admit(ctx, sessionID)
	if err != nil {
		g.Release(sessionID)
		return nil, err
	}
	return session, nil
}

func (g *Gate) admit(ctx context.Context, sessionID string) (*Session, error) {
	session, err := g.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		session = &Session{ID: sessionID, MaxFree: g.maxFree}
	}

	if session.Upgraded {
		metrics.GateDecisions.WithLabelValues("bypass").Inc()
		return session, nil
	}

	if session.QuestionsUsed >= session.MaxFree {
		metrics.GateDecisions.WithLabelValues("quota_exceeded").Inc()
		g.logger.Info("quota exceeded", map[string]interface{}{
			"sessionId":     sessionID,
			"questionsUsed": session.QuestionsUsed,
		})
		return nil, stderrors.NewQuotaExceededError(session.QuestionsUsed, session.MaxFree)
	}

	session.QuestionsUsed++
	if err := g.store.Save(ctx, session); err != nil {
		return nil, err
	}

	metrics.GateDecisions.WithLabelValues("accepted").Inc()
	return session, nil
}

// Release frees the session's in-flight slot once its turn settles.
func (g *Gate) Release(sessionID string) {
	g.mu.Lock()
	delete(g.inFlight, sessionID)
	g.mu.Unlock()
}

// Upgrade flips the session to unlimited access. The transition is
// terminal: once upgraded, quota checks are bypassed for the session's
// lifetime. Confirmation mail is best-effort and never fails the upgrade.
func (g *Gate) Upgrade(ctx context.Context, sessionID, credential string) (*Session, error) {
	session, err := g.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		session = &Session{ID: sessionID, MaxFree: g.maxFree}
	}

	session.Upgraded = true
	session.Credential = credential
	if err := g.store.Save(ctx, session); err != nil {
		return nil, err
	}

	g.logger.Info("session upgraded", map[string]interface{}{
		"sessionId": sessionID,
	})

	if g.notifier != nil && strings.Contains(credential, "@") {
		if err := g.notifier.SendUpgradeConfirmation(ctx, g.fromEmail, credential); err != nil {
			g.logger.Warn("upgrade confirmation mail failed", map[string]interface{}{
				"sessionId": sessionID,
				"error":     err.Error(),
			})
		}
	}

	return session, nil
}
