// internal/orchestrator/orchestrator.go
// Package orchestrator runs one user turn end to end: gate check, then
// concurrent chat and insights generation, joined into a single result
// with independently-typed outcomes.
package orchestrator

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/anyanwuihueze/japa-genie-active/internal/common/logger"
	"github.com/anyanwuihueze/japa-genie-active/internal/common/metrics"
	"github.com/anyanwuihueze/japa-genie-active/internal/common/observability"
	"github.com/anyanwuihueze/japa-genie-active/internal/conversation"
	"github.com/anyanwuihueze/japa-genie-active/internal/flows/chatassist"
	"github.com/anyanwuihueze/japa-genie-active/internal/flows/insights"
	"github.com/anyanwuihueze/japa-genie-active/internal/gating"
	"github.com/anyanwuihueze/japa-genie-active/internal/prompt"
	"github.com/anyanwuihueze/japa-genie-active/internal/schema"
)

// FragmentSize is how many bytes of the settled answer are delivered per
// streamed fragment.
const FragmentSize = 64

// DefaultTranscriptTTL bounds how long an idle session's transcript is
// kept when no explicit TTL is wired from the gating session lifetime.
const DefaultTranscriptTTL = 24 * time.Hour

// ChatOutcome is the conversational half of a turn.
type ChatOutcome struct {
	Answer string
	Err    error
}

// InsightsOutcome is the structured half of a turn.
type InsightsOutcome struct {
	Bundle *insights.Output
	Err    error
}

// TurnResult joins both halves. Either side may fail without affecting the
// other; the caller renders whatever settled successfully.
type TurnResult struct {
	Turn      int
	WishCount int
	Upgraded  bool
	Chat      ChatOutcome
	Insights  InsightsOutcome
}

type transcriptEntry struct {
	transcript *conversation.Transcript
	lastActive time.Time
}

type Orchestrator struct {
	gate     *gating.Gate
	chat     *chatassist.Handler
	insights *insights.Handler
	contract *schema.Contract
	obs      *observability.Observability
	logger   logger.Logger

	mu            sync.Mutex
	transcripts   map[string]*transcriptEntry
	transcriptTTL time.Duration
	now           func() time.Time
	maxFree       int
}

func New(gate *gating.Gate, chat *chatassist.Handler, insightsHandler *insights.Handler, maxFree int, obs *observability.Observability, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		gate:     gate,
		chat:     chat,
		insights: insightsHandler,
		contract: schema.ChatAssistant(),
		obs:      obs,
		logger: log.With(map[string]interface{}{
			"component": "orchestrator",
		}),
		transcripts:   make(map[string]*transcriptEntry),
		transcriptTTL: DefaultTranscriptTTL,
		now:           time.Now,
		maxFree:       maxFree,
	}
}

// WithTranscriptTTL bounds idle transcript retention, normally to the
// gating session lifetime so both expire together.
func (o *Orchestrator) WithTranscriptTTL(ttl time.Duration) *Orchestrator {
	if ttl > 0 {
		o.transcriptTTL = ttl
	}
	return o
}

// OnFragment receives ordered pieces of the chat answer for one turn.
type OnFragment func(turn int, fragment string)

// ProcessTurn runs one gated conversational turn. A non-nil error means the
// turn was rejected before generation (invalid question, quota, duplicate,
// store failure): nothing was generated and no wish was consumed. Once the
// gate admits the question, the error is nil and the per-flow outcomes
// carry their own successes or failures.
func (o *Orchestrator) ProcessTurn(ctx context.Context, sessionID, question string, onFragment OnFragment) (*TurnResult, error) {
	// An un-sendable question must not burn a wish, so it is checked
	// against the chat contract before the gate sees it.
	if err := o.contract.ValidateInput(map[string]interface{}{"question": question}); err != nil {
		return nil, err
	}

	session, err := o.gate.Accept(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer o.gate.Release(sessionID)

	metrics.TurnsInFlight.Inc()
	defer metrics.TurnsInFlight.Dec()
	started := time.Now()

	transcript := o.Transcript(sessionID)
	turn := transcript.BeginTurn(question)

	result := &TurnResult{
		Turn:      turn,
		WishCount: session.QuestionsUsed,
		Upgraded:  session.Upgraded,
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		output, err := o.chat.Execute(ctx, &chatassist.Input{
			Question:  question,
			WishCount: session.QuestionsUsed,
		})
		if err != nil {
			result.Chat.Err = err
			return
		}
		result.Chat.Answer = output.Answer
	}()

	go func() {
		defer wg.Done()
		bundle, err := o.insights.Execute(ctx, &insights.Input{Question: question})
		if err != nil {
			result.Insights.Err = err
			return
		}
		result.Insights.Bundle = bundle
	}()

	wg.Wait()

	o.settle(transcript, turn, result, onFragment)

	status := "success"
	if result.Chat.Err != nil {
		status = "failure"
	}
	if o.obs != nil {
		o.obs.RecordTurnProcessed(ctx, status)
		o.obs.RecordTurnDuration(ctx, time.Since(started), status)
	}

	o.logger.Info("turn settled", map[string]interface{}{
		"sessionId":  sessionID,
		"turn":       turn,
		"wishCount":  result.WishCount,
		"chatOk":     result.Chat.Err == nil,
		"insightsOk": result.Insights.Err == nil,
	})

	return result, nil
}

// settle appends the chat outcome to the transcript. The answer is
// delivered as ordered fragments; anything belonging to a superseded turn
// is dropped by the transcript itself.
func (o *Orchestrator) settle(transcript *conversation.Transcript, turn int, result *TurnResult, onFragment OnFragment) {
	if result.Chat.Err != nil {
		if transcript.Fail(turn, prompt.Apology) && onFragment != nil {
			onFragment(turn, prompt.Apology)
		}
		return
	}

	for _, fragment := range Fragments(result.Chat.Answer, FragmentSize) {
		if !transcript.AppendFragment(turn, fragment) {
			return
		}
		if onFragment != nil {
			onFragment(turn, fragment)
		}
	}
	transcript.Complete(turn, result.Chat.Answer)
}

// Fragments splits text into ordered pieces of at most size bytes, never
// cutting a rune across pieces. A single rune wider than size stands
// alone.
func Fragments(text string, size int) []string {
	if size <= 0 {
		return []string{text}
	}
	var out []string
	start := 0
	i := 0
	for i < len(text) {
		_, n := utf8.DecodeRuneInString(text[i:])
		if i+n-start > size && i > start {
			out = append(out, text[start:i])
			start = i
		}
		i += n
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

// Transcript returns the session's transcript, creating it with the
// greeting on first contact. Transcripts idle past the TTL are evicted,
// so a session that outlived its gating state starts over from the
// greeting.
func (o *Orchestrator) Transcript(sessionID string) *conversation.Transcript {
	o.mu.Lock()
	defer o.mu.Unlock()

	now := o.now()
	for id, entry := range o.transcripts {
		if now.Sub(entry.lastActive) > o.transcriptTTL {
			delete(o.transcripts, id)
		}
	}

	entry, ok := o.transcripts[sessionID]
	if !ok {
		entry = &transcriptEntry{transcript: conversation.New(prompt.SessionGreeting(o.maxFree))}
		o.transcripts[sessionID] = entry
	}
	entry.lastActive = now
	return entry.transcript
}
