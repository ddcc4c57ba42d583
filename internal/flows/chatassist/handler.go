// internal/flows/chatassist/handler.go
// Package chatassist answers visa questions in the genie persona, with
// optional knowledge grounding and the mandatory closing disclaimer.
package chatassist

import (
	"context"
	"strings"
	"time"

	stderrors "github.com/anyanwuihueze/japa-genie-active/internal/common/errors"
	"github.com/anyanwuihueze/japa-genie-active/internal/common/logger"
	"github.com/anyanwuihueze/japa-genie-active/internal/common/metrics"
	"github.com/anyanwuihueze/japa-genie-active/internal/common/retry"
	"github.com/anyanwuihueze/japa-genie-active/internal/genai"
	"github.com/anyanwuihueze/japa-genie-active/internal/knowledge"
	"github.com/anyanwuihueze/japa-genie-active/internal/prompt"
	"github.com/anyanwuihueze/japa-genie-active/internal/schema"
)

const FlowName = schema.FlowChatAssistant

type Handler struct {
	config    *Config
	client    *genai.Client
	retriever knowledge.Retriever
	contract  *schema.Contract
	logger    logger.Logger
}

func NewHandler(config *Config, client *genai.Client, retriever knowledge.Retriever, log logger.Logger) *Handler {
	if retriever == nil {
		retriever = knowledge.NoopRetriever{}
	}
	return &Handler{
		config:    config,
		client:    client,
		retriever: retriever,
		contract:  schema.ChatAssistant(),
		logger: log.With(map[string]interface{}{
			"flow": FlowName,
		}),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	started := time.Now()

	output, err := h.execute(ctx, input)

	metrics.FlowDuration.WithLabelValues(FlowName).Observe(time.Since(started).Seconds())
	if err != nil {
		metrics.FlowGenerations.WithLabelValues(FlowName, "failure").Inc()
		metrics.FlowGenerationFailures.WithLabelValues(FlowName, string(stderrors.CodeOf(err))).Inc()
		return nil, err
	}
	metrics.FlowGenerations.WithLabelValues(FlowName, "success").Inc()
	return output, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := h.contract.ValidateInput(input); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	// Retrieval is best-effort; an empty slice falls through to model
	// knowledge.
	snippets, err := h.retriever.Retrieve(ctx, input.Question)
	if err != nil {
		h.logger.Warn("retrieval failed, continuing without grounding", map[string]interface{}{
			"error": err.Error(),
		})
		snippets = nil
	}

	rendered := prompt.Chat(prompt.ChatInput{
		Question:  input.Question,
		WishCount: input.WishCount,
		MaxFree:   h.config.MaxFreeWishes,
		Snippets:  snippets,
	})

	req := &genai.Request{
		Contract:    h.contract,
		Prompt:      rendered,
		MaxTokens:   h.config.MaxTokens,
		Temperature: h.config.Temperature,
	}

	var output Output
	err = retry.Do(ctx, h.config.MaxRetries, 100*time.Millisecond, func() error {
		return h.client.GenerateInto(ctx, req, &output)
	})
	if err != nil {
		return nil, err
	}

	if h.config.DisclaimerEnabled {
		output.Answer = ensureDisclaimer(output.Answer)
	}

	h.logger.Info("chat answer generated", map[string]interface{}{
		"wishCount": input.WishCount,
		"grounded":  len(snippets) > 0,
	})

	return &output, nil
}

// ensureDisclaimer guarantees the official-sources reminder closes the
// answer even when the model ignored the prompt instruction.
func ensureDisclaimer(answer string) string {
	trimmed := strings.TrimRight(answer, " \t\n")
	if strings.HasSuffix(trimmed, prompt.Disclaimer) {
		return trimmed
	}
	return trimmed + "\n\n" + prompt.Disclaimer
}
