// internal/flows/insights/handler.go
// Package insights produces the structured insights bundle rendered next to
// the chat answer: insight cards, cost estimates, visa alternatives and
// chart data.
package insights

import (
	"context"
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

const FlowName = schema.FlowInsightsGenerator

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
		contract:  schema.InsightsGenerator(),
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

	snippets, err := h.retriever.Retrieve(ctx, input.Question)
	if err != nil {
		h.logger.Warn("retrieval failed, continuing without grounding", map[string]interface{}{
			"error": err.Error(),
		})
		snippets = nil
	}

	req := &genai.Request{
		Contract:    h.contract,
		Prompt:      prompt.Insights(input.Question, snippets),
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

	h.logger.Info("insights generated", map[string]interface{}{
		"insightCount":     len(output.Insights),
		"hasChart":         output.ChartData != nil,
		"alternativeCount": len(output.VisaAlternatives),
	})

	return &output, nil
}
