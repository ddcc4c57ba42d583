// internal/flows/siteassist/handler.go
// Package siteassist answers questions about the product itself. The
// persona is scoped to the platform and redirects visa questions to the
// main assistant.
package siteassist

import (
	"context"
	"time"

	stderrors "github.com/anyanwuihueze/japa-genie-active/internal/common/errors"
	"github.com/anyanwuihueze/japa-genie-active/internal/common/logger"
	"github.com/anyanwuihueze/japa-genie-active/internal/common/metrics"
	"github.com/anyanwuihueze/japa-genie-active/internal/common/retry"
	"github.com/anyanwuihueze/japa-genie-active/internal/genai"
	"github.com/anyanwuihueze/japa-genie-active/internal/prompt"
	"github.com/anyanwuihueze/japa-genie-active/internal/schema"
)

const FlowName = schema.FlowSiteAssistant

type Handler struct {
	config   *Config
	client   *genai.Client
	contract *schema.Contract
	logger   logger.Logger
}

func NewHandler(config *Config, client *genai.Client, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		client:   client,
		contract: schema.SiteAssistant(),
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

	req := &genai.Request{
		Contract:    h.contract,
		Prompt:      prompt.SiteAssistant(input.Question),
		MaxTokens:   h.config.MaxTokens,
		Temperature: h.config.Temperature,
	}

	var output Output
	err := retry.Do(ctx, h.config.MaxRetries, 100*time.Millisecond, func() error {
		return h.client.GenerateInto(ctx, req, &output)
	})
	if err != nil {
		return nil, err
	}

	return &output, nil
}
