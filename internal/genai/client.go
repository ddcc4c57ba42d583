// internal/genai/client.go
// Package genai is the structured-generation client. Every call declares a
// contract; the client never returns model output that fails validation.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	stderrors "github.com/anyanwuihueze/japa-genie-active/internal/common/errors"
	"github.com/anyanwuihueze/japa-genie-active/internal/common/logger"
	"github.com/anyanwuihueze/japa-genie-active/internal/schema"
)

// Options configures the upstream generation backend.
type Options struct {
	BaseURL string
	APIKey  string
	Model   string
}

// Request is one generation call.
type Request struct {
	Contract    *schema.Contract
	Prompt      string
	MaxTokens   int
	Temperature float64
}

type Client struct {
	opts   Options
	client *http.Client
	logger logger.Logger
}

func NewClient(opts Options, log logger.Logger) *Client {
	return &Client{
		opts: opts,
		client: &http.Client{
			// No client-level timeout; the per-call context carries the deadline.
		},
		logger: log.With(map[string]interface{}{
			"component": "genai",
		}),
	}
}

// Generate performs exactly one model invocation and returns the raw
// output bytes, already validated against the request's contract. The
// client never retries; retry policy belongs to the flow layer, which
// wraps calls with its own budget when it wants one.
func (c *Client) Generate(ctx context.Context, req *Request) ([]byte, error) {
	flow := req.Contract.Name

	body, err := json.Marshal(map[string]interface{}{
		"model":       c.opts.Model,
		"prompt":      req.Prompt,
		"max_tokens":  req.MaxTokens,
		"temperature": req.Temperature,
	})
	if err != nil {
		return nil, stderrors.NewUpstreamFailureError(flow, fmt.Errorf("encode request: %w", err))
	}

	started := time.Now()

	resp, err := c.post(ctx, body, flow)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var apiResponse struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, stderrors.NewUpstreamFailureError(flow, fmt.Errorf("decode response: %w", err))
	}

	if strings.TrimSpace(apiResponse.Text) == "" {
		return nil, stderrors.NewEmptyResponseError(flow)
	}

	raw := []byte(apiResponse.Text)
	if err := req.Contract.ValidateOutput(raw); err != nil {
		c.logger.Warn("model output failed contract", map[string]interface{}{
			"flow":  flow,
			"error": err.Error(),
		})
		return nil, err
	}

	c.logger.Info("generation completed", map[string]interface{}{
		"flow":       flow,
		"durationMs": time.Since(started).Milliseconds(),
		"bytes":      len(raw),
	})

	return raw, nil
}

// GenerateInto generates and unmarshals the validated output into out.
func (c *Client) GenerateInto(ctx context.Context, req *Request, out interface{}) error {
	raw, err := c.Generate(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return stderrors.NewSchemaViolationError(req.Contract.Name, []string{fmt.Sprintf("decode validated output: %v", err)})
	}
	return nil
}

func (c *Client) post(ctx context.Context, body []byte, flow string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+"/api/ai/generate", bytes.NewReader(body))
	if err != nil {
		return nil, stderrors.NewUpstreamFailureError(flow, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.opts.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, stderrors.NewUpstreamTimeoutError(flow)
		}
		c.logger.Warn("generation call failed", map[string]interface{}{
			"flow":  flow,
			"error": err.Error(),
		})
		return nil, stderrors.NewUpstreamFailureError(flow, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		c.logger.Warn("generation call failed", map[string]interface{}{
			"flow":   flow,
			"status": resp.StatusCode,
		})
		return nil, stderrors.NewUpstreamFailureError(flow, fmt.Errorf("status %d", resp.StatusCode))
	}

	return resp, nil
}
