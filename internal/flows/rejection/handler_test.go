// internal/flows/rejection/handler_test.go
package rejection

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "github.com/anyanwuihueze/japa-genie-active/internal/common/errors"
	"github.com/anyanwuihueze/japa-genie-active/internal/common/logger"
	"github.com/anyanwuihueze/japa-genie-active/internal/genai"
)

func newTestHandler(t *testing.T, upstream http.HandlerFunc) *Handler {
	t.Helper()
	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	client := genai.NewClient(genai.Options{BaseURL: server.URL}, logger.NewTestLogger(t))
	return NewHandler(DefaultConfig(), client, logger.NewTestLogger(t))
}

func TestExecuteReturnsStrategy(t *testing.T) {
	var sentPrompt string
	handler := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		sentPrompt, _ = body["prompt"].(string)

		text, err := json.Marshal(map[string]string{
			"strategy": "## Step 1: Address the funds gap\nProvide six months of bank statements.",
		})
		require.NoError(t, err)
		assert.NoError(t, json.NewEncoder(w).Encode(map[string]string{"text": string(text)}))
	})

	output, err := handler.Execute(context.Background(), &Input{
		VisaType:        "Student",
		Destination:     "UK",
		RejectionReason: "insufficient funds evidence",
		UserBackground:  "admitted to a master's program in data science",
	})

	require.NoError(t, err)
	assert.Contains(t, output.Strategy, "Step 1")

	// all four applicant details reach the prompt
	assert.Contains(t, sentPrompt, "Visa Type: Student")
	assert.Contains(t, sentPrompt, "Destination Country: UK")
	assert.Contains(t, sentPrompt, "insufficient funds evidence")
	assert.Contains(t, sentPrompt, "master's program in data science")
}

func TestExecuteRejectsMissingRequiredFields(t *testing.T) {
	handler := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Fail(t, "model must not be called for invalid input")
	})

	_, err := handler.Execute(context.Background(), &Input{VisaType: "Student"})

	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeInputValidationFailed, stderrors.CodeOf(err))
}

func TestExecuteEmptyStrategyIsSchemaViolation(t *testing.T) {
	handler := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		text, err := json.Marshal(map[string]string{"strategy": ""})
		require.NoError(t, err)
		assert.NoError(t, json.NewEncoder(w).Encode(map[string]string{"text": string(text)}))
	})

	_, err := handler.Execute(context.Background(), &Input{
		VisaType:    "Work",
		Destination: "Germany",
	})

	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeSchemaViolation, stderrors.CodeOf(err))
}
