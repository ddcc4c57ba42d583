// internal/server/server_test.go
package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anyanwuihueze/japa-genie-active/internal/common/logger"
	"github.com/anyanwuihueze/japa-genie-active/internal/flows/canvas"
	"github.com/anyanwuihueze/japa-genie-active/internal/flows/chatassist"
	"github.com/anyanwuihueze/japa-genie-active/internal/flows/insights"
	"github.com/anyanwuihueze/japa-genie-active/internal/flows/rejection"
	"github.com/anyanwuihueze/japa-genie-active/internal/flows/siteassist"
	"github.com/anyanwuihueze/japa-genie-active/internal/gating"
	"github.com/anyanwuihueze/japa-genie-active/internal/genai"
	"github.com/anyanwuihueze/japa-genie-active/internal/orchestrator"
	"github.com/anyanwuihueze/japa-genie-active/internal/prompt"
)

// fakeModel answers every flow by recognizing its persona line.
func fakeModel(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		promptText, _ := body["prompt"].(string)

		var doc interface{}
		switch {
		case strings.Contains(promptText, "You are Japa Genie"):
			doc = map[string]string{"answer": "Express Entry is your best route."}
		case strings.Contains(promptText, "expert immigration analyst"):
			doc = map[string]interface{}{
				"insights": []map[string]interface{}{
					{"headline": "a", "detail": "x"},
					{"headline": "b", "detail": "y"},
					{"headline": "c", "detail": "z"},
				},
			}
		case strings.Contains(promptText, "expert AI visa consultant"):
			option := map[string]interface{}{
				"visaType": "Express Entry", "estimatedCost": 2300,
				"approvalChance": 80, "processingTime": "6 months",
			}
			doc = map[string]interface{}{
				"visaOptions": []interface{}{option, option, option},
				"costEstimates": map[string]interface{}{
					"applicationFees": 1365, "legalFees": 3000,
					"otherExpenses": 1200, "totalCost": 5565,
				},
				"insightsSummary": "Strong profile.",
			}
		case strings.Contains(promptText, "visa rejection analysis"):
			doc = map[string]string{"strategy": "## Reapply with stronger evidence"}
		default:
			doc = map[string]string{"answer": "Japa Genie helps with visas worldwide. See /features."}
		}

		text, err := json.Marshal(doc)
		require.NoError(t, err)
		assert.NoError(t, json.NewEncoder(w).Encode(map[string]string{"text": string(text)}))
	}
}

func newTestServer(t *testing.T, maxFree int) *httptest.Server {
	t.Helper()

	model := httptest.NewServer(fakeModel(t))
	t.Cleanup(model.Close)

	log := logger.NewTestLogger(t)
	client := genai.NewClient(genai.Options{BaseURL: model.URL}, log)

	chatCfg := chatassist.DefaultConfig()
	chatCfg.MaxRetries = 0
	chatCfg.MaxFreeWishes = maxFree

	gate := gating.NewGate(gating.NewMemoryStore(), maxFree, log)
	chat := chatassist.NewHandler(chatCfg, client, nil, log)
	insightsHandler := insights.NewHandler(insights.DefaultConfig(), client, nil, log)
	orch := orchestrator.New(gate, chat, insightsHandler, maxFree, nil, log)

	srv := New(orch,
		insightsHandler,
		canvas.NewHandler(canvas.DefaultConfig(), client, log),
		rejection.NewHandler(rejection.DefaultConfig(), client, log),
		siteassist.NewHandler(siteassist.DefaultConfig(), client, log),
		gate,
		Options{Port: 0},
		log)

	api := httptest.NewServer(srv.Router())
	t.Cleanup(api.Close)
	return api
}

func postJSON(t *testing.T, url string, body interface{}, headers map[string]string) (*http.Response, map[string]interface{}) {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestChatEndpoint(t *testing.T) {
	api := newTestServer(t, 3)

	resp, body := postJSON(t, api.URL+"/api/chat", map[string]interface{}{
		"question": "How do I move to Canada as an engineer?",
	}, nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	answer, _ := body["answer"].(string)
	assert.Contains(t, answer, "Express Entry is your best route.")
	assert.True(t, strings.HasSuffix(answer, prompt.Disclaimer))
	assert.NotEmpty(t, body["sessionId"])
	assert.Equal(t, 1.0, body["wishCount"])
	assert.NotNil(t, body["insights"])
}

func TestChatQuotaFlow(t *testing.T) {
	api := newTestServer(t, 1)
	headers := map[string]string{"X-Session-ID": "sess-quota"}

	resp, _ := postJSON(t, api.URL+"/api/chat", map[string]interface{}{"question": "free one"}, headers)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := postJSON(t, api.URL+"/api/chat", map[string]interface{}{"question": "one too many"}, headers)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	errBody, _ := body["error"].(map[string]interface{})
	require.NotNil(t, errBody)
	assert.Equal(t, "QUOTA_EXCEEDED", errBody["code"])

	// upgrading unlocks the session
	resp, _ = postJSON(t, api.URL+"/api/upgrade", map[string]interface{}{
		"sessionId":  "sess-quota",
		"credential": "user@example.com",
	}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = postJSON(t, api.URL+"/api/chat", map[string]interface{}{"question": "unlimited now"}, headers)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["upgraded"])
}

func TestChatRejectsEmptyQuestion(t *testing.T) {
	api := newTestServer(t, 3)

	resp, body := postJSON(t, api.URL+"/api/chat", map[string]interface{}{"question": ""}, nil)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errBody, _ := body["error"].(map[string]interface{})
	require.NotNil(t, errBody)
	assert.Equal(t, "INPUT_VALIDATION_FAILED", errBody["code"])
}

func TestChatIgnoresClientWishCount(t *testing.T) {
	api := newTestServer(t, 3)
	headers := map[string]string{"X-Session-ID": "sess-count"}

	resp, body := postJSON(t, api.URL+"/api/chat", map[string]interface{}{
		"question":  "first question",
		"wishCount": 99,
	}, headers)

	// the server-side counter is authoritative
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1.0, body["wishCount"])
}

func TestInsightsEndpoint(t *testing.T) {
	api := newTestServer(t, 3)

	resp, body := postJSON(t, api.URL+"/api/insights", map[string]interface{}{
		"question": "Student visa for Germany?",
	}, nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	insightsList, _ := body["insights"].([]interface{})
	assert.Len(t, insightsList, 3)
}

func TestVisaInsightsEndpoint(t *testing.T) {
	api := newTestServer(t, 3)

	resp, body := postJSON(t, api.URL+"/api/visa-insights", map[string]interface{}{
		"profile":     "engineer, 5 years",
		"destination": "Canada",
		"budget":      10000,
	}, nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	options, _ := body["visaOptions"].([]interface{})
	assert.Len(t, options, 3)
	assert.Equal(t, "Strong profile.", body["insightsSummary"])
}

func TestRejectionReversalEndpoint(t *testing.T) {
	api := newTestServer(t, 3)

	resp, body := postJSON(t, api.URL+"/api/rejection-reversal", map[string]interface{}{
		"visaType":        "Student",
		"destination":     "UK",
		"rejectionReason": "funds",
		"userBackground":  "admitted student",
	}, nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["strategy"], "Reapply")
}

func TestVisitorChatEndpoint(t *testing.T) {
	api := newTestServer(t, 3)

	resp, body := postJSON(t, api.URL+"/api/visitor-chat", map[string]interface{}{
		"question": "What is Japa Genie?",
	}, nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["answer"], "/features")
}

func TestHistoryEndpoint(t *testing.T) {
	api := newTestServer(t, 3)
	headers := map[string]string{"X-Session-ID": "sess-history"}

	_, _ = postJSON(t, api.URL+"/api/chat", map[string]interface{}{"question": "first question"}, headers)

	req, err := http.NewRequest(http.MethodGet, api.URL+"/api/chat/history?sessionId=sess-history", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	messages, _ := body["messages"].([]interface{})
	require.Len(t, messages, 3)

	greeting, _ := messages[0].(map[string]interface{})
	assert.Contains(t, greeting["content"], "Welcome, Pathfinder!")
}

func TestHealthz(t *testing.T) {
	api := newTestServer(t, 3)

	resp, err := http.Get(api.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
