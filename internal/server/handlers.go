// internal/server/handlers.go
package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	stderrors "github.com/anyanwuihueze/japa-genie-active/internal/common/errors"
	"github.com/anyanwuihueze/japa-genie-active/internal/flows/canvas"
	"github.com/anyanwuihueze/japa-genie-active/internal/flows/insights"
	"github.com/anyanwuihueze/japa-genie-active/internal/flows/rejection"
	"github.com/anyanwuihueze/japa-genie-active/internal/flows/siteassist"
)

const sessionHeader = "X-Session-ID"

type chatRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"sessionId,omitempty"`
	// Accepted for wire compatibility with older clients and ignored:
	// the server-side session counter is authoritative and is echoed
	// back in the response.
	WishCount int `json:"wishCount,omitempty"`
}

type chatResponse struct {
	Answer    string           `json:"answer"`
	SessionID string           `json:"sessionId"`
	Turn      int              `json:"turn"`
	WishCount int              `json:"wishCount"`
	Upgraded  bool             `json:"upgraded"`
	Insights  *insights.Output `json:"insights,omitempty"`
}

type upgradeRequest struct {
	SessionID  string `json:"sessionId"`
	Credential string `json:"credential"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// handleChat runs one gated turn: the conversational answer plus, when it
// settled successfully, the insights bundle from the same question.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, stderrors.NewInputValidationFailedError("visa_chat_assistant", []string{"body must be valid JSON"}))
		return
	}

	sessionID := s.sessionID(r, req.SessionID)

	result, err := s.orchestrator.ProcessTurn(r.Context(), sessionID, req.Question, nil)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if result.Chat.Err != nil {
		s.writeError(w, result.Chat.Err)
		return
	}

	resp := chatResponse{
		Answer:    result.Chat.Answer,
		SessionID: sessionID,
		Turn:      result.Turn,
		WishCount: result.WishCount,
		Upgraded:  result.Upgraded,
	}
	// a failed insights generation degrades the response, it does not
	// fail the turn
	if result.Insights.Err == nil {
		resp.Insights = result.Insights.Bundle
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := s.sessionID(r, r.URL.Query().Get("sessionId"))

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId": sessionID,
		"messages":  s.orchestrator.Transcript(sessionID).Messages(),
	})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	var input insights.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.writeError(w, stderrors.NewInputValidationFailedError("insights_generator", []string{"body must be valid JSON"}))
		return
	}

	output, err := s.insights.Execute(r.Context(), &input)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, output)
}

func (s *Server) handleVisaInsights(w http.ResponseWriter, r *http.Request) {
	var input canvas.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.writeError(w, stderrors.NewInputValidationFailedError("visa_insights_canvas", []string{"body must be valid JSON"}))
		return
	}

	output, err := s.canvas.Execute(r.Context(), &input)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, output)
}

func (s *Server) handleRejectionReversal(w http.ResponseWriter, r *http.Request) {
	var input rejection.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.writeError(w, stderrors.NewInputValidationFailedError("rejection_reversal", []string{"body must be valid JSON"}))
		return
	}

	output, err := s.rejection.Execute(r.Context(), &input)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, output)
}

func (s *Server) handleVisitorChat(w http.ResponseWriter, r *http.Request) {
	var input siteassist.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.writeError(w, stderrors.NewInputValidationFailedError("site_assistant", []string{"body must be valid JSON"}))
		return
	}

	output, err := s.siteassist.Execute(r.Context(), &input)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, output)
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	var req upgradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Credential == "" {
		s.writeError(w, stderrors.NewInputValidationFailedError("upgrade", []string{"credential is required"}))
		return
	}

	sessionID := s.sessionID(r, req.SessionID)

	session, err := s.gate.Upgrade(r.Context(), sessionID, req.Credential)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId": sessionID,
		"upgraded":  session.Upgraded,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// sessionID prefers the body value, then the header, then mints a new one.
func (s *Server) sessionID(r *http.Request, fromBody string) string {
	if fromBody != "" {
		return fromBody
	}
	if header := r.Header.Get(sessionHeader); header != "" {
		return header
	}
	return uuid.NewString()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := stderrors.CodeOf(err)
	status := http.StatusInternalServerError
	message := err.Error()

	if code != "" {
		status = stderrors.HTTPStatus(code)
		if stdErr, ok := err.(*stderrors.StandardError); ok {
			message = stdErr.Message
		}
	} else {
		code = "INTERNAL_ERROR"
	}

	s.logger.Warn("request failed", map[string]interface{}{
		"code":   string(code),
		"status": status,
	})

	s.writeJSON(w, status, errorResponse{Error: errorBody{
		Code:    string(code),
		Message: message,
	}})
}
