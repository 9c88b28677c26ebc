package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"unicode/utf8"
)

const (
	// MaxMessageLength bounds a chat message, in characters.
	MaxMessageLength = 1000
	maxChatBodySize  = 64 << 10
)

// ChatRequest is the body of POST /chat/api.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse is the reply to POST /chat/api.
type ChatResponse struct {
	Reply     string `json:"reply"`
	SessionID string `json:"session_id"`
}

func handleChat(chat Chatter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxChatBodySize)
		defer r.Body.Close()

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "message is required")
			return
		}
		if utf8.RuneCountInString(req.Message) > MaxMessageLength {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "message must be at most %d characters", MaxMessageLength)
			return
		}

		reply, sessionID := chat.Ask(r.Context(), req.SessionID, req.Message)
		writeJSON(w, http.StatusOK, ChatResponse{Reply: reply, SessionID: sessionID})
	}
}
