package assistant

import (
	"context"
	"strings"
)

// Service answers queries on behalf of sessions, creating conversations on
// demand.
type Service struct {
	assistant *Assistant
	sessions  *Sessions
}

// NewService pairs an Assistant with a session store.
func NewService(a *Assistant, sessions *Sessions) *Service {
	if sessions == nil {
		sessions = NewSessions(0)
	}
	return &Service{assistant: a, sessions: sessions}
}

// Sessions returns the underlying session store.
func (s *Service) Sessions() *Sessions {
	return s.sessions
}

// Ask answers text in the conversation identified by sessionID. Unknown or
// expired IDs start a new conversation; the returned ID must be sent back on
// the next turn.
func (s *Service) Ask(ctx context.Context, sessionID, text string) (string, string) {
	conv, ok := s.sessions.Get(strings.TrimSpace(sessionID))
	if !ok {
		conv = NewConversation()
	}

	reply, conv := s.assistant.Ask(ctx, conv, text)
	s.sessions.Save(conv)
	return reply, conv.ID
}
