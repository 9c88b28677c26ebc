package assistant

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spigell/skillbridge-assistant/internal/jobs"
)

// DefaultSessionTTL is how long an idle conversation is kept.
const DefaultSessionTTL = 30 * time.Minute

// Conversation is the state carried between turns of one user's chat.
type Conversation struct {
	ID          string
	LastMatches []jobs.Match
	UpdatedAt   time.Time
}

// NewConversation starts an empty conversation with a fresh ID.
func NewConversation() Conversation {
	return Conversation{ID: uuid.NewString()}
}

// HasPriorMatches reports whether an earlier turn found jobs.
func (c Conversation) HasPriorMatches() bool {
	return len(c.LastMatches) > 0
}

// Sessions keeps conversations in memory until they have been idle for the
// TTL.
type Sessions struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	items map[string]Conversation
}

// NewSessions creates a store. A non-positive ttl uses DefaultSessionTTL.
func NewSessions(ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{ttl: ttl, now: time.Now, items: make(map[string]Conversation)}
}

// Get returns the live conversation with id.
func (s *Sessions) Get(id string) (Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.items[id]
	if !ok {
		return Conversation{}, false
	}
	if s.expired(conv) {
		delete(s.items, id)
		return Conversation{}, false
	}
	return conv, true
}

// Save stores conv and refreshes its idle timer.
func (s *Sessions) Save(conv Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv.UpdatedAt = s.now()
	s.items[conv.ID] = conv
}

// Sweep drops expired conversations and returns how many were removed.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, conv := range s.items {
		if s.expired(conv) {
			delete(s.items, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored conversations.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Run sweeps every interval until ctx is done.
func (s *Sessions) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = s.ttl
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *Sessions) expired(conv Conversation) bool {
	return s.now().Sub(conv.UpdatedAt) > s.ttl
}
