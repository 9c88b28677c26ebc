// Package events publishes and consumes job change notifications over NATS.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/spigell/skillbridge-assistant/internal/logger"
)

// DefaultSubject is used when no subject is configured.
const DefaultSubject = "skillbridge.jobs"

// Action names the kind of change applied to a job.
type Action string

const (
	Created Action = "CREATED"
	Updated Action = "UPDATED"
	Deleted Action = "DELETED"
)

// JobEvent announces a change to a job record.
type JobEvent struct {
	ID        int64     `json:"id"`
	Action    Action    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// NewJobEvent stamps an event with the current time.
func NewJobEvent(id int64, action Action) JobEvent {
	return JobEvent{ID: id, Action: action, Timestamp: time.Now().UTC()}
}

// Publisher delivers job events.
type Publisher interface {
	Publish(ctx context.Context, event JobEvent) error
}

// Nop discards every event.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, JobEvent) error { return nil }

// Connect dials a NATS server with the reconnect policy used by the service.
func Connect(url string) (*nats.Conn, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("nats url is required")
	}

	conn, err := nats.Connect(url,
		nats.Name("skillbridge"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats at %s: %w", url, err)
	}
	return conn, nil
}

// NATSPublisher publishes job events as JSON on a single subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	logger  *zap.Logger
}

// NewNATSPublisher wraps an established connection.
func NewNATSPublisher(conn *nats.Conn, subject string, log *zap.Logger) *NATSPublisher {
	if subject = strings.TrimSpace(subject); subject == "" {
		subject = DefaultSubject
	}
	return &NATSPublisher{conn: conn, subject: subject, logger: logger.OrNop(log)}
}

// Subject returns the subject events are published on.
func (p *NATSPublisher) Subject() string {
	return p.subject
}

// Publish implements Publisher.
func (p *NATSPublisher) Publish(ctx context.Context, event JobEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal job event: %w", err)
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish job event: %w", err)
	}

	p.logger.Debug("job event published",
		zap.String("subject", p.subject),
		zap.Int64("job_id", event.ID),
		zap.String("action", string(event.Action)),
	)
	return nil
}

// Subscribe delivers decoded events from subject to handle. Messages that do
// not decode are logged and dropped.
func Subscribe(conn *nats.Conn, subject string, log *zap.Logger, handle func(JobEvent)) (*nats.Subscription, error) {
	if subject = strings.TrimSpace(subject); subject == "" {
		subject = DefaultSubject
	}
	log = logger.OrNop(log)

	sub, err := conn.Subscribe(subject, func(msg *nats.Msg) {
		var event JobEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			log.Warn("dropping malformed job event", zap.String("subject", msg.Subject), zap.Error(err))
			return
		}
		handle(event)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", subject, err)
	}
	return sub, nil
}

// LogHandler returns a handler that records received events.
func LogHandler(log *zap.Logger) func(JobEvent) {
	log = logger.OrNop(log)
	return func(event JobEvent) {
		log.Info("job event received",
			zap.Int64("job_id", event.ID),
			zap.String("action", string(event.Action)),
			zap.Time("timestamp", event.Timestamp),
		)
	}
}
