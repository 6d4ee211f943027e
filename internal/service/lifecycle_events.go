package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
)

// LifecycleEvent is broadcast after an assessment moves between stores.
type LifecycleEvent struct {
	Type      string    `json:"type"`
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	ActorID   string    `json:"actor_id"`
	ArchiveID string    `json:"archive_id,omitempty"`
	SentAt    time.Time `json:"sent_at"`
}

// Lifecycle event types.
const (
	EventAssessmentDeleted  = "assessment.deleted"
	EventAssessmentRestored = "assessment.restored"
)

// EventPublisher fans lifecycle events out to other services.
type EventPublisher interface {
	Publish(ctx context.Context, event LifecycleEvent) error
}

type natsPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher publishes events to subject.<type>. A nil connection
// yields a publisher that drops events.
func NewNATSPublisher(conn *nats.Conn, subject string) EventPublisher {
	if conn == nil || subject == "" {
		return noopPublisher{}
	}
	return &natsPublisher{conn: conn, subject: subject}
}

func (p *natsPublisher) Publish(_ context.Context, event LifecycleEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.conn.Publish(p.subject+"."+event.Type, payload)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, LifecycleEvent) error { return nil }
