package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// ModerationSubjectPrefix prefixes NATS subjects; the event type is appended,
// e.g. "agora.moderation.report.resolved".
const ModerationSubjectPrefix = "agora.moderation."

// NATSPublisher forwards moderation events to NATS for consumers outside the
// API (audit trails, downstream notifiers).
type NATSPublisher struct {
	conn *nats.Conn
}

// ConnectNATS dials url and returns a publisher that owns the connection.
func ConnectNATS(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("agora-api"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return NewNATSPublisher(nc), nil
}

func NewNATSPublisher(nc *nats.Conn) *NATSPublisher {
	return &NATSPublisher{conn: nc}
}

// Subject returns the NATS subject an event type is published on.
func Subject(eventType string) string {
	return ModerationSubjectPrefix + eventType
}

func (p *NATSPublisher) PublishModerationEvent(ctx context.Context, ev ModerationEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := ev.Encode()
	if err != nil {
		return fmt.Errorf("marshal moderation event: %w", err)
	}
	return p.conn.Publish(Subject(ev.Type), payload)
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if p.conn == nil {
		return
	}
	_ = p.conn.Drain()
}
