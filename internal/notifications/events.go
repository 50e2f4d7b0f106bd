// Package notifications fans moderation events out to Redis, NATS and the
// admin WebSocket feed.
package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"agora/internal/observability"
)

const (
	EventReportCreated  = "report.created"
	EventReportResolved = "report.resolved"
)

// ModerationEvent is the payload published whenever the moderation queue changes.
type ModerationEvent struct {
	Type       string    `json:"type"`
	ReportID   uint      `json:"reportId"`
	PostID     uint      `json:"postId"`
	ActorID    uint      `json:"actorId"`
	Action     string    `json:"action,omitempty"`
	Outcome    string    `json:"outcome,omitempty"`
	Cascaded   int64     `json:"cascaded,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Encode marshals the event for transports that carry raw bytes.
func (e ModerationEvent) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeModerationEvent parses a payload produced by Encode.
func DecodeModerationEvent(payload []byte) (ModerationEvent, error) {
	var ev ModerationEvent
	err := json.Unmarshal(payload, &ev)
	return ev, err
}

// Publisher delivers moderation events to one transport.
type Publisher interface {
	PublishModerationEvent(ctx context.Context, ev ModerationEvent) error
}

type namedPublisher struct {
	transport string
	pub       Publisher
}

// Fanout publishes each event to every registered transport and joins the
// failures. A failing transport does not stop delivery to the others.
type Fanout struct {
	targets []namedPublisher
}

func NewFanout() *Fanout {
	return &Fanout{}
}

// Add registers a transport. Nil publishers are ignored so optional
// transports can be added unconditionally.
func (f *Fanout) Add(transport string, p Publisher) *Fanout {
	if p == nil {
		return f
	}
	f.targets = append(f.targets, namedPublisher{transport: transport, pub: p})
	return f
}

// Len returns the number of registered transports.
func (f *Fanout) Len() int {
	return len(f.targets)
}

func (f *Fanout) PublishModerationEvent(ctx context.Context, ev ModerationEvent) error {
	var errs []error
	for _, t := range f.targets {
		if err := t.pub.PublishModerationEvent(ctx, ev); err != nil {
			observability.EventsPublished.WithLabelValues(t.transport, "error").Inc()
			errs = append(errs, err)
			continue
		}
		observability.EventsPublished.WithLabelValues(t.transport, "ok").Inc()
	}
	return errors.Join(errs...)
}
