package messaging

import (
	"context"
	"time"
)

// EventReportGenerated is published after a report has been written to disk.
const EventReportGenerated = "report.generated"

type brokerPublisher struct {
	broker Broker
	prefix string
	now    func() time.Time
}

// NewPublisher publishes events on channel prefix+eventType.
func NewPublisher(broker Broker, prefix string) Publisher {
	return &brokerPublisher{broker: broker, prefix: prefix, now: time.Now}
}

func (p *brokerPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	return p.broker.Publish(ctx, p.Channel(eventType), Message{
		Type:       eventType,
		OccurredAt: p.now().UTC(),
		Payload:    payload,
	})
}

// Channel returns the broker channel an event type is published on.
func (p *brokerPublisher) Channel(eventType string) string {
	return p.prefix + eventType
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }
