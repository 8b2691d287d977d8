package webhook

import (
	"context"
	"encoding/json"
	"time"
)

// EventType names a webhook event.
type EventType string

const (
	EventCheckoutSessionCompleted     EventType = "checkout.session.completed"
	EventCheckoutSessionPaymentFailed EventType = "checkout.session.payment_failed"
	EventB2BPaymentReceived           EventType = "b2b.payment_received"
	EventB2BPaymentFailed             EventType = "b2b.payment_failed"
	EventMerchantPaymentReceived      EventType = "merchant.payment_received"
	EventCheckoutCompleted            EventType = "checkout.completed"
	EventPayoutCompleted              EventType = "payout.completed"
	EventPayoutFailed                 EventType = "payout.failed"
	EventTransactionCreated           EventType = "transaction.created"
	EventTransactionUpdated           EventType = "transaction.updated"
)

// Event is a decoded webhook delivery.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	WebhookID string          `json:"webhook_id,omitempty"`
	CreatedAt *time.Time      `json:"created_at,omitempty"`
	Data      json.RawMessage `json:"data"`
}

// UnmarshalJSON accepts the legacy "event" field in place of "type".
func (e *Event) UnmarshalJSON(b []byte) error {
	type plain Event
	var aux struct {
		plain
		Event EventType `json:"event"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*e = Event(aux.plain)
	if e.Type == "" {
		e.Type = aux.Event
	}
	return nil
}

// DecodeEvent parses a verified delivery body.
func DecodeEvent(body []byte) (Event, error) {
	var evt Event
	if err := json.Unmarshal(body, &evt); err != nil {
		return Event{}, err
	}
	return evt, nil
}

type eventKey struct{}

// WithEvent stores evt on ctx.
func WithEvent(ctx context.Context, evt Event) context.Context {
	return context.WithValue(ctx, eventKey{}, evt)
}

// EventFromContext returns the event stored by Handler.
func EventFromContext(ctx context.Context) (Event, bool) {
	evt, ok := ctx.Value(eventKey{}).(Event)
	return evt, ok
}
