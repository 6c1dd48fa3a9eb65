package events

import (
	"context"
	"time"
)

// Event types
const (
	EventSessionCreated      = "session.created"
	EventBillRequested       = "session.bill_requested"
	EventBillRequestCanceled = "session.bill_request_canceled"
	EventOrderSubmitted      = "order.submitted"
	EventOrderStatusChanged  = "order.status_changed"
	EventBillSettled         = "bill.settled"
	EventSessionsExpired     = "sessions.expired"
	EventTableCartsAbandoned = "table_carts.abandoned"
)

type Event struct {
	Type         string      `json:"event"`
	RestaurantID uint        `json:"restaurant_id"`
	OccurredAt   time.Time   `json:"occurred_at"`
	Data         interface{} `json:"data"`
}

// Publisher delivers domain events after the state change they describe has committed.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
