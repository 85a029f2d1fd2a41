package intasend

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Webhook event kinds this integration reacts to. Any other event is
// acknowledged without effect.
const (
	EventPaymentCompleted = "payment.completed"
	EventPaymentFailed    = "payment.failed"
)

// Event represents a parsed IntaSend webhook notification.
type Event struct {
	Event string    `json:"event"`
	Data  EventData `json:"data"`
}

// EventData carries the payment fields of a webhook event. APIRef is the
// correlation reference we assigned at checkout creation (our payment id);
// ID is the provider's own transaction id, unknown until settlement.
type EventData struct {
	APIRef string `json:"api_ref"`
	ID     string `json:"id"`
	State  string `json:"state,omitempty"`
	Value  string `json:"value,omitempty"`
}

// ParseEvent decodes a raw webhook body. It does not validate the
// correlation reference; events without one are only an error for the
// event kinds that need it, which is the caller's call.
func ParseEvent(payload []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("malformed webhook payload: %w", err)
	}
	if strings.TrimSpace(ev.Event) == "" {
		return nil, fmt.Errorf("malformed webhook payload: event is required")
	}
	return &ev, nil
}

// RequiresReference reports whether the event kind must carry an api_ref.
func (e *Event) RequiresReference() bool {
	return e.Event == EventPaymentCompleted || e.Event == EventPaymentFailed
}
