package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"budget/internal/core"
)

const (
	EventTransactionCreated = "transaction.created"
	EventTransactionRemoved = "transaction.removed"
)

// Event is the envelope published for every ledger mutation. Created
// events carry the full transaction because the mirror worker has no
// access to the ledger file (single-writer constraint).
type Event struct {
	Type        string            `json:"type"`
	Timestamp   time.Time         `json:"timestamp"`
	Transaction *core.Transaction `json:"transaction,omitempty"`
	ID          string            `json:"id,omitempty"`
}

func NewCreatedEvent(tx core.Transaction) *Event {
	return &Event{
		Type:        EventTransactionCreated,
		Timestamp:   time.Now(),
		Transaction: &tx,
		ID:          tx.ID,
	}
}

func NewRemovedEvent(id string) *Event {
	return &Event{
		Type:      EventTransactionRemoved,
		Timestamp: time.Now(),
		ID:        id,
	}
}

func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func EventFromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	switch e.Type {
	case EventTransactionCreated:
		if e.Transaction == nil {
			return nil, fmt.Errorf("created event without transaction payload")
		}
	case EventTransactionRemoved:
		if e.ID == "" {
			return nil, fmt.Errorf("removed event without id")
		}
	default:
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
	return &e, nil
}
