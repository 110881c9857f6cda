package events

import (
	"encoding/json"
	"fmt"
	"time"

	"financas/internal/core"
)

type EventType string

const (
	TransactionCreated EventType = "transaction.created"
	TransactionDeleted EventType = "transaction.deleted"
)

// TransactionEvent announces a change made through this client. It carries
// only what a listener needs to decide whether to refresh.
type TransactionEvent struct {
	Event         EventType   `json:"event"`
	TransactionID int64       `json:"transactionId,omitempty"`
	TypeID        core.TypeID `json:"typeId,omitempty"`
	Value         string      `json:"value,omitempty"`
	Timestamp     time.Time   `json:"timestamp"`
}

// NewCreatedEvent describes a transaction accepted by the API. id is zero
// when the API did not echo the created record.
func NewCreatedEvent(id int64, tx core.NewTransaction) TransactionEvent {
	return TransactionEvent{
		Event:         TransactionCreated,
		TransactionID: id,
		TypeID:        tx.TypeID,
		Value:         tx.Value,
		Timestamp:     time.Now().UTC(),
	}
}

func NewDeletedEvent(id int64) TransactionEvent {
	return TransactionEvent{
		Event:         TransactionDeleted,
		TransactionID: id,
		Timestamp:     time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (e TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON decodes and checks a message body.
func EventFromJSON(data []byte) (TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return TransactionEvent{}, err
	}
	switch e.Event {
	case TransactionCreated, TransactionDeleted:
	default:
		return TransactionEvent{}, fmt.Errorf("unknown event %q", e.Event)
	}
	return e, nil
}
