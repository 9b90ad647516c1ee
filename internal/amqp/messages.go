package amqp

import (
	"encoding/json"
	"time"
)

// Actions carried by ledger event messages.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// LedgerEventMessage tells the mirror worker that a transaction changed.
// For created/updated events only the id travels; the worker re-reads the
// record from storage. Deleted events carry a snapshot because the row is
// already gone by the time the worker sees the message.
type LedgerEventMessage struct {
	Action    string               `json:"action"`
	ID        int64                `json:"id"`
	Timestamp time.Time            `json:"timestamp"`
	Snapshot  *TransactionSnapshot `json:"snapshot,omitempty"`
}

// TransactionSnapshot is the minimal record needed to mirror a transaction
// that no longer exists in storage.
type TransactionSnapshot struct {
	Date         string `json:"date"`
	Type         string `json:"type"`
	AmountCents  int64  `json:"amount_cents"`
	CategoryID   int64  `json:"category_id"`
	CategoryName string `json:"category_name,omitempty"`
	Description  string `json:"description,omitempty"`
}

// NewEventMessage creates a created/updated event for a transaction id.
func NewEventMessage(action string, id int64) *LedgerEventMessage {
	return &LedgerEventMessage{
		Action:    action,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// NewDeleteMessage creates a deleted event carrying the final snapshot.
func NewDeleteMessage(id int64, snapshot TransactionSnapshot) *LedgerEventMessage {
	return &LedgerEventMessage{
		Action:    ActionDeleted,
		ID:        id,
		Timestamp: time.Now(),
		Snapshot:  &snapshot,
	}
}

// ToJSON converts the message to JSON bytes.
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON creates a message from JSON bytes.
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
