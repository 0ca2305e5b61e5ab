package amqp

import (
	"encoding/json"
	"time"
)

// TransactionEventMessage announces that a transaction changed. It carries
// only the ID and operation; the worker fetches current state from the
// database, so stale deliveries are harmless.
type TransactionEventMessage struct {
	ID        string    `json:"id"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionEventMessage creates an event message for the given operation.
func NewTransactionEventMessage(id, op string) *TransactionEventMessage {
	return &TransactionEventMessage{
		ID:        id,
		Op:        op,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionEventMessageFromJSON creates a message from JSON bytes
func TransactionEventMessageFromJSON(data []byte) (*TransactionEventMessage, error) {
	var msg TransactionEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
