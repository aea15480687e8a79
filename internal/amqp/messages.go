package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"fintrack/internal/core"
)

// TransactionCreatedMessage announces a stored transaction. The consumer
// loads the full record by ID; category and amount are carried for routing
// and logging only.
type TransactionCreatedMessage struct {
	ID        int64     `json:"id"`
	Category  string    `json:"category"`
	Amount    string    `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionCreatedMessage builds the message for t
func NewTransactionCreatedMessage(t core.Transaction) *TransactionCreatedMessage {
	return &TransactionCreatedMessage{
		ID:        t.ID,
		Category:  t.Category,
		Amount:    t.Amount.String(),
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

var errMissingID = errors.New("message has no transaction id")

// TransactionCreatedMessageFromJSON decodes a message. A message without a
// positive id cannot be resolved and is rejected.
func TransactionCreatedMessageFromJSON(data []byte) (*TransactionCreatedMessage, error) {
	var msg TransactionCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID <= 0 {
		return nil, errMissingID
	}
	return &msg, nil
}
