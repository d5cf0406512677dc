package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// LedgerChangedMessage announces a committed ledger snapshot. Payload is the
// whole ledger as written to the store, so receivers adopt it without a read.
type LedgerChangedMessage struct {
	Scope     string          `json:"scope"`
	Origin    string          `json:"origin"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewLedgerChangedMessage creates a change message stamped with the current time
func NewLedgerChangedMessage(scope, origin string, payload []byte) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		Scope:     scope,
		Origin:    origin,
		Timestamp: time.Now().UTC(),
		Payload:   json.RawMessage(payload),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON parses and checks a message body.
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Scope == "" || msg.Origin == "" {
		return nil, errors.New("ledger change message without scope or origin")
	}
	if len(msg.Payload) == 0 {
		return nil, errors.New("ledger change message without payload")
	}
	return &msg, nil
}
