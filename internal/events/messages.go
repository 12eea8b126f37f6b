package events

import (
	"encoding/json"
	"time"
)

// LedgerEventMessage announces a committed ledger mutation. It carries
// only the user id and what happened; consumers fetch current state from
// the database themselves.
type LedgerEventMessage struct {
	UserID    int64     `json:"user_id"`
	Entity    string    `json:"entity"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerEventMessage(userID int64, entity, op string) *LedgerEventMessage {
	return &LedgerEventMessage{
		UserID:    userID,
		Entity:    entity,
		Op:        op,
		Timestamp: time.Now(),
	}
}

func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
