package amqp

import (
	"encoding/json"
	"time"
)

// Event kinds published after a ledger mutation.
const (
	KindLedgerChanged = "ledger.changed"
	KindImportMerged  = "import.merged"
)

// LedgerEvent tells the worker which user's ledger changed. It carries no
// ledger data; the worker loads the latest snapshot from the store.
type LedgerEvent struct {
	UserID    string    `json:"userId"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEvent creates an event stamped with the current time.
func NewLedgerEvent(userID, kind string) *LedgerEvent {
	return &LedgerEvent{
		UserID:    userID,
		Kind:      kind,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON creates an event from JSON bytes.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
