package amqp

import (
	"testing"
	"time"
)

func TestLedgerEventRoundTrip(t *testing.T) {
	event := NewLedgerEvent("u1", KindLedgerChanged)
	if event.Timestamp.IsZero() {
		t.Fatalf("expected timestamp to be set")
	}

	body, err := event.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := LedgerEventFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.UserID != "u1" || back.Kind != KindLedgerChanged {
		t.Fatalf("unexpected event: %+v", back)
	}
	if !back.Timestamp.Equal(event.Timestamp.Truncate(time.Nanosecond)) {
		t.Fatalf("timestamp lost: %v vs %v", back.Timestamp, event.Timestamp)
	}
}

func TestLedgerEventFromJSONRejectsGarbage(t *testing.T) {
	if _, err := LedgerEventFromJSON([]byte("not json")); err == nil {
		t.Fatalf("expected error")
	}
}
