package amqp

import (
	"testing"
	"time"

	"finfamily/internal/core"
)

func TestEncodeDecodeEvent(t *testing.T) {
	ts := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	ev := core.LedgerEvent{
		Kind:      core.TransactionsCreated,
		IDs:       []string{"a", "b"},
		Months:    []core.MonthRef{{Year: 2024, Month: 1}, {Year: 2024, Month: 2}},
		Timestamp: ts,
	}

	body, err := EncodeEvent(ev)
	if err != nil {
		t.Fatalf("EncodeEvent() error = %v", err)
	}

	got, err := DecodeEvent(body)
	if err != nil {
		t.Fatalf("DecodeEvent() error = %v", err)
	}
	if got.Kind != ev.Kind || len(got.IDs) != 2 || len(got.Months) != 2 {
		t.Errorf("DecodeEvent() = %+v, want %+v", got, ev)
	}
	if !got.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, ts)
	}
}

func TestEncodeEventFillsTimestamp(t *testing.T) {
	body, err := EncodeEvent(core.LedgerEvent{Kind: core.CategoriesReplaced})
	if err != nil {
		t.Fatalf("EncodeEvent() error = %v", err)
	}
	got, err := DecodeEvent(body)
	if err != nil {
		t.Fatalf("DecodeEvent() error = %v", err)
	}
	if time.Since(got.Timestamp) > time.Minute {
		t.Errorf("Timestamp should be recent, got %v", got.Timestamp)
	}
}

func TestDecodeEventInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{"kind":`},
		{"wrong id type", `{"kind":"transaction.updated","ids":[1]}`},
		{"unknown kind", `{"kind":"expense.synced","ids":["x"]}`},
		{"bad month", `{"kind":"transaction.updated","ids":["x"],"months":[{"year":2024,"month":13}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeEvent([]byte(tt.body)); err == nil {
				t.Errorf("DecodeEvent(%s) should fail", tt.body)
			}
		})
	}
}
