package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"finfamily/internal/core"
)

// eventMessage is the wire form of a ledger event. It carries ids and the
// affected months only; consumers reload the ledger to get the full rows.
type eventMessage struct {
	Kind      core.EventKind  `json:"kind"`
	IDs       []string        `json:"ids"`
	Months    []core.MonthRef `json:"months,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

func knownKind(k core.EventKind) bool {
	switch k {
	case core.TransactionsCreated, core.TransactionUpdated, core.TransactionDeleted, core.CategoriesReplaced:
		return true
	}
	return false
}

// EncodeEvent converts an event to JSON bytes. A zero timestamp is replaced
// with the current time.
func EncodeEvent(ev core.LedgerEvent) ([]byte, error) {
	if !knownKind(ev.Kind) {
		return nil, fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return json.Marshal(eventMessage{
		Kind:      ev.Kind,
		IDs:       ev.IDs,
		Months:    ev.Months,
		Timestamp: ts,
	})
}

// DecodeEvent parses a delivery body.
func DecodeEvent(data []byte) (core.LedgerEvent, error) {
	var msg eventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return core.LedgerEvent{}, err
	}
	if !knownKind(msg.Kind) {
		return core.LedgerEvent{}, fmt.Errorf("unknown event kind %q", msg.Kind)
	}
	for _, m := range msg.Months {
		if m.Month < 1 || m.Month > 12 {
			return core.LedgerEvent{}, fmt.Errorf("invalid month %d-%d in event", m.Year, m.Month)
		}
	}
	return core.LedgerEvent{
		Kind:      msg.Kind,
		IDs:       msg.IDs,
		Months:    msg.Months,
		Timestamp: msg.Timestamp,
	}, nil
}
