package core

import "time"

type EventKind string

const (
	TransactionsCreated EventKind = "transactions.created"
	TransactionUpdated  EventKind = "transaction.updated"
	TransactionDeleted  EventKind = "transaction.deleted"
	CategoriesReplaced  EventKind = "categories.replaced"
)

// MonthRef names a calendar month touched by a mutation.
type MonthRef struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// LedgerEvent is emitted after the persistence backend confirmed a mutation.
type LedgerEvent struct {
	Kind      EventKind  `json:"kind"`
	IDs       []string   `json:"ids"`
	Months    []MonthRef `json:"months,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// MonthsOf returns the distinct months the transactions fall in, in order of
// first appearance.
func MonthsOf(txs ...Transaction) []MonthRef {
	var out []MonthRef
	seen := make(map[MonthRef]struct{})
	for _, t := range txs {
		m := MonthRef{Year: t.Date.Year, Month: int(t.Date.Month)}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
