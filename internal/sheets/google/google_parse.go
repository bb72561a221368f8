package google

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// amountColumns are the positions of monetary values in sheets.Header.
var amountColumns = map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true, 8: true}

// sameRow compares what the sheet holds against a freshly rendered row.
// Column A is skipped: Sheets may turn the month into a date serial.
func sameRow(existing [][]any, row []any) bool {
	if len(existing) == 0 {
		return false
	}
	have := toStrings(existing[0])
	want := toStrings(row)
	for i := 1; i < len(want); i++ {
		got := safeGet(have, i)
		if amountColumns[i] {
			a, okA := parseAmount(got)
			b, okB := parseAmount(want[i])
			if okA != okB || (okA && !a.Equal(b)) {
				return false
			}
			continue
		}
		if got != want[i] {
			return false
		}
	}
	return true
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

// parseAmount reads a cell that may come back as a raw number, a plain
// decimal string or a pt-BR formatted value such as "R$ 1.234,56".
func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, false
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
