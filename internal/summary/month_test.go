package summary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2024-03")
	require.NoError(t, err)
	assert.Equal(t, Month{Year: 2024, Month: time.March}, m)

	m, err = ParseMonth("2024-12-25")
	require.NoError(t, err)
	assert.Equal(t, Month{Year: 2024, Month: time.December}, m)

	for _, bad := range []string{"", "2024", "2024-13", "24-03", "2024/03", "2024-0a"} {
		_, err := ParseMonth(bad)
		assert.Error(t, err, bad)
	}
}

func TestMonthShift(t *testing.T) {
	jan := Month{Year: 2024, Month: time.January}
	assert.Equal(t, Month{Year: 2023, Month: time.December}, jan.Shift(-1))
	assert.Equal(t, Month{Year: 2025, Month: time.February}, jan.Shift(13))
	assert.Equal(t, jan, jan.Shift(0))
}

func TestMonthLabel(t *testing.T) {
	m := Month{Year: 2024, Month: time.March}
	assert.Equal(t, "março de 2024", m.Label("pt-BR"))
	assert.Equal(t, "March 2024", m.Label("en"))
	assert.Equal(t, "2024-03", m.String())
}
