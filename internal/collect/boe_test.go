package collect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTenorHeader(t *testing.T) {
	tenors, ok := parseTenorHeader([]string{"years:", "0.5", "1", "1.5", "2"})
	require.True(t, ok)
	assert.Equal(t, map[int]float64{1: 0.5, 2: 1, 3: 1.5, 4: 2}, tenors)

	_, ok = parseTenorHeader([]string{"Spot curve", "", "continuously compounded"})
	assert.False(t, ok)
}

func TestParseBoEDate(t *testing.T) {
	want := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{"02 Jun 2025", "02-Jun-2025", "2025-06-02"} {
		got, err := parseBoEDate(in)
		require.NoError(t, err, "input %q", in)
		assert.True(t, got.Equal(want), "input %q: got %s", in, got)
	}

	// Excel serial date.
	got, err := parseBoEDate("45810")
	require.NoError(t, err)
	assert.Equal(t, 2025, got.Year())

	_, err = parseBoEDate("n/a")
	assert.Error(t, err)
}
