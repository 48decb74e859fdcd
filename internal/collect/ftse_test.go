package collect

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFTSECollectorParseCSV(t *testing.T) {
	c := NewFTSECollector(testClient(), testLogger())

	csvBody := strings.Join([]string{
		"Date,Open,High,Low,Close",
		`06/02/2025,"8,774.26","8,812.10","8,751.90","8,774.65"`,
		"06/01/2025,n/a,n/a,n/a,n/a",
		`05/30/2025,"8,716.45","8,780.00","8,700.12","8,772.38"`,
	}, "\n")

	obs, err := c.parseCSV(strings.NewReader(csvBody))
	require.NoError(t, err)

	require.Len(t, obs, 2)
	assert.Equal(t, "FTSE100", obs[0].SeriesID)
	assert.Equal(t, 8774.65, obs[0].Value)
	assert.True(t, obs[0].Date.Equal(time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)))
}

func TestFTSECollectorParseCSVEmpty(t *testing.T) {
	c := NewFTSECollector(testClient(), testLogger())
	_, err := c.parseCSV(strings.NewReader("Date,Open,High,Low,Close\n"))
	assert.ErrorIs(t, err, ErrDataUnavailable)
}
