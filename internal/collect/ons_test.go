package collect

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mm23Sample = `Title,CPI INDEX 00: ALL ITEMS 2015=100,CPI ANNUAL RATE 00: ALL ITEMS,"Other series"
CDID,D7BT,D7G7,ZZZZ
PreUnit,,,
Unit,Index,%,%
2023,131.0,7.3,1.0
2024 Q1,132.5,3.8,1.1
2024 JAN,132.1,4.0,1.2
2024 FEB,133.0,3.4,not-a-number
2025 JAN,135.2,3.0,1.4
`

func TestONSCollectorParse(t *testing.T) {
	c := NewONSCollector(testClient(), nil, testLogger())

	obs, err := c.parse(strings.NewReader(mm23Sample), time.Time{})
	require.NoError(t, err)

	// Two configured CDIDs present, three monthly rows, one bad cell in an
	// unconfigured column; annual and quarterly rows are ignored.
	require.Len(t, obs, 6)

	byKey := map[string]float64{}
	for _, o := range obs {
		assert.Equal(t, SourceONS, o.Source)
		byKey[o.SeriesID+o.Date.Format("/2006-01")] = o.Value
	}

	assert.Equal(t, 132.1, byKey["UK_CPI_INDEX/2024-01"])
	assert.Equal(t, 4.0, byKey["UK_CPI_ANNUAL_RATE/2024-01"])
	assert.Equal(t, 133.0, byKey["UK_CPI_INDEX/2024-02"])
	assert.Equal(t, 135.2, byKey["UK_CPI_INDEX/2025-01"])
}

func TestONSCollectorParseSince(t *testing.T) {
	c := NewONSCollector(testClient(), nil, testLogger())

	obs, err := c.parse(strings.NewReader(mm23Sample), time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, obs, 2)
	for _, o := range obs {
		assert.Equal(t, 2025, o.Date.Year())
	}
}

func TestONSCollectorParseEmpty(t *testing.T) {
	c := NewONSCollector(testClient(), nil, testLogger())
	_, err := c.parse(strings.NewReader("Title,foo\nCDID,XXXX\n"), time.Time{})
	assert.ErrorIs(t, err, ErrDataUnavailable)
}
