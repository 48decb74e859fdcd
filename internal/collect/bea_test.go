package collect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBEAQuarter(t *testing.T) {
	got, err := parseBEAQuarter("2024Q3")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)))

	for _, in := range []string{"2024", "2024Q5", "Q1", "garbage"} {
		_, err := parseBEAQuarter(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestBEACollector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GetData", r.URL.Query().Get("Method"))
		assert.Equal(t, "T10101", r.URL.Query().Get("TableName"))
		w.Write([]byte(`{"BEAAPI": {"Results": {"Data": [
			{"SeriesCode": "A191RL", "TimePeriod": "2024Q4", "DataValue": "2.4", "LineDescription": "Gross domestic product"},
			{"SeriesCode": "A191RL", "TimePeriod": "2025Q1", "DataValue": "1,034.5", "LineDescription": "Gross domestic product"},
			{"SeriesCode": "A191RL", "TimePeriod": "bad", "DataValue": "9.9", "LineDescription": "ignored"}
		]}}}`))
	}))
	defer srv.Close()

	orig := beaDataURL
	beaDataURL = srv.URL
	defer func() { beaDataURL = orig }()

	c := NewBEACollector(testClient(), "key", testLogger())
	obs, err := c.Collect(context.Background(), time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, obs, 1)
	assert.Equal(t, 1034.5, obs[0].Value)
	assert.True(t, obs[0].Date.Equal(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)))
}
