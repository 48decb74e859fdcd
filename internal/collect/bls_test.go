package collect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBLSCollectorMonthlyWithYoY(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req blsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"CUUR0000SA0"}, req.SeriesID)

		w.Write([]byte(`{
			"status": "REQUEST_SUCCEEDED",
			"Results": {"series": [{"seriesID": "CUUR0000SA0", "data": [
				{"year": "2025", "period": "M03", "value": "319.8"},
				{"year": "2025", "period": "M13", "value": "318.0"},
				{"year": "2024", "period": "M03", "value": "312.3"}
			]}]}
		}`))
	}))
	defer srv.Close()

	orig := blsTimeseriesURL
	blsTimeseriesURL = srv.URL
	defer func() { blsTimeseriesURL = orig }()

	c := NewBLSCollector(testClient(), "", []string{"CUUR0000SA0"}, testLogger())
	obs, err := c.Collect(context.Background(), time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// The M13 annual-average row is dropped.
	require.Len(t, obs, 2)

	assert.True(t, obs[0].Date.Equal(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, obs[0].YoYChange)
	assert.InDelta(t, (319.8-312.3)/312.3*100, *obs[0].YoYChange, 1e-9)

	// The 2024 point has no 2023 sibling in the window.
	assert.Nil(t, obs[1].YoYChange)
}

func TestBLSCollectorAPIFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "REQUEST_NOT_PROCESSED", "message": ["bad key"]}`))
	}))
	defer srv.Close()

	orig := blsTimeseriesURL
	blsTimeseriesURL = srv.URL
	defer func() { blsTimeseriesURL = orig }()

	c := NewBLSCollector(testClient(), "bad", []string{"X"}, testLogger())
	_, err := c.Collect(context.Background(), time.Time{})
	assert.ErrorContains(t, err, "REQUEST_NOT_PROCESSED")
}
