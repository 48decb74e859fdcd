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

func TestFREDCollectorSkipsMissingObservations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "DGS10", r.URL.Query().Get("series_id"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		w.Write([]byte(`{
			"observations": [
				{"date": "2025-06-02", "value": "4.42"},
				{"date": "2025-06-01", "value": "."},
				{"date": "2025-05-30", "value": "4.39"}
			]
		}`))
	}))
	defer srv.Close()

	orig := fredObservationsURL
	fredObservationsURL = srv.URL
	defer func() { fredObservationsURL = orig }()

	c := NewFREDCollector(testClient(), "test-key", []string{"DGS10"}, testLogger())
	obs, err := c.Collect(context.Background(), time.Time{})
	require.NoError(t, err)

	require.Len(t, obs, 2)
	assert.Equal(t, "DGS10", obs[0].SeriesID)
	assert.Equal(t, 4.42, obs[0].Value)
	assert.True(t, obs[0].Date.Equal(time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, SourceFRED, obs[0].Source)
}

func TestFREDCollectorSendsObservationStart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2025-01-01", r.URL.Query().Get("observation_start"))
		w.Write([]byte(`{"observations": [{"date": "2025-01-02", "value": "1.0"}]}`))
	}))
	defer srv.Close()

	orig := fredObservationsURL
	fredObservationsURL = srv.URL
	defer func() { fredObservationsURL = orig }()

	c := NewFREDCollector(testClient(), "k", []string{"FEDFUNDS"}, testLogger())
	obs, err := c.Collect(context.Background(), time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, obs, 1)
}
