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

func TestFXCollectorFetchesDailyCloses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "FX_DAILY", r.URL.Query().Get("function"))
		assert.Equal(t, "GBP", r.URL.Query().Get("from_symbol"))
		assert.Equal(t, "USD", r.URL.Query().Get("to_symbol"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		assert.Equal(t, "full", r.URL.Query().Get("outputsize"))
		w.Write([]byte(`{
			"Time Series (FX Daily)": {
				"2025-06-02": {"1. open": "1.3520", "4. close": "1.3542"},
				"2025-06-01": {"1. open": "1.3490", "4. close": "1.3521"}
			}
		}`))
	}))
	defer srv.Close()

	orig := alphaVantageQueryURL
	alphaVantageQueryURL = srv.URL
	defer func() { alphaVantageQueryURL = orig }()

	c := NewGBPUSDCollector(testClient(), "test-key", testLogger())
	obs, err := c.Collect(context.Background(), time.Time{})
	require.NoError(t, err)

	require.Len(t, obs, 2)
	for _, o := range obs {
		assert.Equal(t, "GBPUSD", o.SeriesID)
		assert.Equal(t, SourceAlphaVantage, o.Source)
	}
}

func TestFXCollectorHonorsSinceAndCompactWindow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "compact", r.URL.Query().Get("outputsize"))
		w.Write([]byte(`{
			"Time Series (FX Daily)": {
				"2025-06-02": {"4. close": "1.3542"},
				"2025-05-20": {"4. close": "1.3388"}
			}
		}`))
	}))
	defer srv.Close()

	orig := alphaVantageQueryURL
	alphaVantageQueryURL = srv.URL
	defer func() { alphaVantageQueryURL = orig }()

	c := NewGBPUSDCollector(testClient(), "k", testLogger())
	obs, err := c.Collect(context.Background(), time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, obs, 1)
	assert.Equal(t, 1.3542, obs[0].Value)
}

func TestFXCollectorRequiresAPIKey(t *testing.T) {
	c := NewGBPUSDCollector(testClient(), "", testLogger())
	_, err := c.Collect(context.Background(), time.Time{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestFXCollectorThrottleNote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`))
	}))
	defer srv.Close()

	orig := alphaVantageQueryURL
	alphaVantageQueryURL = srv.URL
	defer func() { alphaVantageQueryURL = orig }()

	c := NewGBPUSDCollector(testClient(), "k", testLogger())
	_, err := c.Collect(context.Background(), time.Time{})
	assert.ErrorIs(t, err, ErrDataUnavailable)
}
