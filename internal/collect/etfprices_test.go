package collect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestETFPricesCollectorFetchesCloses(t *testing.T) {
	// 2025-06-02 and 2025-06-03 midnight UTC
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/history"))
		assert.Equal(t, "38403", r.URL.Query().Get("symbol"))
		assert.Equal(t, "D", r.URL.Query().Get("resolution"))
		w.Write([]byte(`{
			"s": "ok",
			"t": [1748822400, 1748908800],
			"c": [10.42, 10.45]
		}`))
	}))
	defer srv.Close()

	orig := investingHistoryBaseURL
	investingHistoryBaseURL = srv.URL
	defer func() { investingHistoryBaseURL = orig }()

	c := NewETFPricesCollector(testClient(), map[string]string{"IGLT": "38403"}, testLogger())
	obs, err := c.Collect(context.Background(), time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, obs, 2)
	assert.Equal(t, "IGLT", obs[0].SeriesID)
	assert.Equal(t, 10.42, obs[0].Value)
	assert.True(t, obs[0].Date.Equal(time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, SourceInvestingETF, obs[0].Source)
}

func TestETFPricesCollectorSkipsTickerWithoutData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("symbol") {
		case "38411":
			w.Write([]byte(`{"s": "no_data"}`))
		default:
			w.Write([]byte(`{"s": "ok", "t": [1748822400], "c": [23.10]}`))
		}
	}))
	defer srv.Close()

	orig := investingHistoryBaseURL
	investingHistoryBaseURL = srv.URL
	defer func() { investingHistoryBaseURL = orig }()

	c := NewETFPricesCollector(testClient(), map[string]string{
		"INXG": "38411",
		"VGOV": "45747",
	}, testLogger())
	obs, err := c.Collect(context.Background(), time.Time{})
	require.NoError(t, err)

	require.Len(t, obs, 1)
	assert.Equal(t, "VGOV", obs[0].SeriesID)
}

func TestETFPricesCollectorAllEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"s": "no_data"}`))
	}))
	defer srv.Close()

	orig := investingHistoryBaseURL
	investingHistoryBaseURL = srv.URL
	defer func() { investingHistoryBaseURL = orig }()

	c := NewETFPricesCollector(testClient(), nil, testLogger())
	_, err := c.Collect(context.Background(), time.Time{})
	assert.ErrorIs(t, err, ErrDataUnavailable)
}
