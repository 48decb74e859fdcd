package collect

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"finbrook/econfeed/internal/series"
)

var SourceFRED = "FRED"

var fredObservationsURL = "https://api.stlouisfed.org/fred/series/observations"

// DefaultFREDSeries is the US treasury constant maturity yield curve.
var DefaultFREDSeries = []string{
	"DGS1MO", "DGS3MO", "DGS6MO",
	"DGS1", "DGS2", "DGS5", "DGS7",
	"DGS10", "DGS20", "DGS30",
}

// FREDCollector fetches observation histories for a fixed set of FRED
// series (treasury yields, fed funds, TIPS breakevens and the like).
type FREDCollector struct {
	client    *Client
	apiKey    string
	seriesIDs []string
	log       logrus.FieldLogger
}

func NewFREDCollector(client *Client, apiKey string, seriesIDs []string, log logrus.FieldLogger) *FREDCollector {
	if seriesIDs == nil {
		seriesIDs = DefaultFREDSeries
	}
	return &FREDCollector{
		client:    client,
		apiKey:    apiKey,
		seriesIDs: seriesIDs,
		log:       log.WithField("source", SourceFRED),
	}
}

func (c *FREDCollector) Source() string { return SourceFRED }

type fredResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

func (c *FREDCollector) Collect(ctx context.Context, since time.Time) ([]series.Observation, error) {
	var out []series.Observation

	for _, id := range c.seriesIDs {
		params := url.Values{
			"series_id":  {id},
			"api_key":    {c.apiKey},
			"file_type":  {"json"},
			"sort_order": {"desc"},
			"limit":      {"1000"},
		}
		if !since.IsZero() {
			params.Set("observation_start", since.Format("2006-01-02"))
		}

		var resp fredResponse
		if err := c.client.GetJSON(ctx, fredObservationsURL, params, &resp); err != nil {
			return nil, err
		}

		skipped := 0
		for _, obs := range resp.Observations {
			// FRED reports missing observations as ".".
			if obs.Value == "." {
				skipped++
				continue
			}

			date, err := time.Parse("2006-01-02", obs.Date)
			if err != nil {
				skipped++
				continue
			}
			value, err := strconv.ParseFloat(obs.Value, 64)
			if err != nil {
				skipped++
				continue
			}

			out = append(out, series.Observation{
				SeriesID: id,
				Date:     date,
				Value:    value,
				Source:   SourceFRED,
			})
		}

		c.log.WithFields(logrus.Fields{
			"series":  id,
			"records": len(resp.Observations) - skipped,
			"skipped": skipped,
		}).Info("fetched series")
	}

	return out, nil
}
