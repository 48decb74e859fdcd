package collect

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"finbrook/econfeed/internal/series"
)

var SourceBLS = "BLS"

var blsTimeseriesURL = "https://api.bls.gov/publicAPI/v2/timeseries/data"

// DefaultBLSSeries is US all-items CPI-U, not seasonally adjusted.
var DefaultBLSSeries = []string{"CUUR0000SA0"}

// BLSCollector pulls monthly series (CPI, unemployment) from the BLS v2
// API. The registration key is optional but raises the rate limits.
type BLSCollector struct {
	client    *Client
	apiKey    string
	seriesIDs []string
	log       logrus.FieldLogger
}

func NewBLSCollector(client *Client, apiKey string, seriesIDs []string, log logrus.FieldLogger) *BLSCollector {
	if seriesIDs == nil {
		seriesIDs = DefaultBLSSeries
	}
	return &BLSCollector{
		client:    client,
		apiKey:    apiKey,
		seriesIDs: seriesIDs,
		log:       log.WithField("source", SourceBLS),
	}
}

func (c *BLSCollector) Source() string { return SourceBLS }

type blsRequest struct {
	SeriesID        []string `json:"seriesid"`
	StartYear       string   `json:"startyear"`
	EndYear         string   `json:"endyear"`
	RegistrationKey string   `json:"registrationkey,omitempty"`
}

type blsDataPoint struct {
	Year   string `json:"year"`
	Period string `json:"period"`
	Value  string `json:"value"`
}

type blsResponse struct {
	Status  string   `json:"status"`
	Message []string `json:"message"`
	Results struct {
		Series []struct {
			SeriesID string         `json:"seriesID"`
			Data     []blsDataPoint `json:"data"`
		} `json:"series"`
	} `json:"Results"`
}

func (c *BLSCollector) Collect(ctx context.Context, since time.Time) ([]series.Observation, error) {
	startYear := time.Now().Year() - 1
	if !since.IsZero() {
		startYear = since.Year()
	}

	req := blsRequest{
		SeriesID:        c.seriesIDs,
		StartYear:       strconv.Itoa(startYear),
		EndYear:         strconv.Itoa(time.Now().Year()),
		RegistrationKey: c.apiKey,
	}

	var resp blsResponse
	if err := c.client.PostJSON(ctx, blsTimeseriesURL, req, &resp); err != nil {
		return nil, err
	}

	if resp.Status != "REQUEST_SUCCEEDED" {
		return nil, fmt.Errorf("bls api: %s %s", resp.Status, strings.Join(resp.Message, "; "))
	}

	var out []series.Observation
	for _, s := range resp.Results.Series {
		for _, item := range s.Data {
			obs, err := blsObservation(s.SeriesID, item)
			if err != nil {
				continue
			}

			// Year-over-year change where the prior year's month is in the
			// same response window.
			for _, prev := range s.Data {
				if prev.Period == item.Period && prev.Year == strconv.Itoa(obs.Date.Year()-1) {
					if prevValue, err := strconv.ParseFloat(prev.Value, 64); err == nil && prevValue != 0 {
						change := (obs.Value - prevValue) / prevValue * 100
						obs.YoYChange = &change
					}
					break
				}
			}

			out = append(out, obs)
		}
	}

	c.log.WithField("records", len(out)).Info("fetched series")
	return out, nil
}

// blsObservation converts a BLS year+period point into an observation;
// only monthly ("M01".."M12") periods qualify.
func blsObservation(seriesID string, item blsDataPoint) (series.Observation, error) {
	if !strings.HasPrefix(item.Period, "M") {
		return series.Observation{}, ErrInvalidRow
	}
	month, err := strconv.Atoi(item.Period[1:])
	if err != nil || month < 1 || month > 12 {
		return series.Observation{}, ErrInvalidRow
	}
	year, err := strconv.Atoi(item.Year)
	if err != nil {
		return series.Observation{}, ErrInvalidRow
	}
	value, err := strconv.ParseFloat(item.Value, 64)
	if err != nil {
		return series.Observation{}, ErrInvalidRow
	}

	return series.Observation{
		SeriesID: seriesID,
		Date:     time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC),
		Value:    value,
		Source:   SourceBLS,
	}, nil
}
