package collect

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"finbrook/econfeed/internal/series"
)

var SourceBEA = "BEA"

var beaDataURL = "https://apps.bea.gov/api/data"

// BEACollector fetches quarterly GDP components from the BEA NIPA tables
// (table T10101, percent change from preceding period).
type BEACollector struct {
	client *Client
	apiKey string
	log    logrus.FieldLogger
}

func NewBEACollector(client *Client, apiKey string, log logrus.FieldLogger) *BEACollector {
	return &BEACollector{
		client: client,
		apiKey: apiKey,
		log:    log.WithField("source", SourceBEA),
	}
}

func (c *BEACollector) Source() string { return SourceBEA }

type beaResponse struct {
	BEAAPI struct {
		Results struct {
			Data []struct {
				SeriesCode      string `json:"SeriesCode"`
				TimePeriod      string `json:"TimePeriod"`
				DataValue       string `json:"DataValue"`
				LineDescription string `json:"LineDescription"`
			} `json:"Data"`
		} `json:"Results"`
	} `json:"BEAAPI"`
}

func (c *BEACollector) Collect(ctx context.Context, since time.Time) ([]series.Observation, error) {
	params := url.Values{
		"UserID":       {c.apiKey},
		"Method":       {"GetData"},
		"datasetname":  {"NIPA"},
		"TableName":    {"T10101"},
		"Frequency":    {"Q"},
		"Year":         {"ALL"},
		"ResultFormat": {"json"},
	}

	var resp beaResponse
	if err := c.client.GetJSON(ctx, beaDataURL, params, &resp); err != nil {
		return nil, err
	}

	var out []series.Observation
	for _, item := range resp.BEAAPI.Results.Data {
		date, err := parseBEAQuarter(item.TimePeriod)
		if err != nil {
			continue
		}
		if !since.IsZero() && date.Before(since) {
			continue
		}

		value, err := strconv.ParseFloat(strings.ReplaceAll(item.DataValue, ",", ""), 64)
		if err != nil {
			continue
		}

		out = append(out, series.Observation{
			SeriesID: item.SeriesCode,
			Date:     date,
			Value:    value,
			Source:   SourceBEA,
		})
	}

	if len(out) == 0 {
		return nil, ErrDataUnavailable
	}

	c.log.WithField("records", len(out)).Info("fetched gdp table")
	return out, nil
}

// parseBEAQuarter parses "2024Q1" into the first day of that quarter.
func parseBEAQuarter(s string) (time.Time, error) {
	parts := strings.SplitN(s, "Q", 2)
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("%w: time period %q", ErrInvalidRow, s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: time period %q", ErrInvalidRow, s)
	}
	quarter, err := strconv.Atoi(parts[1])
	if err != nil || quarter < 1 || quarter > 4 {
		return time.Time{}, fmt.Errorf("%w: time period %q", ErrInvalidRow, s)
	}
	return time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC), nil
}
