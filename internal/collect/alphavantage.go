package collect

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"finbrook/econfeed/internal/series"
)

var SourceAlphaVantage = "AlphaVantage"

var alphaVantageQueryURL = "https://www.alphavantage.co/query"

var ErrMissingAPIKey = fmt.Errorf("missing api key")

// FXCollector fetches a daily spot exchange rate from the Alpha Vantage
// FX_DAILY endpoint. The free tier caps requests, so a zero since pulls
// the full history in one call rather than paging.
type FXCollector struct {
	client   *Client
	apiKey   string
	from, to string
	log      logrus.FieldLogger
}

// NewGBPUSDCollector tracks sterling against the dollar, the pair every
// cross-currency comparison in the gilt analysis needs.
func NewGBPUSDCollector(client *Client, apiKey string, log logrus.FieldLogger) *FXCollector {
	return &FXCollector{
		client: client,
		apiKey: apiKey,
		from:   "GBP",
		to:     "USD",
		log:    log.WithField("source", SourceAlphaVantage),
	}
}

func (c *FXCollector) Source() string { return SourceAlphaVantage }

type alphaVantageFXResponse struct {
	Series map[string]struct {
		Close string `json:"4. close"`
	} `json:"Time Series (FX Daily)"`
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
}

func (c *FXCollector) Collect(ctx context.Context, since time.Time) ([]series.Observation, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: alpha vantage", ErrMissingAPIKey)
	}

	outputSize := "compact"
	if since.IsZero() {
		outputSize = "full"
	}

	params := url.Values{
		"function":    {"FX_DAILY"},
		"from_symbol": {c.from},
		"to_symbol":   {c.to},
		"apikey":      {c.apiKey},
		"outputsize":  {outputSize},
	}

	var resp alphaVantageFXResponse
	if err := c.client.GetJSON(ctx, alphaVantageQueryURL, params, &resp); err != nil {
		return nil, err
	}

	if resp.ErrorMessage != "" {
		return nil, fmt.Errorf("alpha vantage: %s", resp.ErrorMessage)
	}
	if len(resp.Series) == 0 {
		// a throttling Note comes back with an empty series
		if resp.Note != "" {
			return nil, fmt.Errorf("%w: %s", ErrDataUnavailable, resp.Note)
		}
		return nil, ErrDataUnavailable
	}

	seriesID := c.from + c.to

	var out []series.Observation
	for dateStr, point := range resp.Series {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			c.log.WithField("date", dateStr).Warn("unparseable observation date")
			continue
		}
		if !since.IsZero() && date.Before(since) {
			continue
		}

		value, err := strconv.ParseFloat(point.Close, 64)
		if err != nil {
			c.log.WithField("date", dateStr).Warn("unparseable close rate")
			continue
		}

		out = append(out, series.Observation{
			SeriesID: seriesID,
			Date:     date,
			Value:    value,
			Source:   SourceAlphaVantage,
		})
	}

	c.log.WithFields(logrus.Fields{
		"pair":    seriesID,
		"records": len(out),
	}).Info("fetched fx history")

	return out, nil
}
