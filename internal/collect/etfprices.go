package collect

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"finbrook/econfeed/internal/series"
)

var SourceInvestingETF = "InvestingETF"

var investingHistoryBaseURL = "https://tvc4.investing.com"

// DefaultETFTickers maps the gilt-tracking ETFs to their investing.com
// instrument ids.
var DefaultETFTickers = map[string]string{
	"IGLT": "38403", // iShares Core UK Gilts
	"INXG": "38411", // iShares Index-Linked Gilts
	"VGOV": "45747", // Vanguard UK Government Bond
	"GLTY": "45552", // SPDR Bloomberg UK Gilt
}

// ETFPricesCollector pulls daily ETF closes from the investing.com
// charting API, for premium/discount analysis against fund NAVs.
type ETFPricesCollector struct {
	client  *Client
	tickers map[string]string
	log     logrus.FieldLogger
}

func NewETFPricesCollector(client *Client, tickers map[string]string, log logrus.FieldLogger) *ETFPricesCollector {
	if tickers == nil {
		tickers = DefaultETFTickers
	}
	return &ETFPricesCollector{
		client:  client,
		tickers: tickers,
		log:     log.WithField("source", SourceInvestingETF),
	}
}

func (c *ETFPricesCollector) Source() string { return SourceInvestingETF }

type investingHistory struct {
	Status string    `json:"s"`
	Times  []int64   `json:"t"`
	Closes []float64 `json:"c"`
}

// sessionToken builds the throwaway path segment the charting API expects
// in place of a session id.
func sessionToken() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func (c *ETFPricesCollector) Collect(ctx context.Context, since time.Time) ([]series.Observation, error) {
	start := since
	if start.IsZero() {
		// most of the tracked funds listed in 2009
		start = time.Date(2009, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	end := time.Now()

	historyURL := fmt.Sprintf("%s/%s/0/0/0/0/history", investingHistoryBaseURL, sessionToken())

	tickers := make([]string, 0, len(c.tickers))
	for ticker := range c.tickers {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	var out []series.Observation
	for _, ticker := range tickers {
		params := url.Values{
			"symbol":     {c.tickers[ticker]},
			"resolution": {"D"},
			"from":       {strconv.FormatInt(start.Unix(), 10)},
			"to":         {strconv.FormatInt(end.Unix(), 10)},
		}

		var hist investingHistory
		if err := c.client.GetJSON(ctx, historyURL, params, &hist); err != nil {
			return nil, err
		}

		if hist.Status != "ok" {
			c.log.WithFields(logrus.Fields{
				"ticker": ticker,
				"status": hist.Status,
			}).Warn("no history returned")
			continue
		}

		count := 0
		for i, ts := range hist.Times {
			if i >= len(hist.Closes) {
				break
			}
			out = append(out, series.Observation{
				SeriesID: ticker,
				Date:     time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
				Value:    hist.Closes[i],
				Source:   SourceInvestingETF,
			})
			count++
		}

		c.log.WithFields(logrus.Fields{
			"ticker":  ticker,
			"records": count,
		}).Info("fetched etf history")
	}

	if len(out) == 0 {
		return nil, ErrDataUnavailable
	}

	return out, nil
}
