package collect

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"finbrook/econfeed/internal/series"
)

var SourceFTSE = "MarketWatchFTSE"

var ftseDownloadURL = "https://www.marketwatch.com/investing/index/ukx/downloaddatapartial"

// FTSECollector pulls daily FTSE 100 closes from the MarketWatch partial
// CSV export.
type FTSECollector struct {
	client *Client
	log    logrus.FieldLogger
}

func NewFTSECollector(client *Client, log logrus.FieldLogger) *FTSECollector {
	return &FTSECollector{
		client: client,
		log:    log.WithField("source", SourceFTSE),
	}
}

func (c *FTSECollector) Source() string { return SourceFTSE }

func (c *FTSECollector) Collect(ctx context.Context, since time.Time) ([]series.Observation, error) {
	end := time.Now()
	start := since
	if start.IsZero() {
		start = end.AddDate(-1, 0, 0)
	}

	params := url.Values{
		"startdate":       {start.Format("01/02/2006") + " 00:00:00"},
		"enddate":         {end.Format("01/02/2006") + " 00:00:00"},
		"daterange":       {"d30"},
		"frequency":       {"p1d"},
		"csvdownload":     {"true"},
		"downloadpartial": {"false"},
		"newdates":        {"false"},
	}

	req, err := http.NewRequest(http.MethodGet, ftseDownloadURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	// MarketWatch rejects requests without a plausible referer.
	req.Header.Set("Referer", "https://www.marketwatch.com/investing/index/ukx")

	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d from marketwatch", resp.StatusCode)
	}

	obs, err := c.parseCSV(resp.Body)
	if err != nil {
		return nil, err
	}

	c.log.WithField("records", len(obs)).Info("fetched ftse history")
	return obs, nil
}

func (c *FTSECollector) parseCSV(r io.Reader) ([]series.Observation, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}

	dateCol := findColumn(header, []string{"date"}, 0)
	closeCol := findColumn(header, []string{"close"}, 4)

	var out []series.Observation
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) <= closeCol {
			continue
		}

		date, err := time.Parse("01/02/2006", row[dateCol])
		if err != nil {
			continue
		}
		value, err := ParsePrice(row[closeCol])
		if err != nil {
			continue
		}

		out = append(out, series.Observation{
			SeriesID: "FTSE100",
			Date:     date,
			Value:    value,
			Source:   SourceFTSE,
		})
	}

	if len(out) == 0 {
		return nil, ErrDataUnavailable
	}

	return out, nil
}
