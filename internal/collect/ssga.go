package collect

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"finbrook/econfeed/internal/series"
)

var SourceSSGA = "SSGA"

var ssgaNAVHistoryURL = "https://www.ssga.com/library-content/products/fund-data/etfs/emea/navhist-emea-en-sybg-gy.xlsx"

// SSGACollector downloads the published NAV history workbook for the SPDR
// Bloomberg UK Gilt ETF. The sheet opens with several banner rows; data
// rows are recognized by their DD-MMM-YYYY date cell.
type SSGACollector struct {
	client *Client
	ticker string
	log    logrus.FieldLogger
}

func NewSSGACollector(client *Client, log logrus.FieldLogger) *SSGACollector {
	return &SSGACollector{
		client: client,
		ticker: "GLTY",
		log:    log.WithField("source", SourceSSGA),
	}
}

func (c *SSGACollector) Source() string { return SourceSSGA }

func (c *SSGACollector) Collect(ctx context.Context, since time.Time) ([]series.Observation, error) {
	path, err := c.client.Download(ctx, ssgaNAVHistoryURL, "ssga-nav-*.xlsx")
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)

	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	rows, err := wb.GetRows(wb.GetSheetName(0))
	if err != nil {
		return nil, err
	}

	obs, err := c.parseNAVRows(rows, since)
	if err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"ticker":  c.ticker,
		"records": len(obs),
	}).Info("parsed nav history")

	return obs, nil
}

func (c *SSGACollector) parseNAVRows(rows [][]string, since time.Time) ([]series.Observation, error) {
	seriesID := c.ticker + "_NAV"

	var out []series.Observation
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}

		date, err := time.Parse("02-Jan-2006", strings.TrimSpace(row[0]))
		if err != nil {
			continue
		}
		if !since.IsZero() && date.Before(since) {
			continue
		}

		nav, err := ParsePrice(row[1])
		if err != nil {
			continue
		}

		out = append(out, series.Observation{
			SeriesID: seriesID,
			Date:     date,
			Value:    nav,
			Source:   SourceSSGA,
		})
	}

	if len(out) == 0 {
		return nil, ErrDataUnavailable
	}

	return out, nil
}
