package collect

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"finbrook/econfeed/internal/series"
)

var SourceONS = "ONS"

var onsMM23URL = "https://www.ons.gov.uk/file?uri=/economy/inflationandpriceindices/datasets/consumerpriceindices/current/mm23.csv"

// Default MM23 series: CPI all-items index and 12-month rate, and their
// CPIH counterparts. CDIDs are the ONS four-character series codes.
var DefaultONSSeries = map[string]string{
	"D7BT": "UK_CPI_INDEX",
	"D7G7": "UK_CPI_ANNUAL_RATE",
	"L522": "UK_CPIH_INDEX",
	"L55O": "UK_CPIH_ANNUAL_RATE",
}

// ONSCollector downloads the ONS MM23 consumer price indices CSV and
// extracts the configured series. MM23 column order shifts between
// releases, so columns are located by the CDID header row rather than by
// position.
type ONSCollector struct {
	client *Client
	cdids  map[string]string
	log    logrus.FieldLogger
}

func NewONSCollector(client *Client, cdids map[string]string, log logrus.FieldLogger) *ONSCollector {
	if cdids == nil {
		cdids = DefaultONSSeries
	}
	return &ONSCollector{
		client: client,
		cdids:  cdids,
		log:    log.WithField("source", SourceONS),
	}
}

func (c *ONSCollector) Source() string { return SourceONS }

func (c *ONSCollector) Collect(ctx context.Context, since time.Time) ([]series.Observation, error) {
	path, err := c.client.Download(ctx, onsMM23URL, "mm23-*.csv")
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	obs, err := c.parse(f, since)
	if err != nil {
		return nil, err
	}

	c.log.WithField("records", len(obs)).Info("parsed mm23")
	return obs, nil
}

// monthlyRowRe matches MM23 monthly observation labels like "2024 JAN".
var monthlyRowRe = regexp.MustCompile(`^(\d{4}) ([A-Z]{3})$`)

func (c *ONSCollector) parse(r io.Reader, since time.Time) ([]series.Observation, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	// Column index -> series ID, filled once the CDID row is seen.
	columns := map[int]string{}
	var out []series.Observation

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) == 0 {
			continue
		}

		if strings.EqualFold(strings.TrimSpace(row[0]), "CDID") {
			for i, cell := range row[1:] {
				if id, ok := c.cdids[strings.TrimSpace(cell)]; ok {
					columns[i+1] = id
				}
			}
			continue
		}

		m := monthlyRowRe.FindStringSubmatch(strings.TrimSpace(row[0]))
		if m == nil || len(columns) == 0 {
			continue
		}

		date, err := parseONSMonth(m[1], m[2])
		if err != nil {
			continue
		}
		if !since.IsZero() && date.Before(since) {
			continue
		}

		for col, id := range columns {
			if col >= len(row) {
				continue
			}
			value, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
			if err != nil {
				continue
			}
			out = append(out, series.Observation{
				SeriesID: id,
				Date:     date,
				Value:    value,
				Source:   SourceONS,
			})
		}
	}

	if len(out) == 0 {
		return nil, ErrDataUnavailable
	}

	return out, nil
}

func parseONSMonth(year, mon string) (time.Time, error) {
	// MM23 month labels are upper case ("JAN"); time layouts want "Jan".
	mon = mon[:1] + strings.ToLower(mon[1:])
	return time.Parse("2006 Jan", year+" "+mon)
}
