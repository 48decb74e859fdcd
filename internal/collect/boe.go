package collect

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"finbrook/econfeed/internal/series"
)

var SourceBoE = "BoE"

var boeYieldCurveURL = "https://www.bankofengland.co.uk/-/media/boe/files/statistics/yield-curves/latest-yield-curve-data.zip"

// BoECollector downloads the Bank of England nominal yield-curve archive
// and extracts the daily spot rates per tenor from the XLSX workbook
// inside the ZIP.
type BoECollector struct {
	client *Client
	log    logrus.FieldLogger
}

func NewBoECollector(client *Client, log logrus.FieldLogger) *BoECollector {
	return &BoECollector{
		client: client,
		log:    log.WithField("source", SourceBoE),
	}
}

func (c *BoECollector) Source() string { return SourceBoE }

func (c *BoECollector) Collect(ctx context.Context, since time.Time) ([]series.Observation, error) {
	path, err := c.client.Download(ctx, boeYieldCurveURL, "boe-yc-*.zip")
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	for _, zf := range zr.File {
		name := strings.ToLower(zf.Name)
		if !strings.HasSuffix(name, ".xlsx") || !strings.Contains(name, "nominal") {
			continue
		}

		rc, err := zf.Open()
		if err != nil {
			return nil, err
		}
		obs, err := c.parseWorkbook(rc, since)
		rc.Close()
		if err != nil {
			return nil, err
		}

		c.log.WithFields(logrus.Fields{
			"file":    zf.Name,
			"records": len(obs),
		}).Info("parsed yield curve")
		return obs, nil
	}

	return nil, fmt.Errorf("%w: no nominal curve workbook in archive", ErrDataUnavailable)
}

func (c *BoECollector) parseWorkbook(r io.Reader, since time.Time) ([]series.Observation, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	var sheet string
	for _, name := range wb.GetSheetList() {
		if strings.Contains(strings.ToLower(name), "spot") {
			sheet = name
			break
		}
	}
	if sheet == "" {
		return nil, fmt.Errorf("%w: no spot curve sheet", ErrDataUnavailable)
	}

	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, err
	}

	// The header row lists tenors in years; rows below carry one curve
	// per business day.
	var tenors map[int]float64
	var out []series.Observation

	for _, row := range rows {
		if len(row) < 2 {
			continue
		}

		if tenors == nil {
			if parsed, ok := parseTenorHeader(row); ok {
				tenors = parsed
			}
			continue
		}

		date, err := parseBoEDate(row[0])
		if err != nil {
			continue
		}
		if !since.IsZero() && date.Before(since) {
			continue
		}

		for col, tenor := range tenors {
			if col >= len(row) {
				continue
			}
			value, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
			if err != nil {
				continue
			}
			out = append(out, series.Observation{
				SeriesID: fmt.Sprintf("BOE_SPOT_%gY", tenor),
				Date:     date,
				Value:    value,
				Source:   SourceBoE,
			})
		}
	}

	if len(out) == 0 {
		return nil, ErrDataUnavailable
	}

	return out, nil
}

// parseTenorHeader recognizes the row whose cells beyond the first are the
// curve tenors in years (0.5, 1, 1.5, ...).
func parseTenorHeader(row []string) (map[int]float64, bool) {
	tenors := map[int]float64{}
	for i, cell := range row[1:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil || v <= 0 {
			continue
		}
		tenors[i+1] = v
	}
	if len(tenors) < 2 {
		return nil, false
	}
	return tenors, true
}

func parseBoEDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"02 Jan 2006", "02-Jan-2006", "2006-01-02", "01-02-06"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	// excelize may surface the serial number when the cell has no string
	// format cached.
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 20000 {
		if ts, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, ErrInvalidRow
}
