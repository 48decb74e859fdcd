package collect

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pbnjay/grate"
	"github.com/sirupsen/logrus"

	"finbrook/econfeed/internal/bond"
)

var SourceDMO = "DMO"

// DMOCollector pulls the Debt Management Office D10B daily prices report
// as an Excel export. The DMO publishes several report codes; D10B carries
// clean and dirty prices per gilt for a trade date.
type DMOCollector struct {
	client *Client
	terms  bond.Terms
	log    logrus.FieldLogger
}

func NewDMOCollector(client *Client, log logrus.FieldLogger) *DMOCollector {
	return &DMOCollector{
		client: client,
		terms:  bond.DefaultTerms(),
		log:    log.WithField("source", SourceDMO),
	}
}

func (c *DMOCollector) Source() string { return SourceDMO }

func (c *DMOCollector) Collect(ctx context.Context, date time.Time) (*CollectedBonds, error) {
	params := fmt.Sprintf("&Trade Date=%02d-%02d-%04d", date.Day(), date.Month(), date.Year())
	reportURL := "https://www.dmo.gov.uk/umbraco/surface/DataExport/GetDataExport?reportCode=D10B&exportFormatValue=xls&parameters=" + url.QueryEscape(params)

	path, err := c.client.Download(ctx, reportURL, "gilt-*.xls")
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)

	wb, err := grate.Open(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	collected := NewCollectedBonds(SourceDMO, date)
	parsed := 0

	sheets, err := wb.List()
	if err != nil {
		return nil, err
	}
	for _, sheetName := range sheets {
		sheet, err := wb.Get(sheetName)
		if err != nil {
			return nil, err
		}

		for sheet.Next() {
			row := sheet.Strings()
			cb, err := c.parseRow(date, row)
			if err == nil {
				collected.Add(cb)
				parsed++
			}
		}
	}

	if parsed == 0 {
		return nil, ErrDataUnavailable
	}

	return collected, nil
}

func (c *DMOCollector) parseRow(date time.Time, row []string) (*CollectedBond, error) {
	if len(row) < 8 {
		return nil, ErrInvalidRow
	}

	isin := strings.TrimSpace(row[0])
	if !strings.HasPrefix(isin, "GB") {
		return nil, ErrInvalidRow
	}

	desc := strings.TrimSpace(row[1])

	// Index-linked gilts need an inflation-adjusted cash-flow model the
	// engine does not have.
	if strings.Contains(strings.ToLower(desc), "index-linked") {
		return nil, ErrUnsupportedBond
	}

	q := bond.Quote{
		Name:           desc,
		ISIN:           isin,
		SettlementDate: date,
		FaceValue:      100,
	}

	cb := &CollectedBond{Record: &BondRecord{Quote: q}}

	if coupon, err := ParseCouponPercent(desc); err == nil {
		cb.Record.Quote.CouponRate = coupon
	} else {
		cb.SetError(fmt.Errorf("%w: coupon from %q", ErrInvalidRow, desc))
	}

	if cleanPrice, err := ParsePrice(row[2]); err == nil {
		cb.Record.Quote.CleanPrice = cleanPrice
	} else {
		cb.SetError(fmt.Errorf("%w: clean price %q", ErrInvalidRow, row[2]))
	}

	if ts, err := ParseMaturityDate(row[7]); err == nil {
		cb.Record.Quote.MaturityDate = ts
	} else {
		cb.SetError(fmt.Errorf("%w: maturity %q", ErrInvalidRow, row[7]))
	}

	if cb.Err != nil {
		return cb, nil
	}

	return valueQuote(cb.Record.Quote, bond.GiltBand, c.terms), nil
}
