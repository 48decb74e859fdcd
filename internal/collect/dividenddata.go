package collect

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"

	"finbrook/econfeed/internal/bond"
)

var SourceDividendData = "DividendData"

var dividendDataURL = "https://www.dividenddata.co.uk/uk-gilts-prices-yields.py"

// DividendDataCollector scrapes the dividenddata gilt price table. The
// page republishes daily; a run for a date the page has not reached yet
// reports ErrDataUnavailable so the scheduler can retry later.
type DividendDataCollector struct {
	terms bond.Terms
	log   logrus.FieldLogger
}

func NewDividendDataCollector(log logrus.FieldLogger) *DividendDataCollector {
	return &DividendDataCollector{
		terms: bond.DefaultTerms(),
		log:   log.WithField("source", SourceDividendData),
	}
}

func (c *DividendDataCollector) Source() string { return SourceDividendData }

var (
	ddColTicker   = 0
	ddColDesc     = 1
	ddColCoupon   = 2
	ddColMaturity = 3
	ddColPrice    = 5
)

func (c *DividendDataCollector) Collect(ctx context.Context, date time.Time) (*CollectedBonds, error) {
	x := colly.NewCollector()

	// Check the page date matches the requested date; the page is updated
	// daily but may lag the run.
	const datePrefix = "Last updated: "
	var pageTs time.Time

	x.OnHTML("label", func(e *colly.HTMLElement) {
		if strings.HasPrefix(e.Text, datePrefix) {
			s := strings.TrimPrefix(e.Text, datePrefix)
			pageTs, _ = time.Parse("02 Jan 2006", s)
		}
	})

	collected := NewCollectedBonds(SourceDividendData, date)

	x.OnHTML("#mainbody tr", func(e *colly.HTMLElement) {
		if cb := c.readBond(e, date); cb != nil {
			collected.Add(cb)
		}
	})

	if err := x.Visit(dividendDataURL); err != nil {
		return nil, fmt.Errorf("visit %s: %w", dividendDataURL, err)
	}

	if pageTs.IsZero() {
		return nil, ErrMissingPageDate
	}

	if !pageTs.Equal(date.Truncate(24 * time.Hour)) {
		return nil, ErrDataUnavailable
	}

	return collected, nil
}

func (c *DividendDataCollector) readBond(e *colly.HTMLElement, date time.Time) *CollectedBond {
	q := bond.Quote{SettlementDate: date}
	cb := &CollectedBond{Record: &BondRecord{Quote: q}}

	e.ForEach("td", func(col int, el *colly.HTMLElement) {
		text := strings.TrimSpace(el.Text)
		switch col {
		case ddColTicker:
			cb.Record.Quote.ShortCode = text
			if text == "" {
				cb.SetError(fmt.Errorf("%w: empty ticker", ErrInvalidRow))
			}
		case ddColDesc:
			cb.Record.Quote.Name = text
			if text == "" {
				cb.SetError(fmt.Errorf("%w: empty description", ErrInvalidRow))
			}
		case ddColCoupon:
			if coupon, err := ParsePercent(text); err == nil {
				cb.Record.Quote.CouponRate = coupon
			} else {
				cb.SetError(fmt.Errorf("%w: coupon %q", ErrInvalidRow, text))
			}
		case ddColMaturity:
			if ts, err := ParseMaturityDate(text); err == nil {
				cb.Record.Quote.MaturityDate = ts
			} else {
				cb.SetError(fmt.Errorf("%w: maturity %q", ErrInvalidRow, text))
			}
		case ddColPrice:
			if price, err := ParsePrice(text); err == nil {
				cb.Record.Quote.CleanPrice = price
			} else {
				cb.SetError(fmt.Errorf("%w: price %q", ErrInvalidRow, text))
			}
		}
	})

	if cb.Record.Quote.Name == "" && cb.Record.Quote.ShortCode == "" {
		// Header or spacer row.
		return nil
	}

	if cb.Err != nil {
		return cb
	}

	return valueQuote(cb.Record.Quote, bond.GiltBand, c.terms)
}
