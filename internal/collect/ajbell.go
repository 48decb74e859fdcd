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

var (
	SourceAJBellGilts     = "AJBellGilts"
	SourceAJBellCorporate = "AJBellCorporate"

	ajbellGiltsURL     = "https://www.ajbell.co.uk/markets/bonds-gilts/uk-gilts"
	ajbellCorporateURL = "https://www.ajbell.co.uk/markets/bonds-gilts/corporate-bonds"
)

// AJBellCollector scrapes an AJ Bell bond listing page. The same table
// shape serves both the gilt and the corporate listing; only the URL, the
// price band and the source label differ.
type AJBellCollector struct {
	source string
	url    string
	band   bond.PriceBand
	terms  bond.Terms
	log    logrus.FieldLogger
}

func NewAJBellGiltCollector(log logrus.FieldLogger) *AJBellCollector {
	return &AJBellCollector{
		source: SourceAJBellGilts,
		url:    ajbellGiltsURL,
		band:   bond.GiltBand,
		terms:  bond.DefaultTerms(),
		log:    log.WithField("source", SourceAJBellGilts),
	}
}

func NewAJBellCorporateCollector(log logrus.FieldLogger) *AJBellCollector {
	return &AJBellCollector{
		source: SourceAJBellCorporate,
		url:    ajbellCorporateURL,
		band:   bond.CorporateBand,
		terms:  bond.DefaultTerms(),
		log:    log.WithField("source", SourceAJBellCorporate),
	}
}

func (c *AJBellCollector) Source() string { return c.source }

func (c *AJBellCollector) Collect(ctx context.Context, date time.Time) (*CollectedBonds, error) {
	collected := NewCollectedBonds(c.source, date)

	x := colly.NewCollector()

	var headers []string
	x.OnHTML("table thead tr", func(e *colly.HTMLElement) {
		if len(headers) > 0 {
			return
		}
		e.ForEach("th", func(_ int, el *colly.HTMLElement) {
			headers = append(headers, strings.ToLower(strings.TrimSpace(el.Text)))
		})
	})

	x.OnHTML("table tbody tr", func(e *colly.HTMLElement) {
		if cb := c.readBond(e, headers, date); cb != nil {
			collected.Add(cb)
		}
	})

	if err := x.Visit(c.url); err != nil {
		return nil, fmt.Errorf("visit %s: %w", c.url, err)
	}
	if len(collected.Records) == 0 && len(collected.Failures) == 0 {
		return nil, ErrDataUnavailable
	}

	return collected, nil
}

func (c *AJBellCollector) readBond(e *colly.HTMLElement, headers []string, date time.Time) *CollectedBond {
	var cells []string
	e.ForEach("td", func(_ int, el *colly.HTMLElement) {
		cells = append(cells, strings.TrimSpace(el.Text))
	})
	if len(cells) < 4 {
		return nil
	}

	nameCol := findColumn(headers, []string{"name", "issuer", "bond"}, 0)
	couponCol := findColumn(headers, []string{"coupon"}, 1)
	maturityCol := findColumn(headers, []string{"maturity"}, 2)
	priceCol := findColumn(headers, []string{"price"}, 3)

	nameFull := cells[nameCol]
	q := bond.Quote{
		Name:           nameFull,
		SettlementDate: date,
		ISIN:           ExtractISIN(nameFull),
	}

	// The name cell concatenates "name | short code | ..." on the listing.
	if parts := strings.Split(nameFull, "|"); len(parts) >= 2 {
		q.Name = strings.TrimSpace(parts[0])
		q.ShortCode = strings.TrimSpace(parts[1])
	}

	cb := &CollectedBond{Record: &BondRecord{Quote: q}}

	if price, err := ParsePrice(cells[priceCol]); err == nil {
		cb.Record.Quote.CleanPrice = price
	} else {
		cb.SetError(fmt.Errorf("%w: price %q", ErrInvalidRow, cells[priceCol]))
	}

	if coupon, err := ParsePercent(cells[couponCol]); err == nil {
		cb.Record.Quote.CouponRate = coupon
	} else if coupon, err := ParseCouponPercent(nameFull); err == nil {
		cb.Record.Quote.CouponRate = coupon
	} else {
		cb.SetError(fmt.Errorf("%w: coupon %q", ErrInvalidRow, cells[couponCol]))
	}

	if ts, err := ParseMaturityDate(cells[maturityCol]); err == nil {
		cb.Record.Quote.MaturityDate = ts
	} else {
		cb.SetError(fmt.Errorf("%w: maturity %q", ErrInvalidRow, cells[maturityCol]))
	}

	if cb.Err != nil {
		return cb
	}

	return valueQuote(cb.Record.Quote, c.band, c.terms)
}

// CombinedID assembles the cross-source identifier used as a stable key
// for broker records: "GBP | <ISIN> | <short code>", degrading gracefully
// when parts are missing.
func CombinedID(q bond.Quote) string {
	switch {
	case q.ISIN != "" && q.ShortCode != "":
		return fmt.Sprintf("GBP | %s | %s", q.ISIN, q.ShortCode)
	case q.ISIN != "":
		return fmt.Sprintf("GBP | %s", q.ISIN)
	default:
		return ""
	}
}
