// Package collect contains the source adapters that pull bond quotes and
// macro time series from public upstreams, normalize them and run bond
// quotes through the valuation engine. Adapters own all I/O; the engine
// stays pure.
package collect

import (
	"context"
	"fmt"
	"time"

	"finbrook/econfeed/internal/bond"
	"finbrook/econfeed/internal/series"
)

var (
	ErrInvalidRow      = fmt.Errorf("invalid row")
	ErrDataUnavailable = fmt.Errorf("data unavailable")
	ErrUnsupportedBond = fmt.Errorf("unsupported bond")
	ErrMissingPageDate = fmt.Errorf("missing page date")
)

// BondRecord is one quote with its valuation, ready for persistence.
// Valuation metrics may be nil; partial records are still stored.
type BondRecord struct {
	Quote     bond.Quote
	Valuation bond.Valuation
}

// CollectedBond carries a single row's outcome. A row that failed to parse
// or validate keeps its first error and is reported, not dropped silently.
type CollectedBond struct {
	Record *BondRecord
	Err    error
}

func (c *CollectedBond) SetError(err error) {
	if c.Err == nil {
		c.Err = err
	}
}

// CollectedBonds accumulates one source's run: good records plus the rows
// that failed, so a caller can log failure counts without aborting.
type CollectedBonds struct {
	Records        []*BondRecord
	Failures       []*CollectedBond
	Source         string
	SettlementDate time.Time
}

func NewCollectedBonds(source string, date time.Time) *CollectedBonds {
	return &CollectedBonds{
		Source:         source,
		SettlementDate: date,
		Records:        []*BondRecord{},
		Failures:       []*CollectedBond{},
	}
}

func (c *CollectedBonds) Add(cb *CollectedBond) {
	if cb.Err == nil {
		c.Records = append(c.Records, cb.Record)
	} else {
		c.Failures = append(c.Failures, cb)
	}
}

// BondCollector is a source of bond quotes for a given settlement date.
type BondCollector interface {
	Collect(ctx context.Context, date time.Time) (*CollectedBonds, error)
	Source() string
}

// SeriesCollector is a source of macro time-series observations from a
// given date onwards; a zero since means full history.
type SeriesCollector interface {
	Collect(ctx context.Context, since time.Time) ([]series.Observation, error)
	Source() string
}

// valueQuote applies the data-quality gates and, when they pass, the full
// valuation pipeline. The returned CollectedBond carries the gate error
// for rejected quotes.
func valueQuote(q bond.Quote, band bond.PriceBand, terms bond.Terms) *CollectedBond {
	cb := &CollectedBond{Record: &BondRecord{Quote: q}}
	if err := bond.ValidateQuote(q, band); err != nil {
		cb.SetError(err)
		return cb
	}
	cb.Record.Valuation = bond.Value(q, terms)
	return cb
}
