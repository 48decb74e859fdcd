// Package bond converts a quoted clean price for a coupon bond into
// accrued interest, dirty price, yield to maturity and after-tax yield to
// maturity. All functions are pure and safe for concurrent use; a failed
// solve is reported through an error, never a panic.
package bond

import (
	"fmt"
	"time"
)

// Quote is a single bond observation as produced by a source adapter.
// CouponRate is the annual coupon as a decimal fraction (0.11 = 11%).
// FaceValue of zero means "infer from the clean price".
type Quote struct {
	Name           string
	ISIN           string
	ShortCode      string
	CleanPrice     float64
	CouponRate     float64
	MaturityDate   time.Time
	SettlementDate time.Time
	FaceValue      float64
}

// YearsToMaturity returns the time from settlement to maturity in
// fractional years on an actual/365.25 basis.
func (q Quote) YearsToMaturity() float64 {
	return q.MaturityDate.Sub(q.SettlementDate).Hours() / 24 / 365.25
}

// Valuation is the engine output for one quote. Nil metric fields signal a
// per-metric failure; the matching Failure field records why, so callers
// can log the cause while persisting the partial record.
type Valuation struct {
	FaceValue       float64
	AccruedInterest *float64
	DirtyPrice      *float64
	YTM             *float64
	AfterTaxYTM     *float64

	YTMFailure         error
	AfterTaxYTMFailure error
}

// Terms carries the valuation parameters. They are threaded through every
// call rather than held in package state so two concurrent valuations can
// use different conventions.
type Terms struct {
	// PaymentsPerYear is the coupon frequency, 2 for semi-annual.
	PaymentsPerYear int
	// CouponTaxRate is the investor's tax rate on coupon income. Capital
	// gains at redemption stay untaxed (UK gilt treatment).
	CouponTaxRate float64
	// MinYield and MaxYield bound the annualized yields the solver will
	// accept; roots outside the band are treated as divergence.
	MinYield float64
	MaxYield float64
	// LowPriceThreshold is the clean price below which a quote is assumed
	// to be per-£1 nominal rather than per-£100.
	LowPriceThreshold float64
}

// DefaultTerms returns the conventions for the GBP bond markets this
// system collects: semi-annual coupons, 30% coupon tax, yields accepted
// between -50% and +100%.
func DefaultTerms() Terms {
	return Terms{
		PaymentsPerYear:   2,
		CouponTaxRate:     0.30,
		MinYield:          -0.5,
		MaxYield:          1.0,
		LowPriceThreshold: 2.0,
	}
}

var (
	ErrNearMaturity      = fmt.Errorf("bond too close to maturity to solve")
	ErrNoConvergence     = fmt.Errorf("yield solver failed to converge")
	ErrYieldOutOfRange   = fmt.Errorf("solved yield outside accepted range")
	ErrInvalidCleanPrice = fmt.Errorf("invalid clean price")
	ErrInvalidCoupon     = fmt.Errorf("invalid coupon rate")
	ErrInvalidMaturity   = fmt.Errorf("invalid maturity")
)
