package bond

import "math"

// PriceBand is the plausible clean-price trading range for an instrument
// class. Quotes outside it are parsing garbage or stale data and must be
// rejected before valuation.
type PriceBand struct {
	Min float64
	Max float64
}

var (
	// GiltBand covers conventional government bonds quoted per £100.
	GiltBand = PriceBand{Min: 20, Max: 200}
	// CorporateBand allows low-denomination issues to trade below 20 but
	// keeps a near-zero floor to exclude obvious junk values.
	CorporateBand = PriceBand{Min: 0.1, Max: math.Inf(1)}
)

// maxCouponRate rejects coupons above 20% annual; nothing in the collected
// markets pays more, so higher values are parse errors.
const maxCouponRate = 0.20

// ValidateQuote applies the data-quality gates adapters must run before
// handing a quote to the engine: a positive finite clean price within the
// band, a coupon rate in [0, 0.20] and positive time to maturity. The
// engine itself does not re-check these.
func ValidateQuote(q Quote, band PriceBand) error {
	if math.IsNaN(q.CleanPrice) || math.IsInf(q.CleanPrice, 0) || q.CleanPrice <= 0 {
		return ErrInvalidCleanPrice
	}
	if q.CleanPrice < band.Min || q.CleanPrice > band.Max {
		return ErrInvalidCleanPrice
	}
	if q.CouponRate < 0 || q.CouponRate > maxCouponRate {
		return ErrInvalidCoupon
	}
	if q.YearsToMaturity() <= 0 {
		return ErrInvalidMaturity
	}
	return nil
}
