package bond

import "time"

// Coupon anchor fallback when no maturity date is known: 31 July, the most
// common coupon month/day for the gilts this system observes. Results that
// rely on it are approximate.
const (
	fallbackCouponMonth = time.July
	fallbackCouponDay   = 31
)

// EstimateLastCouponDate returns the most recent coupon date on or before
// the settlement date, assuming coupons fall on the maturity date's
// month/day repeated every 12/paymentsPerYear months. The day of month is
// clamped to 28 so a 29-31 maturity day cannot produce an invalid coupon
// date in a short month.
//
// A zero maturity date falls back to the 31 July convention.
func EstimateLastCouponDate(maturityDate, settlementDate time.Time, paymentsPerYear int) time.Time {
	if paymentsPerYear <= 0 {
		paymentsPerYear = 2
	}

	month := fallbackCouponMonth
	day := fallbackCouponDay
	if !maturityDate.IsZero() {
		month = maturityDate.Month()
		day = maturityDate.Day()
	}
	if day > 28 {
		day = 28
	}

	monthsPerPeriod := 12 / paymentsPerYear

	// Anchor dates for the settlement year and the prior year, so a quote
	// taken shortly after New Year still finds its previous coupon.
	var last time.Time
	for _, year := range []int{settlementDate.Year() - 1, settlementDate.Year()} {
		for i := 0; i < paymentsPerYear; i++ {
			m := (int(month) - 1 + i*monthsPerPeriod) % 12
			anchor := time.Date(year, time.Month(m+1), day, 0, 0, 0, 0, settlementDate.Location())
			if !anchor.After(settlementDate) && anchor.After(last) {
				last = anchor
			}
		}
	}

	return last
}
