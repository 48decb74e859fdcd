package bond

import "time"

// AccruedInterest returns the coupon interest earned between the last
// coupon date and settlement, on an actual/365.25 day count:
//
//	coupon_payment = couponRate * faceValue / paymentsPerYear
//	accrued        = days_since_coupon / (365.25/paymentsPerYear) * coupon_payment
//
// The result is deliberately not clamped to one coupon payment: when the
// schedule estimate is slightly off the true issuer schedule the accrual
// can exceed a full coupon, and masking that would hide the estimation
// error rather than fix it.
func AccruedInterest(faceValue, couponRate float64, lastCouponDate, settlementDate time.Time, paymentsPerYear int) float64 {
	if paymentsPerYear <= 0 {
		paymentsPerYear = 2
	}

	couponPayment := couponRate * faceValue / float64(paymentsPerYear)
	daysSinceCoupon := settlementDate.Sub(lastCouponDate).Hours() / 24
	daysInPeriod := 365.25 / float64(paymentsPerYear)

	return daysSinceCoupon / daysInPeriod * couponPayment
}

// DirtyPrice is the cash settlement amount: clean price plus accrued
// interest. Trivial, but it is the target value the yield solver roots
// against, so it lives here with the rest of the pipeline.
func DirtyPrice(cleanPrice, accruedInterest float64) float64 {
	return cleanPrice + accruedInterest
}

// InferFaceValue maps a quoted clean price to the assumed nominal: quotes
// below the threshold are taken to be per-£1 nominal, everything else
// per-£100. The threshold is a heuristic observed from broker feeds that
// quote low-denomination corporate bonds on a different base, not a market
// rule, which is why it is a parameter (see Terms.LowPriceThreshold).
func InferFaceValue(cleanPrice, lowPriceThreshold float64) float64 {
	if cleanPrice < lowPriceThreshold {
		return 1.0
	}
	return 100.0
}
