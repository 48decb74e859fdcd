package bond

import "math"

const (
	// Below ~3.6 days to run the cash-flow equation is numerically
	// unstable and the answer economically uninteresting.
	minTotalPeriods = 0.01

	solveTolerance = 1e-8
	solveMaxIter   = 200
)

// priceResidual returns the discounted cash-flow value of the bond at the
// given annualized yield minus the dirty price. totalPeriods may be
// fractional: a bond three months from maturity with semi-annual coupons
// prices with totalPeriods ~= 0.5, which is what lets collection happen on
// an arbitrary daily schedule instead of coupon anniversaries.
//
// Near the discounting pole (periodic rate <= -0.99) and on any non-finite
// intermediate the function reports +Inf, which the solver treats as "value
// enormous here, look elsewhere".
func priceResidual(ytm, couponPayment, totalPeriods, faceValue, dirtyPrice float64, paymentsPerYear int) float64 {
	if ytm == 0 {
		return couponPayment*totalPeriods + faceValue - dirtyPrice
	}

	periodicRate := ytm / float64(paymentsPerYear)
	if periodicRate <= -0.99 {
		return math.Inf(1)
	}

	growth := math.Pow(1+periodicRate, totalPeriods)
	pvCoupons := couponPayment * (1 - 1/growth) / periodicRate
	pvFace := faceValue / growth

	residual := pvCoupons + pvFace - dirtyPrice
	if math.IsNaN(residual) || math.IsInf(residual, 0) {
		return math.Inf(1)
	}
	return residual
}

// SolveYTM root-finds the annualized yield to maturity that equates the
// discounted cash-flow stream to the dirty price, compounded with
// terms.PaymentsPerYear periods per year.
//
// Returns ErrNearMaturity when under minTotalPeriods remain,
// ErrNoConvergence when the iteration fails, and ErrYieldOutOfRange when
// the root falls outside [terms.MinYield, terms.MaxYield].
func SolveYTM(dirtyPrice, faceValue, couponRate, yearsToMaturity float64, terms Terms) (float64, error) {
	couponPayment := couponRate * faceValue / float64(terms.PaymentsPerYear)
	totalPeriods := yearsToMaturity * float64(terms.PaymentsPerYear)

	if totalPeriods <= minTotalPeriods {
		return 0, ErrNearMaturity
	}

	f := func(ytm float64) float64 {
		return priceResidual(ytm, couponPayment, totalPeriods, faceValue, dirtyPrice, terms.PaymentsPerYear)
	}

	// The classic approximate-YTM formula: close enough to the root for
	// realistic bond economics that no bracketing is needed.
	guess := (couponRate + (faceValue-dirtyPrice)/yearsToMaturity) / ((faceValue + dirtyPrice) / 2)

	ytm, err := solveSecant(f, guess)
	if err != nil {
		return 0, err
	}

	if ytm < terms.MinYield || ytm > terms.MaxYield {
		return 0, ErrYieldOutOfRange
	}

	return ytm, nil
}

// SolveAfterTaxYTM is SolveYTM with coupon cash flows scaled by
// (1 - terms.CouponTaxRate); the redemption cash flow is untaxed.
//
// Two behaviors deliberately differ from SolveYTM and are preserved, not
// corrected: the period count is truncated to a whole number of coupon
// periods, and there is no near-maturity early return. See DESIGN.md.
func SolveAfterTaxYTM(dirtyPrice, faceValue, couponRate, yearsToMaturity float64, terms Terms) (float64, error) {
	couponPayment := couponRate * faceValue / float64(terms.PaymentsPerYear)
	afterTaxCoupon := couponPayment * (1 - terms.CouponTaxRate)
	totalPeriods := math.Trunc(yearsToMaturity * float64(terms.PaymentsPerYear))

	f := func(ytm float64) float64 {
		return priceResidual(ytm, afterTaxCoupon, totalPeriods, faceValue, dirtyPrice, terms.PaymentsPerYear)
	}

	guess := couponRate
	if guess <= 0 {
		guess = 0.05
	}

	ytm, err := solveSecant(f, guess)
	if err != nil {
		return 0, err
	}

	if ytm < terms.MinYield || ytm > terms.MaxYield {
		return 0, ErrYieldOutOfRange
	}

	return ytm, nil
}

// solveSecant runs a derivative-free secant iteration from the initial
// guess. A non-finite residual makes the iteration retreat halfway toward
// the last good point instead of aborting.
func solveSecant(f func(float64) float64, guess float64) (float64, error) {
	x0 := guess
	f0 := f(x0)
	if math.IsInf(f0, 0) || math.IsNaN(f0) {
		// Guess landed on the pole; restart from a safe rate.
		x0 = 0.05
		f0 = f(x0)
	}
	if math.Abs(f0) < solveTolerance {
		return x0, nil
	}

	x1 := x0 + 1e-4 + math.Abs(x0)*1e-2
	f1 := f(x1)

	for i := 0; i < solveMaxIter; i++ {
		if math.IsInf(f1, 0) || math.IsNaN(f1) {
			x1 = x0 + (x1-x0)/2
			f1 = f(x1)
			continue
		}

		if math.Abs(f1) < solveTolerance {
			return x1, nil
		}

		denom := f1 - f0
		if denom == 0 {
			return 0, ErrNoConvergence
		}

		x2 := x1 - f1*(x1-x0)/denom
		x0, f0 = x1, f1
		x1, f1 = x2, f(x2)
	}

	return 0, ErrNoConvergence
}
