package bond

// Value runs the full valuation pipeline for one quote: face-value
// inference, coupon-schedule estimation, accrued interest, dirty price,
// then the two yield solves. It never fails as a whole; each metric that
// cannot be computed is left nil with its cause recorded, and callers
// persist whatever survived.
func Value(q Quote, terms Terms) Valuation {
	faceValue := q.FaceValue
	if faceValue == 0 {
		faceValue = InferFaceValue(q.CleanPrice, terms.LowPriceThreshold)
	}

	v := Valuation{FaceValue: faceValue}

	lastCoupon := EstimateLastCouponDate(q.MaturityDate, q.SettlementDate, terms.PaymentsPerYear)
	accrued := AccruedInterest(faceValue, q.CouponRate, lastCoupon, q.SettlementDate, terms.PaymentsPerYear)
	dirty := DirtyPrice(q.CleanPrice, accrued)

	v.AccruedInterest = &accrued
	v.DirtyPrice = &dirty

	years := q.YearsToMaturity()

	if ytm, err := SolveYTM(dirty, faceValue, q.CouponRate, years, terms); err != nil {
		v.YTMFailure = err
	} else {
		v.YTM = &ytm
	}

	if atYTM, err := SolveAfterTaxYTM(dirty, faceValue, q.CouponRate, years, terms); err != nil {
		v.AfterTaxYTMFailure = err
	} else {
		v.AfterTaxYTM = &atYTM
	}

	return v
}
