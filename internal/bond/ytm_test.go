package bond

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolveYTMParBond(t *testing.T) {
	// A bond trading at face must yield its coupon rate.
	terms := DefaultTerms()

	tests := []struct {
		name   string
		coupon float64
		years  float64
	}{
		{"short", 0.035, 0.75},
		{"medium", 0.05, 5},
		{"long", 0.0125, 30},
		{"fractional periods", 0.04, 7.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ytm, err := SolveYTM(100, 100, tt.coupon, tt.years, terms)
			require.NoError(t, err)
			assert.InDelta(t, tt.coupon, ytm, 1e-6)
		})
	}
}

func TestSolveYTMPriceYieldInverse(t *testing.T) {
	terms := DefaultTerms()

	prev := 10.0
	for _, dirty := range []float64{90, 95, 100, 105, 110} {
		ytm, err := SolveYTM(dirty, 100, 0.05, 10, terms)
		require.NoError(t, err, "dirty price %v", dirty)
		assert.Less(t, ytm, prev, "yield must fall as price rises (dirty %v)", dirty)
		prev = ytm
	}
}

func TestSolveYTMRoundTrip(t *testing.T) {
	// The solver's root must reproduce the dirty price it was given.
	terms := DefaultTerms()

	tests := []struct {
		dirty  float64
		coupon float64
		years  float64
	}{
		{98.4, 0.0425, 2.5},
		{101.75, 0.11, 0.26},
		{65.2, 0.0125, 28},
		{0.93, 0.055, 4.1}, // per-£1 nominal quote
	}

	for _, tt := range tests {
		face := InferFaceValue(tt.dirty, terms.LowPriceThreshold)
		ytm, err := SolveYTM(tt.dirty, face, tt.coupon, tt.years, terms)
		require.NoError(t, err)

		couponPayment := tt.coupon * face / float64(terms.PaymentsPerYear)
		periods := tt.years * float64(terms.PaymentsPerYear)
		residual := priceResidual(ytm, couponPayment, periods, face, tt.dirty, terms.PaymentsPerYear)
		assert.InDelta(t, 0, residual, 1e-6)
	}
}

func TestSolveYTMNearMaturity(t *testing.T) {
	ytm, err := SolveYTM(100.1, 100, 0.05, 0.005, DefaultTerms())
	assert.ErrorIs(t, err, ErrNearMaturity)
	assert.Zero(t, ytm)
}

func TestSolveYTMRejectsAbsurdPrice(t *testing.T) {
	// Price ten times face implies a yield far below -50%; treated as
	// divergence rather than returned.
	_, err := SolveYTM(1000, 100, 0.05, 1.0, DefaultTerms())
	assert.ErrorIs(t, err, ErrYieldOutOfRange)
}

func TestSolveYTMCooperativeShortBond(t *testing.T) {
	// 11% coupon trading just above par with ~3 months to run: the yield
	// must sit well below the coupon, guarding against any regression that
	// falls back to the coupon rate on solver trouble.
	ytm, err := SolveYTM(101.75, 100, 0.11, 0.26, DefaultTerms())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, ytm, 0.02)
	assert.LessOrEqual(t, ytm, 0.08)
	assert.Less(t, ytm, 0.11)
	assert.Greater(t, abs(ytm-0.11), 0.02)
}

func TestSolveAfterTaxYTMOrdering(t *testing.T) {
	// Taxing coupons cannot raise the yield the investor achieves.
	terms := DefaultTerms()

	tests := []struct {
		dirty  float64
		coupon float64
		years  float64
	}{
		{100, 0.05, 5},
		{95, 0.0425, 10},
		{110, 0.08, 20},
	}

	for _, tt := range tests {
		ytm, err := SolveYTM(tt.dirty, 100, tt.coupon, tt.years, terms)
		require.NoError(t, err)
		afterTax, err := SolveAfterTaxYTM(tt.dirty, 100, tt.coupon, tt.years, terms)
		require.NoError(t, err)
		assert.LessOrEqual(t, afterTax, ytm+1e-9)
	}
}

func TestSolveAfterTaxYTMTruncatedPeriods(t *testing.T) {
	// The after-tax variant truncates the period count, so a bond inside
	// its final coupon period has zero whole periods and the solve fails
	// instead of pricing the fractional stub the way SolveYTM does.
	_, err := SolveAfterTaxYTM(101.75, 100, 0.11, 0.26, DefaultTerms())
	assert.ErrorIs(t, err, ErrNoConvergence)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
