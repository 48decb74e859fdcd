package bond

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEstimateLastCouponDate(t *testing.T) {
	tests := []struct {
		name       string
		maturity   time.Time
		settlement time.Time
		want       time.Time
	}{
		{
			name:       "mid year settlement after first anchor",
			maturity:   date(2030, time.March, 7),
			settlement: date(2025, time.June, 1),
			want:       date(2025, time.March, 7),
		},
		{
			name:       "settlement after second anchor",
			maturity:   date(2030, time.March, 7),
			settlement: date(2025, time.October, 20),
			want:       date(2025, time.September, 7),
		},
		{
			name:       "early january falls back to prior year",
			maturity:   date(2031, time.September, 15),
			settlement: date(2025, time.January, 10),
			want:       date(2024, time.September, 15),
		},
		{
			name:       "settlement exactly on anchor",
			maturity:   date(2028, time.March, 7),
			settlement: date(2025, time.September, 7),
			want:       date(2025, time.September, 7),
		},
		{
			name:       "day of month clamped to 28",
			maturity:   date(2029, time.August, 31),
			settlement: date(2025, time.March, 10),
			want:       date(2025, time.February, 28),
		},
		{
			name:       "zero maturity uses july convention with day clamp",
			maturity:   time.Time{},
			settlement: date(2025, time.March, 10),
			want:       date(2025, time.January, 28),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateLastCouponDate(tt.maturity, tt.settlement, 2)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestEstimateLastCouponDateQuarterly(t *testing.T) {
	// Quarterly schedule anchors every three months from the maturity day.
	got := EstimateLastCouponDate(date(2030, time.January, 15), date(2025, time.September, 1), 4)
	assert.True(t, got.Equal(date(2025, time.July, 15)), "got %s", got)
}
