package fuel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ukydev/fleet-fuel-audit/internal/models"
)

func TestCalculateDifferencePct_NonPositiveBaseline(t *testing.T) {
	t.Parallel()

	for _, software := range []float64{0, -1, -250.5, math.NaN(), math.Inf(1), math.Inf(-1)} {
		for _, gps := range []float64{0, 50, 100, -3, math.NaN()} {
			assert.Equal(t, 0.0, CalculateDifferencePct(software, gps), "software=%v gps=%v", software, gps)
		}
	}
}

func TestCalculateDifferencePct_Rounding(t *testing.T) {
	t.Parallel()

	cases := []struct {
		software, gps float64
	}{
		{100, 92},
		{100, 98},
		{100, 95},
		{100, 108},
		{37.5, 35.2},
		{60, 0},
		{3, 1},
		{45.25, 45.25},
		{80, 84.01},
	}
	for _, tc := range cases {
		want := math.Round(math.Abs(tc.software-tc.gps)/tc.software*100*100) / 100
		assert.InDelta(t, want, CalculateDifferencePct(tc.software, tc.gps), 1e-9,
			"software=%v gps=%v", tc.software, tc.gps)
	}
}

func TestCalculateDifferencePct_BaselineIsSoftware(t *testing.T) {
	t.Parallel()

	// 10 L apart, but relative to the billing reading in both cases.
	assert.Equal(t, 10.0, CalculateDifferencePct(100, 90))
	assert.Equal(t, 10.0, CalculateDifferencePct(100, 110))
	assert.Equal(t, 11.11, CalculateDifferencePct(90, 100))
}

func TestCalculateDifferencePct_NonFiniteGPS(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 100.0, CalculateDifferencePct(50, math.NaN()))
	assert.Equal(t, 100.0, CalculateDifferencePct(50, math.Inf(1)))
}

func TestStatusFromDiff(t *testing.T) {
	t.Parallel()

	assert.Equal(t, models.StatusOK, StatusFromDiff(0))
	assert.Equal(t, models.StatusOK, StatusFromDiff(4.99))
	assert.Equal(t, models.StatusOK, StatusFromDiff(5.0))
	assert.Equal(t, models.StatusAudit, StatusFromDiff(5.01))
	assert.Equal(t, models.StatusAudit, StatusFromDiff(100))
}

func TestFormatPct(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "8.00%", FormatPct(8))
	assert.Equal(t, "2.00%", FormatPct(2))
	assert.Equal(t, "0.00%", FormatPct(0))
	assert.Equal(t, "11.11%", FormatPct(11.11))
	assert.Equal(t, "5.50%", FormatPct(5.5))
}
