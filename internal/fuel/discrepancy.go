package fuel

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/ukydev/fleet-fuel-audit/internal/models"
)

// DifferenceThresholdPct is the discrepancy above which a fill goes to audit.
const DifferenceThresholdPct = 5.0

var hundred = decimal.NewFromInt(100)

// CalculateDifferencePct returns |software-gps| as a percentage of the software
// reading, rounded to two decimals. The software reading is the baseline; when it is
// not a positive finite number the result is 0.
func CalculateDifferencePct(software, gps float64) float64 {
	if math.IsNaN(software) || math.IsInf(software, 0) || software <= 0 {
		return 0
	}
	if math.IsNaN(gps) || math.IsInf(gps, 0) {
		gps = 0
	}
	diff := decimal.NewFromFloat(math.Abs(software - gps))
	pct := diff.Div(decimal.NewFromFloat(software)).Mul(hundred).Round(2)
	f, _ := pct.Float64()
	return f
}

// StatusFromDiff classifies a discrepancy. Exactly the threshold is still OK.
func StatusFromDiff(pct float64) models.Status {
	if pct > DifferenceThresholdPct {
		return models.StatusAudit
	}
	return models.StatusOK
}

// FormatPct renders a percentage with two fixed decimals, e.g. "8.00%".
func FormatPct(pct float64) string {
	return decimal.NewFromFloat(pct).StringFixed(2) + "%"
}
