package fuel

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// timestampLayouts lists the formats seen from the fuel-log API and the GPS vendor.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses an upstream timestamp. Values without a zone are read as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDateTime renders an upstream timestamp for operators, "-" when blank and
// the raw text when it cannot be parsed.
func FormatDateTime(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	t, ok := ParseTimestamp(s)
	if !ok {
		return s
	}
	return t.Format("02 Jan 2006, 15:04:05")
}

// ParseNumber parses numeric text such as "100" or " 92.50 ".
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}

// ParseLitres parses a litre reading. Blank, invalid and negative values become 0.
func ParseLitres(s string) float64 {
	f, ok := ParseNumber(s)
	if !ok {
		return 0
	}
	return CoerceReading(f)
}

// CoerceReading maps NaN, infinities and negative readings to 0.
func CoerceReading(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
