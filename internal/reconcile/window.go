package reconcile

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/ukydev/fleet-fuel-audit/internal/models"
)

// DayWindow spans 00:00:00 to 23:59:59 of t's calendar day in t's location.
func DayWindow(t time.Time) models.TimeWindow {
	y, m, d := t.Date()
	loc := t.Location()
	return models.TimeWindow{
		Start: time.Date(y, m, d, 0, 0, 0, 0, loc),
		End:   time.Date(y, m, d, 23, 59, 59, 0, loc),
	}
}

// WindowForDate returns the day window of a YYYY-MM-DD date in now's location, or
// of now itself when date is blank.
func WindowForDate(date string, now time.Time) (models.TimeWindow, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return DayWindow(now), nil
	}
	day, err := time.ParseInLocation("2006-01-02", date, now.Location())
	if err != nil {
		return models.TimeWindow{}, eris.Wrapf(err, "reconcile: invalid date %q", date)
	}
	return DayWindow(day), nil
}
