package fuel

import (
	"slices"
	"strings"

	"github.com/ukydev/fleet-fuel-audit/internal/models"
)

// PickLatestFuelLog returns the entry with the newest fuelDateTime. The input is
// never assumed to be ordered. Equal timestamps keep their input order and
// unparseable timestamps rank below every parseable one.
func PickLatestFuelLog(logs []models.FuelLogEntry) (models.FuelLogEntry, bool) {
	if len(logs) == 0 {
		return models.FuelLogEntry{}, false
	}
	sorted := slices.Clone(logs)
	slices.SortStableFunc(sorted, func(a, b models.FuelLogEntry) int {
		return newestFirst(a.FuelDateTime, b.FuelDateTime)
	})
	return sorted[0], true
}

// IsFillingEvent reports whether a GPS sample marks a refuel.
func IsFillingEvent(p models.GpsTelemetryPoint) bool {
	return p.Filling > 0 || strings.Contains(strings.ToLower(p.FuelType), "filling")
}

// PickLatestFilling returns the newest filling event by gps_time.
func PickLatestFilling(points []models.GpsTelemetryPoint) (models.GpsTelemetryPoint, bool) {
	fillings := make([]models.GpsTelemetryPoint, 0, len(points))
	for _, p := range points {
		if IsFillingEvent(p) {
			fillings = append(fillings, p)
		}
	}
	if len(fillings) == 0 {
		return models.GpsTelemetryPoint{}, false
	}
	slices.SortStableFunc(fillings, func(a, b models.GpsTelemetryPoint) int {
		return newestFirst(a.GpsTime, b.GpsTime)
	})
	return fillings[0], true
}

// ForVehicle narrows logs to the given vehicle number. When no entry matches, or
// the number is blank, the logs are returned unchanged.
func ForVehicle(logs []models.FuelLogEntry, vehicleNo string) []models.FuelLogEntry {
	vehicleNo = strings.TrimSpace(vehicleNo)
	if vehicleNo == "" {
		return logs
	}
	var matched []models.FuelLogEntry
	for _, l := range logs {
		if strings.EqualFold(strings.TrimSpace(l.Ambulance.AmbulanceNumber), vehicleNo) {
			matched = append(matched, l)
		}
	}
	if len(matched) == 0 {
		return logs
	}
	return matched
}

func newestFirst(a, b string) int {
	ta, okA := ParseTimestamp(a)
	tb, okB := ParseTimestamp(b)
	switch {
	case okA && okB:
		return tb.Compare(ta)
	case okA:
		return -1
	case okB:
		return 1
	}
	return 0
}
