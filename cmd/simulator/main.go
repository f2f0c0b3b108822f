package main

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-fuel-audit/internal/models"
)

// Location represents a geographical location with latitude and longitude coordinates.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Cities for realistic fuel stations
var cities = []Location{
	{Lat: 23.0225, Lon: 72.5714}, // Ahmedabad
	{Lat: 23.2156, Lon: 72.6369}, // Gandhinagar
	{Lat: 21.1702, Lon: 72.8311}, // Surat
	{Lat: 22.3072, Lon: 73.1812}, // Vadodara
	{Lat: 22.3039, Lon: 70.8022}, // Rajkot
	{Lat: 21.7645, Lon: 72.1519}, // Bhavnagar
	{Lat: 22.4707, Lon: 70.0577}, // Jamnagar
	{Lat: 23.5880, Lon: 72.3693}, // Mehsana
}

func jitterLocation(base Location, meters float64, rng *rand.Rand) Location {
	latMetersPerDeg := 111320.0
	lonMetersPerDeg := 111320.0 * math.Cos(base.Lat*math.Pi/180)
	dLat := (rng.Float64()*2 - 1) * (meters / latMetersPerDeg)
	dLon := (rng.Float64()*2 - 1) * (meters / lonMetersPerDeg)
	return Location{Lat: base.Lat + dLat, Lon: base.Lon + dLon}
}

func randomLocation(rng *rand.Rand) Location {
	base := cities[rng.Intn(len(cities))]
	return jitterLocation(base, 500, rng) // stations sit near the city centre
}

const (
	gpsLayout    = "2006-01-02 15:04:05"
	fuelLayout   = "2006-01-02T15:04:05"
	windowLayout = "2006-01-02 15:04"
	pricePerL    = 94.72
	sampleEvery  = 10 * time.Minute
)

// Refuel is one simulated fill: what was billed and what the tank sensor saw.
type Refuel struct {
	At          time.Time
	BilledL     float64
	SensedL     float64
	Location    Location
	InvoiceFile string
}

// Ambulance is one simulated vehicle with today's refuels.
type Ambulance struct {
	ID           int64
	SysServiceID string
	VehicleNo    string
	Refuels      []Refuel
}

// Fleet is the simulator state. It is built once and read-only afterwards.
type Fleet struct {
	Ambulances []Ambulance
	bySysID    map[string]int
}

// newFleet builds size ambulances refuelling on day. auditRate is the share of
// fills whose sensor reading drifts more than 5% from the bill.
func newFleet(size int, day time.Time, auditRate float64, rng *rand.Rand) *Fleet {
	f := &Fleet{bySysID: make(map[string]int, size)}
	start := time.Date(day.Year(), day.Month(), day.Day(), 6, 0, 0, 0, day.Location())
	for i := 0; i < size; i++ {
		amb := Ambulance{
			ID:           int64(i + 1),
			SysServiceID: strconv.Itoa(12449300 + i),
			VehicleNo:    fmt.Sprintf("GJ18GB%04d", rng.Intn(10000)),
		}
		fills := 1 + rng.Intn(2)
		for j := 0; j < fills; j++ {
			billed := math.Round((30+rng.Float64()*70)*100) / 100
			drift := (rng.Float64()*2 - 1) * 0.04
			if rng.Float64() < auditRate {
				drift = -(0.06 + rng.Float64()*0.1)
			}
			at := start.Add(time.Duration(j*6)*time.Hour + time.Duration(rng.Intn(300))*time.Minute)
			amb.Refuels = append(amb.Refuels, Refuel{
				At:          at.Truncate(time.Minute),
				BilledL:     billed,
				SensedL:     math.Round(billed*(1+drift)*100) / 100,
				Location:    randomLocation(rng),
				InvoiceFile: fmt.Sprintf("https://invoices.example.com/%d/%d.pdf", amb.ID, j+1),
			})
		}
		f.bySysID[amb.SysServiceID] = i
		f.Ambulances = append(f.Ambulances, amb)
	}
	return f
}

// forAlert maps any alert id onto a fleet member.
func (f *Fleet) forAlert(alertID int64) Ambulance {
	return f.Ambulances[int((alertID-1)%int64(len(f.Ambulances)))]
}

func (f *Fleet) byID(id int64) (Ambulance, bool) {
	if id < 1 || id > int64(len(f.Ambulances)) {
		return Ambulance{}, false
	}
	return f.Ambulances[id-1], true
}

func (a Ambulance) fuelLogs() []models.FuelLogEntry {
	logs := make([]models.FuelLogEntry, 0, len(a.Refuels))
	for i, r := range a.Refuels {
		logs = append(logs, models.FuelLogEntry{
			ID:                         a.ID*100 + int64(i),
			AmbulanceID:                a.ID,
			InvoiceFileURL:             r.InvoiceFile,
			FuelType:                   "Diesel",
			SoftwareReadingLitres:      strconv.FormatFloat(r.BilledL, 'f', 2, 64),
			SoftwareReadingTotalAmount: strconv.FormatFloat(math.Round(r.BilledL*pricePerL), 'f', 0, 64),
			FuelDateTime:               r.At.Format(fuelLayout),
			Location:                   fmt.Sprintf("%.6f,%.6f", r.Location.Lat, r.Location.Lon),
			Ambulance: models.VehicleDescriptor{
				ID:              a.ID,
				SysServiceID:    models.FlexString(a.SysServiceID),
				AmbulanceNumber: a.VehicleNo,
			},
		})
	}
	return logs
}

// telemetry samples the fuel sensor every sampleEvery inside [start, end]. A
// refuel shows up as one filling sample a few minutes after the bill.
func (a Ambulance) telemetry(start, end time.Time) []models.GpsTelemetryPoint {
	var points []models.GpsTelemetryPoint
	var id int64
	for t := start; !t.After(end); t = t.Add(sampleEvery) {
		id++
		points = append(points, models.GpsTelemetryPoint{
			ID:           id,
			SysServiceID: models.FlexString(a.SysServiceID),
			GpsTime:      t.Format(gpsLayout),
			RecTime:      t.Add(5 * time.Second).Format(gpsLayout),
			TimeInEpoch:  t.Unix(),
		})
	}
	for _, r := range a.Refuels {
		at := r.At.Add(4 * time.Minute)
		if at.Before(start) || at.After(end) {
			continue
		}
		id++
		points = append(points, models.GpsTelemetryPoint{
			ID:                  id,
			SysServiceID:        models.FlexString(a.SysServiceID),
			GpsTime:             at.Format(gpsLayout),
			RecTime:             at.Add(5 * time.Second).Format(gpsLayout),
			TimeInEpoch:         at.Unix(),
			GpsLatitude:         strconv.FormatFloat(r.Location.Lat, 'f', 6, 64),
			GpsLongitude:        strconv.FormatFloat(r.Location.Lon, 'f', 6, 64),
			Filling:             r.SensedL,
			FillingTheftAddress: fmt.Sprintf("Fuel station near %.4f,%.4f", r.Location.Lat, r.Location.Lon),
			FuelType:            "filling",
		})
	}
	return points
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func newServer(f *Fleet, loc *time.Location) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/ambulance/fuel/alert/{id}", func(w http.ResponseWriter, r *http.Request) {
		alertID, ok := pathID(w, r)
		if !ok {
			return
		}
		a := f.forAlert(alertID)
		writeJSON(w, http.StatusOK, models.AlertResponse{Data: []models.AlertDescriptor{{
			ID:           a.ID,
			VehicleNo:    a.VehicleNo,
			SysServiceID: models.FlexString(a.SysServiceID),
			AlertType:    "fuel",
			Msg:          "Fuel filled",
			CreatedAt:    time.Now().In(loc).Format(gpsLayout),
		}}})
	})

	mux.HandleFunc("GET /api/v1/ambulance/fuel/record/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		a, found := f.byID(id)
		if !found {
			writeJSON(w, http.StatusOK, models.FuelLogResponse{AmbulanceFuelLog: []models.FuelLogEntry{}})
			return
		}
		writeJSON(w, http.StatusOK, models.FuelLogResponse{AmbulanceFuelLog: a.fuelLogs()})
	})

	mux.HandleFunc("GET /trackingDashboard/getAllfueldatagraph", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		idx, found := f.bySysID[q.Get("sys_service_id")]
		if !found {
			writeJSON(w, http.StatusOK, models.TelemetryResponse{List: []models.GpsTelemetryPoint{}})
			return
		}
		start, err1 := time.ParseInLocation(windowLayout, q.Get("startdate"), loc)
		end, err2 := time.ParseInLocation(windowLayout, q.Get("enddate"), loc)
		if err1 != nil || err2 != nil || end.Before(start) {
			http.Error(w, "invalid window", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, models.TelemetryResponse{List: f.Ambulances[idx].telemetry(start, end)})
	})

	mux.HandleFunc("POST /api/v1/ambulance/fuel/record/dashboard/confirm", func(w http.ResponseWriter, r *http.Request) {
		var d models.DecisionRecord
		if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
			http.Error(w, "invalid decision", http.StatusBadRequest)
			return
		}
		log.WithFields(log.Fields{
			"alert_id":        d.AlertID,
			"status":          d.Status,
			"diff_pct":        d.FuelDifferencePct,
			"idempotency_key": r.Header.Get("Idempotency-Key"),
		}).Info("Received fuel decision")
		writeJSON(w, http.StatusOK, map[string]string{"status": "confirmed"})
	})

	return mux
}

func main() {
	fleetSize := 10
	if val := os.Getenv("FLEET_SIZE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			fleetSize = n
		}
	}

	auditRate := 0.3
	if val := os.Getenv("SIM_AUDIT_RATE"); val != "" {
		if v, err := strconv.ParseFloat(val, 64); err == nil && v >= 0 && v <= 1 {
			auditRate = v
		}
	}

	loc := time.Local
	if tz := os.Getenv("SIM_TIMEZONE"); tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		} else {
			log.WithError(err).Warn("Unknown timezone, using local")
		}
	}

	port := os.Getenv("SIM_PORT")
	if port == "" {
		port = "8090"
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	fleet := newFleet(fleetSize, time.Now().In(loc), auditRate, rng)

	log.WithFields(log.Fields{
		"fleet_size": fleetSize,
		"audit_rate": auditRate,
		"port":       port,
	}).Info("Starting fuel upstream simulator")

	log.Fatal(http.ListenAndServe(":"+port, newServer(fleet, loc)))
}
