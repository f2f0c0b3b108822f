// Package reconcile merges billing-side fuel logs with GPS filling events into a
// single decision context and turns operator input into a decision record.
package reconcile

import (
	"context"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ukydev/fleet-fuel-audit/internal/fuel"
	"github.com/ukydev/fleet-fuel-audit/internal/models"
)

// AlertLookup resolves an alert to its session context.
type AlertLookup interface {
	LookupAlert(ctx context.Context, alertID int64) (models.AlertContext, error)
}

// FuelLogLookup returns the billing-side fuel records of an ambulance/alert record.
type FuelLogLookup interface {
	FuelLogs(ctx context.Context, ambulanceID int64) ([]models.FuelLogEntry, error)
}

// TelemetryLookup returns GPS fuel samples of a service id inside a window.
type TelemetryLookup interface {
	FuelTelemetry(ctx context.Context, sysServiceID string, window models.TimeWindow) ([]models.GpsTelemetryPoint, error)
}

// Engine reconciles one alert per call. It holds no session state.
type Engine struct {
	alerts    AlertLookup
	logs      FuelLogLookup
	telemetry TelemetryLookup
	log       log.FieldLogger
}

// NewEngine wires the engine to its collaborators. A nil logger uses the
// standard logrus logger.
func NewEngine(alerts AlertLookup, logs FuelLogLookup, telemetry TelemetryLookup, logger log.FieldLogger) *Engine {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Engine{
		alerts:    alerts,
		logs:      logs,
		telemetry: telemetry,
		log:       logger,
	}
}

// Merge resolves the alert, selects the latest fuel log, fetches the GPS samples
// of the vehicle bound to that log and computes the discrepancy. The fetches are
// sequential because the telemetry lookup needs the log's service id.
func (e *Engine) Merge(ctx context.Context, alertID int64, window models.TimeWindow) (models.MergedFuelData, error) {
	alertCtx, err := e.alerts.LookupAlert(ctx, alertID)
	if err != nil {
		return models.MergedFuelData{}, &LookupError{Source: SourceAlert, Err: err}
	}

	logs, err := e.logs.FuelLogs(ctx, alertCtx.AmbulanceID)
	if err != nil {
		return models.MergedFuelData{}, &LookupError{Source: SourceFuelLog, Err: err}
	}

	latest, ok := fuel.PickLatestFuelLog(fuel.ForVehicle(logs, alertCtx.AmbulanceNumber))
	if !ok {
		e.log.WithFields(log.Fields{
			"alert_id":     alertID,
			"ambulance_id": alertCtx.AmbulanceID,
		}).Warn("No fuel logs to reconcile")
		return models.MergedFuelData{}, ErrNoFuelData
	}

	subject := alertCtx
	if latest.Ambulance.SysServiceID != "" {
		subject.SysServiceID = latest.Ambulance.SysServiceID
	}
	if latest.Ambulance.AmbulanceNumber != "" {
		subject.AmbulanceNumber = latest.Ambulance.AmbulanceNumber
	}

	points, err := e.telemetry.FuelTelemetry(ctx, subject.SysServiceID.String(), window)
	if err != nil {
		return models.MergedFuelData{}, &LookupError{Source: SourceTelemetry, Err: err}
	}

	merged := compute(subject, &latest, points)
	e.logResult("Merged fuel data", merged, len(logs), len(points))
	return merged, nil
}

// Refresh recomputes an already accepted context. Both lookups are independent
// here, so they run concurrently and are joined before the computation. Unlike
// Merge, an empty log collection yields a software reading of 0.
func (e *Engine) Refresh(ctx context.Context, alertCtx models.AlertContext, window models.TimeWindow) (models.MergedFuelData, error) {
	var (
		logs   []models.FuelLogEntry
		points []models.GpsTelemetryPoint
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		l, err := e.logs.FuelLogs(gctx, alertCtx.AmbulanceID)
		if err != nil {
			return &LookupError{Source: SourceFuelLog, Err: err}
		}
		logs = l
		return nil
	})
	g.Go(func() error {
		p, err := e.telemetry.FuelTelemetry(gctx, alertCtx.SysServiceID.String(), window)
		if err != nil {
			return &LookupError{Source: SourceTelemetry, Err: err}
		}
		points = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.MergedFuelData{}, err
	}

	var latest *models.FuelLogEntry
	if l, ok := fuel.PickLatestFuelLog(fuel.ForVehicle(logs, alertCtx.AmbulanceNumber)); ok {
		latest = &l
	}

	merged := compute(alertCtx, latest, points)
	e.logResult("Refreshed fuel data", merged, len(logs), len(points))
	return merged, nil
}

func (e *Engine) logResult(msg string, m models.MergedFuelData, logCount, pointCount int) {
	e.log.WithFields(log.Fields{
		"alert_id":         m.AlertID,
		"sys_service_id":   m.SysServiceID,
		"fuel_logs":        logCount,
		"gps_points":       pointCount,
		"software_reading": m.SoftwareReading,
		"gps_filling":      m.GpsFilling,
		"difference":       m.Difference,
		"status":           m.Status,
	}).Info(msg)
}

// compute builds the merged view. latest may be nil, in which case the software
// reading is 0 and so is the discrepancy.
func compute(subject models.AlertContext, latest *models.FuelLogEntry, points []models.GpsTelemetryPoint) models.MergedFuelData {
	m := models.MergedFuelData{
		AlertContext: subject,
		Amount:       "0",
	}
	if latest != nil {
		m.Location = latest.Location
		m.InvoiceURL = latest.InvoiceFileURL
		m.SoftwareReading = fuel.ParseLitres(latest.SoftwareReadingLitres)
		m.FuelDateTime = latest.FuelDateTime
		if latest.SoftwareReadingTotalAmount != "" {
			m.Amount = latest.SoftwareReadingTotalAmount
		}
	}
	if p, ok := fuel.PickLatestFilling(points); ok {
		m.GpsFilling = fuel.CoerceReading(p.Filling)
		m.GpsTime = p.GpsTime
		if loc, ok := p.Location(); ok {
			m.GpsPosition = &loc
		}
	}

	m.DifferencePct = fuel.CalculateDifferencePct(m.SoftwareReading, m.GpsFilling)
	m.Difference = fuel.FormatPct(m.DifferencePct)
	m.Status = fuel.StatusFromDiff(m.DifferencePct)
	return m
}
