package upstream

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rotisserie/eris"

	"github.com/ukydev/fleet-fuel-audit/internal/models"
)

// LookupAlert resolves an alert id to its session context. The API returns an
// array of alert rows; the first one is used.
func (c *Client) LookupAlert(ctx context.Context, alertID int64) (models.AlertContext, error) {
	var resp models.AlertResponse
	if err := c.getJSON(ctx, "alert lookup", c.fuelBaseURL+fmt.Sprintf(alertPath, alertID), &resp); err != nil {
		return models.AlertContext{}, err
	}
	if len(resp.Data) == 0 {
		return models.AlertContext{}, eris.Errorf("upstream: alert lookup: alert %d not found", alertID)
	}
	return models.ContextFromAlert(alertID, resp.Data[0]), nil
}

// FuelLogs fetches the billing-side fuel records for an ambulance/alert record.
func (c *Client) FuelLogs(ctx context.Context, ambulanceID int64) ([]models.FuelLogEntry, error) {
	var resp struct {
		AmbulanceFuelLog *[]models.FuelLogEntry `json:"ambulanceFuelLog"`
	}
	if err := c.getJSON(ctx, "fuel log lookup", c.fuelBaseURL+fmt.Sprintf(fuelLogPath, ambulanceID), &resp); err != nil {
		return nil, err
	}
	if resp.AmbulanceFuelLog == nil {
		return nil, eris.New("upstream: fuel log lookup: response has no ambulanceFuelLog")
	}
	return *resp.AmbulanceFuelLog, nil
}

// FuelTelemetry fetches the GPS fuel graph of one service id inside window. The
// vendor takes minute-resolution local timestamps.
func (c *Client) FuelTelemetry(ctx context.Context, sysServiceID string, window models.TimeWindow) ([]models.GpsTelemetryPoint, error) {
	if sysServiceID == "" {
		return nil, eris.New("upstream: telemetry lookup: empty sys_service_id")
	}
	q := url.Values{}
	q.Set("sys_service_id", sysServiceID)
	q.Set("startdate", window.Start.Format(windowLayout))
	q.Set("enddate", window.End.Format(windowLayout))
	q.Set("TypeFT", c.gpsTypeFT)
	q.Set("userid", c.gpsUserID)

	var resp struct {
		List *[]models.GpsTelemetryPoint `json:"list"`
	}
	if err := c.getJSON(ctx, "telemetry lookup", c.gpsBaseURL+gpsGraphPath+"?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.List == nil {
		return nil, eris.New("upstream: telemetry lookup: response has no list")
	}
	return *resp.List, nil
}

// SubmitDecision posts the final decision to the confirm endpoint. The
// Idempotency-Key header lets the backend drop a repeated submission.
func (c *Client) SubmitDecision(ctx context.Context, d models.DecisionRecord) error {
	_, err := c.postJSON(ctx, "decision submit", c.fuelBaseURL+confirmPath, d, map[string]string{
		"Idempotency-Key": d.IdempotencyKey(),
	})
	return err
}
