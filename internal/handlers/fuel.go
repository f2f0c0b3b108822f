package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-fuel-audit/internal/models"
	"github.com/ukydev/fleet-fuel-audit/internal/reconcile"
)

// Reconciler produces merged fuel data for an alert.
type Reconciler interface {
	Merge(ctx context.Context, alertID int64, window models.TimeWindow) (models.MergedFuelData, error)
	Refresh(ctx context.Context, alertCtx models.AlertContext, window models.TimeWindow) (models.MergedFuelData, error)
}

// DecisionSubmitter persists operator decisions.
type DecisionSubmitter interface {
	Submit(ctx context.Context, alertCtx *models.AlertContext, merged models.MergedFuelData, input models.OperatorInput) (models.DecisionRecord, error)
}

// DecisionHistory lists decisions already recorded for an alert.
type DecisionHistory interface {
	History(ctx context.Context, alertID int64) ([]models.DecisionRecord, error)
}

// RefreshRequest is the body of POST /api/alerts/fuel/refresh.
type RefreshRequest struct {
	Context *models.AlertContext `json:"context"`
	Date    string               `json:"date,omitempty"`
}

// DecisionRequest is the body of POST /api/alerts/{alertId}/decision.
type DecisionRequest struct {
	Context  *models.AlertContext  `json:"context"`
	FuelData models.MergedFuelData `json:"fuelData"`
	OTP      string                `json:"otp"`
	Payment  string                `json:"payment"`
	Amount   models.FlexString     `json:"amount"`
}

// FuelHandler serves the fuel reconciliation API
type FuelHandler struct {
	engine    Reconciler
	submitter DecisionSubmitter
	history   DecisionHistory
	loc       *time.Location
	now       func() time.Time
	logger    log.FieldLogger
}

// NewFuelHandler creates a new fuel handler. Day windows are computed in loc.
func NewFuelHandler(engine Reconciler, submitter DecisionSubmitter, loc *time.Location, logger log.FieldLogger) *FuelHandler {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &FuelHandler{
		engine:    engine,
		submitter: submitter,
		loc:       loc,
		now:       time.Now,
		logger:    logger,
	}
}

// WithHistory enables the decision history route.
func (h *FuelHandler) WithHistory(history DecisionHistory) *FuelHandler {
	h.history = history
	return h
}

// Register mounts the routes on mux.
func (h *FuelHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /api/alerts/{alertId}/fuel", h.GetFuel)
	mux.HandleFunc("POST /api/alerts/fuel/refresh", h.Refresh)
	mux.HandleFunc("POST /api/alerts/{alertId}/decision", h.Decide)
	mux.HandleFunc("GET /api/alerts/{alertId}/decisions", h.Decisions)
}

// Health reports liveness
func (h *FuelHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetFuel merges fuel data for an alert over one calendar day
func (h *FuelHandler) GetFuel(w http.ResponseWriter, r *http.Request) {
	alertID, ok := h.alertID(w, r)
	if !ok {
		return
	}
	window, err := reconcile.WindowForDate(r.URL.Query().Get("date"), h.now().In(h.loc))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	merged, err := h.engine.Merge(r.Context(), alertID, window)
	if err != nil {
		h.writeReconcileError(w, err, alertID)
		return
	}
	writeJSON(w, http.StatusOK, merged)
}

// Refresh recomputes fuel data for an already accepted alert context
func (h *FuelHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Context == nil {
		h.writeReconcileError(w, reconcile.ErrMissingContext, 0)
		return
	}
	window, err := reconcile.WindowForDate(req.Date, h.now().In(h.loc))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	merged, err := h.engine.Refresh(r.Context(), *req.Context, window)
	if err != nil {
		h.writeReconcileError(w, err, req.Context.AlertID)
		return
	}
	writeJSON(w, http.StatusOK, merged)
}

// Decide submits the operator's decision for an alert
func (h *FuelHandler) Decide(w http.ResponseWriter, r *http.Request) {
	alertID, ok := h.alertID(w, r)
	if !ok {
		return
	}
	var req DecisionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Context != nil {
		if req.Context.AlertID != alertID {
			writeError(w, http.StatusBadRequest, "Alert ID in path and context differ")
			return
		}
		if req.FuelData.AlertID != alertID {
			writeError(w, http.StatusBadRequest, "Alert ID in path and fuel data differ")
			return
		}
	}

	input := models.OperatorInput{OTP: req.OTP, Payment: req.Payment, Amount: req.Amount}
	record, err := h.submitter.Submit(r.Context(), req.Context, req.FuelData, input)
	if err != nil {
		h.writeReconcileError(w, err, alertID)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// Decisions lists the decisions recorded for an alert
func (h *FuelHandler) Decisions(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, http.StatusNotImplemented, "Decision history requires the mongo sink")
		return
	}
	alertID, ok := h.alertID(w, r)
	if !ok {
		return
	}
	records, err := h.history.History(r.Context(), alertID)
	if err != nil {
		h.logger.WithField("alert_id", alertID).WithError(err).Error("Failed to load decision history")
		writeError(w, http.StatusInternalServerError, "Failed to load decision history")
		return
	}
	if records == nil {
		records = []models.DecisionRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *FuelHandler) alertID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("alertId"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid alert ID")
		return 0, false
	}
	return id, true
}

// writeReconcileError maps engine and submission errors to HTTP statuses.
func (h *FuelHandler) writeReconcileError(w http.ResponseWriter, err error, alertID int64) {
	status := http.StatusInternalServerError
	var lookupErr *reconcile.LookupError
	var submitErr *reconcile.SubmissionError
	switch {
	case errors.Is(err, reconcile.ErrNoFuelData):
		status = http.StatusNotFound
	case errors.Is(err, reconcile.ErrMissingContext):
		status = http.StatusPreconditionFailed
	case errors.As(err, &lookupErr), errors.As(err, &submitErr):
		status = http.StatusBadGateway
	}

	entry := h.logger.WithFields(log.Fields{"alert_id": alertID, "status": status}).WithError(err)
	if status >= http.StatusInternalServerError {
		entry.Error("Fuel request failed")
	} else {
		entry.Info("Fuel request rejected")
	}
	writeError(w, status, err.Error())
}

func decodeBody(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return false
	}
	if err := json.Unmarshal(body, out); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
