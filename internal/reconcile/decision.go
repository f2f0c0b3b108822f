package reconcile

import (
	"context"
	"math"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-fuel-audit/internal/fuel"
	"github.com/ukydev/fleet-fuel-audit/internal/models"
)

// DecisionSink persists a final decision.
type DecisionSink interface {
	SubmitDecision(ctx context.Context, d models.DecisionRecord) error
}

// AuditNotifier announces decisions that need human review.
type AuditNotifier interface {
	NotifyAudit(ctx context.Context, d models.DecisionRecord) error
}

// AssembleDecision merges the session context, the merged fuel data and the
// operator input into a decision stamped with decidedAt. A blank or non-numeric
// amount becomes 0.
func AssembleDecision(alertCtx *models.AlertContext, merged models.MergedFuelData, input models.OperatorInput, decidedAt time.Time) (models.DecisionRecord, error) {
	if alertCtx == nil {
		return models.DecisionRecord{}, ErrMissingContext
	}

	amount, ok := fuel.ParseNumber(input.Amount.String())
	if !ok || math.IsInf(amount, 0) || math.IsNaN(amount) {
		amount = 0
	}

	return models.DecisionRecord{
		AlertContext:          *alertCtx,
		OTP:                   input.OTP,
		Payment:               input.Payment,
		Amount:                amount,
		SoftwareReadingLitres: merged.SoftwareReading,
		AppReadingLitres:      merged.GpsFilling,
		FuelDifferencePct:     merged.DifferencePct,
		Status:                merged.Status,
		InvoiceURL:            optional(merged.InvoiceURL),
		Location:              optional(merged.Location),
		FuelData:              merged,
		DecidedAt:             decidedAt,
	}, nil
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// SubmitterOption configures a Submitter.
type SubmitterOption func(*Submitter)

// WithNotifier publishes Audit decisions after they are persisted.
func WithNotifier(n AuditNotifier) SubmitterOption {
	return func(s *Submitter) {
		s.notifier = n
	}
}

// WithClock overrides the clock used for decidedAt.
func WithClock(now func() time.Time) SubmitterOption {
	return func(s *Submitter) {
		s.now = now
	}
}

// Submitter assembles decisions and hands them to the decision sink. It does not
// de-duplicate; the sink receives an idempotency key instead.
type Submitter struct {
	sink     DecisionSink
	notifier AuditNotifier
	now      func() time.Time
	log      log.FieldLogger
}

// NewSubmitter creates a Submitter writing to sink.
func NewSubmitter(sink DecisionSink, logger log.FieldLogger, opts ...SubmitterOption) *Submitter {
	if logger == nil {
		logger = log.StandardLogger()
	}
	s := &Submitter{
		sink: sink,
		now:  time.Now,
		log:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit assembles and persists a decision. On a sink failure the assembled
// record is returned alongside a *SubmissionError so the caller can show it and
// try again.
func (s *Submitter) Submit(ctx context.Context, alertCtx *models.AlertContext, merged models.MergedFuelData, input models.OperatorInput) (models.DecisionRecord, error) {
	record, err := AssembleDecision(alertCtx, merged, input, s.now())
	if err != nil {
		return models.DecisionRecord{}, err
	}

	fields := log.Fields{
		"alert_id":        record.AlertID,
		"status":          record.Status,
		"idempotency_key": record.IdempotencyKey(),
	}

	if err := s.sink.SubmitDecision(ctx, record); err != nil {
		s.log.WithFields(fields).WithError(err).Error("Failed to submit fuel decision")
		return record, &SubmissionError{Err: err}
	}
	s.log.WithFields(fields).Info("Submitted fuel decision")

	if record.Status == models.StatusAudit && s.notifier != nil {
		if err := s.notifier.NotifyAudit(ctx, record); err != nil {
			s.log.WithFields(fields).WithError(err).Warn("Failed to publish audit notification")
		}
	}
	return record, nil
}
