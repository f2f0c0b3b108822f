package reconcile

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ukydev/fleet-fuel-audit/internal/models"
)

type MockAlertLookup struct {
	mock.Mock
}

func (m *MockAlertLookup) LookupAlert(ctx context.Context, alertID int64) (models.AlertContext, error) {
	args := m.Called(ctx, alertID)
	return args.Get(0).(models.AlertContext), args.Error(1)
}

type MockFuelLogLookup struct {
	mock.Mock
}

func (m *MockFuelLogLookup) FuelLogs(ctx context.Context, ambulanceID int64) ([]models.FuelLogEntry, error) {
	args := m.Called(ctx, ambulanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FuelLogEntry), args.Error(1)
}

type MockTelemetryLookup struct {
	mock.Mock
}

func (m *MockTelemetryLookup) FuelTelemetry(ctx context.Context, sysServiceID string, window models.TimeWindow) ([]models.GpsTelemetryPoint, error) {
	args := m.Called(ctx, sysServiceID, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GpsTelemetryPoint), args.Error(1)
}

type MockDecisionSink struct {
	mock.Mock
}

func (m *MockDecisionSink) SubmitDecision(ctx context.Context, d models.DecisionRecord) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

type MockAuditNotifier struct {
	mock.Mock
}

func (m *MockAuditNotifier) NotifyAudit(ctx context.Context, d models.DecisionRecord) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}
