package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/fleet-fuel-audit/internal/models"
)

var (
	testWindow = DayWindow(time.Date(2025, 9, 2, 14, 0, 0, 0, time.UTC))

	testContext = models.AlertContext{
		AlertID:         42,
		AmbulanceID:     101,
		SysServiceID:    "12449316",
		AmbulanceNumber: "ITG1100",
	}

	testLog = models.FuelLogEntry{
		ID:                         1,
		AmbulanceID:                101,
		InvoiceFileURL:             "https://files.example.com/inv-1.pdf",
		FuelType:                   "diesel",
		SoftwareReadingLitres:      "100",
		SoftwareReadingTotalAmount: "9400",
		FuelDateTime:               "2025-09-02T09:00:00Z",
		Location:                   "Sector 21 pump",
		Ambulance: models.VehicleDescriptor{
			ID:              101,
			SysServiceID:    "12449316",
			AmbulanceNumber: "ITG1100",
		},
	}
)

type engineFixture struct {
	alerts    *MockAlertLookup
	logs      *MockFuelLogLookup
	telemetry *MockTelemetryLookup
	engine    *Engine
	hook      *test.Hook
}

func newEngineFixture() *engineFixture {
	logger, hook := test.NewNullLogger()
	f := &engineFixture{
		alerts:    new(MockAlertLookup),
		logs:      new(MockFuelLogLookup),
		telemetry: new(MockTelemetryLookup),
		hook:      hook,
	}
	f.engine = NewEngine(f.alerts, f.logs, f.telemetry, logger)
	return f
}

func gpsPoints(filling float64) []models.GpsTelemetryPoint {
	return []models.GpsTelemetryPoint{
		{ID: 1, GpsTime: "2025-09-02 09:00:00", Filling: 0},
		{ID: 2, GpsTime: "2025-09-02 09:20:00", Filling: filling, FuelType: "filling", GpsLatitude: "23.0225", GpsLongitude: "72.5714"},
	}
}

func TestMerge_AuditAboveThreshold(t *testing.T) {
	f := newEngineFixture()
	f.alerts.On("LookupAlert", mock.Anything, int64(42)).Return(testContext, nil)
	f.logs.On("FuelLogs", mock.Anything, int64(101)).Return([]models.FuelLogEntry{testLog}, nil)
	f.telemetry.On("FuelTelemetry", mock.Anything, "12449316", testWindow).Return(gpsPoints(92), nil)

	got, err := f.engine.Merge(context.Background(), 42, testWindow)
	require.NoError(t, err)

	assert.Equal(t, testContext, got.AlertContext)
	assert.Equal(t, 100.0, got.SoftwareReading)
	assert.Equal(t, 92.0, got.GpsFilling)
	assert.Equal(t, 8.0, got.DifferencePct)
	assert.Equal(t, "8.00%", got.Difference)
	assert.Equal(t, models.StatusAudit, got.Status)
	assert.Equal(t, "9400", got.Amount)
	assert.Equal(t, "Sector 21 pump", got.Location)
	assert.Equal(t, "https://files.example.com/inv-1.pdf", got.InvoiceURL)
	assert.Equal(t, "2025-09-02 09:20:00", got.GpsTime)
	require.NotNil(t, got.GpsPosition)
	assert.Equal(t, models.Location{Lat: 23.0225, Lon: 72.5714}, *got.GpsPosition)

	f.alerts.AssertExpectations(t)
	f.logs.AssertExpectations(t)
	f.telemetry.AssertExpectations(t)
}

func TestMerge_OKBelowThreshold(t *testing.T) {
	f := newEngineFixture()
	f.alerts.On("LookupAlert", mock.Anything, int64(42)).Return(testContext, nil)
	f.logs.On("FuelLogs", mock.Anything, int64(101)).Return([]models.FuelLogEntry{testLog}, nil)
	f.telemetry.On("FuelTelemetry", mock.Anything, "12449316", testWindow).Return(gpsPoints(98), nil)

	got, err := f.engine.Merge(context.Background(), 42, testWindow)
	require.NoError(t, err)
	assert.Equal(t, "2.00%", got.Difference)
	assert.Equal(t, models.StatusOK, got.Status)
}

func TestMerge_NoFuelLogsSkipsTelemetry(t *testing.T) {
	f := newEngineFixture()
	f.alerts.On("LookupAlert", mock.Anything, int64(42)).Return(testContext, nil)
	f.logs.On("FuelLogs", mock.Anything, int64(101)).Return([]models.FuelLogEntry{}, nil)

	_, err := f.engine.Merge(context.Background(), 42, testWindow)
	require.ErrorIs(t, err, ErrNoFuelData)

	var lookupErr *LookupError
	assert.False(t, errors.As(err, &lookupErr))
	f.telemetry.AssertNumberOfCalls(t, "FuelTelemetry", 0)
	require.NotNil(t, f.hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, f.hook.LastEntry().Level)
}

func TestMerge_UsesLatestLogAndItsVehicle(t *testing.T) {
	older := testLog
	older.ID = 2
	older.SoftwareReadingLitres = "40"
	older.FuelDateTime = "2025-09-01T09:00:00Z"

	newer := testLog
	newer.ID = 3
	newer.SoftwareReadingLitres = "50"
	newer.FuelDateTime = "2025-09-02T11:00:00Z"
	newer.Ambulance.SysServiceID = "555"

	f := newEngineFixture()
	f.alerts.On("LookupAlert", mock.Anything, int64(42)).Return(testContext, nil)
	f.logs.On("FuelLogs", mock.Anything, int64(101)).Return([]models.FuelLogEntry{older, newer}, nil)
	f.telemetry.On("FuelTelemetry", mock.Anything, "555", testWindow).Return(gpsPoints(50), nil)

	got, err := f.engine.Merge(context.Background(), 42, testWindow)
	require.NoError(t, err)
	assert.Equal(t, 50.0, got.SoftwareReading)
	assert.Equal(t, models.FlexString("555"), got.SysServiceID)
	assert.Equal(t, "0.00%", got.Difference)
	assert.Equal(t, models.StatusOK, got.Status)
}

func TestMerge_PrefersAlertVehicle(t *testing.T) {
	other := testLog
	other.ID = 9
	other.FuelDateTime = "2025-09-02T12:00:00Z"
	other.SoftwareReadingLitres = "10"
	other.Ambulance = models.VehicleDescriptor{ID: 7, SysServiceID: "777", AmbulanceNumber: "DL1PC0001"}

	f := newEngineFixture()
	f.alerts.On("LookupAlert", mock.Anything, int64(42)).Return(testContext, nil)
	f.logs.On("FuelLogs", mock.Anything, int64(101)).Return([]models.FuelLogEntry{other, testLog}, nil)
	f.telemetry.On("FuelTelemetry", mock.Anything, "12449316", testWindow).Return(gpsPoints(92), nil)

	got, err := f.engine.Merge(context.Background(), 42, testWindow)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.SoftwareReading)
	assert.Equal(t, "ITG1100", got.AmbulanceNumber)
}

func TestMerge_FallsBackToAlertServiceID(t *testing.T) {
	log := testLog
	log.Ambulance = models.VehicleDescriptor{}

	f := newEngineFixture()
	f.alerts.On("LookupAlert", mock.Anything, int64(42)).Return(testContext, nil)
	f.logs.On("FuelLogs", mock.Anything, int64(101)).Return([]models.FuelLogEntry{log}, nil)
	f.telemetry.On("FuelTelemetry", mock.Anything, "12449316", testWindow).Return(nil, nil)

	got, err := f.engine.Merge(context.Background(), 42, testWindow)
	require.NoError(t, err)
	assert.Equal(t, "ITG1100", got.AmbulanceNumber)
	assert.Equal(t, 0.0, got.GpsFilling)
	assert.Equal(t, "100.00%", got.Difference)
	assert.Equal(t, models.StatusAudit, got.Status)
}

func TestMerge_NoFillingAndUnparseableReading(t *testing.T) {
	log := testLog
	log.SoftwareReadingLitres = "n/a"
	log.SoftwareReadingTotalAmount = ""

	f := newEngineFixture()
	f.alerts.On("LookupAlert", mock.Anything, int64(42)).Return(testContext, nil)
	f.logs.On("FuelLogs", mock.Anything, int64(101)).Return([]models.FuelLogEntry{log}, nil)
	f.telemetry.On("FuelTelemetry", mock.Anything, "12449316", testWindow).Return(gpsPoints(0)[:1], nil)

	got, err := f.engine.Merge(context.Background(), 42, testWindow)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.SoftwareReading)
	assert.Equal(t, 0.0, got.GpsFilling)
	assert.Equal(t, "0.00%", got.Difference)
	assert.Equal(t, models.StatusOK, got.Status)
	assert.Equal(t, "0", got.Amount)
}

func TestMerge_LookupFailures(t *testing.T) {
	upstreamErr := errors.New("connection refused")

	t.Run("alert", func(t *testing.T) {
		f := newEngineFixture()
		f.alerts.On("LookupAlert", mock.Anything, int64(42)).Return(models.AlertContext{}, upstreamErr)

		_, err := f.engine.Merge(context.Background(), 42, testWindow)
		var lookupErr *LookupError
		require.ErrorAs(t, err, &lookupErr)
		assert.Equal(t, SourceAlert, lookupErr.Source)
		assert.ErrorIs(t, err, upstreamErr)
		f.logs.AssertNumberOfCalls(t, "FuelLogs", 0)
	})

	t.Run("fuel log", func(t *testing.T) {
		f := newEngineFixture()
		f.alerts.On("LookupAlert", mock.Anything, int64(42)).Return(testContext, nil)
		f.logs.On("FuelLogs", mock.Anything, int64(101)).Return(nil, upstreamErr)

		_, err := f.engine.Merge(context.Background(), 42, testWindow)
		var lookupErr *LookupError
		require.ErrorAs(t, err, &lookupErr)
		assert.Equal(t, SourceFuelLog, lookupErr.Source)
		f.telemetry.AssertNumberOfCalls(t, "FuelTelemetry", 0)
	})

	t.Run("telemetry", func(t *testing.T) {
		f := newEngineFixture()
		f.alerts.On("LookupAlert", mock.Anything, int64(42)).Return(testContext, nil)
		f.logs.On("FuelLogs", mock.Anything, int64(101)).Return([]models.FuelLogEntry{testLog}, nil)
		f.telemetry.On("FuelTelemetry", mock.Anything, "12449316", testWindow).Return(nil, upstreamErr)

		_, err := f.engine.Merge(context.Background(), 42, testWindow)
		var lookupErr *LookupError
		require.ErrorAs(t, err, &lookupErr)
		assert.Equal(t, SourceTelemetry, lookupErr.Source)
		assert.Contains(t, err.Error(), "telemetry lookup failed")
	})
}

func TestRefresh_EmptyLogsIsNotAnError(t *testing.T) {
	f := newEngineFixture()
	f.logs.On("FuelLogs", mock.Anything, int64(101)).Return([]models.FuelLogEntry{}, nil)
	f.telemetry.On("FuelTelemetry", mock.Anything, "12449316", testWindow).Return(gpsPoints(92), nil)

	got, err := f.engine.Refresh(context.Background(), testContext, testWindow)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.SoftwareReading)
	assert.Equal(t, 92.0, got.GpsFilling)
	assert.Equal(t, 0.0, got.DifferencePct)
	assert.Equal(t, models.StatusOK, got.Status)
	assert.Equal(t, testContext, got.AlertContext)
	f.alerts.AssertNumberOfCalls(t, "LookupAlert", 0)
}

func TestRefresh_Computes(t *testing.T) {
	f := newEngineFixture()
	f.logs.On("FuelLogs", mock.Anything, int64(101)).Return([]models.FuelLogEntry{testLog}, nil)
	f.telemetry.On("FuelTelemetry", mock.Anything, "12449316", testWindow).Return(gpsPoints(92), nil)

	got, err := f.engine.Refresh(context.Background(), testContext, testWindow)
	require.NoError(t, err)
	assert.Equal(t, "8.00%", got.Difference)
	assert.Equal(t, models.StatusAudit, got.Status)
}

func TestRefresh_FetchesConcurrently(t *testing.T) {
	f := newEngineFixture()

	// Each lookup blocks until the other has started; a sequential
	// implementation would deadlock and hit the timeout below.
	logsStarted := make(chan struct{})
	gpsStarted := make(chan struct{})

	f.logs.On("FuelLogs", mock.Anything, int64(101)).
		Run(func(mock.Arguments) {
			close(logsStarted)
			<-gpsStarted
		}).
		Return([]models.FuelLogEntry{testLog}, nil)
	f.telemetry.On("FuelTelemetry", mock.Anything, "12449316", testWindow).
		Run(func(mock.Arguments) {
			close(gpsStarted)
			<-logsStarted
		}).
		Return(gpsPoints(98), nil)

	done := make(chan error, 1)
	go func() {
		_, err := f.engine.Refresh(context.Background(), testContext, testWindow)
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("refresh lookups did not run concurrently")
	}
}

func TestRefresh_LookupFailure(t *testing.T) {
	f := newEngineFixture()
	f.logs.On("FuelLogs", mock.Anything, int64(101)).Return([]models.FuelLogEntry{testLog}, nil)
	f.telemetry.On("FuelTelemetry", mock.Anything, "12449316", testWindow).Return(nil, errors.New("503"))

	_, err := f.engine.Refresh(context.Background(), testContext, testWindow)
	var lookupErr *LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, SourceTelemetry, lookupErr.Source)
}

func TestRefresh_FuelLogFailureCancelsTelemetry(t *testing.T) {
	f := newEngineFixture()

	siblingErr := make(chan error, 1)
	f.logs.On("FuelLogs", mock.Anything, int64(101)).Return(nil, errors.New("fuel api down"))
	f.telemetry.On("FuelTelemetry", mock.Anything, "12449316", testWindow).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			select {
			case <-ctx.Done():
				siblingErr <- ctx.Err()
			case <-time.After(2 * time.Second):
				siblingErr <- errors.New("telemetry lookup was not cancelled")
			}
		}).
		Return(nil, context.Canceled)

	_, err := f.engine.Refresh(context.Background(), testContext, testWindow)

	var lookupErr *LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, SourceFuelLog, lookupErr.Source)
	assert.Contains(t, err.Error(), "fuel api down")
	assert.ErrorIs(t, <-siblingErr, context.Canceled)
}
