package reconcile

import (
	"fmt"

	"github.com/rotisserie/eris"
)

var (
	// ErrNoFuelData means the fuel-log lookup succeeded but returned nothing to
	// reconcile against.
	ErrNoFuelData = eris.New("no fuel logs found for this vehicle")

	// ErrMissingContext is returned when a decision is submitted without an
	// accepted alert context.
	ErrMissingContext = eris.New("alert context is required before submitting a decision")
)

// Lookup sources reported in LookupError.
const (
	SourceAlert     = "alert"
	SourceFuelLog   = "fuel_log"
	SourceTelemetry = "telemetry"
)

// LookupError wraps a failed read from one of the upstream collaborators.
type LookupError struct {
	Source string
	Err    error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s lookup failed: %v", e.Source, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// SubmissionError wraps a decision sink failure. The decision was not recorded
// and may be submitted again.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("decision submission failed: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
