package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OperatorInput holds the fields the operator types before confirming.
type OperatorInput struct {
	OTP     string     `json:"otp"`
	Payment string     `json:"payment"`
	Amount  FlexString `json:"amount"`
}

// DecisionRecord is the write-once payload submitted at the end of a session.
// The flat reading fields mirror what the confirm endpoint stores; FuelData keeps
// the full snapshot the operator saw.
type DecisionRecord struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	AlertContext          `bson:",inline"`
	OTP                   string         `bson:"otp" json:"otp"`
	Payment               string         `bson:"payment" json:"payment"`
	Amount                float64        `bson:"amount" json:"amount"`
	SoftwareReadingLitres float64        `bson:"software_reading_litres" json:"softwareReadingLitres"`
	AppReadingLitres      float64        `bson:"app_reading_litres" json:"appReadingLitres"`
	FuelDifferencePct     float64        `bson:"fuel_difference_pct" json:"fuelDifferencePct"`
	Status                Status         `bson:"status" json:"status"`
	InvoiceURL            *string        `bson:"invoice_url" json:"invoiceUrl"`
	Location              *string        `bson:"location" json:"location"`
	FuelData              MergedFuelData `bson:"fuel_data" json:"fuelData"`
	DecidedAt             time.Time      `bson:"decided_at" json:"decidedAt"`
}

// IdempotencyKey identifies one submission attempt of this decision.
func (d DecisionRecord) IdempotencyKey() string {
	return fmt.Sprintf("%d-%s", d.AlertID, d.DecidedAt.UTC().Format(time.RFC3339Nano))
}
