package models

// Status is the audit classification of a reconciliation.
type Status string

const (
	StatusOK    Status = "OK"
	StatusAudit Status = "Audit"
)

// MergedFuelData is the reconciliation result shown to the operator.
type MergedFuelData struct {
	AlertContext    `bson:",inline"`
	Location        string  `bson:"location" json:"location"`
	SoftwareReading float64 `bson:"software_reading" json:"softwareReading"`
	GpsFilling      float64 `bson:"gps_filling" json:"gpsFilling"`
	DifferencePct   float64 `bson:"difference_pct" json:"differencePct"`
	Difference      string  `bson:"difference" json:"difference"`
	Amount          string  `bson:"amount" json:"amount"`
	InvoiceURL      string  `bson:"invoice_url" json:"invoiceUrl"`
	Status          Status  `bson:"status" json:"status"`
	FuelDateTime    string  `bson:"fuel_date_time,omitempty" json:"fuelDateTime,omitempty"`
	GpsTime         string  `bson:"gps_time,omitempty" json:"gpsTime,omitempty"`
	// GpsPosition is where the sensor registered the filling, when reported.
	GpsPosition *Location `bson:"gps_position,omitempty" json:"gpsPosition,omitempty"`
}
