package models

// FuelLogEntry is one billing-side fuel record as returned by the fuel-log lookup.
// Litres and amounts arrive as text and are parsed by the fuel package.
type FuelLogEntry struct {
	ID                         int64             `bson:"id" json:"id"`
	AmbulanceID                int64             `bson:"ambulance_id" json:"ambulanceId"`
	InvoiceFileURL             string            `bson:"invoice_file_url,omitempty" json:"invoiceFileUrl,omitempty"`
	FuelType                   string            `bson:"fuel_type" json:"fuelType"`
	SoftwareReadingLitres      string            `bson:"software_reading_litres" json:"softwareReadingLitres"`
	SoftwareReadingTotalAmount string            `bson:"software_reading_total_amount,omitempty" json:"softwareReadingTotalAmount,omitempty"`
	ManualReadingLitres        string            `bson:"manual_reading_litres,omitempty" json:"manualReadingLitres,omitempty"`
	FuelDateTime               string            `bson:"fuel_date_time" json:"fuelDateTime"`
	Location                   string            `bson:"location" json:"location"`
	Ambulance                  VehicleDescriptor `bson:"ambulance" json:"ambulance"`
}

// FuelLogResponse is the envelope of the fuel-log lookup.
type FuelLogResponse struct {
	AmbulanceFuelLog []FuelLogEntry `json:"ambulanceFuelLog"`
}
