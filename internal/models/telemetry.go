package models

import "time"

// GpsTelemetryPoint is one sample from the GPS vendor's fuel graph. Filling is zero
// unless the sensor registered a refuel.
type GpsTelemetryPoint struct {
	ID                  int64      `bson:"id" json:"id"`
	SysServiceID        FlexString `bson:"sys_service_id" json:"sys_service_id"`
	GpsTime             string     `bson:"gps_time" json:"gps_time"`
	RecTime             string     `bson:"rec_time" json:"rec_time"`
	RV                  float64    `bson:"rv" json:"rv"`
	AV                  float64    `bson:"av" json:"av"`
	TimeInEpoch         int64      `bson:"timeinepoc" json:"timeinepoc"`
	GpsLatitude         string     `bson:"gps_latitude" json:"gps_latitude"`
	GpsLongitude        string     `bson:"gps_longitude" json:"gps_longitude"`
	Filling             float64    `bson:"filling" json:"filling"`
	FillingTheftAddress string     `bson:"filling_theft_address" json:"fillingtheftaddress"`
	FuelType            string     `bson:"fuel_type" json:"fueltype"`
}

// Location returns the parsed position of the sample.
func (p GpsTelemetryPoint) Location() (Location, bool) {
	return ParseLocation(p.GpsLatitude, p.GpsLongitude)
}

// TelemetryResponse is the envelope of the GPS fuel graph lookup.
type TelemetryResponse struct {
	List []GpsTelemetryPoint `json:"list"`
}

// TimeWindow bounds a telemetry lookup.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
