package models

// VehicleDescriptor is the vehicle block embedded in every fuel log entry.
type VehicleDescriptor struct {
	ID              int64      `bson:"id" json:"id"`
	SysServiceID    FlexString `bson:"sys_service_id" json:"sysServiceId"`
	AmbulanceNumber string     `bson:"ambulance_number" json:"ambulanceNumber"`
}
