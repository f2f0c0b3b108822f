package models

// AlertDescriptor is a raw alert row from the alert lookup. Only a handful of fields
// drive reconciliation; the rest are kept for display.
type AlertDescriptor struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	GroupID      int64      `json:"group_id"`
	Username     string     `json:"Username"`
	AlertType    string     `json:"alert_type"`
	VehicleNo    string     `json:"vehicleno"`
	SysServiceID FlexString `json:"sys_service_id"`
	Speed        FlexString `json:"speed"`
	GpsLatitude  string     `json:"gps_latitude"`
	GpsLongitude string     `json:"gps_longitude"`
	Msg          string     `json:"msg"`
	Remark       *string    `json:"remark"`
	CreatedAt    string     `json:"created_at"`
	SentAt       string     `json:"sent_at"`
	Status       int        `json:"status"`
}

// AlertResponse is the envelope of the alert lookup.
type AlertResponse struct {
	Data []AlertDescriptor `json:"data"`
}

// AlertContext identifies the subject of one reconciliation session.
type AlertContext struct {
	AlertID         int64      `bson:"alert_id" json:"alertId"`
	AmbulanceID     int64      `bson:"ambulance_id" json:"ambulanceId"`
	SysServiceID    FlexString `bson:"sys_service_id" json:"sysServiceId"`
	AmbulanceNumber string     `bson:"ambulance_number" json:"ambulanceNumber"`
}

// ContextFromAlert maps an alert row to the session context. The alert row id is the
// ambulance/alert record id the fuel-log lookup is scoped by.
func ContextFromAlert(alertID int64, a AlertDescriptor) AlertContext {
	return AlertContext{
		AlertID:         alertID,
		AmbulanceID:     a.ID,
		SysServiceID:    a.SysServiceID,
		AmbulanceNumber: a.VehicleNo,
	}
}
