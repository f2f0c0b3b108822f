package models

import (
	"strconv"
	"strings"
)

// Location represents a geographical location with latitude and longitude coordinates.
type Location struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lon float64 `bson:"lon" json:"lon"`
}

// ParseLocation builds a Location from the text coordinates GPS vendors send.
// ok is false when either coordinate is blank or not a number.
func ParseLocation(lat, lon string) (Location, bool) {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return Location{}, false
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return Location{}, false
	}
	return Location{Lat: la, Lon: lo}, true
}
