package facility_models

import (
	"fmt"
	"math"
)

type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate reports whether both coordinates are finite and inside WGS84 bounds.
func (p GeoPoint) Validate() error {
	if math.IsNaN(p.Latitude) || math.IsInf(p.Latitude, 0) ||
		math.IsNaN(p.Longitude) || math.IsInf(p.Longitude, 0) {
		return fmt.Errorf("coordinates must be finite")
	}
	if p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range [-90,90]", p.Latitude)
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range [-180,180]", p.Longitude)
	}
	return nil
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Latitude, p.Longitude)
}

type SearchHit struct {
	PlaceID  string
	NameHint string
}

type FacilityDetail struct {
	Name       string   `json:"name"`
	Address    string   `json:"address,omitempty"`
	Phone      *string  `json:"phone,omitempty"`
	Rating     *float64 `json:"rating,omitempty"`
	Website    *string  `json:"website,omitempty"`
	OpenNow    *bool    `json:"open_now,omitempty"`
	IsComplete bool     `json:"is_complete"`
}

type FacilityReport struct {
	Location      GeoPoint         `json:"location"`
	LocationLabel string           `json:"location_label"`
	RadiusMeters  int              `json:"radius_meters"`
	Facilities    []FacilityDetail `json:"facilities"`
}

func (r *FacilityReport) IncompleteCount() int {
	n := 0
	for _, f := range r.Facilities {
		if !f.IsComplete {
			n++
		}
	}
	return n
}
