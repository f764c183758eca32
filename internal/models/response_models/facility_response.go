package response_models

import "carefinder/internal/models/facility_models"

type NearbyFacilities struct {
	Report *facility_models.FacilityReport `json:"report"`
	Text   string                          `json:"text"`
}

type Lookup struct {
	ID              string `json:"id"`
	CreatedAt       int64  `json:"created_at"`
	RadiusMeters    int    `json:"radius_meters"`
	MaxResults      int    `json:"max_results"`
	LocationLabel   string `json:"location_label,omitempty"`
	FacilityCount   int    `json:"facility_count"`
	IncompleteCount int    `json:"incomplete_count"`
	Outcome         string `json:"outcome"`
	ErrorClass      string `json:"error_class,omitempty"`
	DurationMs      int64  `json:"duration_ms"`
}
