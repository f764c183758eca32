package services

type PlacesStatus string

const (
	StatusOK             PlacesStatus = "OK"
	StatusZeroResults    PlacesStatus = "ZERO_RESULTS"
	StatusOverQueryLimit PlacesStatus = "OVER_QUERY_LIMIT"
	StatusRequestDenied  PlacesStatus = "REQUEST_DENIED"
	StatusInvalidRequest PlacesStatus = "INVALID_REQUEST"
	StatusNotFound       PlacesStatus = "NOT_FOUND"
	StatusUnknownError   PlacesStatus = "UNKNOWN_ERROR"
)

// PlaceTypeHospital is the only facility type the finder searches for.
const PlaceTypeHospital = "hospital"

// DetailsFieldMask is sent with every details request.
const DetailsFieldMask = "name,formatted_address,formatted_phone_number,rating,opening_hours,website"

type nearbySearchResponse struct {
	Status       PlacesStatus         `json:"status"`
	ErrorMessage string               `json:"error_message,omitempty"`
	Results      []nearbySearchResult `json:"results"`
}

type nearbySearchResult struct {
	PlaceID string `json:"place_id"`
	Name    string `json:"name"`
}

type placeDetailsResponse struct {
	Status       PlacesStatus `json:"status"`
	ErrorMessage string       `json:"error_message,omitempty"`
	Result       placeDetails `json:"result"`
}

type placeDetails struct {
	Name                 string        `json:"name"`
	FormattedAddress     string        `json:"formatted_address"`
	FormattedPhoneNumber *string       `json:"formatted_phone_number,omitempty"`
	Rating               *float64      `json:"rating,omitempty"`
	OpeningHours         *openingHours `json:"opening_hours,omitempty"`
	Website              *string       `json:"website,omitempty"`
}

type openingHours struct {
	OpenNow *bool `json:"open_now,omitempty"`
}
