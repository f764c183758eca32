package utils

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRadius     = errors.New("search radius must be a positive number of meters")
	ErrInvalidMaxResults = errors.New("max results must be a positive number")
	ErrInvalidPage       = errors.New("invalid page parameter")
	ErrInvalidPageSize   = errors.New("invalid page size parameter")
	ErrLookupNotFound    = errors.New("lookup not found")
	ErrDatabaseError     = errors.New("database error")
	ErrAuditDisabled     = errors.New("lookup audit log is disabled")
)

// ConfigurationError reports a missing or invalid setting. It is returned
// before any network call is attempted.
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("API key missing: %s is not set", e.Setting)
}

// NotResolvedError means the caller's location could not be determined.
type NotResolvedError struct {
	Reason string
	Err    error
}

func (e *NotResolvedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("location not detected: %s: %v", e.Reason, e.Err)
	}
	return "location not detected: " + e.Reason
}

func (e *NotResolvedError) Unwrap() error { return e.Err }

// Places provider codes produced locally when no provider status is available.
const (
	CodeNetworkError    = "NETWORK_ERROR"
	CodeInvalidResponse = "INVALID_RESPONSE"
)

// PlacesAPIError carries the provider status string, or a local code such as
// HTTP_503 or NETWORK_ERROR when the provider never answered with one.
type PlacesAPIError struct {
	Code       string
	HTTPStatus int
	Err        error
}

func (e *PlacesAPIError) Error() string {
	return "provider error: " + e.Code
}

func (e *PlacesAPIError) Unwrap() error { return e.Err }

type FinderErrorKind int

const (
	KindNoLocation FinderErrorKind = iota + 1
	KindSearchFailed
)

func (k FinderErrorKind) String() string {
	switch k {
	case KindNoLocation:
		return "NoLocation"
	case KindSearchFailed:
		return "SearchFailed"
	default:
		return "Unknown"
	}
}

// FinderError is what the facility finder hands to its callers. Err holds the
// NotResolvedError or PlacesAPIError that caused it.
type FinderError struct {
	Kind FinderErrorKind
	Err  error
}

func (e *FinderError) Error() string {
	return e.Err.Error()
}

func (e *FinderError) Unwrap() error { return e.Err }

// ErrorClass names the class of a lookup failure for logs and the audit log.
func ErrorClass(err error) string {
	var cfgErr *ConfigurationError
	var finderErr *FinderError
	var apiErr *PlacesAPIError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &cfgErr):
		return "configuration"
	case errors.As(err, &finderErr) && finderErr.Kind == KindNoLocation:
		return "no_location"
	case errors.As(err, &apiErr):
		return "provider:" + apiErr.Code
	case errors.Is(err, ErrInvalidRadius), errors.Is(err, ErrInvalidMaxResults):
		return "invalid_argument"
	default:
		return "internal"
	}
}
