package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"carefinder/internal/models/facility_models"
	"carefinder/pkg/utils"
)

// HTTPDoer is the subset of *http.Client the outbound clients need.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

const (
	unknownCity   = "Unknown City"
	unknownRegion = "Unknown Region"
)

type LocationResolverInterface interface {
	// Resolve geolocates the egress address of this process.
	Resolve(ctx context.Context) (facility_models.GeoPoint, string, error)
	// ResolveIP geolocates an explicit caller address.
	ResolveIP(ctx context.Context, ip string) (facility_models.GeoPoint, string, error)
}

type IPInfoResolver struct {
	HTTP    HTTPDoer
	BaseURL string // e.g. https://ipinfo.io
	Timeout time.Duration
	logger  *zap.Logger
}

func NewIPInfoResolver(baseURL string, timeout time.Duration, client HTTPDoer, logger *zap.Logger) *IPInfoResolver {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &IPInfoResolver{
		HTTP:    client,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Timeout: timeout,
		logger:  logger.Named("location"),
	}
}

type ipInfoPayload struct {
	Loc    string `json:"loc"`
	City   string `json:"city"`
	Region string `json:"region"`
}

func (r *IPInfoResolver) Resolve(ctx context.Context) (facility_models.GeoPoint, string, error) {
	return r.ResolveIP(ctx, "")
}

func (r *IPInfoResolver) ResolveIP(ctx context.Context, ip string) (facility_models.GeoPoint, string, error) {
	target := r.BaseURL + "/json"
	if ip != "" {
		target = r.BaseURL + "/" + url.PathEscape(ip) + "/json"
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return facility_models.GeoPoint{}, "", &utils.NotResolvedError{Reason: "building request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.HTTP.Do(req)
	if err != nil {
		r.logger.Warn("geolocation request failed", zap.Error(err))
		return facility_models.GeoPoint{}, "", &utils.NotResolvedError{Reason: "geolocation request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return facility_models.GeoPoint{}, "", &utils.NotResolvedError{Reason: fmt.Sprintf("geolocation bad status: %s", resp.Status)}
	}

	var payload ipInfoPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return facility_models.GeoPoint{}, "", &utils.NotResolvedError{Reason: "decoding geolocation response", Err: err}
	}

	point, err := ParseLoc(payload.Loc)
	if err != nil {
		return facility_models.GeoPoint{}, "", &utils.NotResolvedError{Reason: "invalid loc field", Err: err}
	}

	label := locationLabel(payload.City, payload.Region)
	r.logger.Debug("location resolved", zap.Stringer("point", point), zap.String("label", label))
	return point, label, nil
}

// ParseLoc parses a "<lat>,<long>" pair and checks it against WGS84 bounds.
func ParseLoc(loc string) (facility_models.GeoPoint, error) {
	loc = strings.TrimSpace(loc)
	if loc == "" {
		return facility_models.GeoPoint{}, fmt.Errorf("loc is empty")
	}
	parts := strings.Split(loc, ",")
	if len(parts) != 2 {
		return facility_models.GeoPoint{}, fmt.Errorf("loc %q is not a lat,long pair", loc)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return facility_models.GeoPoint{}, fmt.Errorf("latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return facility_models.GeoPoint{}, fmt.Errorf("longitude: %w", err)
	}
	point := facility_models.GeoPoint{Latitude: lat, Longitude: lng}
	if err := point.Validate(); err != nil {
		return facility_models.GeoPoint{}, err
	}
	return point, nil
}

func locationLabel(city, region string) string {
	if strings.TrimSpace(city) == "" {
		city = unknownCity
	}
	if strings.TrimSpace(region) == "" {
		region = unknownRegion
	}
	return city + ", " + region
}
