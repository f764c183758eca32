package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"carefinder/internal/models/facility_models"
	"carefinder/pkg/utils"
)

// PlacesGateway is a typed client over the places nearby-search and details
// endpoints. Provider radius limits (typically 50,000m) are not enforced here.
type PlacesGateway interface {
	// Configured returns a *utils.ConfigurationError when no API key is set.
	Configured() error
	SearchNearby(ctx context.Context, point facility_models.GeoPoint, radiusMeters int, placeType string) ([]facility_models.SearchHit, error)
	GetDetails(ctx context.Context, placeID string) (facility_models.FacilityDetail, error)
}

type PlacesGatewayConfig struct {
	APIKey            string
	BaseURL           string // e.g. https://maps.googleapis.com/maps/api/place
	Timeout           time.Duration
	MaxRetries        int
	RetryBaseDelay    time.Duration
	RequestsPerSecond int
}

type GooglePlacesGateway struct {
	apiKey         string
	baseURL        string
	http           HTTPDoer
	timeout        time.Duration
	maxRetries     int
	retryBaseDelay time.Duration
	limiter        *rate.Limiter
	logger         *zap.Logger
}

func NewGooglePlacesGateway(cfg PlacesGatewayConfig, client HTTPDoer, logger *zap.Logger) *GooglePlacesGateway {
	if client == nil {
		client = &http.Client{}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://maps.googleapis.com/maps/api/place"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = 200 * time.Millisecond
	}
	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		burst = cfg.RequestsPerSecond
	}

	return &GooglePlacesGateway{
		apiKey:         cfg.APIKey,
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		http:           client,
		timeout:        cfg.Timeout,
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
		limiter:        rate.NewLimiter(limit, burst),
		logger:         logger.Named("places"),
	}
}

func (g *GooglePlacesGateway) Configured() error {
	if strings.TrimSpace(g.apiKey) == "" {
		return &utils.ConfigurationError{Setting: "GOOGLE_PLACES_API_KEY"}
	}
	return nil
}

// SearchNearby returns hits in provider rank order. A non-OK status, including
// ZERO_RESULTS, is returned as *utils.PlacesAPIError.
func (g *GooglePlacesGateway) SearchNearby(ctx context.Context, point facility_models.GeoPoint, radiusMeters int, placeType string) ([]facility_models.SearchHit, error) {
	if err := g.Configured(); err != nil {
		return nil, err
	}
	if radiusMeters <= 0 {
		return nil, utils.ErrInvalidRadius
	}

	params := url.Values{}
	params.Set("location", point.String())
	params.Set("radius", strconv.Itoa(radiusMeters))
	if placeType != "" {
		params.Set("type", placeType)
	}

	var payload nearbySearchResponse
	if err := g.getJSON(ctx, "/nearbysearch/json", params, &payload); err != nil {
		return nil, err
	}
	if payload.Status != StatusOK {
		g.logger.Warn("nearby search returned non-OK status",
			zap.String("status", string(payload.Status)),
			zap.String("error_message", payload.ErrorMessage))
		return nil, &utils.PlacesAPIError{Code: string(payload.Status)}
	}

	hits := make([]facility_models.SearchHit, 0, len(payload.Results))
	for _, r := range payload.Results {
		hits = append(hits, facility_models.SearchHit{PlaceID: r.PlaceID, NameHint: r.Name})
	}

	g.logger.Info("nearby search completed",
		zap.Int("hits", len(hits)),
		zap.Int("radius_meters", radiusMeters),
		zap.String("type", placeType))
	return hits, nil
}

// GetDetails fetches the fixed field mask for one place. IsComplete is set only
// when the provider answered OK and supplied a name.
func (g *GooglePlacesGateway) GetDetails(ctx context.Context, placeID string) (facility_models.FacilityDetail, error) {
	if err := g.Configured(); err != nil {
		return facility_models.FacilityDetail{}, err
	}
	if placeID == "" {
		return facility_models.FacilityDetail{}, &utils.PlacesAPIError{Code: string(StatusInvalidRequest)}
	}

	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", DetailsFieldMask)

	var payload placeDetailsResponse
	if err := g.getJSON(ctx, "/details/json", params, &payload); err != nil {
		return facility_models.FacilityDetail{}, err
	}
	if payload.Status != StatusOK {
		return facility_models.FacilityDetail{}, &utils.PlacesAPIError{Code: string(payload.Status)}
	}

	return toFacilityDetail(payload.Result), nil
}

func toFacilityDetail(d placeDetails) facility_models.FacilityDetail {
	detail := facility_models.FacilityDetail{
		Name:       strings.TrimSpace(d.Name),
		Address:    strings.TrimSpace(d.FormattedAddress),
		Phone:      nonEmpty(d.FormattedPhoneNumber),
		Website:    nonEmpty(d.Website),
		IsComplete: strings.TrimSpace(d.Name) != "",
	}
	if d.Rating != nil && *d.Rating >= 0 && *d.Rating <= 5 {
		rating := *d.Rating
		detail.Rating = &rating
	}
	if d.OpeningHours != nil && d.OpeningHours.OpenNow != nil {
		open := *d.OpeningHours.OpenNow
		detail.OpenNow = &open
	}
	return detail
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// getJSON issues a rate-limited GET with the API key attached and decodes the
// body into out. Transport failures and HTTP 5xx are retried with exponential
// backoff; everything else is returned on the first attempt.
func (g *GooglePlacesGateway) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	params.Set("key", g.apiKey)
	target := g.baseURL + endpoint + "?" + params.Encode()

	op := func() error {
		if err := g.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		reqCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("building places request: %w", err))
		}
		req.Header.Set("Accept", "application/json")

		resp, err := g.http.Do(req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return backoff.Permanent(ctxErr)
			}
			return &utils.PlacesAPIError{Code: utils.CodeNetworkError, Err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode/100 != 2 {
			apiErr := &utils.PlacesAPIError{
				Code:       fmt.Sprintf("HTTP_%d", resp.StatusCode),
				HTTPStatus: resp.StatusCode,
			}
			if resp.StatusCode >= 500 {
				return apiErr
			}
			return backoff.Permanent(apiErr)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(&utils.PlacesAPIError{Code: utils.CodeInvalidResponse, HTTPStatus: resp.StatusCode, Err: err})
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(g.newBackOff(), uint64(g.maxRetries)), ctx)
	err := backoff.RetryNotify(op, policy, func(err error, wait time.Duration) {
		g.logger.Warn("retrying places request",
			zap.String("endpoint", endpoint),
			zap.Duration("wait", wait),
			zap.Error(err))
	})
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		g.logger.Warn("places request failed", zap.String("endpoint", endpoint), zap.Error(err))
	}
	return err
}

func (g *GooglePlacesGateway) newBackOff() backoff.BackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     g.retryBaseDelay,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
		Multiplier:          2,
		MaxInterval:         backoff.DefaultMaxInterval,
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	b.Reset()
	return b
}
