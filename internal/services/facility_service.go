package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"carefinder/internal/models/db_models"
	"carefinder/internal/models/facility_models"
	"carefinder/pkg/utils"
)

type FindOptions struct {
	RadiusMeters int    // 0 means the configured default
	MaxResults   int    // 0 means the configured default
	IP           string // empty geolocates this process's egress address
}

type FacilityFinderInterface interface {
	FindNearby(ctx context.Context, opts FindOptions) (*facility_models.FacilityReport, error)
}

type FacilityFinder struct {
	resolver      LocationResolverInterface
	gateway       PlacesGateway
	recorder      LookupRecorder
	defaultRadius int
	defaultMax    int
	logger        *zap.Logger
}

func NewFacilityFinder(
	resolver LocationResolverInterface,
	gateway PlacesGateway,
	recorder LookupRecorder,
	defaultRadius, defaultMax int,
	logger *zap.Logger,
) *FacilityFinder {
	if recorder == nil {
		recorder = NopLookupRecorder{}
	}
	if defaultRadius <= 0 {
		defaultRadius = 5000
	}
	if defaultMax <= 0 {
		defaultMax = 10
	}
	return &FacilityFinder{
		resolver:      resolver,
		gateway:       gateway,
		recorder:      recorder,
		defaultRadius: defaultRadius,
		defaultMax:    defaultMax,
		logger:        logger.Named("finder"),
	}
}

// FindNearby resolves the caller's location, searches for hospitals around it
// and enriches every retained hit with its details. Facilities keep the
// provider's rank order. A failed detail lookup produces an incomplete entry
// instead of an error.
func (f *FacilityFinder) FindNearby(ctx context.Context, opts FindOptions) (*facility_models.FacilityReport, error) {
	start := time.Now()
	report, err := f.findNearby(ctx, opts)
	f.record(ctx, opts, report, err, time.Since(start))
	return report, err
}

func (f *FacilityFinder) findNearby(ctx context.Context, opts FindOptions) (*facility_models.FacilityReport, error) {
	radius, maxResults, err := f.normalize(opts)
	if err != nil {
		return nil, err
	}

	if err := f.gateway.Configured(); err != nil {
		f.logger.Error("places gateway is not configured", zap.Error(err))
		return nil, err
	}

	var point facility_models.GeoPoint
	var label string
	if opts.IP != "" {
		point, label, err = f.resolver.ResolveIP(ctx, opts.IP)
	} else {
		point, label, err = f.resolver.Resolve(ctx)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		f.logger.Warn("could not resolve caller location", zap.Error(err))
		return nil, &utils.FinderError{Kind: utils.KindNoLocation, Err: err}
	}

	report := &facility_models.FacilityReport{
		Location:      point,
		LocationLabel: label,
		RadiusMeters:  radius,
		Facilities:    []facility_models.FacilityDetail{},
	}

	hits, err := f.gateway.SearchNearby(ctx, point, radius, PlaceTypeHospital)
	if err != nil {
		var apiErr *utils.PlacesAPIError
		if errors.As(err, &apiErr) && apiErr.Code == string(StatusZeroResults) {
			f.logger.Info("no facilities found", zap.String("location", label), zap.Int("radius_meters", radius))
			return report, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &utils.FinderError{Kind: utils.KindSearchFailed, Err: err}
	}
	if len(hits) == 0 {
		return report, nil
	}

	if len(hits) > maxResults {
		hits = hits[:maxResults]
	}

	facilities := make([]facility_models.FacilityDetail, len(hits))
	var g errgroup.Group
	g.SetLimit(len(hits))
	for i, hit := range hits {
		i, hit := i, hit
		g.Go(func() error {
			facilities[i] = f.enrich(ctx, hit)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.Facilities = facilities
	f.logger.Info("facility lookup completed",
		zap.String("location", label),
		zap.Int("facilities", len(facilities)),
		zap.Int("incomplete", report.IncompleteCount()))
	return report, nil
}

func (f *FacilityFinder) enrich(ctx context.Context, hit facility_models.SearchHit) facility_models.FacilityDetail {
	incomplete := facility_models.FacilityDetail{Name: hit.NameHint, IsComplete: false}
	if hit.PlaceID == "" {
		return incomplete
	}

	detail, err := f.gateway.GetDetails(ctx, hit.PlaceID)
	if err != nil {
		f.logger.Warn("detail lookup failed, keeping search hit",
			zap.String("place_id", hit.PlaceID),
			zap.Error(err))
		return incomplete
	}
	if detail.Name == "" {
		detail.Name = hit.NameHint
		detail.IsComplete = false
	}
	return detail
}

func (f *FacilityFinder) normalize(opts FindOptions) (int, int, error) {
	radius := opts.RadiusMeters
	if radius == 0 {
		radius = f.defaultRadius
	}
	if radius < 0 {
		return 0, 0, utils.ErrInvalidRadius
	}

	maxResults := opts.MaxResults
	if maxResults == 0 {
		maxResults = f.defaultMax
	}
	if maxResults < 0 {
		return 0, 0, utils.ErrInvalidMaxResults
	}
	return radius, maxResults, nil
}

func (f *FacilityFinder) record(ctx context.Context, opts FindOptions, report *facility_models.FacilityReport, err error, elapsed time.Duration) {
	radius, maxResults, _ := f.normalize(opts)
	entry := &db_models.LookupLog{
		RadiusMeters: radius,
		MaxResults:   maxResults,
		Outcome:      db_models.LookupOutcomeOK,
		ErrorClass:   utils.ErrorClass(err),
		DurationMs:   elapsed.Milliseconds(),
	}
	switch {
	case err != nil:
		entry.Outcome = db_models.LookupOutcomeError
	case len(report.Facilities) == 0:
		entry.Outcome = db_models.LookupOutcomeEmpty
	}
	if report != nil {
		entry.LocationLabel = report.LocationLabel
		entry.FacilityCount = len(report.Facilities)
		entry.IncompleteCount = report.IncompleteCount()
	}

	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if recErr := f.recorder.RecordLookup(recordCtx, entry); recErr != nil {
		f.logger.Warn("failed to record lookup", zap.Error(recErr))
	}
}
