package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"carefinder/internal/models/db_models"
	"carefinder/internal/models/facility_models"
	"carefinder/pkg/utils"
)

type fakeResolver struct {
	point   facility_models.GeoPoint
	label   string
	err     error
	calls   int32
	gotIP   string
	blockOn <-chan struct{}
}

func (r *fakeResolver) Resolve(ctx context.Context) (facility_models.GeoPoint, string, error) {
	return r.ResolveIP(ctx, "")
}

func (r *fakeResolver) ResolveIP(ctx context.Context, ip string) (facility_models.GeoPoint, string, error) {
	atomic.AddInt32(&r.calls, 1)
	r.gotIP = ip
	if r.blockOn != nil {
		select {
		case <-r.blockOn:
		case <-ctx.Done():
			return facility_models.GeoPoint{}, "", &utils.NotResolvedError{Reason: "canceled", Err: ctx.Err()}
		}
	}
	return r.point, r.label, r.err
}

type fakeGateway struct {
	configErr   error
	hits        []facility_models.SearchHit
	searchErr   error
	details     map[string]facility_models.FacilityDetail
	detailErrs  map[string]error
	delays      map[string]time.Duration
	searchCalls int32
	detailCalls int32
}

func (g *fakeGateway) Configured() error { return g.configErr }

func (g *fakeGateway) SearchNearby(ctx context.Context, point facility_models.GeoPoint, radiusMeters int, placeType string) ([]facility_models.SearchHit, error) {
	atomic.AddInt32(&g.searchCalls, 1)
	if g.searchErr != nil {
		return nil, g.searchErr
	}
	return g.hits, nil
}

func (g *fakeGateway) GetDetails(ctx context.Context, placeID string) (facility_models.FacilityDetail, error) {
	atomic.AddInt32(&g.detailCalls, 1)
	if d, ok := g.delays[placeID]; ok {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return facility_models.FacilityDetail{}, ctx.Err()
		}
	}
	if err, ok := g.detailErrs[placeID]; ok {
		return facility_models.FacilityDetail{}, err
	}
	return g.details[placeID], nil
}

type memRecorder struct {
	mu      sync.Mutex
	entries []*db_models.LookupLog
}

func (r *memRecorder) RecordLookup(ctx context.Context, entry *db_models.LookupLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func mumbaiResolver() *fakeResolver {
	return &fakeResolver{point: mumbai, label: "Mumbai, Maharashtra"}
}

func completeDetail(name string) facility_models.FacilityDetail {
	return facility_models.FacilityDetail{Name: name, Address: name + " Road", IsComplete: true}
}

func TestFindNearby_PreservesRankOrder(t *testing.T) {
	gateway := &fakeGateway{
		hits: []facility_models.SearchHit{
			{PlaceID: "a", NameHint: "A"},
			{PlaceID: "b", NameHint: "B"},
			{PlaceID: "c", NameHint: "C"},
		},
		details: map[string]facility_models.FacilityDetail{
			"a": completeDetail("Alpha"),
			"b": completeDetail("Bravo"),
			"c": completeDetail("Charlie"),
		},
		delays: map[string]time.Duration{"a": 60 * time.Millisecond, "b": 30 * time.Millisecond},
	}
	finder := NewFacilityFinder(mumbaiResolver(), gateway, nil, 5000, 10, zaptest.NewLogger(t))

	report, err := finder.FindNearby(context.Background(), FindOptions{})
	if err != nil {
		t.Fatalf("FindNearby() error = %v", err)
	}
	want := []string{"Alpha", "Bravo", "Charlie"}
	if len(report.Facilities) != len(want) {
		t.Fatalf("got %d facilities, want %d", len(report.Facilities), len(want))
	}
	for i, name := range want {
		if report.Facilities[i].Name != name {
			t.Errorf("Facilities[%d].Name = %q, want %q", i, report.Facilities[i].Name, name)
		}
	}
	if report.RadiusMeters != 5000 || report.LocationLabel != "Mumbai, Maharashtra" {
		t.Errorf("report header = %d/%q", report.RadiusMeters, report.LocationLabel)
	}
}

func TestFindNearby_DetailsRunConcurrently(t *testing.T) {
	hits := make([]facility_models.SearchHit, 5)
	delays := map[string]time.Duration{}
	details := map[string]facility_models.FacilityDetail{}
	for i := range hits {
		id := fmt.Sprintf("p%d", i)
		hits[i] = facility_models.SearchHit{PlaceID: id, NameHint: id}
		delays[id] = 100 * time.Millisecond
		details[id] = completeDetail(id)
	}
	gateway := &fakeGateway{hits: hits, delays: delays, details: details}
	finder := NewFacilityFinder(mumbaiResolver(), gateway, nil, 5000, 10, zap.NewNop())

	start := time.Now()
	if _, err := finder.FindNearby(context.Background(), FindOptions{}); err != nil {
		t.Fatalf("FindNearby() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Errorf("lookups took %v, expected them to overlap", elapsed)
	}
}

func TestFindNearby_FailedDetailBecomesIncomplete(t *testing.T) {
	gateway := &fakeGateway{
		hits: []facility_models.SearchHit{
			{PlaceID: "a", NameHint: "Alpha Hint"},
			{PlaceID: "b", NameHint: "Bravo Hint"},
			{PlaceID: "", NameHint: "No ID Clinic"},
		},
		details: map[string]facility_models.FacilityDetail{
			"a": completeDetail("Alpha"),
		},
		detailErrs: map[string]error{
			"b": &utils.PlacesAPIError{Code: "NOT_FOUND"},
		},
	}
	finder := NewFacilityFinder(mumbaiResolver(), gateway, nil, 5000, 10, zap.NewNop())

	report, err := finder.FindNearby(context.Background(), FindOptions{})
	if err != nil {
		t.Fatalf("FindNearby() error = %v", err)
	}
	if len(report.Facilities) != 3 {
		t.Fatalf("got %d facilities, want 3", len(report.Facilities))
	}
	if !report.Facilities[0].IsComplete || report.Facilities[0].Name != "Alpha" {
		t.Errorf("Facilities[0] = %+v", report.Facilities[0])
	}
	if f := report.Facilities[1]; f.IsComplete || f.Name != "Bravo Hint" {
		t.Errorf("Facilities[1] = %+v, want incomplete with hint name", f)
	}
	if f := report.Facilities[2]; f.IsComplete || f.Name != "No ID Clinic" {
		t.Errorf("Facilities[2] = %+v, want incomplete with hint name", f)
	}
	if report.IncompleteCount() != 2 {
		t.Errorf("IncompleteCount() = %d, want 2", report.IncompleteCount())
	}
	if got := atomic.LoadInt32(&gateway.detailCalls); got != 2 {
		t.Errorf("detail calls = %d, want 2", got)
	}
}

func TestFindNearby_NamelessDetailUsesHint(t *testing.T) {
	gateway := &fakeGateway{
		hits:    []facility_models.SearchHit{{PlaceID: "a", NameHint: "Hint"}},
		details: map[string]facility_models.FacilityDetail{"a": {Address: "Somewhere"}},
	}
	finder := NewFacilityFinder(mumbaiResolver(), gateway, nil, 5000, 10, zap.NewNop())

	report, err := finder.FindNearby(context.Background(), FindOptions{})
	if err != nil {
		t.Fatalf("FindNearby() error = %v", err)
	}
	f := report.Facilities[0]
	if f.Name != "Hint" || f.IsComplete || f.Address != "Somewhere" {
		t.Errorf("facility = %+v", f)
	}
}

func TestFindNearby_TruncatesToMaxResults(t *testing.T) {
	var hits []facility_models.SearchHit
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("p%d", i)
		hits = append(hits, facility_models.SearchHit{PlaceID: id, NameHint: id})
	}
	gateway := &fakeGateway{hits: hits}
	finder := NewFacilityFinder(mumbaiResolver(), gateway, nil, 5000, 10, zap.NewNop())

	report, err := finder.FindNearby(context.Background(), FindOptions{MaxResults: 3})
	if err != nil {
		t.Fatalf("FindNearby() error = %v", err)
	}
	if len(report.Facilities) != 3 {
		t.Errorf("got %d facilities, want 3", len(report.Facilities))
	}
	if got := atomic.LoadInt32(&gateway.detailCalls); got != 3 {
		t.Errorf("detail calls = %d, want 3", got)
	}
}

func TestFindNearby_ZeroResultsIsEmptyReport(t *testing.T) {
	gateway := &fakeGateway{searchErr: &utils.PlacesAPIError{Code: string(StatusZeroResults)}}
	finder := NewFacilityFinder(mumbaiResolver(), gateway, nil, 5000, 10, zap.NewNop())

	report, err := finder.FindNearby(context.Background(), FindOptions{})
	if err != nil {
		t.Fatalf("FindNearby() error = %v", err)
	}
	if report.Facilities == nil || len(report.Facilities) != 0 {
		t.Errorf("Facilities = %v, want empty non-nil slice", report.Facilities)
	}
	if report.LocationLabel != "Mumbai, Maharashtra" {
		t.Errorf("LocationLabel = %q", report.LocationLabel)
	}
}

func TestFindNearby_SearchFailure(t *testing.T) {
	gateway := &fakeGateway{searchErr: &utils.PlacesAPIError{Code: string(StatusOverQueryLimit)}}
	finder := NewFacilityFinder(mumbaiResolver(), gateway, nil, 5000, 10, zap.NewNop())

	report, err := finder.FindNearby(context.Background(), FindOptions{})
	if report != nil {
		t.Errorf("report = %+v, want nil", report)
	}
	var finderErr *utils.FinderError
	if !errors.As(err, &finderErr) || finderErr.Kind != utils.KindSearchFailed {
		t.Fatalf("error = %v, want SearchFailed", err)
	}
	var apiErr *utils.PlacesAPIError
	if !errors.As(err, &apiErr) || apiErr.Code != "OVER_QUERY_LIMIT" {
		t.Errorf("error = %v, want wrapped OVER_QUERY_LIMIT", err)
	}
}

func TestFindNearby_NoLocation(t *testing.T) {
	resolver := &fakeResolver{err: &utils.NotResolvedError{Reason: "invalid loc field"}}
	gateway := &fakeGateway{}
	finder := NewFacilityFinder(resolver, gateway, nil, 5000, 10, zap.NewNop())

	_, err := finder.FindNearby(context.Background(), FindOptions{})
	var finderErr *utils.FinderError
	if !errors.As(err, &finderErr) || finderErr.Kind != utils.KindNoLocation {
		t.Fatalf("error = %v, want NoLocation", err)
	}
	if got := atomic.LoadInt32(&gateway.searchCalls); got != 0 {
		t.Errorf("search calls = %d, want 0", got)
	}
}

func TestFindNearby_MissingKeyMakesNoCalls(t *testing.T) {
	resolver := mumbaiResolver()
	gateway := &fakeGateway{configErr: &utils.ConfigurationError{Setting: "GOOGLE_PLACES_API_KEY"}}
	finder := NewFacilityFinder(resolver, gateway, nil, 5000, 10, zap.NewNop())

	_, err := finder.FindNearby(context.Background(), FindOptions{})
	var cfgErr *utils.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error = %v, want *ConfigurationError", err)
	}
	if resolver.calls != 0 || gateway.searchCalls != 0 || gateway.detailCalls != 0 {
		t.Errorf("calls = %d/%d/%d, want none", resolver.calls, gateway.searchCalls, gateway.detailCalls)
	}
}

func TestFindNearby_InvalidOptions(t *testing.T) {
	finder := NewFacilityFinder(mumbaiResolver(), &fakeGateway{}, nil, 5000, 10, zap.NewNop())

	if _, err := finder.FindNearby(context.Background(), FindOptions{RadiusMeters: -1}); !errors.Is(err, utils.ErrInvalidRadius) {
		t.Errorf("radius error = %v", err)
	}
	if _, err := finder.FindNearby(context.Background(), FindOptions{MaxResults: -5}); !errors.Is(err, utils.ErrInvalidMaxResults) {
		t.Errorf("max error = %v", err)
	}
}

func TestFindNearby_ExplicitIP(t *testing.T) {
	resolver := mumbaiResolver()
	finder := NewFacilityFinder(resolver, &fakeGateway{}, nil, 5000, 10, zap.NewNop())

	if _, err := finder.FindNearby(context.Background(), FindOptions{IP: "203.0.113.7"}); err != nil {
		t.Fatalf("FindNearby() error = %v", err)
	}
	if resolver.gotIP != "203.0.113.7" {
		t.Errorf("resolver got ip %q", resolver.gotIP)
	}
}

func TestFindNearby_ContextCanceled(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	resolver := &fakeResolver{point: mumbai, label: "Mumbai, Maharashtra", blockOn: block}
	finder := NewFacilityFinder(resolver, &fakeGateway{}, nil, 5000, 10, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := finder.FindNearby(ctx, FindOptions{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want context.DeadlineExceeded", err)
	}
}

func TestFindNearby_RecordsLookup(t *testing.T) {
	recorder := &memRecorder{}
	gateway := &fakeGateway{
		hits:       []facility_models.SearchHit{{PlaceID: "a", NameHint: "A"}, {PlaceID: "b", NameHint: "B"}},
		details:    map[string]facility_models.FacilityDetail{"a": completeDetail("Alpha")},
		detailErrs: map[string]error{"b": errors.New("boom")},
	}
	finder := NewFacilityFinder(mumbaiResolver(), gateway, recorder, 5000, 10, zap.NewNop())

	if _, err := finder.FindNearby(context.Background(), FindOptions{RadiusMeters: 2500}); err != nil {
		t.Fatalf("FindNearby() error = %v", err)
	}
	failing := NewFacilityFinder(&fakeResolver{err: errors.New("down")}, &fakeGateway{}, recorder, 5000, 10, zap.NewNop())
	_, _ = failing.FindNearby(context.Background(), FindOptions{})

	if len(recorder.entries) != 2 {
		t.Fatalf("recorded %d entries, want 2", len(recorder.entries))
	}
	ok := recorder.entries[0]
	if ok.Outcome != db_models.LookupOutcomeOK || ok.RadiusMeters != 2500 || ok.MaxResults != 10 ||
		ok.FacilityCount != 2 || ok.IncompleteCount != 1 || ok.LocationLabel != "Mumbai, Maharashtra" {
		t.Errorf("ok entry = %+v", ok)
	}
	failed := recorder.entries[1]
	if failed.Outcome != db_models.LookupOutcomeError || failed.ErrorClass != "no_location" {
		t.Errorf("failed entry = %+v", failed)
	}
}

// End to end over the real resolver and gateway against local fakes of both
// providers.
func TestFindNearby_MumbaiEndToEnd(t *testing.T) {
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"city":"Mumbai","region":"Maharashtra","loc":"19.0760,72.8777"}`))
	}))
	defer geo.Close()

	places := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/nearbysearch/json"):
			if r.URL.Query().Get("location") != "19.076000,72.877700" {
				t.Errorf("location = %q", r.URL.Query().Get("location"))
			}
			w.Write([]byte(`{"status":"OK","results":[
				{"place_id":"lilavati","name":"Lilavati Hospital"},
				{"place_id":"kem","name":"KEM Hospital"}]}`))
		case r.URL.Query().Get("place_id") == "lilavati":
			w.Write([]byte(`{"status":"OK","result":{"name":"Lilavati Hospital","formatted_address":"Bandra West, Mumbai","rating":4.2,"opening_hours":{"open_now":true}}}`))
		default:
			w.Write([]byte(`{"status":"OK","result":{"name":"KEM Hospital","formatted_address":"Parel, Mumbai","formatted_phone_number":"022 2410 7000"}}`))
		}
	}))
	defer places.Close()

	logger := zaptest.NewLogger(t)
	resolver := NewIPInfoResolver(geo.URL, time.Second, geo.Client(), logger)
	gateway := NewGooglePlacesGateway(PlacesGatewayConfig{APIKey: "k", BaseURL: places.URL}, places.Client(), logger)
	finder := NewFacilityFinder(resolver, gateway, nil, 5000, 10, logger)

	report, err := finder.FindNearby(context.Background(), FindOptions{})
	if err != nil {
		t.Fatalf("FindNearby() error = %v", err)
	}
	if report.Location != mumbai {
		t.Errorf("Location = %+v", report.Location)
	}
	if len(report.Facilities) != 2 || report.Facilities[0].Name != "Lilavati Hospital" || report.Facilities[1].Name != "KEM Hospital" {
		t.Fatalf("Facilities = %+v", report.Facilities)
	}

	text := NewReportRenderer("", "").Render(report)
	for _, want := range []string{
		"Mumbai, Maharashtra",
		"5.0 km",
		"Found 2 hospitals",
		"**1. Lilavati Hospital**",
		"**2. KEM Hospital**",
		"Open now",
		"Phone not available",
		"Website not available",
		"call **108**",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("rendered report missing %q", want)
		}
	}
}
