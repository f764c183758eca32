package finder_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"carefinder/internal/config"
	"carefinder/internal/services"
)

var Module = fx.Provide(
	provideFacilityFinder, provideReportRenderer)

func provideFacilityFinder(
	cfg config.Config,
	resolver services.LocationResolverInterface,
	gateway services.PlacesGateway,
	recorder services.LookupRecorder,
	logger *zap.Logger,
) services.FacilityFinderInterface {
	return services.NewFacilityFinder(resolver, gateway, recorder, cfg.DefaultRadiusMeters, cfg.DefaultMaxResults, logger)
}

func provideReportRenderer(cfg config.Config) *services.ReportRenderer {
	return services.NewReportRenderer(cfg.EmergencyNumber, cfg.EmergencyLabel)
}
