package places_fx

import (
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"carefinder/internal/config"
	"carefinder/internal/services"
)

var Module = fx.Provide(
	provideLocationResolver, providePlacesGateway)

func provideLocationResolver(cfg config.Config, logger *zap.Logger) services.LocationResolverInterface {
	return services.NewIPInfoResolver(cfg.GeoIPURL, cfg.GeoIPTimeout, &http.Client{}, logger)
}

func providePlacesGateway(cfg config.Config, logger *zap.Logger) services.PlacesGateway {
	gateway := services.NewGooglePlacesGateway(services.PlacesGatewayConfig{
		APIKey:            cfg.PlacesAPIKey,
		BaseURL:           cfg.PlacesBaseURL,
		Timeout:           cfg.PlacesTimeout,
		MaxRetries:        cfg.PlacesMaxRetries,
		RetryBaseDelay:    cfg.PlacesRetryBaseDelay,
		RequestsPerSecond: cfg.PlacesRequestsPerSec,
	}, &http.Client{}, logger)

	if err := gateway.Configured(); err != nil {
		logger.Warn("places gateway has no API key, lookups will fail until it is set", zap.Error(err))
	}
	return gateway
}
