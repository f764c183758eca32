package db_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"carefinder/internal/config"
	"carefinder/internal/infra"
	"carefinder/internal/repositories"
	"carefinder/internal/services"
)

var Module = fx.Provide(
	provideLookupService, provideLookupRecorder)

// provideLookupService wires the postgres-backed audit log, or a disabled one
// when POSTGRES_URL is unset.
func provideLookupService(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (services.LookupServiceInterface, error) {
	if cfg.PostgresURL == "" {
		logger.Info("POSTGRES_URL not set, lookup audit log disabled")
		return services.DisabledLookupService{}, nil
	}

	db, err := infra.InitPostgresql(cfg.PostgresURL)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			infra.ClosePostgresql(db, logger)
			return nil
		},
	})

	return services.NewLookupService(repositories.NewLookupRepository(db)), nil
}

func provideLookupRecorder(lookupService services.LookupServiceInterface) services.LookupRecorder {
	return lookupService
}
