package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"carefinder/cmd/fx/config_fx"
	"carefinder/cmd/fx/controllers_fx"
	"carefinder/cmd/fx/db_fx"
	"carefinder/cmd/fx/finder_fx"
	"carefinder/cmd/fx/logger_fx"
	"carefinder/cmd/fx/places_fx"
	"carefinder/internal/api/controllers"
	"carefinder/internal/config"
	"carefinder/pkg/middleware"
)

func main() {
	app := fx.New(
		config_fx.Module,
		logger_fx.Module,
		db_fx.Module,
		places_fx.Module,
		finder_fx.Module,
		controllers_fx.Module,

		fx.Invoke(StartServer),
		fx.Provide(ProvideRouter),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, cfg config.Config, engine *gin.Engine, logger *zap.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			go func() {
				logger.Info("starting HTTP server", zap.String("addr", srv.Addr))
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("HTTP server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping HTTP server")
			return srv.Shutdown(ctx)
		},
	})
}

func ProvideRouter(
	cfg config.Config,
	facilityController *controllers.FacilityController,
	lookupController *controllers.LookupController) *gin.Engine {

	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())

	RegisterRoutes(r, cfg.JWTSecret, facilityController, lookupController)

	return r
}

func RegisterRoutes(r *gin.Engine,
	jwtSecret string,
	facilityController *controllers.FacilityController,
	lookupController *controllers.LookupController) {

	api := r.Group("/api/v1")
	api.GET("/health", controllers.Health)

	facilityGroup := api.Group("/facilities")
	facilityGroup.Use(middleware.JWTAuthMiddleware(jwtSecret))
	facilityGroup.GET("/nearby", facilityController.FindNearby)

	lookupGroup := api.Group("/lookups")
	lookupGroup.Use(middleware.JWTAuthMiddleware(jwtSecret))
	lookupGroup.GET("", lookupController.ListLookups)
	lookupGroup.GET("/:id", lookupController.GetLookup)
}
