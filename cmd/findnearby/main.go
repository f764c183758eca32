// Command findnearby prints the hospitals near the current machine, or near a
// given public IP, as a text report.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"carefinder/internal/config"
	"carefinder/internal/services"
)

func main() {
	app := &cli.App{
		Name:  "findnearby",
		Usage: "list hospitals near your current location",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "radius", Usage: "search radius in meters (default from DEFAULT_SEARCH_RADIUS)"},
			&cli.IntFlag{Name: "max", Usage: "maximum number of hospitals (default from DEFAULT_MAX_RESULTS)"},
			&cli.StringFlag{Name: "ip", Usage: "geolocate this IP instead of the machine's public address"},
			&cli.BoolFlag{Name: "json", Usage: "print the report as JSON"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log requests to stderr"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, warnings := config.Load()

	logger := zap.NewNop()
	if c.Bool("verbose") {
		l, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		logger = l
	}
	defer logger.Sync() //nolint:errcheck

	for _, w := range warnings {
		logger.Warn("ignoring configuration value", zap.Error(w))
	}

	resolver := services.NewIPInfoResolver(cfg.GeoIPURL, cfg.GeoIPTimeout, &http.Client{}, logger)
	gateway := services.NewGooglePlacesGateway(services.PlacesGatewayConfig{
		APIKey:            cfg.PlacesAPIKey,
		BaseURL:           cfg.PlacesBaseURL,
		Timeout:           cfg.PlacesTimeout,
		MaxRetries:        cfg.PlacesMaxRetries,
		RetryBaseDelay:    cfg.PlacesRetryBaseDelay,
		RequestsPerSecond: cfg.PlacesRequestsPerSec,
	}, &http.Client{}, logger)
	finder := services.NewFacilityFinder(resolver, gateway, nil, cfg.DefaultRadiusMeters, cfg.DefaultMaxResults, logger)
	renderer := services.NewReportRenderer(cfg.EmergencyNumber, cfg.EmergencyLabel)

	report, err := finder.FindNearby(c.Context, services.FindOptions{
		RadiusMeters: c.Int("radius"),
		MaxResults:   c.Int("max"),
		IP:           c.String("ip"),
	})
	if err != nil {
		fmt.Fprintln(c.App.ErrWriter, renderer.RenderError(err))
		return err
	}

	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintln(c.App.Writer, renderer.Render(report))
	return nil
}
