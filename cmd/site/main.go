package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/whrealtors/realty-web/cmd/mainconfig"
	"github.com/whrealtors/realty-web/internal/api/router"
	"github.com/whrealtors/realty-web/internal/app/bootstrap"
	appconfig "github.com/whrealtors/realty-web/internal/config"
	"github.com/whrealtors/realty-web/internal/customers"
	"github.com/whrealtors/realty-web/internal/geo"
	"github.com/whrealtors/realty-web/internal/observability/metrics"
	"github.com/whrealtors/realty-web/internal/site"
	"github.com/whrealtors/realty-web/pkg/logging"
)

func main() {
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting realty site",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cat, err := mainconfig.LoadCatalog(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}

	metricsHandler, siteMetrics := setupMetrics()

	client := customers.NewClient(cfg.CustomersBaseURL,
		customers.WithTimeout(cfg.CustomersHTTPTimeout),
		customers.WithLogger(logger.Component("customers")),
	)
	logger.Info("lead submissions configured", "endpoint", client.Endpoint())

	siteHandler, err := site.NewHandler(cat, client, siteOptions(cfg), logger, siteMetrics)
	if err != nil {
		logger.Error("failed to build site handler", "error", err)
		os.Exit(1)
	}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, cfg.RateLimitRedis)
	if redisClient != nil {
		defer redisClient.Close()
	}

	r := router.NewSite(&router.SiteConfig{
		Logger:         logger,
		Site:           siteHandler,
		MetricsHandler: metricsHandler,
		ContactLimiter: bootstrap.BuildContactLimiter(ctx, cfg, redisClient, logger),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.CustomersHTTPTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

func siteOptions(cfg *appconfig.Config) site.Options {
	return site.Options{
		DefaultWhatsApp: cfg.DefaultWhatsApp,
		FeatureBlurb:    cfg.DefaultFeatureBlurb,
		MapsAPIKey:      cfg.MapsAPIKey,
		Map: geo.Defaults{
			Center:         geo.Point{Lat: cfg.MapDefaultLatitude, Lng: cfg.MapDefaultLongitude},
			Zoom:           cfg.MapZoom,
			CompactBelowPx: cfg.CompactViewportWidthPx,
		},
	}
}

func setupMetrics() (http.Handler, *metrics.SiteMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewSiteMetrics(reg)
}
