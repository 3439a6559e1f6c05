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
	"github.com/whrealtors/realty-web/internal/assistant"
	"github.com/whrealtors/realty-web/internal/catalog"
	appconfig "github.com/whrealtors/realty-web/internal/config"
	"github.com/whrealtors/realty-web/internal/leads"
	"github.com/whrealtors/realty-web/internal/notify"
	"github.com/whrealtors/realty-web/internal/observability/metrics"
	"github.com/whrealtors/realty-web/pkg/logging"
)

func main() {
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting customers API",
		"env", cfg.Env,
		"port", cfg.Port,
		"store", cfg.LeadsStore,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := bootstrap.BuildLeadRepository(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open lead store", "error", err)
		os.Exit(1)
	}
	defer closeRepo()

	cat := loadCatalog(ctx, cfg, logger)

	publisher := bootstrap.BuildEventPublisher(cfg, logger)
	sender := bootstrap.BuildEmailSender(cfg, sesClient(ctx, cfg, logger), logger)
	hooks := bootstrap.BuildLeadHooks(cfg, publisher, sender, projectTitles(cat), logger)

	metricsHandler, leadsMetrics, assistantMetrics := setupMetrics()
	leadsHandler := leads.NewHandler(repo, logger.Component("leads"),
		leads.WithHooks(hooks...),
		leads.WithMetrics(leadsMetrics),
	)

	if cfg.AdminJWTSecret == "" {
		logger.Warn("ADMIN_JWT_SECRET not set; admin lead listing will reject every request")
	}

	bedrock := bedrockClient(ctx, cfg, logger)
	llm, closeLLM, err := bootstrap.BuildLLMClient(ctx, cfg, bedrock, logger)
	if err != nil {
		logger.Error("failed to configure project assistant", "error", err)
		os.Exit(1)
	}
	defer closeLLM()
	assistantService, err := bootstrap.BuildAssistant(ctx, cfg, cat, llm, bedrock, assistantMetrics, logger)
	if err != nil {
		logger.Error("failed to build project assistant", "error", err)
		os.Exit(1)
	}

	routerCfg := &router.CustomersConfig{
		Logger:             logger,
		Leads:              leadsHandler,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AdminAuthSecret:    cfg.AdminJWTSecret,
	}
	if assistantService != nil {
		redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, cfg.RateLimitRedis)
		if redisClient != nil {
			defer redisClient.Close()
		}
		routerCfg.Assistant = assistant.NewHandler(assistantService, logger.Component("assistant"))
		routerCfg.AssistantLimiter = bootstrap.BuildAssistantLimiter(ctx, cfg, redisClient, logger)
	}
	r := router.NewCustomersAPI(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
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
	leadsHandler.Wait()
	if err := publisher.Close(); err != nil {
		logger.Warn("failed to close event publisher", "error", err)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// sesClient returns nil unless SES is the configured email provider.
func sesClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) notify.SESAPI {
	if cfg.EmailProvider != "ses" {
		return nil
	}
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Warn("failed to load AWS config; SES disabled", "error", err)
		return nil
	}
	return mainconfig.NewSESClient(awsCfg, cfg)
}

// loadCatalog reads CATALOG_SOURCE for notification titles and the assistant.
// The embedded catalog stands in when the configured source fails.
func loadCatalog(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *catalog.Catalog {
	cat, err := mainconfig.LoadCatalog(ctx, cfg, logger)
	if err == nil {
		return cat
	}
	logger.Warn("configured catalog unavailable; using embedded catalog", "error", err)
	cat, err = catalog.Load(ctx, catalog.EmbeddedSource{})
	if err != nil {
		logger.Warn("embedded catalog unavailable", "error", err)
		return nil
	}
	return cat
}

// projectTitles lets notification emails name the project.
func projectTitles(cat *catalog.Catalog) notify.ProjectTitleFunc {
	if cat == nil {
		return nil
	}
	return func(id string) (string, bool) {
		p, ok := cat.Lookup(id)
		if !ok {
			return "", false
		}
		return p.Title, true
	}
}

// bedrockClient returns nil unless Bedrock is the configured model provider.
func bedrockClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) bootstrap.BedrockRuntime {
	if cfg.LLMProvider != bootstrap.LLMProviderBedrock {
		return nil
	}
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Warn("failed to load AWS config; bedrock unavailable", "error", err)
		return nil
	}
	return mainconfig.NewBedrockClient(awsCfg, cfg)
}

func setupMetrics() (http.Handler, *metrics.LeadsMetrics, *metrics.AssistantMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewLeadsMetrics(reg), metrics.NewAssistantMetrics(reg)
}
