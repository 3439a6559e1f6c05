package bootstrap

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/whrealtors/realty-web/internal/config"
	httpmiddleware "github.com/whrealtors/realty-web/internal/http/middleware"
	"github.com/whrealtors/realty-web/pkg/logging"
)

const (
	contactLimiterPrefix   = "ratelimit:contact"
	assistantLimiterPrefix = "ratelimit:assistant"
)

// BuildContactLimiter returns the limiter for contact form posts, or nil when
// the configured rate disables limiting. The Redis limiter is used when
// RATE_LIMIT_REDIS is set and a client is available so that several site
// instances share one budget. The in-memory limiter sweeps idle keys until
// ctx is cancelled.
func BuildContactLimiter(ctx context.Context, cfg *appconfig.Config, client *redis.Client, logger *logging.Logger) httpmiddleware.Limiter {
	if cfg == nil {
		return nil
	}
	return buildLimiter(ctx, "contact", contactLimiterPrefix, cfg.ContactRatePerSecond, cfg.ContactRateBurst, cfg.RateLimitRedis, client, logger)
}

// BuildAssistantLimiter throttles assistant messages per client IP. Each turn
// costs model calls, so it has its own budget.
func BuildAssistantLimiter(ctx context.Context, cfg *appconfig.Config, client *redis.Client, logger *logging.Logger) httpmiddleware.Limiter {
	if cfg == nil {
		return nil
	}
	return buildLimiter(ctx, "assistant", assistantLimiterPrefix, cfg.AssistantRatePerSecond, cfg.AssistantRateBurst, cfg.RateLimitRedis, client, logger)
}

func buildLimiter(ctx context.Context, name, prefix string, rps float64, burst int, useRedis bool, client *redis.Client, logger *logging.Logger) httpmiddleware.Limiter {
	if rps <= 0 || burst <= 0 {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	if useRedis {
		if client != nil {
			window := httpmiddleware.WindowFor(rps, burst)
			logger.Info(name+" rate limit backed by redis", "max", burst, "window", window)
			return httpmiddleware.NewRedisLimiter(client, prefix, burst, window)
		}
		logger.Warn("RATE_LIMIT_REDIS set but redis unavailable; using in-memory limiter", "limiter", name)
	}

	limiter := httpmiddleware.NewMemoryLimiter(rps, burst)
	if ctx != nil {
		go limiter.RunSweeper(ctx, time.Minute)
	}
	return limiter
}
