package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/searchpulse/internal/adapters/cache"
	"github.com/zatekoja/searchpulse/internal/adapters/clock"
	"github.com/zatekoja/searchpulse/internal/adapters/database"
	"github.com/zatekoja/searchpulse/internal/application/services"
	"github.com/zatekoja/searchpulse/internal/domain/entities"
	"github.com/zatekoja/searchpulse/internal/infrastructure/clients/postgres"
	redisclient "github.com/zatekoja/searchpulse/internal/infrastructure/clients/redis"
	"github.com/zatekoja/searchpulse/internal/infrastructure/observability"
	"github.com/zatekoja/searchpulse/pkg/config"
)

// searchlogd wires the search-log services against Postgres and Redis. By
// default it runs the periodic retention job; the one-shot flags cover the
// administrative operations. Log/TermDetails/Trending are otherwise invoked
// in-process by the embedding application.
func main() {
	var clearDebounce bool
	var trendingPeriod string
	flag.BoolVar(&clearDebounce, "clear-debounce", false, "drop all debounce cache entries and exit")
	flag.StringVar(&trendingPeriod, "trending", "", "print trending terms for a period (daily, weekly, monthly, quarterly, yearly, all) and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, os.Getenv("APP_ENV"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metrics *observability.Metrics
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Warn().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			metrics, err = observability.InitMetrics()
			if err != nil {
				log.Fatal().Err(err).Msg("failed to initialize metrics")
			}
		}
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	rdClient, err := redisclient.NewClient(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Redis client")
	}
	defer rdClient.Close()

	eventRepo := database.NewSearchEventAdapter(pgClient)
	debounceCache := cache.NewRedisAdapter(rdClient)
	systemClock := clock.NewSystemClock()
	settings := services.NewSiteSettings(&cfg.Search)

	logService := services.NewSearchLogService(eventRepo, debounceCache, systemClock, cfg.Search.DebounceWindow, metrics)
	analyticsService := services.NewSearchAnalyticsService(eventRepo, systemClock, metrics)
	retentionService := services.NewRetentionService(eventRepo, settings, metrics)

	if clearDebounce {
		if err := logService.ClearDebounceCache(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to clear debounce cache")
		}
		log.Info().Msg("debounce cache cleared")
		return
	}

	if trendingPeriod != "" {
		trending, err := analyticsService.Trending(ctx, entities.Period(trendingPeriod))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to compute trending terms")
		}
		for i, row := range trending {
			fmt.Printf("%3d. %-40s searches=%-6d click_through=%d\n", i+1, row.Term, row.Searches, row.ClickThrough)
		}
		return
	}

	log.Info().
		Dur("debounce_window", cfg.Search.DebounceWindow).
		Int64("max_size", settings.SearchLogMaxSize()).
		Dur("retention_interval", cfg.Search.RetentionInterval).
		Msg("searchlogd started")

	retentionService.Run(ctx, cfg.Search.RetentionInterval)
	log.Info().Msg("searchlogd shutting down")
}
