package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"trip-route-service/internal/adapters/cache"
	"trip-route-service/internal/adapters/geocoding"
	"trip-route-service/internal/adapters/repositories"
	"trip-route-service/internal/adapters/routing"
	"trip-route-service/internal/api"
	"trip-route-service/internal/config"
	"trip-route-service/internal/platform/db"
	"trip-route-service/internal/platform/logger"
	"trip-route-service/internal/ports"
	"trip-route-service/internal/services"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, Redis, geocoding and routing providers)
// behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		database *sql.DB
		repo     ports.StopRepository
		err      error
	)
	if cfg.Database.URL != "" {
		database, err = db.Open(cfg.Database.URL)
		if err != nil {
			return err
		}
		defer database.Close()
		repo = repositories.NewPostgresStopRepository(database)
	} else {
		log.Info("DATABASE_URL not set; sessions accept inline stops only")
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
	}

	geocoder, err := newGeocoder(cfg, database, rdb, log)
	if err != nil {
		return err
	}
	router, err := newRouter(cfg, log)
	if err != nil {
		return err
	}

	engine := services.NewRouteEngine(router, cfg.Routing.MaxWaypoints, log)
	overlap := services.OverlapConfig{
		CollisionThreshold: cfg.Engine.CollisionThreshold,
		OffsetMagnitude:    cfg.Engine.OffsetMagnitude,
	}

	// Each session gets its own resolver so geocoding memos never leak between plans.
	store := services.NewSessionStore(func() *services.Controller {
		resolver := services.NewResolver(geocoder, cfg.Geocode.Concurrency, log)
		return services.NewController(resolver, engine, overlap, log)
	}, cfg.Server.SessionIdleTTL, log)
	go store.Run(ctx)

	// Timeouts are tuned for cold-cache geocoding of a whole plan (external API latency).
	// WriteTimeout stays zero so websocket streams are not cut off.
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           api.NewRouter(store, repo, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("geocoder", cfg.Geocode.Provider),
			zap.String("router", cfg.Routing.Provider))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newGeocoder selects the provider and wraps it with the shared cache when one is available.
// Redis is preferred over Postgres.
func newGeocoder(cfg *config.Config, database *sql.DB, rdb *redis.Client, log *zap.Logger) (ports.Geocoder, error) {
	var (
		g   ports.Geocoder
		err error
	)

	switch cfg.Geocode.Provider {
	case "google":
		g, err = geocoding.NewGoogleGeocoder(geocoding.GoogleConfig{
			APIKey:  cfg.Geocode.GoogleAPIKey,
			Region:  cfg.Geocode.Region,
			Timeout: cfg.Geocode.RequestTimeout,
		}, log)
	case "ors":
		g, err = geocoding.NewORSGeocoder(geocoding.ORSConfig{
			APIKey:  cfg.Geocode.ORSAPIKey,
			Region:  cfg.Geocode.Region,
			Timeout: cfg.Geocode.RequestTimeout,
		}, log)
	default:
		g = geocoding.NewNominatimGeocoder(geocoding.NominatimConfig{
			BaseURL: cfg.Geocode.NominatimURL,
			Region:  cfg.Geocode.Region,
			Timeout: cfg.Geocode.RequestTimeout,
		}, log)
	}
	if err != nil {
		return nil, fmt.Errorf("init geocoder: %w", err)
	}

	switch {
	case rdb != nil:
		return geocoding.NewCachedGeocoder(g, cache.NewRedisGeocodeCache(rdb, cfg.Geocode.CacheTTL, log), log), nil
	case database != nil:
		return geocoding.NewCachedGeocoder(g, cache.NewSQLGeocodeCache(database, cfg.Geocode.CacheTTL, log), log), nil
	default:
		return g, nil
	}
}

func newRouter(cfg *config.Config, log *zap.Logger) (ports.Router, error) {
	if cfg.Routing.Provider == "ors" {
		r, err := routing.NewORSRouter(routing.ORSConfig{
			APIKey:  cfg.Routing.ORSAPIKey,
			Timeout: cfg.Routing.Timeout,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("init router: %w", err)
		}
		return r, nil
	}

	return routing.NewOSRMRouter(routing.OSRMConfig{
		BaseURL: cfg.Routing.OSRMURL,
		Profile: cfg.Routing.OSRMProfile,
		Timeout: cfg.Routing.Timeout,
	}, log), nil
}
