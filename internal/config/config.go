package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Geocode  GeocodeConfig
	Routing  RoutingConfig
	Engine   EngineConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port           string
	SessionIdleTTL time.Duration
}

type DatabaseConfig struct {
	URL      string
	SeedPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type GeocodeConfig struct {
	Provider       string
	GoogleAPIKey   string
	ORSAPIKey      string
	NominatimURL   string
	Region         string
	Concurrency    int
	RequestTimeout time.Duration
	CacheTTL       time.Duration
}

type RoutingConfig struct {
	Provider     string
	OSRMURL      string
	OSRMProfile  string
	ORSAPIKey    string
	Timeout      time.Duration
	MaxWaypoints int
}

type EngineConfig struct {
	CollisionThreshold float64
	OffsetMagnitude    float64
}

type LogConfig struct {
	Level string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("SESSION_IDLE_TTL", "30m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SEED_PATH", "data/seeds/plans.json")

	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("GEOCODE_CACHE_TTL", "720h")

	v.SetDefault("GEOCODER", "nominatim")
	v.SetDefault("NOMINATIM_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("GEOCODE_REGION", "ch")
	v.SetDefault("GEOCODE_CONCURRENCY", 1)
	v.SetDefault("GEOCODE_TIMEOUT", "10s")

	v.SetDefault("ROUTER", "osrm")
	v.SetDefault("OSRM_URL", "https://router.project-osrm.org")
	v.SetDefault("OSRM_PROFILE", "driving")
	v.SetDefault("ROUTING_TIMEOUT", "10s")
	v.SetDefault("MAX_WAYPOINTS", 25)

	v.SetDefault("COLLISION_THRESHOLD", 0.0001)
	v.SetDefault("OFFSET_MAGNITUDE", 0.0003)
}

// Load reads an optional .env file and the process environment.
func Load() (*Config, error) {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			SessionIdleTTL: v.GetDuration("SESSION_IDLE_TTL"),
		},
		Database: DatabaseConfig{
			URL:      strings.TrimSpace(v.GetString("DATABASE_URL")),
			SeedPath: v.GetString("SEED_PATH"),
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(v.GetString("REDIS_ADDR")),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Geocode: GeocodeConfig{
			Provider:       strings.ToLower(strings.TrimSpace(v.GetString("GEOCODER"))),
			GoogleAPIKey:   v.GetString("GOOGLE_MAPS_API_KEY"),
			ORSAPIKey:      v.GetString("ORS_API_KEY"),
			NominatimURL:   strings.TrimSuffix(v.GetString("NOMINATIM_URL"), "/"),
			Region:         v.GetString("GEOCODE_REGION"),
			Concurrency:    v.GetInt("GEOCODE_CONCURRENCY"),
			RequestTimeout: v.GetDuration("GEOCODE_TIMEOUT"),
			CacheTTL:       v.GetDuration("GEOCODE_CACHE_TTL"),
		},
		Routing: RoutingConfig{
			Provider:     strings.ToLower(strings.TrimSpace(v.GetString("ROUTER"))),
			OSRMURL:      strings.TrimSuffix(v.GetString("OSRM_URL"), "/"),
			OSRMProfile:  v.GetString("OSRM_PROFILE"),
			ORSAPIKey:    v.GetString("ORS_API_KEY"),
			Timeout:      v.GetDuration("ROUTING_TIMEOUT"),
			MaxWaypoints: v.GetInt("MAX_WAYPOINTS"),
		},
		Engine: EngineConfig{
			CollisionThreshold: v.GetFloat64("COLLISION_THRESHOLD"),
			OffsetMagnitude:    v.GetFloat64("OFFSET_MAGNITUDE"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks provider selections and their required credentials.
func (c *Config) Validate() error {
	var errs []error

	switch c.Geocode.Provider {
	case "google":
		if strings.TrimSpace(c.Geocode.GoogleAPIKey) == "" {
			errs = append(errs, errors.New("GOOGLE_MAPS_API_KEY is required for GEOCODER=google"))
		}
	case "ors":
		if strings.TrimSpace(c.Geocode.ORSAPIKey) == "" {
			errs = append(errs, errors.New("ORS_API_KEY is required for GEOCODER=ors"))
		}
	case "nominatim":
	default:
		errs = append(errs, fmt.Errorf("unknown GEOCODER %q", c.Geocode.Provider))
	}

	switch c.Routing.Provider {
	case "ors":
		if strings.TrimSpace(c.Routing.ORSAPIKey) == "" {
			errs = append(errs, errors.New("ORS_API_KEY is required for ROUTER=ors"))
		}
	case "osrm":
	default:
		errs = append(errs, fmt.Errorf("unknown ROUTER %q", c.Routing.Provider))
	}

	if c.Routing.MaxWaypoints < 2 {
		errs = append(errs, fmt.Errorf("MAX_WAYPOINTS must be >= 2, got %d", c.Routing.MaxWaypoints))
	}
	if c.Geocode.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("GEOCODE_CONCURRENCY must be >= 1, got %d", c.Geocode.Concurrency))
	}
	if c.Engine.CollisionThreshold <= 0 || c.Engine.OffsetMagnitude <= 0 {
		errs = append(errs, errors.New("COLLISION_THRESHOLD and OFFSET_MAGNITUDE must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
