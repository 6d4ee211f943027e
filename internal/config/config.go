package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName              string
	AppEnv               string
	AppPort              string
	DatabaseURL          string
	RedisURL             string
	NATSURL              string
	NATSSubject          string
	JWTSecret            string
	GovernanceCacheTTL   time.Duration
	AuditListLimit       int
	GovernanceRateLimit  int
	GovernanceRateWindow time.Duration
	CORSAllowOrigins     []string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ASSESS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Athlete Assessment API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("nats.subject", "assessments")
	v.SetDefault("governance.cache_ttl", "30s")
	v.SetDefault("governance.rate_limit", 30)
	v.SetDefault("governance.rate_window", "1m")
	v.SetDefault("audit.list_limit", 500)

	ttl, err := parseDuration(v.GetString("governance.cache_ttl"), 30*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid governance cache ttl: %w", err)
	}

	window, err := parseDuration(v.GetString("governance.rate_window"), time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid governance rate window: %w", err)
	}

	cfg := Config{
		AppName:              v.GetString("app.name"),
		AppEnv:               v.GetString("app.env"),
		AppPort:              v.GetString("app.port"),
		DatabaseURL:          v.GetString("database.url"),
		RedisURL:             v.GetString("redis.url"),
		NATSURL:              v.GetString("nats.url"),
		NATSSubject:          v.GetString("nats.subject"),
		JWTSecret:            v.GetString("jwt.secret"),
		GovernanceCacheTTL:   ttl,
		AuditListLimit:       v.GetInt("audit.list_limit"),
		GovernanceRateLimit:  v.GetInt("governance.rate_limit"),
		GovernanceRateWindow: window,
		CORSAllowOrigins:     splitList(v.GetString("cors.allow_origins")),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.AuditListLimit <= 0 {
		cfg.AuditListLimit = 500
	}

	if cfg.GovernanceRateLimit <= 0 {
		cfg.GovernanceRateLimit = 30
	}

	return cfg, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}

func splitList(value string) []string {
	var items []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
