package app

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	SupabaseURL       string `envconfig:"SUPABASE_URL" required:"true"`       // Required: base URL of the hosted backend project
	SupabaseAnonKey   string `envconfig:"SUPABASE_ANON_KEY" required:"true"`  // Required: project anon API key
	SupabaseJWTSecret string `envconfig:"SUPABASE_JWT_SECRET"`                // Optional: enables access token signature checks at the gate

	Env           string `envconfig:"ENV" default:"dev"`            // Environment (dev, staging, prod)
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`     // Log level (debug, info, warn, error)
	LogFormat     string `envconfig:"LOG_FORMAT" default:"json"`    // Log format (json, text)
	Port          int    `envconfig:"PORT" default:"8080"`          // HTTP server port
	SecureCookies bool   `envconfig:"SECURE_COOKIES" default:"false"` // Set the Secure flag on session cookies (behind TLS)
	SentryDSN     string `envconfig:"SENTRY_DSN"`                   // Optional: error reporting DSN

	SessionTTL          time.Duration `envconfig:"SESSION_TTL" default:"12h"`          // Server-side session lifetime
	ShutdownGracePeriod time.Duration `envconfig:"SHUTDOWN_GRACE_PERIOD" default:"10s"` // Graceful shutdown timeout
}

// LoadConfig reads configuration from the environment, with an optional .env
// file for local development. A missing .env is not an error.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
