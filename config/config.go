package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every runtime knob of the service. Per-tenant provider
// credentials are NOT here; those live on the business row.
type Config struct {
	Port           string `envconfig:"PORT" default:"8080"`
	Environment    string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"*"`

	// Database
	DBHost     string `envconfig:"DB_HOST" default:"db"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	// Auth
	JWTSecret string `envconfig:"JWT_SECRET_KEY" required:"true"`

	// Checkout redirect targets
	FrontendURL string `envconfig:"FRONTEND_URL" default:"http://localhost:3000"`

	// HTTP limits
	BodyLimitMB           int `envconfig:"BODY_LIMIT_MB" default:"4"`
	RateLimitMax          int `envconfig:"RATE_LIMIT_MAX" default:"60"`
	RateLimitWindowSecond int `envconfig:"RATE_LIMIT_WINDOW_SECONDS" default:"60"`

	// Outbound provider call budget (model, messaging)
	ProviderTimeoutSeconds int `envconfig:"PROVIDER_TIMEOUT_SECONDS" default:"30"`
}

// Load reads .env (best-effort, local dev convenience) and then the process
// environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
