package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime configuration for the stockd service.
type Config struct {
	Addr            string        `env:"ADDR,default=:8080"`
	DBDSN           string        `env:"DB_DSN,required"`
	NATSURL         string        `env:"NATS_URL"`
	NATSPrefix      string        `env:"NATS_SUBJECT_PREFIX"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:5173"`
	IdentifierWidth int           `env:"IDENTIFIER_WIDTH,default=3"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT,default=60s"`
	RateLimit       int           `env:"RATE_LIMIT,default=300"`
	RatePeriod      time.Duration `env:"RATE_PERIOD,default=1m"`
	ShutdownGrace   time.Duration `env:"SHUTDOWN_GRACE,default=10s"`
	LogPretty       bool          `env:"LOG_PRETTY,default=false"`
}

// Load returns a Config populated from environment variables.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
