package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime configuration for the forkful API service. The
// signing key and database DSN are required; startup fails without them.
type Config struct {
	Addr                     string        `env:"ADDR,default=:8080"`
	DBDSN                    string        `env:"DB_DSN,required"`
	JWTSigningKey            string        `env:"JWT_SIGNING_KEY,required"`
	JWTAlgorithm             string        `env:"JWT_ALGORITHM,default=HS256"`
	AccessTokenExpireMinutes int           `env:"ACCESS_TOKEN_EXPIRE_MINUTES,default=30"`
	ImageBucket              string        `env:"S3_BUCKET"`
	NATSURL                  string        `env:"NATS_URL"`
	OTLPEndpoint             string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	AllowedOrigins           []string      `env:"CORS_ALLOWED_ORIGINS,default=*"`
	RateLimit                int           `env:"RATE_LIMIT,default=100"`
	RateLimitWindow          time.Duration `env:"RATE_LIMIT_WINDOW,default=1m"`
}

// AccessTokenTTL returns the configured token lifetime as a duration.
func (c Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

// Load returns a Config populated from environment variables.
func Load(ctx context.Context) (Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
