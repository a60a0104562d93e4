// Package config loads service configuration from the environment.
//
// All knobs have working defaults so the server starts with no setup at all;
// production deployments override them via environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Port     int           `env:"PORT" env-default:"8080"`
	DBPath   string        `env:"DB_PATH" env-default:"data/contactbook.db"`
	TokenTTL time.Duration `env:"TOKEN_TTL" env-default:"24h"`

	// JWTSecret signs session tokens. The default exists only so local
	// development works out of the box; set a real secret in production:
	//   JWT_SECRET=$(openssl rand -hex 32)
	JWTSecret string `env:"JWT_SECRET" env-default:"dev-only-insecure-secret"`

	// RedisAddr enables the listing cache when set (e.g. "localhost:6379").
	// Empty means the cache is disabled and every listing hits the database.
	RedisAddr     string `env:"REDIS_ADDR" env-default:""`
	RedisPassword string `env:"REDIS_PASSWORD" env-default:""`
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: reading environment: %w", err)
	}
	return &cfg, nil
}
