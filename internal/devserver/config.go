package devserver

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"

	appenv "github.com/garrettladley/fixit/internal/env"
)

const defaultJWTSecret = "fixit-dev-secret"

type Config struct {
	Env              appenv.Environment `env:"ENV" envDefault:"development"`
	Port             string             `env:"PORT" envDefault:"8080"`
	JWTSecret        string             `env:"JWT_SECRET" envDefault:"fixit-dev-secret"`
	TokenTTL         time.Duration      `env:"TOKEN_TTL" envDefault:"24h"`
	RedisURL         string             `env:"REDIS_URL"`
	MinClientVersion string             `env:"MIN_CLIENT_VERSION"`
}

func ReadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if err := c.Env.Validate(); err != nil {
		return err
	}
	if c.Env.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set outside development")
	}
	return nil
}
