package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env          string `env:"ENV" env-default:"local"`
	LogLevel     string `env:"LOG_LEVEL" env-default:"info" env-description:"logging level, debug, info, etc."`
	Identity     IdentityConfig
	Places       PlacesConfig
	Availability AvailabilityConfig
	Policy       PolicyConfig
}

type IdentityConfig struct {
	BaseURL string        `env:"IDENTITY_BASE_URL" env-required:"true"`
	Timeout time.Duration `env:"IDENTITY_TIMEOUT" env-default:"30s"`
}

type PlacesConfig struct {
	Enabled bool          `env:"PLACES_ENABLED" env-default:"false"`
	BaseURL string        `env:"PLACES_BASE_URL" env-default:""`
	APIKey  string        `env:"PLACES_API_KEY" env-default:""`
	Timeout time.Duration `env:"PLACES_TIMEOUT" env-default:"10s"`
}

type AvailabilityConfig struct {
	Debounce  time.Duration `env:"AVAILABILITY_DEBOUNCE" env-default:"800ms" env-description:"quiet interval before a lookup fires"`
	Timeout   time.Duration `env:"AVAILABILITY_TIMEOUT" env-default:"8s" env-description:"per-lookup deadline before resolving to errored"`
	MinLength int           `env:"AVAILABILITY_MIN_LENGTH" env-default:"3"`
	RPS       int           `env:"AVAILABILITY_RPS" env-default:"2"`
	Burst     int           `env:"AVAILABILITY_BURST" env-default:"3"`
}

type PolicyConfig struct {
	MinAge int `env:"POLICY_MIN_AGE" env-default:"13"`
	MaxAge int `env:"POLICY_MAX_AGE" env-default:"120"`
}

func MustLoad() *Config {
	var cfg Config

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("cannot read config from environment: %s", err)
	}

	return &cfg
}
