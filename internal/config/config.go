package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env       string `yaml:"env" env:"ENV" env-default:"prod"`
	DebugMode bool   `yaml:"debug_mode" env:"DEBUG_MODE" env-default:"false"`

	HTTP struct {
		Host            string        `yaml:"host" env:"HOST" env-default:"0.0.0.0"`
		Port            string        `yaml:"port" env:"PORT" env-default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"30s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"120s"`
		IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
		// Set only behind a proxy that overwrites X-Forwarded-For and the IAP headers.
		TrustProxyHeaders bool `yaml:"trust_proxy_headers" env:"TRUST_PROXY_HEADERS" env-default:"false"`
	} `yaml:"http"`

	Google struct {
		Project             string        `yaml:"project" env:"GOOGLE_CLOUD_PROJECT" env-default:""`
		Region              string        `yaml:"region" env:"GOOGLE_CLOUD_REGION" env-default:"us-central1"`
		ServiceAccountEmail string        `yaml:"service_account_email" env:"SERVICE_ACCOUNT_EMAIL" env-default:""`
		Bucket              string        `yaml:"bucket" env:"GENMEDIA_BUCKET" env-default:""`
		SignedURLTTL        time.Duration `yaml:"signed_url_ttl" env:"SIGNED_URL_TTL" env-default:"15m"`
	} `yaml:"google"`

	RateLimitPerMinute int `yaml:"rate_limit_per_minute" env:"RATE_LIMIT_PER_MINUTE" env-default:"30"`

	// Quota per Imagen model, shared by all clients of the process. Zero
	// disables it; a positive ModelMaxWait queues calls instead of failing them.
	ModelRequestsPerMinute int           `yaml:"model_requests_per_minute" env:"MODEL_REQUESTS_PER_MINUTE" env-default:"0"`
	ModelMaxWait           time.Duration `yaml:"model_max_wait" env:"MODEL_MAX_WAIT" env-default:"0s"`
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.HTTP.Host, c.HTTP.Port)
}

// Load reads configuration from the YAML file at path, then the environment.
// An empty path or a missing file means environment only.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	var err error
	if path != "" && fileExists(path) {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		desc, _ := cleanenv.GetDescription(cfg, nil)
		return nil, fmt.Errorf("config: %w; %s", err, desc)
	}

	if cfg.RateLimitPerMinute <= 0 {
		return nil, errors.New("config: rate_limit_per_minute must be positive")
	}
	if cfg.ModelRequestsPerMinute < 0 || cfg.ModelMaxWait < 0 {
		return nil, errors.New("config: model_requests_per_minute and model_max_wait must not be negative")
	}
	return cfg, nil
}

// MustLoad is Load that panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
