// pkg/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Env      string
	HTTPAddr string

	// Platform retry knobs (only concurrent-request rejections are retried)
	RetryAttempts       int
	RetryAttemptTimeout time.Duration
	RetryDelay          time.Duration

	// OIDC / JWT guard for the step-execution surface (optional)
	Issuer   string
	Audience string
	JWKSURL  string

	// Redis (response cache)
	RedisURL string
}

// fileConfig is the optional YAML overlay; unset fields keep env values.
type fileConfig struct {
	Env                    *string `yaml:"env"`
	HTTPAddr               *string `yaml:"http_addr"`
	RedisURL               *string `yaml:"redis_url"`
	RetryAttempts          *int    `yaml:"retry_attempts"`
	RetryAttemptTimeoutSec *int    `yaml:"retry_attempt_timeout_sec"`
	RetryDelayMs           *int    `yaml:"retry_delay_ms"`
	JWKSURL                *string `yaml:"jwks_url"`
	Issuer                 *string `yaml:"issuer"`
	Audience               *string `yaml:"audience"`
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Env:                 env("COG_ENV", "dev"),
		HTTPAddr:            env("COG_HTTP_ADDR", ":8080"),
		RetryAttempts:       envInt("COG_RETRY_ATTEMPTS", 3),
		RetryAttemptTimeout: envDur("COG_RETRY_ATTEMPT_TIMEOUT_SEC", 15) * time.Second,
		RetryDelay:          envDur("COG_RETRY_DELAY_MS", 1000) * time.Millisecond,
		Issuer:              env("COG_ISSUER", ""),
		Audience:            env("COG_AUDIENCE", "pardot-cog"),
		JWKSURL:             env("COG_JWKS_URL", ""),
		RedisURL:            env("REDIS_URL", ""),
	}
	if path := os.Getenv("COG_CONFIG_FILE"); path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			log.Printf("[WARN] could not read %s: %v", path, err)
		}
	}
	if cfg.RedisURL == "" {
		log.Println("[WARN] REDIS_URL not set, response cache disabled")
	}
	return cfg
}

func overlayFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return err
	}
	if fc.Env != nil {
		cfg.Env = *fc.Env
	}
	if fc.HTTPAddr != nil {
		cfg.HTTPAddr = *fc.HTTPAddr
	}
	if fc.RedisURL != nil {
		cfg.RedisURL = *fc.RedisURL
	}
	if fc.RetryAttempts != nil {
		cfg.RetryAttempts = *fc.RetryAttempts
	}
	if fc.RetryAttemptTimeoutSec != nil {
		cfg.RetryAttemptTimeout = time.Duration(*fc.RetryAttemptTimeoutSec) * time.Second
	}
	if fc.RetryDelayMs != nil {
		cfg.RetryDelay = time.Duration(*fc.RetryDelayMs) * time.Millisecond
	}
	if fc.JWKSURL != nil {
		cfg.JWKSURL = *fc.JWKSURL
	}
	if fc.Issuer != nil {
		cfg.Issuer = *fc.Issuer
	}
	if fc.Audience != nil {
		cfg.Audience = *fc.Audience
	}
	return nil
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
func envDur(k string, def int) time.Duration {
	if v := os.Getenv(k); v != "" {
		i, _ := strconv.Atoi(v)
		return time.Duration(i)
	}
	return time.Duration(def)
}
