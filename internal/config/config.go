// Package config resolves process-level settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variable names.
const (
	EnvAddr        = "ADDR"
	EnvRedisHost   = "REDIS_HOST"
	EnvRedisPort   = "REDIS_PORT"
	EnvOfflineMode = "OFFLINE_MODE"
	EnvJWTSecret   = "JWT_SECRET"
	EnvCORSOrigins = "CORS_ORIGINS"
)

// Config holds process-level settings resolved once at startup.
type Config struct {
	// Addr is the address the Socket Layer's HTTP server binds to.
	Addr string

	// RedisHost and RedisPort address the RoomManager's backing store.
	RedisHost string
	RedisPort int

	// OfflineMode disables token validation (NoopValidator) and permits a
	// missing JWTSecret; intended for local development and tests only.
	OfflineMode bool

	// JWTSecret signs/verifies join_room bearer tokens. Required unless
	// OfflineMode is set.
	JWTSecret string

	// CORSOrigins is the comma-separated websocket-origin whitelist.
	CORSOrigins []string
}

// FromEnv parses process configuration from the environment. Returns an
// error if JWTSecret is missing outside OfflineMode, or if REDIS_PORT does
// not parse as an integer, both of which are configuration errors (exit
// code 1).
func FromEnv() (*Config, error) {
	cfg := &Config{
		Addr:      envOr(EnvAddr, ":8080"),
		RedisHost: envOr(EnvRedisHost, "localhost"),
		RedisPort: 6379,
	}

	if portStr := os.Getenv(EnvRedisPort); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value: %w", EnvRedisPort, err)
		}
		cfg.RedisPort = port
	}

	cfg.OfflineMode = parseBool(os.Getenv(EnvOfflineMode))

	cfg.JWTSecret = os.Getenv(EnvJWTSecret)
	if cfg.JWTSecret == "" && !cfg.OfflineMode {
		return nil, fmt.Errorf("%s environment variable is required outside %s", EnvJWTSecret, EnvOfflineMode)
	}

	if origins := os.Getenv(EnvCORSOrigins); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, trimmed)
			}
		}
	}

	return cfg, nil
}

// RedisAddr returns the "host:port" form go-redis expects.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// AllowOrigin reports whether origin is in the configured whitelist. An
// empty whitelist allows all origins, matching OfflineMode's permissive
// default.
func (c *Config) AllowOrigin(origin string) bool {
	if len(c.CORSOrigins) == 0 {
		return true
	}
	for _, o := range c.CORSOrigins {
		if o == origin || o == "*" {
			return true
		}
	}
	return false
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBool(s string) bool {
	v, _ := strconv.ParseBool(s)
	return v
}
