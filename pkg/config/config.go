// Package config loads control-plane configuration from an optional
// YAML file plus environment overrides, following the same
// godotenv+envdecode layering the rest of the stack uses.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/r3e-network/rwa-control-plane/pkg/logger"
)

// DatabaseConfig controls the PostgreSQL connection pool.
type DatabaseConfig struct {
	DSN             string `json:"dsn" yaml:"dsn" env:"DATABASE_DSN"`
	MaxOpenConns    int    `json:"max_open_conns" yaml:"max_open_conns" env:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int    `json:"max_idle_conns" yaml:"max_idle_conns" env:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime int    `json:"conn_max_lifetime_seconds" yaml:"conn_max_lifetime_seconds" env:"DATABASE_CONN_MAX_LIFETIME"`
	MigrateOnStart  bool   `json:"migrate_on_start" yaml:"migrate_on_start" env:"DATABASE_MIGRATE_ON_START"`
}

// TokenizationConfig carries the tokenization.enabled setting. Nothing in
// the control plane reads Enabled: cmd/controlplane always wires the
// synthetic collaborator set, whatever its value.
type TokenizationConfig struct {
	Enabled bool `json:"enabled" env:"TOKENIZATION_ENABLED"`
}

// AuctionConfig controls auction-engine parameters.
type AuctionConfig struct {
	BidIncrementPct     float64 `json:"bid_increment_pct" env:"AUCTION_BID_INCREMENT_PCT"`
	MinDurationSeconds  int     `json:"min_duration_seconds" env:"AUCTION_MIN_DURATION_SECONDS"`
	MaxDurationSeconds  int     `json:"max_duration_seconds" env:"AUCTION_MAX_DURATION_SECONDS"`
}

// SchedulerConfig controls the Clock/Scheduler tick cadence.
type SchedulerConfig struct {
	TickInterval time.Duration `json:"tick_interval" env:"SCHEDULER_TICK_INTERVAL"`
}

// CollaboratorConfig carries the collaborator.timeout setting. Nothing in
// the control plane reads Timeout; each engine bounds its calls with its
// own fixed 30s collaboratorTimeout.
type CollaboratorConfig struct {
	Timeout time.Duration `json:"timeout" env:"COLLABORATOR_TIMEOUT"`
}

// PaginationConfig bounds Store.List page sizes.
type PaginationConfig struct {
	DefaultLimit int `json:"default_limit" env:"PAGINATION_DEFAULT_LIMIT"`
	MaxLimit     int `json:"max_limit" env:"PAGINATION_MAX_LIMIT"`
}

// CacheConfig carries a Redis address in the shape cache.New accepts
// (empty selects an in-process map). Nothing in the control plane reads
// Addr; every engine builds its own cache.NewMemory().
type CacheConfig struct {
	Addr string `json:"addr" env:"CACHE_REDIS_ADDR"`
}

// Config is the top-level control-plane configuration.
type Config struct {
	Database      DatabaseConfig      `json:"database"`
	Logging       logger.Config       `json:"logging"`
	Tokenization  TokenizationConfig  `json:"tokenization"`
	Auction       AuctionConfig       `json:"auction"`
	Scheduler     SchedulerConfig     `json:"scheduler"`
	Collaborator  CollaboratorConfig  `json:"collaborator"`
	Pagination    PaginationConfig    `json:"pagination"`
	Cache         CacheConfig         `json:"cache"`
}

// New returns a Config populated with the control plane's default values.
func New() *Config {
	return &Config{
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
			MigrateOnStart:  true,
		},
		Logging: logger.Config{
			Level:  "info",
			Format: "text",
		},
		Tokenization: TokenizationConfig{Enabled: false},
		Auction: AuctionConfig{
			BidIncrementPct:    0.05,
			MinDurationSeconds: 3600,
			MaxDurationSeconds: 30 * 24 * 3600,
		},
		Scheduler: SchedulerConfig{
			TickInterval: 30 * time.Second,
		},
		Collaborator: CollaboratorConfig{
			Timeout: 30 * time.Second,
		},
		Pagination: PaginationConfig{
			DefaultLimit: 20,
			MaxLimit:     100,
		},
	}
}

// Load reads an optional .env file, an optional YAML config file (path from
// CONFIG_FILE or configs/config.yaml), and finally environment overrides.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := New()

	path := strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	if path == "" {
		path = "configs/config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := envdecode.Decode(cfg); err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	return cfg, nil
}
