// Package config builds the runtime configuration from environment
// variables, with defaults matching a casual chat-group game: a tick
// every five minutes and $10000 starting cash.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const (
	defaultPort         = "8080"
	defaultDataDir      = "data"
	defaultTickInterval = 300 * time.Second
	defaultTickCooldown = 60 * time.Second
	defaultGlobalChance = 0.1
	defaultLocalChance  = 0.15
	defaultVolatility   = 0.03
	defaultStartingCash = 10000
	defaultPushDelay    = 500 * time.Millisecond
)

// Config keeps the runtime configuration for the service.
type Config struct {
	Port        string
	DataDir     string
	DatabaseURL string
	RedisURL    string

	TickInterval      time.Duration
	TickCooldown      time.Duration
	GlobalEventChance float64
	LocalEventChance  float64
	BaseVolatility    float64
	StartingCash      decimal.Decimal
	EnableNewsPush    bool
	PushDelay         time.Duration
}

// Load builds Config from environment variables.
func Load() (*Config, error) {
	tickInterval, err := getDuration("TICK_INTERVAL", defaultTickInterval)
	if err != nil {
		return nil, err
	}
	cooldown, err := getDuration("TICK_COOLDOWN", defaultTickCooldown)
	if err != nil {
		return nil, err
	}
	pushDelay, err := getDuration("PUSH_DELAY", defaultPushDelay)
	if err != nil {
		return nil, err
	}
	globalChance, err := getFloat("GLOBAL_EVENT_CHANCE", defaultGlobalChance)
	if err != nil {
		return nil, err
	}
	localChance, err := getFloat("LOCAL_EVENT_CHANCE", defaultLocalChance)
	if err != nil {
		return nil, err
	}
	volatility, err := getFloat("BASE_VOLATILITY", defaultVolatility)
	if err != nil {
		return nil, err
	}
	startingCash, err := getFloat("STARTING_CASH", defaultStartingCash)
	if err != nil {
		return nil, err
	}
	enablePush, err := getBool("ENABLE_NEWS_PUSH", true)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:              getString("PORT", defaultPort),
		DataDir:           getString("DATA_DIR", defaultDataDir),
		DatabaseURL:       getString("DATABASE_URL", ""),
		RedisURL:          getString("REDIS_URL", ""),
		TickInterval:      tickInterval,
		TickCooldown:      cooldown,
		GlobalEventChance: globalChance,
		LocalEventChance:  localChance,
		BaseVolatility:    volatility,
		StartingCash:      decimal.NewFromFloat(startingCash),
		EnableNewsPush:    enablePush,
		PushDelay:         pushDelay,
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("config: TICK_INTERVAL must be positive, got %s", c.TickInterval)
	}
	if c.GlobalEventChance < 0 || c.GlobalEventChance > 1 {
		return fmt.Errorf("config: GLOBAL_EVENT_CHANCE must be in [0,1], got %g", c.GlobalEventChance)
	}
	if c.LocalEventChance < 0 || c.LocalEventChance > 1 {
		return fmt.Errorf("config: LOCAL_EVENT_CHANCE must be in [0,1], got %g", c.LocalEventChance)
	}
	if c.BaseVolatility < 0 {
		return fmt.Errorf("config: BASE_VOLATILITY must not be negative, got %g", c.BaseVolatility)
	}
	if !c.StartingCash.IsPositive() {
		return fmt.Errorf("config: STARTING_CASH must be positive, got %s", c.StartingCash)
	}
	return nil
}

func getString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) (float64, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return f, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s: %w", key, err)
	}
	return b, nil
}

// getDuration accepts either a Go duration string ("5m") or a bare
// number of seconds ("300"), the way the original deployment configured
// its intervals.
func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}
