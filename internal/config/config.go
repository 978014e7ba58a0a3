// Package config loads service configuration from environment and optional file.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything cmd/server needs to wire the service.
type Config struct {
	ServerAddress string        `mapstructure:"SERVER_ADDRESS"`
	PostgresDSN   string        `mapstructure:"POSTGRES_DSN"`
	Store         string        `mapstructure:"STORE"` // postgres | memory
	JWTKey        string        `mapstructure:"JWT_KEY"`
	AccessTTL     time.Duration `mapstructure:"ACCESS_TTL"`

	FeeRate                float64       `mapstructure:"FEE_RATE"`
	MinBidIncrement        int64         `mapstructure:"MIN_BID_INCREMENT"`
	DefaultAuctionDuration time.Duration `mapstructure:"DEFAULT_AUCTION_DURATION"`
	PlatformAddress        string        `mapstructure:"PLATFORM_ADDRESS"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"` // optional, enables Redis event publishing
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	NATSURL       string `mapstructure:"NATS_URL"` // optional, enables JetStream event archival
}

// Load reads configuration from app.env in path (if present) and from the
// process environment; environment wins.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("SERVER_ADDRESS", ":8080")
	v.SetDefault("STORE", "postgres")
	v.SetDefault("ACCESS_TTL", "15m")
	v.SetDefault("FEE_RATE", 0.011)
	v.SetDefault("MIN_BID_INCREMENT", int64(1))
	v.SetDefault("DEFAULT_AUCTION_DURATION", "72h")
	v.SetDefault("PLATFORM_ADDRESS", "")
	v.SetDefault("POSTGRES_DSN", "")
	v.SetDefault("JWT_KEY", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("NATS_URL", "")

	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch strings.ToLower(c.Store) {
	case "postgres":
		if c.PostgresDSN == "" {
			return errors.New("config: POSTGRES_DSN required for postgres store")
		}
	case "memory":
	default:
		return errors.New("config: STORE must be postgres or memory")
	}
	if c.FeeRate < 0 || c.FeeRate >= 1 {
		return errors.New("config: FEE_RATE must be in [0, 1)")
	}
	if c.FeeRate > 0 && c.PlatformAddress == "" {
		return errors.New("config: PLATFORM_ADDRESS required when FEE_RATE > 0")
	}
	if c.MinBidIncrement <= 0 {
		return errors.New("config: MIN_BID_INCREMENT must be positive")
	}
	if c.DefaultAuctionDuration <= 0 {
		return errors.New("config: DEFAULT_AUCTION_DURATION must be positive")
	}
	return nil
}
