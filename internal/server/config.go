package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

const (
	StoreBadger = "badger"
	StoreMongo  = "mongo"
)

const (
	defaultAddr            = ":8000"
	defaultMaxMessageSize  = 4096
	defaultSendBufferSize  = 256
	defaultRateLimitBurst  = 5
	defaultRefillInterval  = time.Second
	defaultTokenDuration   = 24 * time.Hour
	defaultShutdownTimeout = 10 * time.Second
)

// RateLimitConfig defines the per-connection budget of inbound frames.
type RateLimitConfig struct {
	Burst          int
	RefillInterval time.Duration
}

// Config holds every runtime setting of the server process.
type Config struct {
	Addr              string        `env:"SERVER_ADDR,default=:8000"`
	AllowedOrigins    string        `env:"ALLOWED_ORIGINS,default=http://localhost:8000"`
	MaxMessageSize    int64         `env:"MAX_MESSAGE_SIZE,default=4096"`
	SendBufferSize    int           `env:"SEND_BUFFER_SIZE,default=256"`
	RateLimitBurst    int           `env:"RATE_LIMIT_BURST,default=5"`
	RateLimitRefill   time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL,default=1s"`
	StoreDriver       string        `env:"STORE_DRIVER,default=badger"`
	BadgerFilepath    string        `env:"BADGER_FILEPATH,default=./data"`
	MongoURI          string        `env:"MONGO_URI,default=mongodb://localhost:27017"`
	MongoDatabase     string        `env:"MONGO_DATABASE,default=duochat"`
	JWTSecretKey      string        `env:"JWT_SECRET_KEY,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	RequireWSToken    bool          `env:"REQUIRE_WS_TOKEN,default=false"`
	LogLevel          string        `env:"LOG_LEVEL,default=INFO"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

// LoadConfig reads an optional .env file, then the environment.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	cfg = SanitizeConfig(cfg)

	switch cfg.StoreDriver {
	case StoreBadger, StoreMongo:
	default:
		return Config{}, fmt.Errorf("config error: unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	return cfg, nil
}

// SanitizeConfig replaces empty or non-positive settings with their defaults.
func SanitizeConfig(cfg Config) Config {
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = defaultMaxMessageSize
	}
	if cfg.SendBufferSize <= 0 {
		cfg.SendBufferSize = defaultSendBufferSize
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = defaultRateLimitBurst
	}
	if cfg.RateLimitRefill <= 0 {
		cfg.RateLimitRefill = defaultRefillInterval
	}
	if cfg.AuthTokenDuration <= 0 {
		cfg.AuthTokenDuration = defaultTokenDuration
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	if cfg.StoreDriver == "" {
		cfg.StoreDriver = StoreBadger
	}
	return cfg
}

func (c Config) RateLimit() RateLimitConfig {
	return RateLimitConfig{Burst: c.RateLimitBurst, RefillInterval: c.RateLimitRefill}
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c Config) Origins() []string {
	parts := strings.Split(c.AllowedOrigins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
