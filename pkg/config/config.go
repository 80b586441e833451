package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Catalog      CatalogConfig
	Orders       OrdersConfig
	Feed         FeedConfig
	Redis        RedisConfig
	DB           DBConfig
	Session      SessionConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Feed.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"COMMERCIFY_APP_ENV" required:"true"`
	Port         string `envconfig:"COMMERCIFY_APP_PORT" default:"7070"`
	LogLevel     string `envconfig:"COMMERCIFY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"COMMERCIFY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// CatalogConfig points the client at the Catalog Source API.
type CatalogConfig struct {
	BaseURL string        `envconfig:"COMMERCIFY_CATALOG_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"COMMERCIFY_CATALOG_TIMEOUT" default:"10s"`
}

// OrdersConfig points the client at the Order Sink API. An empty base URL
// falls back to the catalog base URL (the original deployment serves both
// behind one gateway).
type OrdersConfig struct {
	BaseURL string        `envconfig:"COMMERCIFY_ORDERS_BASE_URL"`
	Timeout time.Duration `envconfig:"COMMERCIFY_ORDERS_TIMEOUT" default:"10s"`
}

// ResolveBaseURL returns the orders endpoint, defaulting to the catalog host.
func (o OrdersConfig) ResolveBaseURL(catalog CatalogConfig) string {
	if strings.TrimSpace(o.BaseURL) != "" {
		return o.BaseURL
	}
	return catalog.BaseURL
}

// FeedConfig describes the inventory event feed connection and its
// reconnect policy.
type FeedConfig struct {
	Transport            string        `envconfig:"COMMERCIFY_FEED_TRANSPORT" default:"websocket"`
	URL                  string        `envconfig:"COMMERCIFY_FEED_URL"`
	HandshakeTimeout     time.Duration `envconfig:"COMMERCIFY_FEED_HANDSHAKE_TIMEOUT" default:"10s"`
	ReconnectBaseDelay   time.Duration `envconfig:"COMMERCIFY_FEED_RECONNECT_BASE_DELAY" default:"2s"`
	MaxReconnectAttempts uint64        `envconfig:"COMMERCIFY_FEED_MAX_RECONNECT_ATTEMPTS" default:"5"`
}

const (
	FeedTransportWebsocket = "websocket"
	FeedTransportRedis     = "redis"
)

func (f FeedConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(f.Transport)) {
	case FeedTransportWebsocket:
		if strings.TrimSpace(f.URL) == "" {
			return fmt.Errorf("%s is required for the websocket feed transport", EnvFeedURL)
		}
	case FeedTransportRedis:
	default:
		return fmt.Errorf("unknown feed transport %q", f.Transport)
	}
	return nil
}

// UsesRedis reports whether the feed should subscribe to Redis pub/sub
// channels directly instead of the websocket relay.
func (f FeedConfig) UsesRedis() bool {
	return strings.EqualFold(strings.TrimSpace(f.Transport), FeedTransportRedis)
}

type RedisConfig struct {
	URL          string        `envconfig:"COMMERCIFY_REDIS_URL"`
	Address      string        `envconfig:"COMMERCIFY_REDIS_ADDR"`
	Password     string        `envconfig:"COMMERCIFY_REDIS_PASSWORD"`
	DB           int           `envconfig:"COMMERCIFY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"COMMERCIFY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"COMMERCIFY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"COMMERCIFY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"COMMERCIFY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"COMMERCIFY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type DBConfig struct {
	Path string `envconfig:"COMMERCIFY_DB_PATH" default:"commercify.db"`
}

// SessionConfig carries the fixed storage keys for persisted client state.
type SessionConfig struct {
	CartKey  string `envconfig:"COMMERCIFY_SESSION_CART_KEY" default:"commercify_cart"`
	TokenKey string `envconfig:"COMMERCIFY_SESSION_TOKEN_KEY" default:"commercify_token"`
	UserKey  string `envconfig:"COMMERCIFY_SESSION_USER_KEY" default:"commercify_user"`
}

type FeatureFlagsConfig struct {
	UseSQLite bool `envconfig:"COMMERCIFY_USE_SQLITE" default:"false"`
}
