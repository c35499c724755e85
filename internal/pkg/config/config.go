package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// Subdomain is the platform suffix under which preview URLs are minted,
	// e.g. "fn.example.com".
	Subdomain string `env:"PLATFORM_SUBDOMAIN, default=fn.localhost"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Identity IdentityConfig
	Session  SessionConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=control_plane"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// IdentityConfig selects and configures the external identity provider.
// Provider "jwt" verifies self-hosted signed assertions with JWTSecret;
// "oauth" runs the authorization-code flow against the configured endpoints.
type IdentityConfig struct {
	Provider     string `env:"IDENTITY_PROVIDER, default=jwt"`
	JWTSecret    string `env:"IDENTITY_JWT_SECRET"`
	ClientID     string `env:"IDENTITY_CLIENT_ID"`
	ClientSecret string `env:"IDENTITY_CLIENT_SECRET"`
	AuthURL      string `env:"IDENTITY_AUTH_URL"`
	TokenURL     string `env:"IDENTITY_TOKEN_URL"`
	UserInfoURL  string `env:"IDENTITY_USERINFO_URL"`
	RedirectURL  string `env:"IDENTITY_REDIRECT_URL"`
}

type SessionConfig struct {
	// ActiveInterval is how long an authorized session skips provider
	// verification. Zero falls back to the service default.
	ActiveInterval time.Duration `env:"SESSION_ACTIVE_INTERVAL, default=60s"`
	// TTL is the hard session expiry. Zero falls back to the service
	// default.
	TTL time.Duration `env:"SESSION_TTL, default=23h"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
