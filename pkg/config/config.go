package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "MALLCART"

	EnvAppEnv        = "MALLCART_APP_ENV"
	EnvPort          = "MALLCART_APP_PORT"
	EnvLogLevel      = "MALLCART_LOG_LEVEL"
	EnvCartBackend   = "MALLCART_CART_BACKEND"
	EnvCartPrefix    = "MALLCART_CART_KEY_PREFIX"
	EnvRedisURL      = "MALLCART_REDIS_URL"
	EnvRedisAddr     = "MALLCART_REDIS_ADDR"
	EnvDBDSN         = "MALLCART_DB_DSN"
	EnvDBDriver      = "MALLCART_DB_DRIVER"
	EnvDBHost        = "MALLCART_DB_HOST"
	EnvDBUser        = "MALLCART_DB_USER"
	EnvDBName        = "MALLCART_DB_NAME"
	EnvEventsProject = "MALLCART_EVENTS_GCP_PROJECT_ID"
	EnvEventsTopic   = "MALLCART_EVENTS_CART_TOPIC"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQL    = "sql"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Cart         CartConfig
	Redis        RedisConfig
	DB           DBConfig
	FeatureFlags FeatureFlagsConfig
	Events       EventsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-section requirements that envconfig tags cannot express.
func (c *Config) Validate() error {
	switch c.Cart.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("%s or %s is required for the redis cart backend", EnvRedisURL, EnvRedisAddr)
		}
	case BackendSQL:
		if err := c.DB.EnsureDSN(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvCartBackend, c.Cart.Backend)
	}
	if strings.TrimSpace(c.Cart.GuestIdentity) == "" {
		return fmt.Errorf("cart guest identity must not be empty")
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"MALLCART_APP_ENV" required:"true"`
	Port         string `envconfig:"MALLCART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MALLCART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MALLCART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// CartConfig controls how carts are partitioned and where they are persisted.
type CartConfig struct {
	Backend         string   `envconfig:"MALLCART_CART_BACKEND" default:"memory"`
	KeyPrefix       string   `envconfig:"MALLCART_CART_KEY_PREFIX" default:"mall_cart_"`
	GuestIdentity   string   `envconfig:"MALLCART_CART_GUEST_IDENTITY" default:"guest"`
	TokenSlot       string   `envconfig:"MALLCART_CART_TOKEN_SLOT" default:"token"`
	LegacyTokenSlot string   `envconfig:"MALLCART_CART_LEGACY_TOKEN_SLOT" default:"authToken"`
	IdentityClaims  []string `envconfig:"MALLCART_CART_IDENTITY_CLAIMS" default:"id,_id,sub"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MALLCART_REDIS_URL"`
	Address      string        `envconfig:"MALLCART_REDIS_ADDR"`
	Password     string        `envconfig:"MALLCART_REDIS_PASSWORD"`
	DB           int           `envconfig:"MALLCART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MALLCART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MALLCART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MALLCART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MALLCART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MALLCART_REDIS_WRITE_TIMEOUT" default:"5s"`
	SlotTTL      time.Duration `envconfig:"MALLCART_REDIS_SLOT_TTL" default:"0s"`
}

type DBConfig struct {
	DSN    string `envconfig:"MALLCART_DB_DSN"`
	Driver string `envconfig:"MALLCART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MALLCART_DB_HOST"`
	LegacyPort     int    `envconfig:"MALLCART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MALLCART_DB_USER"`
	LegacyPassword string `envconfig:"MALLCART_DB_PASSWORD"`
	LegacyName     string `envconfig:"MALLCART_DB_NAME"`
	LegacySSLMode  string `envconfig:"MALLCART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MALLCART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MALLCART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MALLCART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MALLCART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MALLCART_AUTO_MIGRATE" default:"false"`
}

// EventsConfig enables cart change publishing when both fields are set.
type EventsConfig struct {
	ProjectID string `envconfig:"MALLCART_EVENTS_GCP_PROJECT_ID"`
	CartTopic string `envconfig:"MALLCART_EVENTS_CART_TOPIC"`
}

func (e EventsConfig) Enabled() bool {
	return strings.TrimSpace(e.ProjectID) != "" && strings.TrimSpace(e.CartTopic) != ""
}

// EnsureDSN fills DSN from the split MALLCART_DB_* variables when it is unset.
func (db *DBConfig) EnsureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if strings.EqualFold(db.Driver, DriverSQLite) {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
