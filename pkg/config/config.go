package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "mandi"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Gateway      GatewayConfig
	Sweep        SweepConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MANDI_APP_ENV" required:"true"`
	Port         string `envconfig:"MANDI_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MANDI_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MANDI_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"MANDI_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"MANDI_DB_DSN"`
	Driver string `envconfig:"MANDI_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MANDI_DB_HOST"`
	LegacyPort     int    `envconfig:"MANDI_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MANDI_DB_USER"`
	LegacyPassword string `envconfig:"MANDI_DB_PASSWORD"`
	LegacyName     string `envconfig:"MANDI_DB_NAME"`
	LegacySSLMode  string `envconfig:"MANDI_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MANDI_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MANDI_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MANDI_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MANDI_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MANDI_REDIS_URL"`
	Address      string        `envconfig:"MANDI_REDIS_ADDR"`
	Password     string        `envconfig:"MANDI_REDIS_PASSWORD"`
	DB           int           `envconfig:"MANDI_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MANDI_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MANDI_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MANDI_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MANDI_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MANDI_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MANDI_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MANDI_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MANDI_JWT_EXPIRATION_MINUTES" default:"60"`
}

// GatewayConfig carries the hosted payment gateway credentials. The signing
// secret is shared with the gateway and used to verify payment confirmations.
type GatewayConfig struct {
	BaseURL        string        `envconfig:"MANDI_GATEWAY_BASE_URL" default:"https://api.razorpay.com/v1"`
	KeyID          string        `envconfig:"MANDI_GATEWAY_KEY_ID" required:"true"`
	KeySecret      string        `envconfig:"MANDI_GATEWAY_KEY_SECRET" required:"true"`
	RequestTimeout time.Duration `envconfig:"MANDI_GATEWAY_REQUEST_TIMEOUT" default:"15s"`
}

// SweepConfig controls the bulk window settlement sweep.
type SweepConfig struct {
	Token    string        `envconfig:"MANDI_SWEEP_TOKEN" required:"true"`
	Interval time.Duration `envconfig:"MANDI_SWEEP_INTERVAL" default:"1m"`
}

// RateLimitConfig throttles the payment endpoints.
type RateLimitConfig struct {
	Window       time.Duration `envconfig:"MANDI_RATE_LIMIT_WINDOW" default:"1m"`
	IPLimit      int           `envconfig:"MANDI_RATE_LIMIT_IP_LIMIT" default:"60"`
	AccountLimit int           `envconfig:"MANDI_RATE_LIMIT_ACCOUNT_LIMIT" default:"30"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MANDI_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"MANDI_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"MANDI_PUBSUB_NOTIFICATION_TOPIC" default:"mandi-notification-events"`
	NotificationSubscription string `envconfig:"MANDI_PUBSUB_NOTIFICATION_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"MANDI_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"MANDI_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"MANDI_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.LegacyHost == "" || db.LegacyUser == "" || db.LegacyName == "" {
		return fmt.Errorf("database config incomplete: set MANDI_DB_DSN or host/user/name parts")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(db.LegacyUser, db.LegacyPassword),
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   "/" + db.LegacyName,
	}
	q := u.Query()
	q.Set("sslmode", db.LegacySSLMode)
	u.RawQuery = q.Encode()
	db.DSN = u.String()
	return nil
}
