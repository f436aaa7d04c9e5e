package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Delivery     DeliveryConfig
	Orders       OrdersConfig
	Retention    RetentionConfig
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
	Env          string `envconfig:"VENDORA_APP_ENV" required:"true"`
	Port         string `envconfig:"VENDORA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"VENDORA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VENDORA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"VENDORA_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"VENDORA_DB_DSN"`
	Driver string `envconfig:"VENDORA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"VENDORA_DB_HOST"`
	LegacyPort     int    `envconfig:"VENDORA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"VENDORA_DB_USER"`
	LegacyPassword string `envconfig:"VENDORA_DB_PASSWORD"`
	LegacyName     string `envconfig:"VENDORA_DB_NAME"`
	LegacySSLMode  string `envconfig:"VENDORA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VENDORA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VENDORA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VENDORA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VENDORA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VENDORA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"VENDORA_REDIS_ADDR"`
	Password     string        `envconfig:"VENDORA_REDIS_PASSWORD"`
	DB           int           `envconfig:"VENDORA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VENDORA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VENDORA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VENDORA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VENDORA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VENDORA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig describes how bearer tokens are verified. Tokens are minted by the
// identity service; this backend only checks signatures and claims.
type JWTConfig struct {
	Secret            string `envconfig:"VENDORA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"VENDORA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"VENDORA_JWT_EXPIRATION_MINUTES" default:"60"`
}

type RateLimitConfig struct {
	CheckoutWindow    time.Duration `envconfig:"VENDORA_RATE_LIMIT_CHECKOUT_WINDOW" default:"1m"`
	CheckoutUserLimit int           `envconfig:"VENDORA_RATE_LIMIT_CHECKOUT_USER_LIMIT" default:"10"`
	CheckoutIPLimit   int           `envconfig:"VENDORA_RATE_LIMIT_CHECKOUT_IP_LIMIT" default:"30"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"VENDORA_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	ConsumerIdempotencyTTL time.Duration `envconfig:"VENDORA_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"VENDORA_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"VENDORA_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"VENDORA_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"VENDORA_PUBSUB_DOMAIN_TOPIC" required:"true"`
	DomainSubscription string `envconfig:"VENDORA_PUBSUB_DOMAIN_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"VENDORA_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"VENDORA_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"VENDORA_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

// DeliveryConfig holds the platform fallbacks used when a vendor has no
// delivery-zone row for the buyer's zone.
type DeliveryConfig struct {
	DefaultMinDays int `envconfig:"VENDORA_DELIVERY_DEFAULT_MIN_DAYS" default:"1"`
	DefaultMaxDays int `envconfig:"VENDORA_DELIVERY_DEFAULT_MAX_DAYS" default:"3"`
}

type OrdersConfig struct {
	NumberPrefix string        `envconfig:"VENDORA_ORDERS_NUMBER_PREFIX" default:"VD"`
	PendingTTL   time.Duration `envconfig:"VENDORA_ORDERS_PENDING_TTL" default:"72h"`
}

type RetentionConfig struct {
	ReadNotifications time.Duration `envconfig:"VENDORA_RETENTION_READ_NOTIFICATIONS" default:"720h"`
	PublishedOutbox   time.Duration `envconfig:"VENDORA_RETENTION_PUBLISHED_OUTBOX" default:"168h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
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
