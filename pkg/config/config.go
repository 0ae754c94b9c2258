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
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Orders       OrdersConfig
	Notification NotificationConfig
	Outbox       OutboxConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Orders.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SURPLUS_APP_ENV" required:"true"`
	Port         string `envconfig:"SURPLUS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SURPLUS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SURPLUS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SURPLUS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN string `envconfig:"SURPLUS_DB_DSN"`

	LegacyHost     string `envconfig:"SURPLUS_DB_HOST"`
	LegacyPort     int    `envconfig:"SURPLUS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SURPLUS_DB_USER"`
	LegacyPassword string `envconfig:"SURPLUS_DB_PASSWORD"`
	LegacyName     string `envconfig:"SURPLUS_DB_NAME"`
	LegacySSLMode  string `envconfig:"SURPLUS_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"SURPLUS_SQLITE_PATH" default:"surplus.db"`

	MaxOpenConns    int           `envconfig:"SURPLUS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SURPLUS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SURPLUS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SURPLUS_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// zero disables slow query logging
	SlowQueryThreshold time.Duration `envconfig:"SURPLUS_DB_SLOW_QUERY" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SURPLUS_REDIS_URL"`
	Address      string        `envconfig:"SURPLUS_REDIS_ADDR"`
	Password     string        `envconfig:"SURPLUS_REDIS_PASSWORD"`
	DB           int           `envconfig:"SURPLUS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SURPLUS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SURPLUS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SURPLUS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SURPLUS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SURPLUS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SURPLUS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SURPLUS_JWT_ISSUER" default:"surplusmarket"`
	ExpirationMinutes int    `envconfig:"SURPLUS_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SURPLUS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SURPLUS_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"SURPLUS_GCP_PROJECT_ID"`
}

// Enabled reports whether a GCP project is configured for Pub/Sub.
func (g GCPConfig) Enabled() bool {
	return strings.TrimSpace(g.ProjectID) != ""
}

type PubSubConfig struct {
	NotificationTopic string `envconfig:"SURPLUS_PUBSUB_NOTIFICATION_TOPIC" default:"surplus-notification-events"`
	DomainTopic       string `envconfig:"SURPLUS_PUBSUB_DOMAIN_TOPIC" default:"surplus-domain-events"`
	CreateTopics      bool   `envconfig:"SURPLUS_PUBSUB_CREATE_TOPICS" default:"false"`
}

type OrdersConfig struct {
	PendingTTL         time.Duration `envconfig:"SURPLUS_ORDERS_PENDING_TTL" default:"2h"`
	PaymentTTL         time.Duration `envconfig:"SURPLUS_ORDERS_PAYMENT_TTL" default:"30m"`
	DefaultDeliveryFee string        `envconfig:"SURPLUS_ORDERS_DEFAULT_DELIVERY_FEE" default:"0"`
}

func (o OrdersConfig) validate() error {
	if o.PendingTTL <= 0 {
		return fmt.Errorf("%s must be positive", EnvOrdersPendingTTL)
	}
	if o.PaymentTTL <= 0 {
		return fmt.Errorf("%s must be positive", EnvOrdersPaymentTTL)
	}
	return nil
}

type NotificationConfig struct {
	DedupTTL time.Duration `envconfig:"SURPLUS_NOTIFICATION_DEDUP_TTL" default:"72h"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SURPLUS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SURPLUS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SURPLUS_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"SURPLUS_OUTBOX_RETENTION_DAYS" default:"30"`

	// MetricsAddr exposes the relay's /metrics when set, e.g. ":9102".
	MetricsAddr string `envconfig:"SURPLUS_OUTBOX_METRICS_ADDR"`
}

type CronConfig struct {
	Interval                  time.Duration `envconfig:"SURPLUS_CRON_INTERVAL" default:"5m"`
	LockKey                   string        `envconfig:"SURPLUS_CRON_LOCK_KEY" default:"cron"`
	LockTTL                   time.Duration `envconfig:"SURPLUS_CRON_LOCK_TTL" default:"4m"`
	JobTimeout                time.Duration `envconfig:"SURPLUS_CRON_JOB_TIMEOUT" default:"3m"`
	NotificationRetentionDays int           `envconfig:"SURPLUS_NOTIFICATION_RETENTION_DAYS" default:"30"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" || useSQLite {
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
