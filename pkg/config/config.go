package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App            AppConfig
	Service        ServiceConfig
	DB             DBConfig
	Redis          RedisConfig
	JWT            JWTConfig
	FeatureFlags   FeatureFlagsConfig
	Eventing       EventingConfig
	GCP            GCPConfig
	PubSub         PubSubConfig
	Outbox         OutboxConfig
	Reconciliation ReconciliationConfig
	Cron           CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if _, err := cfg.Reconciliation.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FUELSTATION_APP_ENV" required:"true"`
	Port         string `envconfig:"FUELSTATION_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FUELSTATION_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"FUELSTATION_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"FUELSTATION_LOG_WARN_STACK" default:"false"`

	CORSAllowedOrigins []string `envconfig:"FUELSTATION_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"FUELSTATION_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"FUELSTATION_DB_DSN"`
	Driver string `envconfig:"FUELSTATION_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FUELSTATION_DB_HOST"`
	LegacyPort     int    `envconfig:"FUELSTATION_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FUELSTATION_DB_USER"`
	LegacyPassword string `envconfig:"FUELSTATION_DB_PASSWORD"`
	LegacyName     string `envconfig:"FUELSTATION_DB_NAME"`
	LegacySSLMode  string `envconfig:"FUELSTATION_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FUELSTATION_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FUELSTATION_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FUELSTATION_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FUELSTATION_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"FUELSTATION_DB_SLOW_QUERY" default:"500ms"`
}

// IsSQLite reports whether the sqlite dialector was requested (local development only).
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"FUELSTATION_REDIS_URL"`
	Address      string        `envconfig:"FUELSTATION_REDIS_ADDR"`
	Password     string        `envconfig:"FUELSTATION_REDIS_PASSWORD"`
	DB           int           `envconfig:"FUELSTATION_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FUELSTATION_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FUELSTATION_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FUELSTATION_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FUELSTATION_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FUELSTATION_REDIS_WRITE_TIMEOUT" default:"5s"`
	KeyPrefix    string        `envconfig:"FUELSTATION_REDIS_KEY_PREFIX" default:"fs"`
}

type JWTConfig struct {
	Secret            string        `envconfig:"FUELSTATION_JWT_SECRET" required:"true"`
	Issuer            string        `envconfig:"FUELSTATION_JWT_ISSUER" required:"true"`
	ExpirationMinutes int           `envconfig:"FUELSTATION_JWT_EXPIRATION_MINUTES" default:"720"`
	Audience          string        `envconfig:"FUELSTATION_JWT_AUDIENCE"`
	Leeway            time.Duration `envconfig:"FUELSTATION_JWT_LEEWAY" default:"30s"`
}

// Expiration returns the operator token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FUELSTATION_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	IdempotencyTTL time.Duration `envconfig:"FUELSTATION_EVENTING_IDEMPOTENCY_TTL" default:"24h"`

	BulkVerifyRateLimit  int           `envconfig:"FUELSTATION_BULK_VERIFY_RATE_LIMIT" default:"10"`
	BulkVerifyRateWindow time.Duration `envconfig:"FUELSTATION_BULK_VERIFY_RATE_WINDOW" default:"1m"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"FUELSTATION_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"FUELSTATION_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"FUELSTATION_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	ReconciliationTopic        string `envconfig:"FUELSTATION_PUBSUB_RECONCILIATION_TOPIC" default:"fuelstation-reconciliation-events"`
	ReconciliationSubscription string `envconfig:"FUELSTATION_PUBSUB_RECONCILIATION_SUBSCRIPTION"`
	// TopicOverrides routes individual event types elsewhere, e.g.
	// "reading_pending_overdue:station-alerts,inventory_applied:inventory-feed".
	TopicOverrides map[string]string `envconfig:"FUELSTATION_PUBSUB_TOPIC_OVERRIDES"`
}

// TopicFor returns the topic an event type is published to.
func (p PubSubConfig) TopicFor(eventType string) string {
	if topic := strings.TrimSpace(p.TopicOverrides[eventType]); topic != "" {
		return topic
	}
	return p.ReconciliationTopic
}

// Topics lists every distinct configured topic, sorted.
func (p PubSubConfig) Topics() []string {
	set := map[string]struct{}{}
	if p.ReconciliationTopic != "" {
		set[p.ReconciliationTopic] = struct{}{}
	}
	for _, topic := range p.TopicOverrides {
		if topic = strings.TrimSpace(topic); topic != "" {
			set[topic] = struct{}{}
		}
	}
	topics := make([]string, 0, len(set))
	for topic := range set {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"FUELSTATION_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"FUELSTATION_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"FUELSTATION_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"FUELSTATION_OUTBOX_RETENTION_DAYS" default:"30"`
	// RetentionBatch bounds rows deleted per transaction by the cleanup job.
	RetentionBatch int `envconfig:"FUELSTATION_OUTBOX_RETENTION_BATCH" default:"500"`
}

// PollInterval returns the publisher poll cadence.
func (o OutboxConfig) PollInterval() time.Duration {
	if o.PollIntervalMS <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(o.PollIntervalMS) * time.Millisecond
}

// Retention returns how long published rows are kept before cleanup.
func (o OutboxConfig) Retention() time.Duration {
	if o.RetentionDays <= 0 {
		return 0
	}
	return time.Duration(o.RetentionDays) * 24 * time.Hour
}

type CronConfig struct {
	Interval   time.Duration `envconfig:"FUELSTATION_CRON_INTERVAL" default:"1h"`
	JobTimeout time.Duration `envconfig:"FUELSTATION_CRON_JOB_TIMEOUT" default:"10m"`
}

type ReconciliationConfig struct {
	StationTimeZone    string `envconfig:"FUELSTATION_RECONCILIATION_TIME_ZONE" default:"UTC"`
	PendingOverdueDays int    `envconfig:"FUELSTATION_RECONCILIATION_PENDING_OVERDUE_DAYS" default:"3"`
	BulkVerifyMaxIDs   int    `envconfig:"FUELSTATION_RECONCILIATION_BULK_VERIFY_MAX_IDS" default:"200"`
}

// Location resolves the station time zone used for the "today" boundary.
func (r ReconciliationConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(r.StationTimeZone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", EnvStationTimeZone, name, err)
	}
	return loc, nil
}

// PendingOverdueAfter returns the age after which a pending reading is flagged.
func (r ReconciliationConfig) PendingOverdueAfter() time.Duration {
	days := r.PendingOverdueDays
	if days <= 0 {
		days = 3
	}
	return time.Duration(days) * 24 * time.Hour
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required when %s=%s", EnvDBDSN, EnvDBDriver, DBDriverSQLite)
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
