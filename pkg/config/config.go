package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Inventory     InventoryConfig
	DB            DBConfig
	Redis         RedisConfig
	Idempotency   IdempotencyConfig
	Metrics       MetricsConfig
	Notifications NotificationsConfig
	Housekeeping  HousekeepingConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if cfg.Inventory.DefaultReorderPoint < 0 {
		return nil, fmt.Errorf("%s must not be negative", EnvDefaultReorderPoint)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BACKOFFICE_APP_ENV" required:"true"`
	Port         string `envconfig:"BACKOFFICE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"BACKOFFICE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BACKOFFICE_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"BACKOFFICE_LOG_FORMAT"`

	CORSOrigins []string `envconfig:"BACKOFFICE_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type InventoryConfig struct {
	DefaultReorderPoint int `envconfig:"BACKOFFICE_DEFAULT_REORDER_POINT" default:"5"`
}

// DBConfig points at the reference-data source (investors, financial records,
// starting inventory). An empty DSN with no host means the ledger starts empty.
type DBConfig struct {
	DSN    string `envconfig:"BACKOFFICE_DB_DSN"`
	Driver string `envconfig:"BACKOFFICE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"BACKOFFICE_DB_HOST"`
	Port     int    `envconfig:"BACKOFFICE_DB_PORT" default:"5432"`
	User     string `envconfig:"BACKOFFICE_DB_USER"`
	Password string `envconfig:"BACKOFFICE_DB_PASSWORD"`
	Name     string `envconfig:"BACKOFFICE_DB_NAME"`
	SSLMode  string `envconfig:"BACKOFFICE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BACKOFFICE_DB_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int           `envconfig:"BACKOFFICE_DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"BACKOFFICE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BACKOFFICE_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// AutoMigrate applies the embedded goose migrations at startup in dev.
	AutoMigrate bool `envconfig:"BACKOFFICE_DB_AUTO_MIGRATE" default:"false"`
}

// Enabled reports whether a reference-data source was configured.
func (db DBConfig) Enabled() bool {
	return strings.TrimSpace(db.DSN) != ""
}

type RedisConfig struct {
	URL          string        `envconfig:"BACKOFFICE_REDIS_URL"`
	Address      string        `envconfig:"BACKOFFICE_REDIS_ADDR"`
	Password     string        `envconfig:"BACKOFFICE_REDIS_PASSWORD"`
	DB           int           `envconfig:"BACKOFFICE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BACKOFFICE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BACKOFFICE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BACKOFFICE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BACKOFFICE_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"BACKOFFICE_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// Enabled reports whether idempotency storage was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type IdempotencyConfig struct {
	DefaultTTL time.Duration `envconfig:"BACKOFFICE_IDEMPOTENCY_DEFAULT_TTL" default:"24h"`
	SaleTTL    time.Duration `envconfig:"BACKOFFICE_IDEMPOTENCY_SALE_TTL" default:"168h"`
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"BACKOFFICE_METRICS_ENABLED" default:"true"`
	Path    string `envconfig:"BACKOFFICE_METRICS_PATH" default:"/metrics"`
}

type NotificationsConfig struct {
	FeedSize int `envconfig:"BACKOFFICE_NOTIFICATIONS_FEED_SIZE" default:"200"`
}

// HousekeepingConfig drives the background job loop started by cmd/api.
type HousekeepingConfig struct {
	Enabled               bool          `envconfig:"BACKOFFICE_HOUSEKEEPING_ENABLED" default:"true"`
	Interval              time.Duration `envconfig:"BACKOFFICE_HOUSEKEEPING_INTERVAL" default:"1h"`
	LockTTL               time.Duration `envconfig:"BACKOFFICE_HOUSEKEEPING_LOCK_TTL" default:"55m"`
	NotificationRetention time.Duration `envconfig:"BACKOFFICE_NOTIFICATION_RETENTION" default:"168h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" || db.Host == "" {
		return nil
	}

	missing := []string{}
	if db.User == "" {
		missing = append(missing, EnvDBUser)
	}
	if db.Name == "" {
		missing = append(missing, EnvDBName)
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
