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
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Admin         AdminConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	Storage       StorageConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DBDriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"VENDORKYC_APP_ENV" required:"true"`
	Port         string `envconfig:"VENDORKYC_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"VENDORKYC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VENDORKYC_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"VENDORKYC_CORS_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AllowedOrigins splits the comma separated CORS origin list.
func (a AppConfig) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(a.CORSOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

type DBConfig struct {
	DSN    string `envconfig:"VENDORKYC_DB_DSN"`
	Driver string `envconfig:"VENDORKYC_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"VENDORKYC_DB_HOST"`
	LegacyPort     int    `envconfig:"VENDORKYC_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"VENDORKYC_DB_USER"`
	LegacyPassword string `envconfig:"VENDORKYC_DB_PASSWORD"`
	LegacyName     string `envconfig:"VENDORKYC_DB_NAME"`
	LegacySSLMode  string `envconfig:"VENDORKYC_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VENDORKYC_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VENDORKYC_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VENDORKYC_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VENDORKYC_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// SlowQuery is the duration above which a statement is logged at warn.
	SlowQuery time.Duration `envconfig:"VENDORKYC_DB_SLOW_QUERY" default:"200ms"`
}

// IsSQLite reports whether the configured driver is the embedded SQLite driver.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"VENDORKYC_REDIS_URL" required:"true"`
	Address      string        `envconfig:"VENDORKYC_REDIS_ADDR"`
	Password     string        `envconfig:"VENDORKYC_REDIS_PASSWORD"`
	DB           int           `envconfig:"VENDORKYC_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VENDORKYC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VENDORKYC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VENDORKYC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VENDORKYC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VENDORKYC_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"VENDORKYC_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"VENDORKYC_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"VENDORKYC_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// AccessTokenTTL returns the configured access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"VENDORKYC_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"VENDORKYC_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"VENDORKYC_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"VENDORKYC_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"VENDORKYC_ARGON_KEY_LEN" default:"32"`
}

// AdminConfig seeds the reviewer account on API start-up.
type AdminConfig struct {
	Email    string `envconfig:"VENDORKYC_ADMIN_EMAIL"`
	Password string `envconfig:"VENDORKYC_ADMIN_PASSWORD"`
	Name     string `envconfig:"VENDORKYC_ADMIN_NAME" default:"Administrator"`
}

// Enabled reports whether bootstrap credentials were provided.
func (a AdminConfig) Enabled() bool {
	return strings.TrimSpace(a.Email) != "" && a.Password != ""
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"VENDORKYC_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"VENDORKYC_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"VENDORKYC_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"VENDORKYC_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"VENDORKYC_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"VENDORKYC_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"VENDORKYC_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"VENDORKYC_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"VENDORKYC_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"VENDORKYC_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"VENDORKYC_GOOGLE_APPLICATION_CREDENTIALS"`
}

type StorageConfig struct {
	Backend     string `envconfig:"VENDORKYC_STORAGE_BACKEND" default:"local"`
	BucketName  string `envconfig:"VENDORKYC_GCS_BUCKET_NAME"`
	LocalDir    string `envconfig:"VENDORKYC_STORAGE_LOCAL_DIR" default:"uploads"`
	MaxUploadMB int    `envconfig:"VENDORKYC_MAX_UPLOAD_MB" default:"5"`
}

// MaxUploadBytes returns the upload ceiling in bytes.
func (s StorageConfig) MaxUploadBytes() int64 {
	if s.MaxUploadMB <= 0 {
		return 5 << 20
	}
	return int64(s.MaxUploadMB) << 20
}

func (s StorageConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(s.Backend)) {
	case StorageBackendLocal:
		if strings.TrimSpace(s.LocalDir) == "" {
			return fmt.Errorf("%s is required for the local storage backend", EnvStorageLocalDir)
		}
	case StorageBackendGCS:
		if strings.TrimSpace(s.BucketName) == "" {
			return fmt.Errorf("%s is required for the gcs storage backend", EnvGCSBucket)
		}
	default:
		return fmt.Errorf("unsupported storage backend %q", s.Backend)
	}
	return nil
}

type PubSubConfig struct {
	VendorEventsTopic string `envconfig:"VENDORKYC_PUBSUB_VENDOR_EVENTS_TOPIC" default:"vendor-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"VENDORKYC_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"VENDORKYC_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"VENDORKYC_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CronConfig struct {
	Interval            time.Duration `envconfig:"VENDORKYC_CRON_INTERVAL" default:"1h"`
	OutboxRetentionDays int           `envconfig:"VENDORKYC_CRON_OUTBOX_RETENTION_DAYS" default:"30"`
	ReviewSLAHours      int           `envconfig:"VENDORKYC_CRON_REVIEW_SLA_HOURS" default:"72"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "file:vendorkyc.db?cache=shared"
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
