package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	StorageBackendDatabase = "database"
	StorageBackendObject   = "object"
)

type HTTPConfig struct {
	Host          string
	Port          int
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	PublicBaseURL string
}

// PostgresConfig holds the pool settings. An empty DSN lets pgx fall back to
// the libpq environment (PGHOST, PGPORT, PGUSER, PGPASSWORD, PGDATABASE).
type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
	SeedCategories  bool
}

// RedisConfig is optional; an empty Addr switches the public cache to memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	Backend   string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
}

type UploadConfig struct {
	MaxFiles     int
	MaxFileBytes int64
}

type CacheConfig struct {
	TTL time.Duration
}

type SiteConfig struct {
	WhatsAppNumber string
}

// LoggingConfig.Level overrides the environment-derived level when set.
type LoggingConfig struct {
	Level string
}

type SecurityConfig struct {
	JWTSecret string
	JWTTTL    time.Duration
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Storage          StorageConfig
	Upload           UploadConfig
	Cache            CacheConfig
	Site             SiteConfig
	Security         SecurityConfig
	Logging          LoggingConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("MK3")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*AppConfig, error) {
	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *AppConfig) Validate() error {
	switch c.Storage.Backend {
	case StorageBackendDatabase:
	case StorageBackendObject:
		if c.Storage.Endpoint == "" || c.Storage.Bucket == "" {
			return errors.New("storage.endpoint and storage.bucket are required for the object backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Upload.MaxFiles <= 0 {
		return errors.New("upload.maxfiles must be positive")
	}
	if c.Upload.MaxFileBytes <= 0 {
		return errors.New("upload.maxfilebytes must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 3000)
	v.SetDefault("http.readtimeout", "30s")
	v.SetDefault("http.writetimeout", "30s")
	v.SetDefault("http.idletimeout", "60s")
	v.SetDefault("http.publicbaseurl", "http://localhost:3000")

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.maxopen", 10)
	v.SetDefault("postgres.maxidle", 2)
	v.SetDefault("postgres.connmaxlifetime", "30m")
	v.SetDefault("postgres.seedcategories", true)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.backend", StorageBackendDatabase)
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.accesskey", "")
	v.SetDefault("storage.secretkey", "")
	v.SetDefault("storage.bucket", "mk3-work-images")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("upload.maxfiles", 10)
	v.SetDefault("upload.maxfilebytes", 5*1024*1024)

	v.SetDefault("cache.ttl", "1h")

	v.SetDefault("site.whatsappnumber", "")

	v.SetDefault("security.jwtsecret", "")
	v.SetDefault("security.jwtttl", "720h") // 30 days

	v.SetDefault("logging.level", "")

	v.SetDefault("allowcorsorigins", "http://localhost:3001")
}
