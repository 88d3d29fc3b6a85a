package config

import (
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

// DefaultSessionSecret is only acceptable outside production.
const DefaultSessionSecret = "change-me-session-secret"

type Config struct {
	Server    ServerConfig
	API       APIConfig
	Storage   StorageConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	S3        S3Config
	Session   SessionConfig
	Scheduler SchedulerConfig
	Tracing   TracingConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

// APIConfig points at the remote storefront API
type APIConfig struct {
	BaseURL string // e.g. http://localhost:5001/api
	Timeout time.Duration
}

// StorageConfig selects the local storage backend holding persisted carts
type StorageConfig struct {
	Driver string // memory, file, redis, postgres, mysql, s3
	Dir    string // file driver only
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type S3Config struct {
	Region          string
	Bucket          string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
}

type SessionConfig struct {
	Secret     string
	CookieName string
	TTL        time.Duration
}

type SchedulerConfig struct {
	RefreshSchedule string        // cron spec for site content refresh
	SweepSchedule   string        // cron spec for idle session sweeping
	SessionIdle     time.Duration // sessions unused this long are evicted
	ContentMaxAge   time.Duration // how long cached home page content is served
}

// TracingConfig selects where OpenTelemetry spans go
type TracingConfig struct {
	Exporter string // none, stdout, otlp
	Endpoint string // otlp collector host:port
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		API: APIConfig{
			BaseURL: strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:5001/api"), "/"),
			Timeout: parseDuration(getEnv("API_TIMEOUT", "15s"), 15*time.Second),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(getEnv("STORAGE_DRIVER", "file")),
			Dir:    getEnv("STORAGE_DIR", "./data/storage"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "1234"),
			DBName:   getEnv("DB_NAME", "storefront"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "ap-northeast-2"),
			Bucket:          getEnv("AWS_S3_BUCKET", "storefront-local-storage"),
			Prefix:          getEnv("AWS_S3_PREFIX", "sessions"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		},
		Session: SessionConfig{
			Secret:     getEnv("SESSION_SECRET", DefaultSessionSecret),
			CookieName: getEnv("SESSION_COOKIE", "storefront_session"),
			TTL:        parseDuration(getEnv("SESSION_TTL", "720h"), 720*time.Hour),
		},
		Scheduler: SchedulerConfig{
			RefreshSchedule: getEnv("REFRESH_SCHEDULE", "@every 5m"),
			SweepSchedule:   getEnv("SWEEP_SCHEDULE", "@every 10m"),
			SessionIdle:     parseDuration(getEnv("SESSION_IDLE", "30m"), 30*time.Minute),
			ContentMaxAge:   parseDuration(getEnv("CONTENT_MAX_AGE", "10m"), 10*time.Minute),
		},
		Tracing: TracingConfig{
			Exporter: strings.ToLower(getEnv("OTEL_TRACES_EXPORTER", "none")),
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL must not be empty")
	}
	switch c.Storage.Driver {
	case "memory", "file", "redis", "postgres", "mysql", "s3":
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}
	switch c.Tracing.Exporter {
	case "none", "stdout", "otlp":
	default:
		return fmt.Errorf("unsupported OTEL_TRACES_EXPORTER %q", c.Tracing.Exporter)
	}
	if c.Session.Secret == "" {
		return fmt.Errorf("SESSION_SECRET must not be empty")
	}
	if c.Server.Environment == "production" && c.Session.Secret == DefaultSessionSecret {
		return fmt.Errorf("SESSION_SECRET must be set in production")
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// MySQLDSN formats the connection settings for the mysql driver
func (c *DatabaseConfig) MySQLDSN() string {
	dsn := mysql.NewConfig()
	dsn.User = c.User
	dsn.Passwd = c.Password
	dsn.Net = "tcp"
	dsn.Addr = net.JoinHostPort(c.Host, c.Port)
	dsn.DBName = c.DBName
	dsn.ParseTime = true
	dsn.Params = map[string]string{"charset": "utf8mb4"}
	return dsn.FormatDSN()
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer %s=%s, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}
