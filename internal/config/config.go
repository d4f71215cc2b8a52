package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// 持久化驱动。
const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config aggregates application settings sourced from environment variables.
type Config struct {
	API         APIConfig         `mapstructure:"api"`
	Log         LogConfig         `mapstructure:"log"`
	Document    DocumentConfig    `mapstructure:"document"`
	Editor      EditorConfig      `mapstructure:"editor"`
	Persistence PersistenceConfig `mapstructure:"persistence"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	MinIO       MinIOConfig       `mapstructure:"minio"`
	Clamd       ClamdConfig       `mapstructure:"clamd"`
	Queue       QueueConfig       `mapstructure:"queue"`
	Worker      WorkerConfig      `mapstructure:"worker"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig 控制 slog 的级别与输出格式（json / text）。
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DocumentConfig 指定文档在存储中的固定键。
type DocumentConfig struct {
	Key string `mapstructure:"key"`
}

// EditorConfig 控制编辑会话的自动保存与空闲回收。
type EditorConfig struct {
	DebounceMS int `mapstructure:"debounce_ms"`
	// IdleTimeoutMS 为 0 时不回收空闲会话。
	IdleTimeoutMS int `mapstructure:"idle_timeout_ms"`
}

// Debounce returns the auto-save delay.
func (e EditorConfig) Debounce() time.Duration {
	return time.Duration(e.DebounceMS) * time.Millisecond
}

// IdleTimeout returns how long an untouched session stays open.
func (e EditorConfig) IdleTimeout() time.Duration {
	return time.Duration(e.IdleTimeoutMS) * time.Millisecond
}

// PersistenceConfig 选择文档的存储后端。
type PersistenceConfig struct {
	Driver      string `mapstructure:"driver"`
	FilePath    string `mapstructure:"file_path"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	RedisPrefix string `mapstructure:"redis_prefix"`
}

// DatabaseConfig contains connection options for PostgreSQL.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig 包含 Redis 连接配置。
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

// Addr returns host:port.
func (r RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

// MinIOConfig contains connection options for MinIO/S3-compatible storage.
type MinIOConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	Endpoint         string `mapstructure:"endpoint"`
	PublicEndpoint   string `mapstructure:"public_endpoint"`
	AccessKeyID      string `mapstructure:"access_key_id"`
	SecretAccessKey  string `mapstructure:"secret_access_key"`
	UseSSL           bool   `mapstructure:"use_ssl"`
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	BucketLookup     string `mapstructure:"bucket_lookup"`
	AutoCreateBucket bool   `mapstructure:"auto_create_bucket"`
}

// ClamdConfig 指定病毒扫描服务地址，为空时跳过扫描。
type ClamdConfig struct {
	Addr string `mapstructure:"addr"`
}

// QueueConfig 控制是否启用 asynq 后台任务。
type QueueConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// WorkerConfig 控制 worker 进程。
type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	// ChromeBin 为空时由 rod 自动查找 Chromium。
	ChromeBin string `mapstructure:"chrome_bin"`
}

// DSN builds a lib/pq compatible connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

// NeedsRedis reports whether any enabled component talks to redis.
func (c Config) NeedsRedis() bool {
	return c.Persistence.Driver == DriverRedis || c.Queue.Enabled
}

// Load reads configuration solely from environment variables (with optional defaults).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	// 显式设置为空的环境变量覆盖默认值，交给 validate 判断。
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Persistence.Driver = strings.ToLower(strings.TrimSpace(cfg.Persistence.Driver))

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.allowed_origins", []string{})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("document.key", "resume-data")
	v.SetDefault("editor.debounce_ms", 500)
	v.SetDefault("editor.idle_timeout_ms", 30*60*1000)
	v.SetDefault("persistence.driver", DriverFile)
	v.SetDefault("persistence.file_path", "./data")
	v.SetDefault("persistence.sqlite_path", "./data/resume.db")
	v.SetDefault("persistence.redis_prefix", "resume:")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "resume")
	v.SetDefault("database.user", "resume")
	v.SetDefault("database.password", "resume")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "resume_notify")
	v.SetDefault("minio.enabled", false)
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.public_endpoint", "http://localhost:9000")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", "resumes")
	v.SetDefault("minio.bucket_lookup", "auto")
	v.SetDefault("minio.auto_create_bucket", true)
	v.SetDefault("clamd.addr", "")
	v.SetDefault("queue.enabled", false)
	v.SetDefault("worker.concurrency", 4)
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"api.port":                 "API_PORT",
		"api.allowed_origins":      "API_ALLOWED_ORIGINS",
		"log.level":                "LOG_LEVEL",
		"log.format":               "LOG_FORMAT",
		"document.key":             "DOCUMENT_KEY",
		"editor.debounce_ms":       "EDITOR_DEBOUNCE_MS",
		"editor.idle_timeout_ms":   "EDITOR_IDLE_TIMEOUT_MS",
		"persistence.driver":       "PERSISTENCE_DRIVER",
		"persistence.file_path":    "PERSISTENCE_FILE_PATH",
		"persistence.sqlite_path":  "PERSISTENCE_SQLITE_PATH",
		"persistence.redis_prefix": "PERSISTENCE_REDIS_PREFIX",
		"database.host":            "DATABASE_HOST",
		"database.port":            "DATABASE_PORT",
		"database.name":            "POSTGRES_DB",
		"database.user":            "POSTGRES_USER",
		"database.password":        "POSTGRES_PASSWORD",
		"database.sslmode":         "DATABASE_SSLMODE",
		"redis.host":               "REDIS_HOST",
		"redis.port":               "REDIS_PORT",
		"redis.password":           "REDIS_PASSWORD",
		"redis.db":                 "REDIS_DB",
		"redis.channel":            "REDIS_CHANNEL",
		"minio.enabled":            "MINIO_ENABLED",
		"minio.endpoint":           "MINIO_ENDPOINT",
		"minio.public_endpoint":    "MINIO_PUBLIC_ENDPOINT",
		"minio.access_key_id":      "MINIO_ACCESS_KEY_ID",
		"minio.secret_access_key":  "MINIO_SECRET_ACCESS_KEY",
		"minio.use_ssl":            "MINIO_USE_SSL",
		"minio.bucket":             "MINIO_BUCKET",
		"minio.region":             "MINIO_REGION",
		"minio.bucket_lookup":      "MINIO_BUCKET_LOOKUP",
		"minio.auto_create_bucket": "MINIO_AUTO_CREATE_BUCKET",
		"clamd.addr":               "CLAMD_ADDR",
		"queue.enabled":            "QUEUE_ENABLED",
		"worker.concurrency":       "WORKER_CONCURRENCY",
		"worker.chrome_bin":        "CHROME_BIN",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

func validate(cfg Config) error {
	if cfg.API.Port <= 0 {
		return errors.New("api port must be positive")
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log format %q must be json or text", cfg.Log.Format)
	}
	if strings.TrimSpace(cfg.Document.Key) == "" {
		return errors.New("document key is required")
	}
	if cfg.Editor.DebounceMS < 0 {
		return errors.New("editor debounce must not be negative")
	}
	if cfg.Editor.IdleTimeoutMS < 0 {
		return errors.New("editor idle timeout must not be negative")
	}

	switch cfg.Persistence.Driver {
	case DriverMemory, DriverRedis:
	case DriverFile:
		if cfg.Persistence.FilePath == "" {
			return errors.New("persistence file path is required")
		}
	case DriverSQLite:
		if cfg.Persistence.SQLitePath == "" {
			return errors.New("persistence sqlite path is required")
		}
	case DriverPostgres:
		if err := validateDatabase(cfg.Database); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown persistence driver %q", cfg.Persistence.Driver)
	}

	if cfg.NeedsRedis() {
		if cfg.Redis.Host == "" {
			return errors.New("redis host is required")
		}
		if cfg.Redis.Port <= 0 {
			return errors.New("redis port must be positive")
		}
	}

	if cfg.MinIO.Enabled {
		if cfg.MinIO.Endpoint == "" {
			return errors.New("minio endpoint is required")
		}
		if cfg.MinIO.AccessKeyID == "" {
			return errors.New("minio access key id is required")
		}
		if cfg.MinIO.SecretAccessKey == "" {
			return errors.New("minio secret access key is required")
		}
		if cfg.MinIO.Bucket == "" {
			return errors.New("minio bucket is required")
		}
	}

	if cfg.Queue.Enabled && !cfg.MinIO.Enabled {
		return errors.New("queue requires minio to store job results")
	}
	if cfg.Worker.Concurrency <= 0 {
		return errors.New("worker concurrency must be positive")
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	if d.Host == "" {
		return errors.New("database host is required")
	}
	if d.Port <= 0 {
		return errors.New("database port must be positive")
	}
	if d.Name == "" {
		return errors.New("database name is required")
	}
	if d.User == "" {
		return errors.New("database user is required")
	}
	if d.Password == "" {
		return errors.New("database password is required")
	}
	if d.SSLMode == "" {
		return errors.New("database sslmode is required")
	}
	return nil
}
