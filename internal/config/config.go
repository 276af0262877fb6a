package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env       string          `mapstructure:"env"`
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Events    EventsConfig    `mapstructure:"events"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Seed      SeedConfig      `mapstructure:"seed"`
	Intake    IntakeConfig    `mapstructure:"intake"`
	API       APIConfig       `mapstructure:"api"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Port         string   `mapstructure:"port"`
	ReadTimeout  int      `mapstructure:"read_timeout_seconds"`
	WriteTimeout int      `mapstructure:"write_timeout_seconds"`
	IdleTimeout  int      `mapstructure:"idle_timeout_seconds"`
	CORSOrigins  []string `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            string `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time_seconds"`
}

// StorageConfig locates the staging area and the final per-applicant folders.
type StorageConfig struct {
	UploadDir         string   `mapstructure:"upload_dir"`
	MaxFileSizeMB     int64    `mapstructure:"max_file_size_mb"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
}

func (s StorageConfig) TempDir() string {
	return strings.TrimRight(s.UploadDir, "/") + "/temp"
}

func (s StorageConfig) MaxFileSize() int64 {
	return s.MaxFileSizeMB * 1024 * 1024
}

type CacheConfig struct {
	Driver     string      `mapstructure:"driver"`
	TTLSeconds int         `mapstructure:"ttl_seconds"`
	Redis      RedisConfig `mapstructure:"redis"`
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type EventsConfig struct {
	Driver string      `mapstructure:"driver"`
	NATS   NATSConfig  `mapstructure:"nats"`
	Kafka  KafkaConfig `mapstructure:"kafka"`
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type TelemetryConfig struct {
	Exporter        string `mapstructure:"exporter"`
	Endpoint        string `mapstructure:"endpoint"`
	IntervalSeconds int    `mapstructure:"interval_seconds"`
}

type SeedConfig struct {
	CatalogFile string `mapstructure:"catalog_file"`
}

// IntakeConfig drives the client side pipeline.
type IntakeConfig struct {
	Compensate bool `mapstructure:"compensate"`
}

type APIConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// IsDevelopment reports whether error responses may expose internal details.
func (c *Config) IsDevelopment() bool {
	switch c.Env {
	case "local", "dev", "development", "test":
		return true
	}
	return false
}

func Load() (*Config, error) {
	env := os.Getenv("ENV")
	if env == "" {
		env = "local"
	}

	v := viper.New()
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	v.SetConfigType("yaml")
	v.AddConfigPath("/configs")   // Kubernetes mount
	v.AddConfigPath("./configs")  // repo root
	v.AddConfigPath("../configs") // cmd/
	v.AddConfigPath("../../configs")

	setDefaults(v)
	v.Set("env", env)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file is optional - continue with defaults and ENV variables
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("database.host", "DB_HOST")
	_ = v.BindEnv("database.port", "DB_PORT")
	_ = v.BindEnv("database.user", "DB_USER")
	_ = v.BindEnv("database.password", "DB_PASSWORD")
	_ = v.BindEnv("database.name", "DB_NAME")
	_ = v.BindEnv("cache.redis.address", "REDIS_ADDR")
	_ = v.BindEnv("events.nats.url", "NATS_URL")
	_ = v.BindEnv("telemetry.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
	_ = v.BindEnv("api.base_url", "ADMISSIONS_API_URL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 30)
	v.SetDefault("server.idle_timeout_seconds", 60)
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "admissions")
	v.SetDefault("database.ssl_mode", "disable")

	v.SetDefault("storage.upload_dir", "public/uploads")
	v.SetDefault("storage.max_file_size_mb", 5)
	v.SetDefault("storage.allowed_extensions", []string{".pdf"})

	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.ttl_seconds", 300)
	v.SetDefault("cache.redis.address", "localhost:6379")

	v.SetDefault("events.driver", "none")
	v.SetDefault("events.nats.url", "nats://localhost:4222")
	v.SetDefault("events.nats.subject", "admissions.events")
	v.SetDefault("events.kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("events.kafka.topic", "admissions.events")

	v.SetDefault("telemetry.exporter", "none")
	v.SetDefault("telemetry.interval_seconds", 10)

	v.SetDefault("seed.catalog_file", "configs/catalog.yaml")

	v.SetDefault("intake.compensate", false)

	v.SetDefault("api.base_url", "http://localhost:3000/api")
	v.SetDefault("api.timeout_seconds", 30)
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port == "" {
		problems = append(problems, "server.port is required")
	}
	if c.Storage.UploadDir == "" {
		problems = append(problems, "storage.upload_dir is required")
	}
	if c.Storage.MaxFileSizeMB <= 0 {
		problems = append(problems, "storage.max_file_size_mb must be positive")
	}
	if len(c.Storage.AllowedExtensions) == 0 {
		problems = append(problems, "storage.allowed_extensions must not be empty")
	}
	switch c.Cache.Driver {
	case "memory", "redis", "none":
	default:
		problems = append(problems, fmt.Sprintf("cache.driver %q is not one of memory, redis, none", c.Cache.Driver))
	}
	switch c.Events.Driver {
	case "none", "nats", "kafka":
	default:
		problems = append(problems, fmt.Sprintf("events.driver %q is not one of none, nats, kafka", c.Events.Driver))
	}
	switch c.Telemetry.Exporter {
	case "none", "otlp", "prometheus":
	default:
		problems = append(problems, fmt.Sprintf("telemetry.exporter %q is not one of none, otlp, prometheus", c.Telemetry.Exporter))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
