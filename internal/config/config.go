package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/jwalitptl/health-api/internal/repository/filestore"
	"github.com/jwalitptl/health-api/pkg/analyzer"
	"github.com/jwalitptl/health-api/pkg/logger"
)

const envPrefix = "HEALTH"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Data      DataConfig      `mapstructure:"data"`
	Reports   ReportsConfig   `mapstructure:"reports"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Audit     AuditConfig     `mapstructure:"audit"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Worker    WorkerConfig    `mapstructure:"worker"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	TimeoutSeconds int           `mapstructure:"timeout_seconds"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// DataConfig locates the health record files. LabRoots are searched for lab
// reports in addition to Dir.
type DataConfig struct {
	Dir           string   `mapstructure:"dir"`
	LabRoots      []string `mapstructure:"lab_roots"`
	LabCategories []string `mapstructure:"lab_categories"`
}

type ReportsConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

type AnalysisConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	Model           string        `mapstructure:"model"`
	MaxTokens       int           `mapstructure:"max_tokens"`
	Timeout         time.Duration `mapstructure:"timeout"`
	BreakerFailures uint32        `mapstructure:"breaker_failures"`
}

// AuthConfig turns on bearer-token authentication for the API when Enabled.
type AuthConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	PasswordHash string `mapstructure:"password_hash"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	URL           string        `mapstructure:"url"`
	ChannelPrefix string        `mapstructure:"channel_prefix"`
	MaxRetries    int           `mapstructure:"max_retries"`
	RetryBackoff  time.Duration `mapstructure:"retry_backoff"`
	PoolSize      int           `mapstructure:"pool_size"`
	MinIdleConns  int           `mapstructure:"min_idle_conns"`
}

type SMTPConfig struct {
	Host     string   `mapstructure:"host"`
	Port     int      `mapstructure:"port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
}

type AuditConfig struct {
	RetentionDays   int           `mapstructure:"retention_days"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// WorkerConfig is read by the background worker binary only.
type WorkerConfig struct {
	Port int `mapstructure:"port"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// secrets are read straight from the environment under their conventional
// names and override anything in the config file.
type secrets struct {
	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`
	JWTSecret       string `envconfig:"HEALTH_JWT_SECRET"`
	PasswordHash    string `envconfig:"HEALTH_AUTH_PASSWORD_HASH"`
	DatabaseDSN     string `envconfig:"HEALTH_DATABASE_DSN"`
	SMTPPassword    string `envconfig:"HEALTH_SMTP_PASSWORD"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.timeout_seconds", 30)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 150*time.Second)
	v.SetDefault("server.max_body_bytes", 64<<10)

	v.SetDefault("data.dir", "./data")
	v.SetDefault("data.lab_roots", []string{})
	v.SetDefault("data.lab_categories", filestore.DefaultLabCategories)

	v.SetDefault("reports.output_dir", "./output")

	v.SetDefault("analysis.base_url", analyzer.DefaultBaseURL)
	v.SetDefault("analysis.model", analyzer.DefaultModel)
	v.SetDefault("analysis.max_tokens", 4096)
	v.SetDefault("analysis.timeout", 90*time.Second)
	v.SetDefault("analysis.breaker_failures", 5)

	v.SetDefault("auth.enabled", false)
	v.SetDefault("jwt.issuer", "health-api")
	v.SetDefault("jwt.expiry_hours", 12)

	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)

	v.SetDefault("redis.channel_prefix", "health:")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", 100*time.Millisecond)
	v.SetDefault("redis.pool_size", 5)

	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.to", []string{})

	v.SetDefault("audit.retention_days", 365)
	v.SetDefault("audit.cleanup_interval", 24*time.Hour)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 5)
	v.SetDefault("rate_limit.burst", 20)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "health_api")

	v.SetDefault("worker.port", 8081)
}

// LoadConfig reads config.yaml from path (or ./ and ./config when path is
// empty), then HEALTH_* variables, then the secret variables. A missing
// config file is not an error.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(path == "" && errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var s secrets
	if err := envconfig.Process("", &s); err != nil {
		return nil, fmt.Errorf("failed to read secrets from environment: %w", err)
	}
	config.applySecrets(s)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applySecrets(s secrets) {
	if s.AnthropicAPIKey != "" {
		c.Analysis.APIKey = s.AnthropicAPIKey
	}
	if s.JWTSecret != "" {
		c.JWT.Secret = s.JWTSecret
	}
	if s.PasswordHash != "" {
		c.Auth.PasswordHash = s.PasswordHash
	}
	if s.DatabaseDSN != "" {
		c.Database.DSN = s.DatabaseDSN
	}
	if s.SMTPPassword != "" {
		c.SMTP.Password = s.SMTPPassword
	}
}

// Validate rejects settings the server cannot start with. A missing
// analysis API key is allowed; analysis requests then fail individually.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.TimeoutSeconds <= 0 {
		errs = append(errs, errors.New("server.timeout_seconds must be positive"))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("server.max_body_bytes must be positive"))
	}
	if strings.TrimSpace(c.Data.Dir) == "" {
		errs = append(errs, errors.New("data.dir is required"))
	}
	if strings.TrimSpace(c.Reports.OutputDir) == "" {
		errs = append(errs, errors.New("reports.output_dir is required"))
	}
	if c.Analysis.Timeout <= 0 {
		errs = append(errs, errors.New("analysis.timeout must be positive"))
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Auth.Enabled {
		if c.Auth.PasswordHash == "" {
			errs = append(errs, errors.New("auth is enabled but HEALTH_AUTH_PASSWORD_HASH is not set"))
		}
		if c.JWT.Secret == "" {
			errs = append(errs, errors.New("auth is enabled but HEALTH_JWT_SECRET is not set"))
		}
		if c.JWT.ExpiryHours <= 0 {
			errs = append(errs, errors.New("jwt.expiry_hours must be positive"))
		}
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		errs = append(errs, errors.New("rate_limit.requests_per_second and rate_limit.burst must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// ServerTimeout is the per-request deadline for ordinary routes.
func (c *Config) ServerTimeout() time.Duration {
	return time.Duration(c.Server.TimeoutSeconds) * time.Second
}

func (c *Config) JWTExpiry() time.Duration {
	return time.Duration(c.JWT.ExpiryHours) * time.Hour
}
