package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/authgate/pkg/auth"
	"github.com/platinummonkey/authgate/pkg/observability"
	"github.com/platinummonkey/authgate/pkg/storage"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "AUTHGATE_"

// ConfigFileEnv names the optional YAML file loaded before the environment
const ConfigFileEnv = EnvPrefix + "CONFIG_FILE"

// EnvironmentDevelopment relaxes cookie and signing key requirements
const EnvironmentDevelopment = "development"

// MinSigningKeyBytes is the shortest HS256 key accepted outside development
const MinSigningKeyBytes = 32

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Auth          AuthConfig
	Storage       storage.Config
	CORS          CORSConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`

	// Health/metrics server (separate port for k8s probes)
	HealthPort string `yaml:"health_port"`
}

// AuthConfig holds the session and password settings. Constructors
// receive it explicitly; nothing reads the environment per request.
type AuthConfig struct {
	SigningKey  string        `yaml:"signing_key"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
	Environment string        `yaml:"environment"`
	BcryptCost  int           `yaml:"bcrypt_cost"`
	CookieName  string        `yaml:"cookie_name"`
}

// IsDevelopment reports whether the service runs in development mode
func (a AuthConfig) IsDevelopment() bool {
	return a.Environment == EnvironmentDevelopment
}

// SecureCookies reports whether session cookies carry the Secure flag
func (a AuthConfig) SecureCookies() bool {
	return !a.IsDevelopment()
}

// CORSConfig lists browser origins allowed to call the API with credentials
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel observability.LogLevel `yaml:"-"`

	// Metrics
	MetricsEnabled bool `yaml:"metrics_enabled"`
	// DBStatsSchedule is the cron spec for sampling connection pool stats
	DBStatsSchedule string `yaml:"db_stats_schedule"`

	// OpenTelemetry
	OTelEnabled        bool   `yaml:"otel_enabled"`
	OTelEndpoint       string `yaml:"otel_endpoint"`
	OTelServiceName    string `yaml:"otel_service_name"`
	OTelServiceVersion string `yaml:"otel_service_version"`
	OTelInsecure       bool   `yaml:"otel_insecure"` // Use insecure gRPC connection
}

// fileConfig is the YAML layout. Storage and log level get their own
// shapes so that storage.Config stays free of file-format concerns.
type fileConfig struct {
	Server        ServerConfig      `yaml:"server"`
	Auth          AuthConfig        `yaml:"auth"`
	Storage       fileStorage       `yaml:"storage"`
	CORS          CORSConfig        `yaml:"cors"`
	Observability fileObservability `yaml:"observability"`
}

type fileObservability struct {
	ObservabilityConfig `yaml:",inline"`
	LogLevel            string `yaml:"log_level"`
}

// fileStorage uses pointers where false is a meaningful override
type fileStorage struct {
	Type             string        `yaml:"type"`
	PostgresURL      string        `yaml:"postgres_url"`
	PostgresMaxConns int           `yaml:"postgres_max_conns"`
	PostgresMinConns int           `yaml:"postgres_min_conns"`
	PostgresTimeout  time.Duration `yaml:"postgres_timeout"`
	SQLitePath       string        `yaml:"sqlite_path"`
	AutoMigrate      *bool         `yaml:"auto_migrate"`
	RedisURL         string        `yaml:"redis_url"`
	RedisPassword    string        `yaml:"redis_password"`
	RedisDB          int           `yaml:"redis_db"`
	CacheEnabled     *bool         `yaml:"cache_enabled"`
	CacheTTL         time.Duration `yaml:"cache_ttl"`
	L1CacheSize      int           `yaml:"l1_cache_size"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxBodyBytes:    1 << 20,
			HealthPort:      "9090",
		},
		Auth: AuthConfig{
			TokenTTL:    auth.DefaultTokenTTL,
			Environment: "production",
			BcryptCost:  auth.DefaultBcryptCost,
			CookieName:  auth.SessionCookieName,
		},
		Storage: storage.DefaultConfig(),
		Observability: ObservabilityConfig{
			LogLevel:           observability.InfoLevel,
			MetricsEnabled:     true,
			DBStatsSchedule:    "@every 15s",
			OTelEndpoint:       "localhost:4317",
			OTelServiceName:    "authgate",
			OTelServiceVersion: "1.0.0",
			OTelInsecure:       true,
		},
	}
}

// LoadConfig loads configuration from the file named by AUTHGATE_CONFIG_FILE
// (if any) and then from environment variables, which take precedence.
func LoadConfig() (*Config, error) {
	return Load(os.Getenv(ConfigFileEnv))
}

// Load builds configuration from defaults, the YAML file at path (skipped
// when path is empty) and the environment, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	fc := fileConfig{
		Server:        c.Server,
		Auth:          c.Auth,
		CORS:          c.CORS,
		Observability: fileObservability{ObservabilityConfig: c.Observability},
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	storageCfg := c.Storage
	fs := fc.Storage
	setString(&storageCfg.Type, fs.Type)
	setString(&storageCfg.PostgresURL, fs.PostgresURL)
	setInt(&storageCfg.PostgresMaxConns, fs.PostgresMaxConns)
	setInt(&storageCfg.PostgresMinConns, fs.PostgresMinConns)
	if fs.PostgresTimeout > 0 {
		storageCfg.PostgresTimeout = fs.PostgresTimeout
	}
	setString(&storageCfg.SQLitePath, fs.SQLitePath)
	if fs.AutoMigrate != nil {
		storageCfg.AutoMigrate = *fs.AutoMigrate
	}
	setString(&storageCfg.RedisURL, fs.RedisURL)
	setString(&storageCfg.RedisPassword, fs.RedisPassword)
	setInt(&storageCfg.RedisDB, fs.RedisDB)
	if fs.CacheEnabled != nil {
		storageCfg.CacheEnabled = *fs.CacheEnabled
	}
	if fs.CacheTTL > 0 {
		storageCfg.CacheTTL = fs.CacheTTL
	}
	setInt(&storageCfg.L1CacheSize, fs.L1CacheSize)

	c.Server = fc.Server
	c.Auth = fc.Auth
	c.CORS = fc.CORS
	c.Storage = storageCfg
	c.Observability = fc.Observability.ObservabilityConfig
	if fc.Observability.LogLevel != "" {
		c.Observability.LogLevel = observability.ParseLogLevel(fc.Observability.LogLevel)
	}
	return nil
}

// applyEnv overrides fields whose environment variable is set
func (c *Config) applyEnv() {
	s := &c.Server
	s.Host = getEnv("HOST", s.Host)
	s.Port = getEnv("PORT", s.Port)
	s.HealthPort = getEnv("HEALTH_PORT", s.HealthPort)
	s.ReadTimeout = getEnvDuration("READ_TIMEOUT", s.ReadTimeout)
	s.WriteTimeout = getEnvDuration("WRITE_TIMEOUT", s.WriteTimeout)
	s.IdleTimeout = getEnvDuration("IDLE_TIMEOUT", s.IdleTimeout)
	s.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", s.ShutdownTimeout)
	s.MaxBodyBytes = getEnvInt64("MAX_BODY_BYTES", s.MaxBodyBytes)

	a := &c.Auth
	a.SigningKey = getEnv("JWT_SECRET", a.SigningKey)
	a.TokenTTL = getEnvDuration("TOKEN_TTL", a.TokenTTL)
	a.Environment = getEnv("ENV", a.Environment)
	a.BcryptCost = getEnvInt("BCRYPT_COST", a.BcryptCost)
	a.CookieName = getEnv("COOKIE_NAME", a.CookieName)

	st := &c.Storage
	st.Type = getEnv("STORAGE_TYPE", st.Type)
	st.PostgresURL = getEnv("POSTGRES_URL", st.PostgresURL)
	st.PostgresMaxConns = getEnvInt("POSTGRES_MAX_CONNS", st.PostgresMaxConns)
	st.PostgresMinConns = getEnvInt("POSTGRES_MIN_CONNS", st.PostgresMinConns)
	st.PostgresTimeout = getEnvDuration("POSTGRES_TIMEOUT", st.PostgresTimeout)
	st.SQLitePath = getEnv("SQLITE_PATH", st.SQLitePath)
	st.AutoMigrate = getEnvBool("AUTO_MIGRATE", st.AutoMigrate)
	st.RedisURL = getEnv("REDIS_URL", st.RedisURL)
	st.RedisPassword = getEnv("REDIS_PASSWORD", st.RedisPassword)
	st.RedisDB = getEnvInt("REDIS_DB", st.RedisDB)
	st.RedisMaxRetries = getEnvInt("REDIS_MAX_RETRIES", st.RedisMaxRetries)
	st.RedisPoolSize = getEnvInt("REDIS_POOL_SIZE", st.RedisPoolSize)
	st.CacheEnabled = getEnvBool("CACHE_ENABLED", st.CacheEnabled)
	st.CacheTTL = getEnvDuration("CACHE_TTL", st.CacheTTL)
	st.L1CacheSize = getEnvInt("L1_CACHE_SIZE", st.L1CacheSize)

	if origins := getEnv("CORS_ORIGINS", ""); origins != "" {
		c.CORS.AllowedOrigins = splitList(origins)
	}

	o := &c.Observability
	if level := getEnv("LOG_LEVEL", ""); level != "" {
		o.LogLevel = observability.ParseLogLevel(level)
	}
	o.MetricsEnabled = getEnvBool("METRICS_ENABLED", o.MetricsEnabled)
	o.DBStatsSchedule = getEnv("DB_STATS_SCHEDULE", o.DBStatsSchedule)
	o.OTelEnabled = getEnvBool("OTEL_ENABLED", o.OTelEnabled)
	o.OTelEndpoint = getEnv("OTEL_ENDPOINT", o.OTelEndpoint)
	o.OTelServiceName = getEnv("OTEL_SERVICE_NAME", o.OTelServiceName)
	o.OTelServiceVersion = getEnv("OTEL_SERVICE_VERSION", o.OTelServiceVersion)
	o.OTelInsecure = getEnvBool("OTEL_INSECURE", o.OTelInsecure)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return errors.New("server port is required")
	}
	if c.Server.HealthPort == "" {
		return errors.New("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return errors.New("server port and health port must be different")
	}

	// Validate auth config
	if c.Auth.SigningKey == "" {
		return fmt.Errorf("signing key is required (set %sJWT_SECRET)", EnvPrefix)
	}
	if !c.Auth.IsDevelopment() && len(c.Auth.SigningKey) < MinSigningKeyBytes {
		return fmt.Errorf("signing key must be at least %d bytes outside development", MinSigningKeyBytes)
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("token TTL must be positive")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("bcrypt cost must be between 4 and 31, got %d", c.Auth.BcryptCost)
	}
	if c.Auth.CookieName == "" {
		return errors.New("cookie name is required")
	}

	// Validate storage config based on type
	switch c.Storage.Type {
	case storage.TypeMemory:
	case storage.TypePostgres:
		if c.Storage.PostgresURL == "" {
			return errors.New("postgres URL is required for postgres storage")
		}
	case storage.TypeSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("sqlite path is required for sqlite storage")
		}
	default:
		return fmt.Errorf("invalid storage type: %s (must be memory, postgres, or sqlite)", c.Storage.Type)
	}

	// Validate OpenTelemetry config
	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return errors.New("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return errors.New("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnv returns AUTHGATE_<key> or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvInt64 returns an int64 environment variable or a default
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
