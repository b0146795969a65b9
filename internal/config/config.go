// Package config loads the service configuration from config.toml, an
// optional config.<env>.toml overlay and LYCEUM_* environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/lyceum/internal/credentials"
	"github.com/JaimeStill/lyceum/internal/providers"
	"github.com/JaimeStill/lyceum/internal/tenants"
	"github.com/JaimeStill/lyceum/internal/trainingdata"
	"github.com/JaimeStill/lyceum/pkg/auth"
	"github.com/JaimeStill/lyceum/pkg/cache"
	"github.com/JaimeStill/lyceum/pkg/database"
	"github.com/JaimeStill/lyceum/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"
	DotEnvFile           = ".env"

	EnvLyceumEnv             = "LYCEUM_ENV"
	EnvLyceumShutdownTimeout = "LYCEUM_SHUTDOWN_TIMEOUT"
	EnvLyceumVersion         = "LYCEUM_VERSION"
	EnvLyceumLogLevel        = "LYCEUM_LOG_LEVEL"
)

var databaseEnv = &database.Env{
	ApplicationName: "LYCEUM_DB_APPLICATION_NAME",
	Host:            "LYCEUM_DB_HOST",
	Port:            "LYCEUM_DB_PORT",
	Name:            "LYCEUM_DB_NAME",
	User:            "LYCEUM_DB_USER",
	Password:        "LYCEUM_DB_PASSWORD",
	SSLMode:         "LYCEUM_DB_SSL_MODE",
	MaxOpenConns:    "LYCEUM_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "LYCEUM_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "LYCEUM_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "LYCEUM_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "LYCEUM_STORAGE_CONTAINER_NAME",
	ConnectionString: "LYCEUM_STORAGE_CONNECTION_STRING",
	ServiceURL:       "LYCEUM_STORAGE_SERVICE_URL",
	MaxListSize:      "LYCEUM_STORAGE_MAX_LIST_SIZE",
	MaxRetries:       "LYCEUM_STORAGE_MAX_RETRIES",
}

var cacheEnv = &cache.Env{
	URL:         "LYCEUM_REDIS_URL",
	DialTimeout: "LYCEUM_REDIS_DIAL_TIMEOUT",
	KeyPrefix:   "LYCEUM_REDIS_KEY_PREFIX",
}

var authEnv = &auth.Env{
	Issuer:   "LYCEUM_AUTH_ISSUER",
	Audience: "LYCEUM_AUTH_AUDIENCE",
	JWKSURL:  "LYCEUM_AUTH_JWKS_URL",
	Secret:   "LYCEUM_AUTH_SECRET",
	Leeway:   "LYCEUM_AUTH_LEEWAY",
}

var tenantsEnv = &tenants.Env{
	MaxTextModels:  "LYCEUM_TENANT_MAX_TEXT_MODELS",
	MaxImageModels: "LYCEUM_TENANT_MAX_IMAGE_MODELS",
}

var credentialsEnv = &credentials.Env{
	ExhaustionTTL: "LYCEUM_CREDENTIALS_EXHAUSTION_TTL",
}

var trainingDataEnv = &trainingdata.Env{
	MaxImageSize:     "LYCEUM_TRAINING_MAX_IMAGE_SIZE",
	FetchConcurrency: "LYCEUM_TRAINING_FETCH_CONCURRENCY",
}

var providersEnv = &providers.Env{
	NumbersURL:        "LYCEUM_NUMBERS_URL",
	NumbersUsername:   "LYCEUM_NUMBERS_USERNAME",
	NumbersPassword:   "LYCEUM_NUMBERS_PASSWORD",
	StatusConcurrency: "LYCEUM_PROVIDERS_STATUS_CONCURRENCY",
}

// Config is the root configuration for the Lyceum service.
type Config struct {
	Server          ServerConfig        `toml:"server"`
	Database        database.Config     `toml:"database"`
	Storage         storage.Config      `toml:"storage"`
	Cache           cache.Config        `toml:"cache"`
	Auth            auth.Config         `toml:"auth"`
	API             APIConfig           `toml:"api"`
	Tenants         tenants.Config      `toml:"tenants"`
	Credentials     credentials.Config  `toml:"credentials"`
	TrainingData    trainingdata.Config `toml:"training_data"`
	Providers       providers.Config    `toml:"providers"`
	ShutdownTimeout string              `toml:"shutdown_timeout"`
	Version         string              `toml:"version"`
	LogLevel        string              `toml:"log_level"`
}

// Env returns the LYCEUM_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvLyceumEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads .env (if present) into the process environment, then the base
// config (if present), applies any environment overlay, and finalizes all
// values. Variables already set in the environment win over .env.
func Load() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// LoadDatabase resolves only the database section, so tools that need a
// connection do not require the rest of the service to be configured.
func LoadDatabase() (*database.Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}

	if err := cfg.Database.Finalize(databaseEnv); err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	return &cfg.Database, nil
}

func read() (*Config, error) {
	if _, err := os.Stat(DotEnvFile); err == nil {
		if err := godotenv.Load(DotEnvFile); err != nil {
			return nil, fmt.Errorf("load %s: %w", DotEnvFile, err)
		}
	}

	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Cache.Merge(&overlay.Cache)
	c.Auth.Merge(&overlay.Auth)
	c.API.Merge(&overlay.API)
	c.Tenants.Merge(&overlay.Tenants)
	c.Credentials.Merge(&overlay.Credentials)
	c.TrainingData.Merge(&overlay.TrainingData)
	c.Providers.Merge(&overlay.Providers)
}

// Finalize applies defaults, environment variable overrides, and validation
// to the root config and every sub-config.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Cache.Finalize(cacheEnv); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Tenants.Finalize(tenantsEnv); err != nil {
		return fmt.Errorf("tenants: %w", err)
	}
	if err := c.Credentials.Finalize(credentialsEnv); err != nil {
		return fmt.Errorf("credentials: %w", err)
	}
	if err := c.TrainingData.Finalize(trainingDataEnv); err != nil {
		return fmt.Errorf("training_data: %w", err)
	}
	if err := c.Providers.Finalize(providersEnv); err != nil {
		return fmt.Errorf("providers: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvLyceumShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvLyceumVersion); v != "" {
		c.Version = v
	}
	if v := os.Getenv(EnvLyceumLogLevel); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvLyceumEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
