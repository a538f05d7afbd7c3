package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Currency  CurrencyConfig  `yaml:"currency"`
	Redis     RedisConfig     `yaml:"redis"`
	Log       LogConfig       `yaml:"log"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
}

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DatabaseConfig selects the store. The connection fields apply to postgres only.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // "postgres" or "memory"
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// CurrencyConfig contains exchange rate provider settings
type CurrencyConfig struct {
	BaseURL           string  `yaml:"base_url"`
	APIKey            string  `yaml:"api_key"`
	BaseCurrency      string  `yaml:"base_currency"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	CacheTTLSeconds   int     `yaml:"cache_ttl_seconds"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

func (c CurrencyConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c CurrencyConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// RedisConfig enables the shared rate cache when Addr is set
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// TracingConfig contains OTLP exporter settings. An empty endpoint disables export.
type TracingConfig struct {
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	CompleteElapsedBookings string   `yaml:"complete_elapsed_bookings"`
	WarmExchangeRates       string   `yaml:"warm_exchange_rates"`
	WarmCurrencies          []string `yaml:"warm_currencies"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration, applies environment overrides and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables if present
	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_DRIVER"); val != "" {
		c.Database.Driver = val
	}
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Currency
	if val := os.Getenv("CURRENCY_BASE_URL"); val != "" {
		c.Currency.BaseURL = val
	}
	if val := os.Getenv("CURRENCY_API_KEY"); val != "" {
		c.Currency.APIKey = val
	}
	if val := os.Getenv("CURRENCY_BASE"); val != "" {
		c.Currency.BaseCurrency = val
	}

	// Redis
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		c.Redis.Addr = val
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		c.Redis.Password = val
	}

	// Tracing
	if val := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); val != "" {
		c.Tracing.Endpoint = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills in defaults
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeoutSeconds == 0 {
		c.Server.ShutdownTimeoutSeconds = 15
	}

	// Database validation
	if c.Database.Driver == "" {
		c.Database.Driver = DriverPostgres
	}
	switch c.Database.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	// Currency validation
	if c.Currency.BaseURL == "" {
		return fmt.Errorf("currency base URL is required")
	}
	if c.Currency.BaseCurrency == "" {
		c.Currency.BaseCurrency = "EUR"
	}
	c.Currency.BaseCurrency = strings.ToUpper(c.Currency.BaseCurrency)
	if len(c.Currency.BaseCurrency) != 3 {
		return fmt.Errorf("invalid base currency: %s", c.Currency.BaseCurrency)
	}
	if c.Currency.TimeoutSeconds == 0 {
		c.Currency.TimeoutSeconds = 5
	}
	if c.Currency.CacheTTLSeconds == 0 {
		c.Currency.CacheTTLSeconds = 3600
	}
	if c.Currency.RequestsPerSecond == 0 {
		c.Currency.RequestsPerSecond = 5
	}
	if c.Currency.TimeoutSeconds < 0 || c.Currency.CacheTTLSeconds < 0 || c.Currency.RequestsPerSecond < 0 {
		return fmt.Errorf("currency timeouts and limits cannot be negative")
	}

	// Tracing defaults
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "rental-booking-backend"
	}

	// Scheduler defaults
	if c.Scheduler.CompleteElapsedBookings == "" {
		c.Scheduler.CompleteElapsedBookings = "0 */15 * * * *" // Every 15 minutes
	}
	if c.Scheduler.WarmExchangeRates == "" {
		c.Scheduler.WarmExchangeRates = "0 0 * * * *" // Hourly
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
