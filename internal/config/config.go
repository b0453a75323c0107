package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	S3       S3Config
	Sweeper  SweeperConfig
	Redis    RedisConfig
	Payment  PaymentConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	APIKey string
}

// S3Config holds AWS S3 configuration for sale import files.
type S3Config struct {
	Enabled bool
	Bucket  string
	Region  string
	Prefix  string // Path prefix within bucket (e.g., "sales/")
}

// SweeperConfig controls the periodic sale status sweep.
type SweeperConfig struct {
	Enabled  bool
	Interval int // seconds
	LockTTL  int // seconds
}

// RedisConfig holds the Redis connection used for the sweeper lease.
type RedisConfig struct {
	Enabled bool
	URL     string
}

// PaymentConfig holds payment defaults.
type PaymentConfig struct {
	DefaultMethod string // method_key used for payments created on completion
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "storefront"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			APIKey: getEnv("API_KEY", ""),
		},
		S3: S3Config{
			Enabled: getEnvAsBool("S3_ENABLED", false),
			Bucket:  getEnv("S3_BUCKET", ""),
			Region:  getEnv("S3_REGION", "us-east-1"),
			Prefix:  getEnv("S3_PREFIX", "sales/"),
		},
		Sweeper: SweeperConfig{
			Enabled:  getEnvAsBool("SWEEPER_ENABLED", true),
			Interval: getEnvAsInt("SALE_SWEEP_INTERVAL", 60),
			LockTTL:  getEnvAsInt("SWEEPER_LOCK_TTL", 30),
		},
		Redis: RedisConfig{
			Enabled: getEnvAsBool("REDIS_ENABLED", false),
			URL:     getEnv("REDIS_URL", "redis://localhost:6379/0"),
		},
		Payment: PaymentConfig{
			DefaultMethod: getEnv("PAYMENT_DEFAULT_METHOD", "cod"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration, section by section.
func (c *Config) Validate() error {
	for _, validate := range []func() error{
		c.Server.validate,
		c.Database.validate,
		c.Auth.validate,
		c.Logger.validate,
		c.S3.validate,
		c.Sweeper.validate,
		c.Redis.validate,
		c.Payment.validate,
	} {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *ServerConfig) validate() error {
	if !validPort(c.Port) {
		return fmt.Errorf("invalid server port: %d", c.Port)
	}
	return nil
}

func (c *DatabaseConfig) validate() error {
	switch {
	case c.Host == "":
		return fmt.Errorf("database host is required")
	case !validPort(c.Port):
		return fmt.Errorf("invalid database port: %d", c.Port)
	case c.User == "":
		return fmt.Errorf("database user is required")
	case c.Database == "":
		return fmt.Errorf("database name is required")
	case c.MaxConnections < 1:
		return fmt.Errorf("database max connections must be at least 1")
	case c.MinConnections < 1:
		return fmt.Errorf("database min connections must be at least 1")
	case c.MinConnections > c.MaxConnections:
		return fmt.Errorf("database min connections cannot exceed max connections")
	}
	return nil
}

func (c *AuthConfig) validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("API key is required")
	}
	return nil
}

func (c *LoggerConfig) validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}

	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Format)
	}
	return nil
}

func (c *S3Config) validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Bucket == "" {
		return fmt.Errorf("S3 bucket is required when S3 is enabled")
	}
	if c.Region == "" {
		return fmt.Errorf("S3 region is required when S3 is enabled")
	}
	return nil
}

func (c *SweeperConfig) validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Interval < 1 {
		return fmt.Errorf("sale sweep interval must be at least 1 second")
	}
	if c.LockTTL < 1 {
		return fmt.Errorf("sweeper lock TTL must be at least 1 second")
	}
	return nil
}

func (c *RedisConfig) validate() error {
	if c.Enabled && c.URL == "" {
		return fmt.Errorf("redis URL is required when redis is enabled")
	}
	return nil
}

func (c *PaymentConfig) validate() error {
	if c.DefaultMethod == "" {
		return fmt.Errorf("default payment method is required")
	}
	return nil
}

func validPort(port int) bool {
	return port >= 1 && port <= 65535
}

// ConnectionString returns the PostgreSQL connection URL. Credentials are
// escaped, so passwords may contain URL-reserved characters.
func (c *DatabaseConfig) ConnectionString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// SweepInterval returns the sweep period as a duration.
func (c *SweeperConfig) SweepInterval() time.Duration {
	return time.Duration(c.Interval) * time.Second
}

// LockDuration returns the sweeper lease TTL as a duration.
func (c *SweeperConfig) LockDuration() time.Duration {
	return time.Duration(c.LockTTL) * time.Second
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
