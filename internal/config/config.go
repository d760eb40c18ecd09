// Package config provides configuration management using Viper
package config

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// Environment types
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// LogLevel represents the logging level for the application
type LogLevel string

// Available log levels
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Config holds all configuration parameters for the application
type Config struct {
	// Application settings
	AppName     string   `mapstructure:"appname"`
	AppPort     string   `mapstructure:"appport"`
	Environment string   `mapstructure:"environment"`
	LogLevel    LogLevel `mapstructure:"loglevel"`
	PrivateKey  string   `mapstructure:"privatekey"`
	AdminEmail  string   `mapstructure:"adminemail"`

	// Admin login token lifetime
	LoginTokenTTLSeconds int `mapstructure:"logintokenttlseconds"`

	// File paths
	StoragePath  string `mapstructure:"storagepath"`
	DatabaseName string `mapstructure:"-"` // Derived from other settings
	EventLogName string `mapstructure:"-"` // Derived from other settings
	GeoDBPath    string `mapstructure:"geodbpath"`

	// Logging settings
	LogsDirectory    string `mapstructure:"logsdir"`
	LogsMaxSizeInMb  int    `mapstructure:"logsmaxsizeinmb"`
	LogsMaxBackups   int    `mapstructure:"logsmaxbackups"`
	LogsMaxAgeInDays int    `mapstructure:"logsmaxageindays"`

	// Database settings
	DatabaseMaxOpenConns int `mapstructure:"dbmaxopenconns"`
	DatabaseMaxIdleConns int `mapstructure:"dbmaxidleconns"`

	// Outbound HTTP settings (scraper and geolocation lookups)
	ScrapeTimeoutSeconds int `mapstructure:"scrapetimeoutseconds"`
	GeoLookupTimeoutSecs int `mapstructure:"geolookuptimeoutseconds"`
}

var (
	cfg  *Config
	once sync.Once
)

// GetConfig returns the application configuration
func GetConfig() *Config {
	once.Do(func() {
		v := viper.New()

		// Set defaults
		v.SetDefault("appname", "dealkart")
		v.SetDefault("appport", "3000")
		v.SetDefault("environment", Development)
		v.SetDefault("loglevel", string(LogLevelDebug))
		v.SetDefault("privatekey", "88888888888888888888888888888888")
		v.SetDefault("logintokenttlseconds", 604800) // 1 week
		v.SetDefault("storagepath", "storage")
		v.SetDefault("geodbpath", "storage/GeoLite2-City.mmdb")
		v.SetDefault("logsdir", "logs")
		v.SetDefault("logsmaxsizeinmb", 20)
		v.SetDefault("logsmaxbackups", 10)
		v.SetDefault("logsmaxageindays", 30)
		v.SetDefault("dbmaxopenconns", 0)
		v.SetDefault("dbmaxidleconns", 0)
		v.SetDefault("scrapetimeoutseconds", 15)
		v.SetDefault("geolookuptimeoutseconds", 3)

		// Bind environment variables
		v.BindEnv("appname", "DEALKART_APP_NAME")
		v.BindEnv("appport", "DEALKART_APP_PORT")
		v.BindEnv("environment", "DEALKART_ENV")
		v.BindEnv("loglevel", "DEALKART_LOG_LEVEL")
		v.BindEnv("privatekey", "DEALKART_PRIVATE_KEY")
		v.BindEnv("adminemail", "DEALKART_ADMIN_EMAIL")
		v.BindEnv("logintokenttlseconds", "DEALKART_LOGIN_TOKEN_TTL_SECONDS")
		v.BindEnv("storagepath", "DEALKART_STORAGE_PATH")
		v.BindEnv("geodbpath", "DEALKART_GEO_DB_PATH")
		v.BindEnv("logsdir", "DEALKART_LOGS_DIR")
		v.BindEnv("logsmaxsizeinmb", "DEALKART_LOGS_MAX_SIZE_IN_MB")
		v.BindEnv("logsmaxbackups", "DEALKART_LOGS_MAX_BACKUPS")
		v.BindEnv("logsmaxageindays", "DEALKART_LOGS_MAX_AGE_IN_DAYS")
		v.BindEnv("dbmaxopenconns", "DEALKART_DB_MAX_OPEN_CONNS")
		v.BindEnv("dbmaxidleconns", "DEALKART_DB_MAX_IDLE_CONNS")
		v.BindEnv("scrapetimeoutseconds", "DEALKART_SCRAPE_TIMEOUT_SECONDS")
		v.BindEnv("geolookuptimeoutseconds", "DEALKART_GEO_LOOKUP_TIMEOUT_SECONDS")

		cfg = &Config{}
		if err := v.Unmarshal(cfg); err != nil {
			log.Fatalf("config: failed to unmarshal configuration: %v", err)
		}

		// Validate
		if err := cfg.validate(); err != nil {
			log.Fatalf("config: invalid configuration: %v", err)
		}

		// Set derived values
		cfg.DatabaseName = cfg.GetDatabasePath()
		cfg.EventLogName = cfg.GetEventLogPath()

		// Validate private key - in production, must be explicitly set (not empty, not default)
		defaultKey := "88888888888888888888888888888888"
		if cfg.PrivateKey == "" {
			log.Fatal("Private key is required")
		}
		if cfg.IsProduction() && cfg.PrivateKey == defaultKey {
			log.Fatal("Production requires a unique DEALKART_PRIVATE_KEY (cannot use default)")
		}
	})
	return cfg
}

// validate checks the configuration for errors
func (c *Config) validate() error {
	validEnvs := map[string]bool{
		Development: true,
		Production:  true,
		Test:        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	return nil
}

// GetDatabasePath returns the catalog database path based on environment
func (c *Config) GetDatabasePath() string {
	if c.DatabaseName == "" {
		c.DatabaseName = filepath.Join(c.StoragePath,
			fmt.Sprintf("%s-%s.db", c.AppName, c.Environment))
	}
	return c.DatabaseName
}

// GetEventLogPath returns the analytics event log path based on environment
func (c *Config) GetEventLogPath() string {
	if c.EventLogName == "" {
		c.EventLogName = filepath.Join(c.StoragePath,
			fmt.Sprintf("events-%s.json", c.Environment))
	}
	return c.EventLogName
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// IsTest returns true if the environment is test
func (c *Config) IsTest() bool {
	return c.Environment == Test
}

// GetLoginTokenTTLSeconds returns the admin login token lifetime in seconds.
func (c *Config) GetLoginTokenTTLSeconds() int {
	return c.LoginTokenTTLSeconds
}

// GetMaxOpenConns returns the appropriate MaxOpenConns value based on environment
// If explicitly set via env var, uses that value. Otherwise:
// - Test: 1 (required for test stability)
// - Development/Production: 10 (allows concurrent reads for parallel dashboard queries)
func (c *Config) GetMaxOpenConns() int {
	if c.DatabaseMaxOpenConns > 0 {
		return c.DatabaseMaxOpenConns
	}

	if c.Environment == Test {
		return 1
	}

	return 10
}

// GetMaxIdleConns returns the appropriate MaxIdleConns value based on environment
func (c *Config) GetMaxIdleConns() int {
	if c.DatabaseMaxIdleConns > 0 {
		return c.DatabaseMaxIdleConns
	}

	if c.Environment == Test {
		return 1
	}

	return 5
}

// Reset clears the cached configuration; intended for tests.
func Reset() {
	once = sync.Once{}
	cfg = nil
}
