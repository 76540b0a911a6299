package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Data     DataConfig     `yaml:"data" envconfig:"DATA"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// DataConfig locates the telemetry sources and tunes the snapshot cache.
type DataConfig struct {
	ArrivalFile string        `yaml:"arrival_file" envconfig:"ARRIVAL_FILE" default:"data/sample_dataset.csv" validate:"required"`
	DelayFile   string        `yaml:"delay_file" envconfig:"DELAY_FILE" default:"data/delay_dataset.csv" validate:"required"`
	CacheTTL    time.Duration `yaml:"cache_ttl" envconfig:"CACHE_TTL" default:"5m"`
	ReportsDir  string        `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"reports"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process("NETPULSE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Load from config file if exists
	configFile := configFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// configFilePath resolves the config file location, overridable by env.
func configFilePath() string {
	if p := os.Getenv("NETPULSE_CONFIG_FILE"); p != "" {
		return p
	}
	return "config.yaml"
}

// mergeConfigs overlays file values onto the env-derived config. A file
// value wins only where the matching environment variable was not set
// explicitly; envconfig defaults never shadow the file.
func mergeConfigs(file, env Config) Config {
	merged := env
	if file.Server.Port != 0 && !envSet("NETPULSE_SERVER_PORT") {
		merged.Server.Port = file.Server.Port
	}
	if file.Logging.Level != "" && !envSet("NETPULSE_LOGGING_LEVEL") {
		merged.Logging.Level = file.Logging.Level
	}
	if file.Logging.Output != "" && !envSet("NETPULSE_LOGGING_OUTPUT") {
		merged.Logging.Output = file.Logging.Output
	}
	if file.Logging.FilePath != "" && !envSet("NETPULSE_LOGGING_FILE_PATH") {
		merged.Logging.FilePath = file.Logging.FilePath
	}
	if file.Data.ArrivalFile != "" && !envSet("NETPULSE_DATA_ARRIVAL_FILE") {
		merged.Data.ArrivalFile = file.Data.ArrivalFile
	}
	if file.Data.DelayFile != "" && !envSet("NETPULSE_DATA_DELAY_FILE") {
		merged.Data.DelayFile = file.Data.DelayFile
	}
	if file.Data.CacheTTL != 0 && !envSet("NETPULSE_DATA_CACHE_TTL") {
		merged.Data.CacheTTL = file.Data.CacheTTL
	}
	if file.Data.ReportsDir != "" && !envSet("NETPULSE_DATA_REPORTS_DIR") {
		merged.Data.ReportsDir = file.Data.ReportsDir
	}
	if len(file.Security.AllowedOrigins) > 0 && !envSet("NETPULSE_SECURITY_ALLOWED_ORIGINS") {
		merged.Security.AllowedOrigins = file.Security.AllowedOrigins
	}
	return merged
}

func envSet(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}

func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Data.CacheTTL <= 0 {
		return fmt.Errorf("data.cache_ttl must be positive")
	}
	return nil
}
