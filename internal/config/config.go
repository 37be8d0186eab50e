package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable, e.g. BASKET_SERVER_PORT
const EnvPrefix = "BASKET"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Dataset   DatasetConfig   `yaml:"dataset" envconfig:"DATASET"`
	Mining    MiningConfig    `yaml:"mining" envconfig:"MINING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	// RequestTimeout bounds a single mining request
	RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// DatasetConfig describes the transaction log loaded at startup
type DatasetConfig struct {
	Path           string   `yaml:"path" envconfig:"PATH"`
	CustomerColumn string   `yaml:"customer_column" envconfig:"CUSTOMER_COLUMN"`
	DateColumn     string   `yaml:"date_column" envconfig:"DATE_COLUMN"`
	ItemColumn     string   `yaml:"item_column" envconfig:"ITEM_COLUMN"`
	DateLayouts    []string `yaml:"date_layouts" envconfig:"DATE_LAYOUTS"`
	Sheet          string   `yaml:"sheet" envconfig:"SHEET"`
}

// MiningConfig holds mining defaults and memoization limits
type MiningConfig struct {
	DefaultMinSupport    float64       `yaml:"default_min_support" envconfig:"DEFAULT_MIN_SUPPORT"`
	DefaultMinConfidence float64       `yaml:"default_min_confidence" envconfig:"DEFAULT_MIN_CONFIDENCE"`
	TopItemsets          int           `yaml:"top_itemsets" envconfig:"TOP_ITEMSETS"`
	TopRules             int           `yaml:"top_rules" envconfig:"TOP_RULES"`
	MaxItemsetLength     int           `yaml:"max_itemset_length" envconfig:"MAX_ITEMSET_LENGTH"`
	CacheSize            int           `yaml:"cache_size" envconfig:"CACHE_SIZE"`
	SessionTTL           time.Duration `yaml:"session_ttl" envconfig:"SESSION_TTL"`
	MaxSessions          int           `yaml:"max_sessions" envconfig:"MAX_SESSIONS"`
}

// TelemetryConfig selects the OpenTelemetry exporters
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}

// Load loads configuration from defaults, the first config file found, a .env file and
// environment variables, in increasing order of precedence
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit YAML file; an empty path skips the file
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file onto cfg; keys absent from the file keep their values
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	if err := validateThreshold("default_min_support", c.Mining.DefaultMinSupport); err != nil {
		return err
	}
	if err := validateThreshold("default_min_confidence", c.Mining.DefaultMinConfidence); err != nil {
		return err
	}

	if c.Mining.CacheSize <= 0 {
		return fmt.Errorf("mining cache size must be positive")
	}

	if c.Mining.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}

	if c.Mining.MaxItemsetLength < 0 {
		return fmt.Errorf("max itemset length cannot be negative")
	}

	switch c.Logging.Output {
	case "stdout", "file", "both":
	default:
		c.Logging.Output = "stdout"
	}

	if c.Logging.Output != "stdout" && c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/basketlens.log"
	}

	return nil
}

func validateThreshold(name string, v float64) error {
	if !(v > 0 && v <= 1) {
		return fmt.Errorf("%s must be in (0, 1], got %v", name, v)
	}
	return nil
}

// getConfigFilePath returns BASKET_CONFIG or the first config file found in common locations
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG"); path != "" {
		return path
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  45 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     50,
				Burst:   20,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "stdout",
			FilePath: "logs/basketlens.log",
		},
		Dataset: DatasetConfig{
			Path:           "data/Groceries_dataset.csv",
			CustomerColumn: "Member_number",
			DateColumn:     "Date",
			ItemColumn:     "itemDescription",
			DateLayouts:    []string{"02-01-2006", "02/01/2006"},
		},
		Mining: MiningConfig{
			DefaultMinSupport:    0.008,
			DefaultMinConfidence: 0.10,
			TopItemsets:          10,
			TopRules:             6,
			MaxItemsetLength:     0,
			CacheSize:            64,
			SessionTTL:           30 * time.Minute,
			MaxSessions:          256,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
	}
}
