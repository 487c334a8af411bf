package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	FDC        FDCConfig
	Aggregator AggregatorConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds the internal food database configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// FDCConfig holds USDA FoodData Central API configuration. An empty APIKey
// is valid: the external provider is simply not initialized.
type FDCConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	RequestsPerHour   int           `mapstructure:"requests_per_hour"`
	Timeout           time.Duration `mapstructure:"timeout"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
}

// AggregatorConfig holds multi-provider search configuration
type AggregatorConfig struct {
	MergeStrategy        string        `mapstructure:"merge_strategy"` // priority, source_groups, interleave
	DeduplicationEnabled bool          `mapstructure:"deduplication_enabled"`
	SimilarityThreshold  float64       `mapstructure:"similarity_threshold"`
	InternalPageSize     int           `mapstructure:"internal_page_size"`
	FDCPageSize          int           `mapstructure:"fdc_page_size"`
	InternalPriority     int           `mapstructure:"internal_priority"`
	FDCPriority          int           `mapstructure:"fdc_priority"`
	MaxResults           int           `mapstructure:"max_results"`
	ProviderTimeout      time.Duration `mapstructure:"provider_timeout"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/macroplate/")

	v.SetEnvPrefix("MACROPLATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults cover everything
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Database defaults
	v.SetDefault("database.path", "macroplate.db")

	// FDC defaults. The empty api_key default also registers the key so the
	// MACROPLATE_FDC_API_KEY env var is picked up during Unmarshal.
	v.SetDefault("fdc.api_key", "")
	v.SetDefault("fdc.base_url", "https://api.nal.usda.gov/fdc/v1")
	v.SetDefault("fdc.requests_per_minute", 1000)
	v.SetDefault("fdc.requests_per_hour", 10000)
	v.SetDefault("fdc.timeout", "30s")
	v.SetDefault("fdc.cache_ttl", "1h")

	// Aggregator defaults
	v.SetDefault("aggregator.merge_strategy", "priority")
	v.SetDefault("aggregator.deduplication_enabled", true)
	v.SetDefault("aggregator.similarity_threshold", 0.85)
	v.SetDefault("aggregator.internal_page_size", 15)
	v.SetDefault("aggregator.fdc_page_size", 10)
	v.SetDefault("aggregator.internal_priority", 10)
	v.SetDefault("aggregator.fdc_priority", 5)
	v.SetDefault("aggregator.max_results", 50)
	v.SetDefault("aggregator.provider_timeout", "5s")
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Aggregator.MergeStrategy {
	case "priority", "source_groups", "interleave":
	default:
		return fmt.Errorf("merge strategy must be 'priority', 'source_groups' or 'interleave', got: %s",
			config.Aggregator.MergeStrategy)
	}

	if config.Aggregator.SimilarityThreshold <= 0 || config.Aggregator.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold must be in (0, 1], got: %f",
			config.Aggregator.SimilarityThreshold)
	}

	if config.Database.Path == "" {
		return fmt.Errorf("database path is required (set MACROPLATE_DATABASE_PATH)")
	}

	return nil
}
