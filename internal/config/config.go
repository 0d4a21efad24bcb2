package config

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Sources  SourcesConfig  `yaml:"sources" mapstructure:"sources"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Brave    BraveConfig    `yaml:"brave" mapstructure:"brave"`
	Fetch    FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// SourcesConfig points at the static buyer source and rule files.
type SourcesConfig struct {
	BuyersPath    string `yaml:"buyers_path" mapstructure:"buyers_path"`
	FallbacksPath string `yaml:"fallbacks_path" mapstructure:"fallbacks_path"`
	RulesPath     string `yaml:"rules_path" mapstructure:"rules_path"`
}

// StoreConfig configures run persistence.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	OutDir      string `yaml:"out_dir" mapstructure:"out_dir"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// BraveConfig holds Brave search API settings.
type BraveConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Count       int    `yaml:"count" mapstructure:"count"`
}

// FetchConfig configures the page fetcher.
type FetchConfig struct {
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
}

// PipelineConfig configures run execution.
type PipelineConfig struct {
	MaxConcurrentBuyers int `yaml:"max_concurrent_buyers" mapstructure:"max_concurrent_buyers"`
}

// ServerConfig configures the read-only HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SIGNAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("sources.buyers_path", "mission-control/buyer-sources.yaml")
	v.SetDefault("sources.fallbacks_path", "mission-control/fallback-sources.json")
	v.SetDefault("sources.rules_path", "mission-control/extraction-rules.json")
	v.SetDefault("store.driver", "fs")
	v.SetDefault("store.out_dir", "out")
	v.SetDefault("brave.base_url", "https://api.search.brave.com/res/v1")
	v.SetDefault("brave.timeout_secs", 10)
	v.SetDefault("brave.count", 3)
	v.SetDefault("fetch.timeout_secs", 20)
	v.SetDefault("fetch.user_agent", "buyer-signals/1.0")
	v.SetDefault("pipeline.max_concurrent_buyers", 4)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	// The workflow has always taken the search credential from
	// BRAVE_API_KEY; keep honoring it when the config leaves key unset.
	if cfg.Brave.Key == "" {
		cfg.Brave.Key = os.Getenv("BRAVE_API_KEY")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
