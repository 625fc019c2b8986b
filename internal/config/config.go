// Package config loads application configuration from config.yaml and
// KMZUTM_-prefixed environment variables, and owns global logger setup.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Boundary BoundaryConfig `yaml:"boundary" mapstructure:"boundary"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the upload HTTP server.
type ServerConfig struct {
	Port                 int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins       []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedOriginPattern string   `yaml:"allowed_origin_pattern" mapstructure:"allowed_origin_pattern"`
	MaxUploadBytes       int64    `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
	RateLimitRPS         float64  `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateLimitBurst       int      `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
}

// BoundaryConfig locates the boundary datasets. DataDir is overridable via
// KMZUTM_BOUNDARY_DATA_DIR to point at an alternate dataset directory.
type BoundaryConfig struct {
	DataDir  string `yaml:"data_dir" mapstructure:"data_dir"`
	Manifest string `yaml:"manifest" mapstructure:"manifest"`
}

// PipelineConfig tunes request processing.
type PipelineConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// StoreConfig configures the processing-run log backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
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
	v.SetEnvPrefix("KMZUTM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{
		"https://preview.flutterflow.io",
		"http://localhost",
	})
	v.SetDefault("server.allowed_origin_pattern", `^https://[a-z0-9-]+\.flutterflow\.app$`)
	v.SetDefault("server.max_upload_bytes", int64(50<<20))
	v.SetDefault("server.rate_limit_rps", 5.0)
	v.SetDefault("server.rate_limit_burst", 10)
	v.SetDefault("boundary.data_dir", "data/boundaries")
	v.SetDefault("boundary.manifest", "layers.yaml")
	v.SetDefault("pipeline.workers", 0)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "kmzutm.db")
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
