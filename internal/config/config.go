// Package config loads PFL-TK settings from pfltk.yaml, .env and PFLTK_* variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// FileName is the config file's base name; viper adds the extension.
const FileName = "pfltk"

// EnvPrefix prefixes every environment override, e.g. PFLTK_DATABASE_PATH.
const EnvPrefix = "PFLTK"

// Config represents the full PFL-TK configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	WarAPI   WarAPIConfig   `mapstructure:"war_api"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

// DatabaseConfig locates the SQLite file.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// WarAPIConfig controls the War API client.
type WarAPIConfig struct {
	Shard             string        `mapstructure:"shard"`    // live_1, live_2, live_3 or dev
	BaseURL           string        `mapstructure:"base_url"` // overrides shard when set
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

// SyncConfig controls the synchronizer and its scheduler.
type SyncConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	Concurrency int           `mapstructure:"concurrency"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr  string `mapstructure:"addr"`
	Mode  string `mapstructure:"mode"` // gin mode: debug, release or test
	Pprof bool   `mapstructure:"pprof"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

var shards = map[string]bool{"live_1": true, "live_2": true, "live_3": true, "dev": true}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "pfltk.db")
	v.SetDefault("war_api.shard", "live_1")
	v.SetDefault("war_api.base_url", "")
	v.SetDefault("war_api.timeout", "30s")
	v.SetDefault("war_api.requests_per_second", 10)
	v.SetDefault("war_api.burst", 5)
	v.SetDefault("sync.interval", "15m")
	v.SetDefault("sync.concurrency", 4)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.pprof", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration. An explicit path must exist; otherwise
// pfltk.yaml is searched in ./, ./config and $HOME/.pfltk, and defaults
// apply when none is found. A .env file in the working directory is
// loaded first so its values act as environment overrides.
func Load(path string) (*Config, error) {
	// .env is optional, but a malformed one is an error.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".pfltk"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	var cfg Config
	// defaults always decode
	_ = newViper().Unmarshal(&cfg)
	return &cfg
}

// WriteDefault writes a config file holding every default to path.
// It refuses to overwrite an existing file.
func WriteDefault(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config dir: %w", err)
		}
	}

	v := viper.New()
	setDefaults(v)
	if err := v.SafeWriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate rejects settings the application cannot run with.
func (c *Config) Validate() error {
	var problems []string

	if c.Database.Path == "" {
		problems = append(problems, "database.path is required")
	}
	if c.WarAPI.BaseURL == "" && !shards[c.WarAPI.Shard] {
		problems = append(problems, fmt.Sprintf("war_api.shard %q is not one of live_1, live_2, live_3, dev", c.WarAPI.Shard))
	}
	if c.WarAPI.Timeout <= 0 {
		problems = append(problems, "war_api.timeout must be positive")
	}
	if c.WarAPI.RequestsPerSecond < 0 {
		problems = append(problems, "war_api.requests_per_second must not be negative")
	}
	if c.Sync.Interval <= 0 {
		problems = append(problems, "sync.interval must be positive")
	}
	if c.Sync.Concurrency <= 0 {
		problems = append(problems, "sync.concurrency must be positive")
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, fmt.Sprintf("log.level %q is not a logrus level", c.Log.Level))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		problems = append(problems, fmt.Sprintf("log.format %q must be text or json", c.Log.Format))
	}
	switch c.Server.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		problems = append(problems, fmt.Sprintf("server.mode %q must be debug, release or test", c.Server.Mode))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
