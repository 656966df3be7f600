package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/datallboy/gofetch/internal/platform"
	"github.com/spf13/viper"
)

const (
	AgentAuto = "auto"
	AgentCurl = "curl"
	AgentHTTP = "http"

	OnExistingRename = "rename"
	OnExistingPrompt = "prompt"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

type Config struct {
	Download DownloadConfig `mapstructure:"download" yaml:"download"`
	Queue    QueueConfig    `mapstructure:"queue" yaml:"queue"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Store    StoreConfig    `mapstructure:"store" yaml:"store"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
}

type DownloadConfig struct {
	Dir        string        `mapstructure:"dir" yaml:"dir"`
	Agent      string        `mapstructure:"agent" yaml:"agent"`
	OnExisting string        `mapstructure:"on_existing" yaml:"on_existing"`
	RateLimit  int64         `mapstructure:"rate_limit" yaml:"rate_limit"` // bytes per second, 0 = unlimited
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`       // foreground only, 0 = none
	LogDir     string        `mapstructure:"log_dir" yaml:"log_dir"`       // background transfer output
}

type QueueConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	File    string `mapstructure:"file" yaml:"file"`
}

type LogConfig struct {
	Path          string `mapstructure:"path" yaml:"path"`
	Level         string `mapstructure:"level" yaml:"level"`
	IncludeStdout bool   `mapstructure:"include_stdout" yaml:"include_stdout"`
}

type StoreConfig struct {
	Driver     string `mapstructure:"driver" yaml:"driver"`
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	DSN        string `mapstructure:"dsn" yaml:"dsn"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// Load reads configuration from defaults, an optional YAML file and GOFETCH_*
// environment variables, in increasing order of precedence.
// An empty path means ~/.gofetch/config.yaml if it exists, otherwise no file.
func Load(path string) (*Config, error) {
	v := viper.New()

	appDir := platform.AppDir()

	// Set Defaults
	v.SetDefault("download.dir", platform.DefaultDownloadDir())
	v.SetDefault("download.agent", AgentAuto)
	v.SetDefault("download.on_existing", OnExistingRename)
	v.SetDefault("download.rate_limit", 0)
	v.SetDefault("download.timeout", "0s")
	v.SetDefault("download.log_dir", filepath.Join(appDir, "logs"))
	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.file", platform.DefaultQueueFile())
	v.SetDefault("log.path", filepath.Join(appDir, "gofetch.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.include_stdout", true)
	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.sqlite_path", filepath.Join(appDir, "history.db"))
	v.SetDefault("store.dsn", "")
	v.SetDefault("server.addr", "127.0.0.1:8080")

	if path == "" {
		candidate := filepath.Join(appDir, "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	} else if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// Support Environment Variables
	v.SetEnvPrefix("GOFETCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// DF_QUEUE is the name older setups export
	if err := v.BindEnv("queue.enabled", "GOFETCH_QUEUE_ENABLED", "DF_QUEUE"); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Download.Dir == "" {
		c.Download.Dir = platform.DefaultDownloadDir()
	}
	c.Download.Dir = platform.ExpandHome(c.Download.Dir)
	c.Download.LogDir = platform.ExpandHome(c.Download.LogDir)
	c.Queue.File = platform.ExpandHome(c.Queue.File)
	c.Log.Path = platform.ExpandHome(c.Log.Path)
	c.Store.SQLitePath = platform.ExpandHome(c.Store.SQLitePath)

	if c.Queue.File == "" {
		c.Queue.File = platform.DefaultQueueFile()
	}

	switch c.Download.Agent {
	case AgentAuto, AgentCurl, AgentHTTP:
	default:
		return fmt.Errorf("download.agent must be one of auto, curl, http (got %q)", c.Download.Agent)
	}

	switch c.Download.OnExisting {
	case OnExistingRename, OnExistingPrompt:
	default:
		return fmt.Errorf("download.on_existing must be rename or prompt (got %q)", c.Download.OnExisting)
	}

	if c.Download.RateLimit < 0 {
		return errors.New("download.rate_limit cannot be negative")
	}

	if c.Download.Timeout < 0 {
		return errors.New("download.timeout cannot be negative")
	}

	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("store.sqlite_path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Store.DSN == "" {
			return errors.New("store.dsn is required for the postgres driver")
		}
	case DriverNone:
	default:
		return fmt.Errorf("store.driver must be one of sqlite, postgres, none (got %q)", c.Store.Driver)
	}

	return nil
}
