package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level focuscoach configuration.
type Config struct {
	UserID   string      `mapstructure:"user_id"`
	Database Database    `mapstructure:"database"`
	Server   Server      `mapstructure:"server"`
	Suggest  Suggest     `mapstructure:"suggest"`
	Defaults Preferences `mapstructure:"defaults"`
	Output   Output      `mapstructure:"output"`
	Log      Log         `mapstructure:"log"`
}

// Database selects the storage backend.
type Database struct {
	// Driver is "sqlite" or "postgres".
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// Server configures the HTTP API.
type Server struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// DevUser is the identity assumed when a request carries no auth
	// header. Empty rejects such requests.
	DevUser string `mapstructure:"dev_user"`
}

// Suggest configures the duration suggestion service.
type Suggest struct {
	RecentLimit int `mapstructure:"recent_limit"`
}

// Preferences are the fallback focus and break lengths in minutes.
type Preferences struct {
	FocusMinutes int `mapstructure:"focus_minutes"`
	BreakMinutes int `mapstructure:"break_minutes"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
	Width int  `mapstructure:"width"`
}

// Log defines logging preferences.
type Log struct {
	Level string `mapstructure:"level"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied. Environment variables
// prefixed with FOCUSCOACH_ override file values.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	// Set defaults.
	v.SetDefault("user_id", DefaultUserID)
	v.SetDefault("database.driver", DefaultDatabase.Driver)
	v.SetDefault("database.dsn", DefaultDatabase.DSN)
	v.SetDefault("server.addr", DefaultServer.Addr)
	v.SetDefault("server.read_timeout", DefaultServer.ReadTimeout)
	v.SetDefault("server.write_timeout", DefaultServer.WriteTimeout)
	v.SetDefault("server.dev_user", DefaultServer.DevUser)
	v.SetDefault("suggest.recent_limit", DefaultSuggest.RecentLimit)
	v.SetDefault("defaults.focus_minutes", DefaultPreferences.FocusMinutes)
	v.SetDefault("defaults.break_minutes", DefaultPreferences.BreakMinutes)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.width", DefaultOutput.Width)
	v.SetDefault("log.level", DefaultLog.Level)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		configDir := expandPath(DefaultConfigDir)
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.Database.Driver == "sqlite" {
		if cfg.Database.DSN == "" {
			cfg.Database.DSN = DBPath()
		}
		cfg.Database.DSN = expandPath(cfg.Database.DSN)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if c.Database.Driver == "postgres" && c.Database.DSN == "" {
		return errors.New("database.dsn is required for the postgres driver")
	}
	if c.Suggest.RecentLimit <= 0 {
		return fmt.Errorf("suggest.recent_limit must be positive, got %d", c.Suggest.RecentLimit)
	}
	if c.Defaults.FocusMinutes <= 0 || c.Defaults.BreakMinutes <= 0 {
		return errors.New("defaults.focus_minutes and defaults.break_minutes must be positive")
	}
	if c.UserID == "" {
		return errors.New("user_id must not be empty")
	}
	return nil
}

// DBPath returns the full path to the default SQLite database.
func DBPath() string {
	return filepath.Join(expandPath(DefaultConfigDir), DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
