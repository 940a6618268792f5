// Package config provides configuration loading and defaults for focuscoach.
package config

import "time"

// DefaultConfigDir is the default location for focuscoach configuration.
const DefaultConfigDir = "~/.config/focuscoach"

// DefaultDBName is the filename for the SQLite database.
const DefaultDBName = "focuscoach.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// DefaultUserID is the identity CLI commands act as when none is configured.
const DefaultUserID = "local"

// EnvPrefix prefixes environment variable overrides, e.g.
// FOCUSCOACH_DATABASE_DRIVER.
const EnvPrefix = "FOCUSCOACH"

// DefaultDatabase holds the default storage settings. An empty DSN means
// the SQLite file under the config directory.
var DefaultDatabase = Database{
	Driver: "sqlite",
	DSN:    "",
}

// DefaultServer holds the default HTTP server settings.
var DefaultServer = Server{
	Addr:         ":8080",
	ReadTimeout:  10 * time.Second,
	WriteTimeout: 15 * time.Second,
	DevUser:      "",
}

// DefaultSuggest holds the default suggestion settings.
var DefaultSuggest = Suggest{
	RecentLimit: 7,
}

// DefaultPreferences holds the fallbacks used when a user has not saved
// preferences yet.
var DefaultPreferences = Preferences{
	FocusMinutes: 25,
	BreakMinutes: 5,
}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
	Width: 80,
}

// DefaultLog holds the default logging settings.
var DefaultLog = Log{
	Level: "info",
}
