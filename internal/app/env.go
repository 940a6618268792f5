package app

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/hashicorp/go-hclog"

	"github.com/blackwell-systems/focuscoach/internal/config"
	"github.com/blackwell-systems/focuscoach/internal/logging"
	"github.com/blackwell-systems/focuscoach/internal/service"
	"github.com/blackwell-systems/focuscoach/internal/store"
)

// env is what most commands need: configuration, an open store, a logger,
// and the suggestion service built over them.
type env struct {
	cfg    *config.Config
	db     *store.DB
	logger hclog.Logger
	svc    *service.Service
}

// loadEnv loads configuration and opens the configured database. The
// caller must call close.
func loadEnv() (*env, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := newLogger(cfg)
	db, err := store.Open(cfg.Database.Driver, cfg.Database.DSN, store.WithLogger(logger.Named("store")))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &env{
		cfg:    cfg,
		db:     db,
		logger: logger,
		svc:    service.New(db, cfg, service.WithLogger(logger.Named("service"))),
	}, nil
}

func (e *env) close() {
	_ = e.db.Close()
}

// newLogger writes to stderr so command output on stdout stays clean.
// --verbose forces debug level.
func newLogger(cfg *config.Config) hclog.Logger {
	level := cfg.Log.Level
	if flagVerbose {
		level = "debug"
	}
	return logging.New("focuscoach", level, os.Stderr)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseDurationValue converts duration strings like "12m", "30s", "1h" to seconds.
func parseDurationValue(raw string) (float64, error) {
	if len(raw) < 2 {
		// Try plain number (seconds).
		return strconv.ParseFloat(raw, 64)
	}

	suffix := raw[len(raw)-1]
	numStr := raw[:len(raw)-1]

	num, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		// Not a suffixed duration; try plain number.
		return strconv.ParseFloat(raw, 64)
	}

	switch suffix {
	case 's', 'S':
		return num, nil
	case 'm', 'M':
		return num * 60, nil
	case 'h', 'H':
		return num * 3600, nil
	default:
		// Suffix is a digit; try the whole string as a plain number.
		return strconv.ParseFloat(raw, 64)
	}
}

// formatMinutes renders a duration in seconds as whole minutes.
func formatMinutes(seconds int) string {
	return fmt.Sprintf("%dm", int(math.Round(float64(seconds)/60)))
}

// truncateID shortens a UUID for display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
