package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/blackwell-systems/focuscoach/internal/output"
	"github.com/blackwell-systems/focuscoach/internal/store"
	"github.com/blackwell-systems/focuscoach/internal/watcher"
	"github.com/spf13/cobra"
)

var (
	watchInterval string
	watchQuiet    bool
	watchNoNotify bool
	watchLog      bool
)

// minWatchInterval keeps polling from hammering a shared database.
const minWatchInterval = 30 * time.Second

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor your focus history and alert on changes",
	Long: `Poll your recorded sessions and raise alerts when something worth
knowing changes: a new session length suggestion, a streak gained or lost,
your daily session cap reached, or most recent sessions abandoned.

Examples:
  focuscoach watch                    # run in foreground (ctrl-c to stop)
  focuscoach watch --interval 1m      # check every minute (default: 5m)
  focuscoach watch --log-activity     # also record alerts in the activity log`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchInterval, "interval", "5m", "Check interval as duration string (e.g. 1m, 1h)")
	watchCmd.Flags().BoolVar(&watchQuiet, "quiet", false, "Suppress terminal output, only send notifications")
	watchCmd.Flags().BoolVar(&watchNoNotify, "no-notify", false, "Do not send desktop notifications")
	watchCmd.Flags().BoolVar(&watchLog, "log-activity", false, "Record each alert as a watch_alert activity entry")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	interval, err := time.ParseDuration(watchInterval)
	if err != nil {
		return fmt.Errorf("invalid interval %q: %w", watchInterval, err)
	}
	if interval < minWatchInterval {
		return fmt.Errorf("interval must be at least %s, got %s", minWatchInterval, interval)
	}

	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	alertFn := func(a watcher.Alert) {
		if !watchNoNotify {
			_ = watcher.Notify(a)
		}
		if !watchQuiet {
			printAlert(a)
		}
		if watchLog {
			if err := logAlert(ctx, e.db, e.cfg.UserID, a); err != nil {
				e.logger.Warn("recording alert", "title", a.Title, "error", err)
			}
		}
	}

	w := watcher.New(e.svc, e.db, e.cfg.UserID, interval, alertFn)

	initial, err := w.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("initial snapshot failed: %w", err)
	}
	if !watchQuiet {
		fmt.Printf("focuscoach watching... (checking every %s)\n", interval)
		fmt.Printf("[%s] %s %d sessions, %d-day streak, next session %d min\n",
			time.Now().Format("15:04:05"),
			checkMark(),
			initial.TotalSessions,
			initial.CurrentStreak,
			initial.SuggestedMinutes)
	}

	err = w.Run(ctx)
	if errors.Is(err, context.Canceled) {
		if !watchQuiet {
			fmt.Println("\nStopped.")
		}
		return nil
	}
	return err
}

// logAlert appends an alert to the coach activity log.
func logAlert(ctx context.Context, db *store.DB, userID string, a watcher.Alert) error {
	payload, err := json.Marshal(map[string]string{"level": a.Level, "message": a.Message})
	if err != nil {
		return err
	}
	return db.InsertActivity(ctx, &store.ActivityEntry{
		UserID:      userID,
		ActionType:  "watch_alert",
		Description: a.Title,
		Payload:     payload,
		CreatedAt:   a.Time,
	})
}

// printAlert formats and prints an alert to the terminal.
func printAlert(a watcher.Alert) {
	timestamp := a.Time.Local().Format("15:04:05")
	fmt.Printf("[%s] %s %s\n", timestamp, alertIcon(a.Level), alertStyle(a.Level).Render(a.Title))
	if a.Message != "" {
		fmt.Printf("         %s\n", output.StyleMuted.Render(a.Message))
	}
}

// alertIcon returns the terminal indicator for an alert level.
func alertIcon(level string) string {
	switch level {
	case "critical":
		return "\xf0\x9f\x94\xb4" // red circle
	case "warning":
		return "\xe2\x9a\xa0\xef\xb8\x8f" // warning sign
	case "info":
		return checkMark()
	default:
		return " "
	}
}

func alertStyle(level string) lipgloss.Style {
	switch level {
	case "critical":
		return output.StyleError
	case "warning":
		return output.StyleWarning
	default:
		return output.StyleBold
	}
}

// checkMark returns a terminal check mark indicator.
func checkMark() string {
	return "\xe2\x9c\x93"
}
