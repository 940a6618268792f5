package watcher

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Notify sends a desktop notification for the given alert. On macOS it uses
// osascript, on Linux it tries notify-send. If neither is available, it falls
// back to printing to stderr.
func Notify(alert Alert) error {
	switch runtime.GOOS {
	case "darwin":
		return notifyMacOS(alert)
	case "linux":
		return notifyLinux(alert)
	default:
		return notifyFallback(alert)
	}
}

// notifyMacOS sends a notification via osascript on macOS.
func notifyMacOS(alert Alert) error {
	cmd := exec.Command("osascript", "-e", macScript(alert))
	if err := cmd.Run(); err != nil {
		return notifyFallback(alert)
	}
	return nil
}

// macScript builds the AppleScript for alert. The alert title leads and the
// subtitle names the kind of focus event.
func macScript(alert Alert) string {
	return fmt.Sprintf(
		`display notification %q with title %q subtitle %q`,
		alert.Message, "focuscoach: "+alert.Title, subtitle(alert.Level),
	)
}

// subtitle describes an alert level in focus terms.
func subtitle(level string) string {
	switch level {
	case "critical":
		return "Sessions are ending early"
	case "warning":
		return "Time to step back"
	default:
		return "Focus update"
	}
}

// notifyLinux sends a notification via notify-send on Linux.
func notifyLinux(alert Alert) error {
	_, err := exec.LookPath("notify-send")
	if err != nil {
		return notifyFallback(alert)
	}

	title := fmt.Sprintf("focuscoach: %s", alert.Title)
	cmd := exec.Command("notify-send", "--urgency", urgency(alert.Level), title, alert.Message)
	if err := cmd.Run(); err != nil {
		return notifyFallback(alert)
	}
	return nil
}

// urgency maps an alert level to a notify-send urgency.
func urgency(level string) string {
	switch level {
	case "critical":
		return "critical"
	case "info":
		return "low"
	default:
		return "normal"
	}
}

// notifyFallback prints the alert to stderr when no desktop notification
// system is available.
func notifyFallback(alert Alert) error {
	_, err := fmt.Fprintf(os.Stderr, "[%s] %s: %s\n", alert.Level, alert.Title, alert.Message)
	return err
}
