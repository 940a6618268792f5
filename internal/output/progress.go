package output

import (
	"fmt"
	"strings"
)

// RateBar renders a progress bar for a 0-100 percentage.
// Example: "████████░░ 80%"
func RateBar(percent float64, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := int((percent / 100.0) * float64(width))
	filled = max(0, min(filled, width))

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	style := StyleError
	switch {
	case percent >= 75:
		style = StyleSuccess
	case percent >= 50:
		style = StyleWarning
	}

	return fmt.Sprintf("%s %s", style.Render(bar), StyleMuted.Render(fmt.Sprintf("%.0f%%", percent)))
}

// MinutesDelta renders the change from a default duration to a suggested
// one, e.g. "▼ -10m" or "▲ +5m". No change renders a muted dash.
func MinutesDelta(from, to int) string {
	delta := to - from
	switch {
	case delta > 0:
		return StyleWarning.Render(fmt.Sprintf("▲ +%dm", delta))
	case delta < 0:
		return StyleWarning.Render(fmt.Sprintf("▼ %dm", delta))
	default:
		return StyleMuted.Render("─")
	}
}

// StatusLabel colors a session status.
func StatusLabel(status string) string {
	switch status {
	case "completed":
		return StyleSuccess.Render(status)
	case "abandoned":
		return StyleError.Render(status)
	default:
		return StyleMuted.Render(status)
	}
}

// Section prints a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}
