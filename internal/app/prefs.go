package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blackwell-systems/focuscoach/internal/output"
	"github.com/blackwell-systems/focuscoach/internal/prefs"
	"github.com/blackwell-systems/focuscoach/internal/store"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	prefsFile        string
	prefsFocus       int
	prefsBreak       int
	prefsPersonality string
	prefsMaxPerDay   int
	prefsFocusTime   string
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or update your focus preferences",
	Long: `Without flags, show your saved preferences. Pass --file with a full
onboarding JSON document to create them, or individual flags to update
fields of existing preferences.

Examples:
  focuscoach prefs
  focuscoach prefs --file onboarding.json
  focuscoach prefs --file onboarding.yaml
  focuscoach prefs --focus 40 --break 8`,
	RunE: runPrefs,
}

func init() {
	prefsCmd.Flags().StringVar(&prefsFile, "file", "", "JSON or YAML preferences document to save")
	prefsCmd.Flags().IntVar(&prefsFocus, "focus", 0, "Default focus minutes (5-120)")
	prefsCmd.Flags().IntVar(&prefsBreak, "break", 0, "Default break minutes (1-30)")
	prefsCmd.Flags().StringVar(&prefsPersonality, "personality", "", "Coach personality: "+strings.Join(prefs.CoachPersonalities, ", "))
	prefsCmd.Flags().IntVar(&prefsMaxPerDay, "max-per-day", 0, "Maximum sessions per day (1-20)")
	prefsCmd.Flags().StringVar(&prefsFocusTime, "focus-time", "", "Preferred focus time: "+strings.Join(prefs.PreferredFocusTimes, ", "))
	rootCmd.AddCommand(prefsCmd)
}

// payloadFromFlags collects the flags the user actually set.
func payloadFromFlags(cmd *cobra.Command) *prefs.Payload {
	var p prefs.Payload
	flags := cmd.Flags()
	if flags.Changed("focus") {
		p.DefaultFocusMinutes = &prefsFocus
	}
	if flags.Changed("break") {
		p.DefaultBreakMinutes = &prefsBreak
	}
	if flags.Changed("personality") {
		p.CoachPersonality = &prefsPersonality
	}
	if flags.Changed("max-per-day") {
		p.MaxSessionsPerDay = &prefsMaxPerDay
	}
	if flags.Changed("focus-time") {
		p.PreferredFocusTime = &prefsFocusTime
	}
	return &p
}

// preferencesJSON returns the document as JSON, converting .yaml and .yml
// files first.
func preferencesJSON(path string, data []byte) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
	default:
		return data, nil
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", path, err)
	}
	return out, nil
}

func runPrefs(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.close()

	ctx := cmd.Context()

	var payload *prefs.Payload
	switch {
	case prefsFile != "":
		data, err := os.ReadFile(prefsFile)
		if err != nil {
			return fmt.Errorf("reading %s: %w", prefsFile, err)
		}
		data, err = preferencesJSON(prefsFile, data)
		if err != nil {
			return err
		}
		payload, err = prefs.Decode(data)
		if err != nil {
			return err
		}
	default:
		payload = payloadFromFlags(cmd)
	}

	if payload.Empty() {
		p, err := e.db.GetPreferences(ctx, e.cfg.UserID)
		if err != nil {
			return fmt.Errorf("loading preferences: %w", err)
		}
		if flagJSON {
			return printJSON(p)
		}
		renderPreferences(p, e.cfg.Defaults.FocusMinutes, e.cfg.Defaults.BreakMinutes)
		return nil
	}

	saved, err := prefs.Save(ctx, e.db, e.cfg.UserID, payload, time.Now())
	if errors.Is(err, prefs.ErrNoExisting) {
		return fmt.Errorf("%w (use --file)", err)
	}
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(saved)
	}
	fmt.Println(output.StyleSuccess.Render("Preferences saved."))
	renderPreferences(saved, 0, 0)
	return nil
}

func renderPreferences(p *store.Preferences, defaultFocus, defaultBreak int) {
	fmt.Println(output.Section("Preferences"))
	fmt.Println()

	if p == nil {
		fmt.Printf(" Not set. Using defaults: %d min focus, %d min break.\n", defaultFocus, defaultBreak)
		fmt.Println(output.StyleMuted.Render(" Save preferences with 'focuscoach prefs --file onboarding.json'."))
		return
	}

	row := func(label, value string) {
		fmt.Printf(" %s %s\n", output.StyleLabel.Render(label), value)
	}
	list := func(l []string) string {
		if len(l) == 0 {
			return output.StyleMuted.Render("none")
		}
		return strings.Join(l, ", ")
	}

	row("Coach", p.CoachPersonality)
	row("Focus / break", fmt.Sprintf("%d min / %d min", p.DefaultFocusMinutes, p.DefaultBreakMinutes))
	row("Focus domains", list(p.FocusDomains))
	if p.CustomFocusDomain != nil {
		row("Custom domain", *p.CustomFocusDomain)
	}
	row("Triggers", list(p.DistractionTriggers))
	row("Session rules", list(p.SessionRules))
	if p.MaxSessionsPerDay != nil {
		row("Max sessions/day", fmt.Sprintf("%d", *p.MaxSessionsPerDay))
	}
	row("Preferred time", p.PreferredFocusTime)
	row("Goals", list(p.SuccessGoals))
	row("Onboarded", p.CompletedAt.Local().Format("2006-01-02"))
}
