// Package app contains the Cobra command tree for focuscoach.
package app

import (
	"fmt"
	"os"

	"github.com/blackwell-systems/focuscoach/internal/output"
	"github.com/spf13/cobra"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "focuscoach",
	Short: "Adaptive focus session coaching",
	Long: `focuscoach records focus sessions, tracks how long you actually stay
focused, and recommends the length of your next session from recent history.

Run 'focuscoach' with no arguments to see a quick overview.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		output.AutoDetect(os.Stdout)
		if flagNoColor {
			output.SetNoColor(true)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("focuscoach", appVersion)
		fmt.Println()
		fmt.Println("Use a subcommand:")
		fmt.Println("  suggest   Recommend the length of your next focus session")
		fmt.Println("  record    Record a finished focus session")
		fmt.Println("  sessions  List and inspect recorded sessions")
		fmt.Println("  metrics   Completion rate, streaks, and daily stats")
		fmt.Println("  distraction  Log a typed distraction or show the breakdown")
		fmt.Println("  notes     Coaching notes from distraction patterns")
		fmt.Println("  prefs     Show or update your focus preferences")
		fmt.Println("  activity  Log and list coach activity")
		fmt.Println("  serve     Run the HTTP API")
		fmt.Println("  mcp       Run an MCP stdio server")
		fmt.Println("  watch     Monitor your focus history and alert on changes")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/focuscoach/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")
}
