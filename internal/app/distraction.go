package app

import (
	"fmt"
	"strings"

	"github.com/blackwell-systems/focuscoach/internal/analyzer"
	"github.com/blackwell-systems/focuscoach/internal/output"
	"github.com/blackwell-systems/focuscoach/internal/prefs"
	"github.com/blackwell-systems/focuscoach/internal/store"
	"github.com/spf13/cobra"
)

var (
	distractionInto      string
	distractionRemaining string
	distractionDays      int
)

var distractionCmd = &cobra.Command{
	Use:   "distraction [session-id] [type]",
	Short: "Log a typed distraction or show your distraction breakdown",
	Long: `Record what pulled you out of a session, or with no arguments show
which kinds of distraction come up most.

Types: ` + strings.Join(prefs.DistractionTriggers, ", ") + `

Examples:
  focuscoach distraction 3f2a9c1e phone_social --into 12m --remaining 13m
  focuscoach distraction                 # breakdown over the last 7 days
  focuscoach distraction --days 0        # breakdown over all history`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 || len(args) > 2 {
			return fmt.Errorf("expected a session ID and a distraction type, or no arguments")
		}
		return nil
	},
	RunE: runDistraction,
}

func init() {
	distractionCmd.Flags().StringVar(&distractionInto, "into", "0", "Time into the session (e.g. 12m, 90s)")
	distractionCmd.Flags().StringVar(&distractionRemaining, "remaining", "0", "Time left in the session (e.g. 13m)")
	distractionCmd.Flags().IntVar(&distractionDays, "days", analyzer.PatternWindowDays, "Days to include in the breakdown (0 for all)")
	rootCmd.AddCommand(distractionCmd)
}

func runDistraction(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.close()

	ctx := cmd.Context()

	if len(args) == 0 {
		shares, err := e.svc.Distractions(ctx, e.cfg.UserID, distractionDays)
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(shares)
		}
		fmt.Println(output.Section("Distractions"))
		fmt.Println()
		renderDistractions(shares)
		return nil
	}

	fs, err := resolveSession(ctx, e, args[0])
	if err != nil {
		return err
	}
	into, err := parseDurationValue(distractionInto)
	if err != nil {
		return fmt.Errorf("invalid --into %q: %w", distractionInto, err)
	}
	remaining, err := parseDurationValue(distractionRemaining)
	if err != nil {
		return fmt.Errorf("invalid --remaining %q: %w", distractionRemaining, err)
	}

	d := &store.Distraction{
		SessionID:              fs.ID,
		UserID:                 e.cfg.UserID,
		Type:                   args[1],
		TimeIntoSessionSeconds: int(into),
		TimeRemainingSeconds:   int(remaining),
	}
	if err := e.svc.LogDistraction(ctx, d); err != nil {
		return fmt.Errorf("logging distraction: %w", err)
	}

	if flagJSON {
		return printJSON(d)
	}
	fmt.Printf("Logged %s on session %s\n", analyzer.DistractionLabel(d.Type), truncateID(fs.ID))
	return nil
}

func renderDistractions(shares []analyzer.DistractionShare) {
	if len(shares) == 0 {
		fmt.Println(" No distractions logged.")
		return
	}
	tbl := output.NewTable("Type", "Count", "Share", "Avg into session").AlignRight(1, 2, 3)
	for _, sh := range shares {
		tbl.AddRow(
			analyzer.DistractionLabel(sh.Type),
			fmt.Sprintf("%d", sh.Count),
			fmt.Sprintf("%d%%", sh.Percentage),
			fmt.Sprintf("%.1fm", sh.AvgMinutesIn),
		)
	}
	tbl.Print()
}
