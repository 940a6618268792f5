package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blackwell-systems/focuscoach/internal/output"
	"github.com/blackwell-systems/focuscoach/internal/store"
	"github.com/spf13/cobra"
)

var (
	sessionsFlagDays  int
	sessionsFlagLimit int
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions [session-id]",
	Short: "List and inspect recorded focus sessions",
	Long: `Browse recorded focus sessions, newest first.

Examples:
  focuscoach sessions                     # recent sessions
  focuscoach sessions --days 7 --limit 5  # last 7 days, top 5
  focuscoach sessions 3f2a9c1e            # inspect a single session by ID prefix`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSessions,
}

func init() {
	sessionsCmd.Flags().IntVar(&sessionsFlagDays, "days", 30, "Number of days to look back (0 for all)")
	sessionsCmd.Flags().IntVar(&sessionsFlagLimit, "limit", 15, "Maximum sessions to display")
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.close()

	ctx := cmd.Context()

	if len(args) == 1 {
		return runInspect(cmd, e, args[0])
	}

	var since time.Time
	if sessionsFlagDays > 0 {
		since = time.Now().AddDate(0, 0, -sessionsFlagDays)
	}
	sessions, err := e.db.ListSessions(ctx, e.cfg.UserID, since, sessionsFlagLimit)
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}

	if flagJSON {
		if sessions == nil {
			sessions = []store.FocusSession{}
		}
		return printJSON(sessions)
	}

	renderSessions(sessions)
	return nil
}

// runInspect shows a single session.
func runInspect(cmd *cobra.Command, e *env, prefix string) error {
	fs, err := resolveSession(cmd.Context(), e, prefix)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(fs)
	}

	fmt.Println(output.Section("Session " + truncateID(fs.ID)))
	fmt.Println()
	row := func(label, value string) {
		fmt.Printf(" %s %s\n", output.StyleLabel.Render(label), value)
	}
	row("ID", fs.ID)
	row("Status", output.StatusLabel(fs.Status))
	row("Started", fs.StartedAt.Local().Format("2006-01-02 15:04"))
	if !fs.EndedAt.IsZero() {
		row("Ended", fs.EndedAt.Local().Format("2006-01-02 15:04"))
	}
	row("Planned", formatMinutes(fs.PlannedDurationSeconds))
	row("Actual", formatMinutes(fs.ActualDurationSeconds))
	row("Distractions", fmt.Sprintf("%d", fs.TotalDistractions))
	row("Pauses", fmt.Sprintf("%d", fs.TotalPauses))
	return nil
}

func renderSessions(sessions []store.FocusSession) {
	fmt.Println(output.Section("Focus Sessions"))
	fmt.Println()

	if len(sessions) == 0 {
		fmt.Println(" No sessions recorded yet. Use 'focuscoach record' to add one.")
		return
	}

	tbl := output.NewTable("Started", "Status", "Planned", "Actual", "Distractions", "ID").AlignRight(2, 3, 4)
	for _, s := range sessions {
		tbl.AddRow(
			s.StartedAt.Local().Format("2006-01-02 15:04"),
			output.StatusLabel(s.Status),
			formatMinutes(s.PlannedDurationSeconds),
			formatMinutes(s.ActualDurationSeconds),
			fmt.Sprintf("%d", s.TotalDistractions),
			output.StyleMuted.Render(truncateID(s.ID)),
		)
	}
	tbl.Print()
}

// resolveSession finds one of the user's sessions. A full ID is looked up
// directly; a shorter prefix is matched against all of the user's sessions.
func resolveSession(ctx context.Context, e *env, prefix string) (*store.FocusSession, error) {
	fs, err := e.db.GetSession(ctx, e.cfg.UserID, prefix)
	if errors.Is(err, store.ErrNotFound) {
		all, lerr := e.db.ListSessions(ctx, e.cfg.UserID, time.Time{}, 0)
		if lerr != nil {
			return nil, fmt.Errorf("listing sessions: %w", lerr)
		}
		var matches []store.FocusSession
		for _, s := range all {
			if strings.HasPrefix(s.ID, prefix) {
				matches = append(matches, s)
			}
		}
		switch len(matches) {
		case 0:
			return nil, fmt.Errorf("no session matching %q", prefix)
		case 1:
			return &matches[0], nil
		default:
			return nil, fmt.Errorf("%d sessions match %q; use a longer prefix", len(matches), prefix)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return fs, nil
}
