package app

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/blackwell-systems/focuscoach/internal/output"
	"github.com/blackwell-systems/focuscoach/internal/store"
	"github.com/spf13/cobra"
)

var (
	activityList    bool
	activityPage    int
	activityLimit   int
	activityPayload string
)

var activityCmd = &cobra.Command{
	Use:   "activity [action_type] [description]",
	Short: "Log and list coach activity",
	Long: `Append an entry to the coach activity log, or list entries newest first.

Examples:
  focuscoach activity suggestion_accepted "took the 20 minute block"
  focuscoach activity nudge_sent "reminded to start" --payload '{"minutes":20}'
  focuscoach activity --list
  focuscoach activity --list --page 2 --limit 20`,
	Args: cobra.ArbitraryArgs,
	RunE: runActivity,
}

func init() {
	activityCmd.Flags().BoolVar(&activityList, "list", false, "List logged activity")
	activityCmd.Flags().IntVar(&activityPage, "page", 1, "Page to show with --list")
	activityCmd.Flags().IntVar(&activityLimit, "limit", 10, "Entries per page with --list (max 50)")
	activityCmd.Flags().StringVar(&activityPayload, "payload", "", "Optional JSON object stored with the entry")
	rootCmd.AddCommand(activityCmd)
}

func runActivity(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.close()

	if activityList {
		return runActivityList(cmd, e)
	}

	if len(args) < 2 {
		return fmt.Errorf("usage: focuscoach activity <action_type> <description> [flags]\nUse --list to view logged activity")
	}

	entry := &store.ActivityEntry{
		UserID:      e.cfg.UserID,
		ActionType:  args[0],
		Description: args[1],
		CreatedAt:   time.Now(),
	}
	if activityPayload != "" {
		if !json.Valid([]byte(activityPayload)) {
			return fmt.Errorf("--payload is not valid JSON")
		}
		entry.Payload = json.RawMessage(activityPayload)
	}

	if err := e.db.InsertActivity(cmd.Context(), entry); err != nil {
		return fmt.Errorf("logging activity: %w", err)
	}

	fmt.Printf("Logged %s (id %s)\n", entry.ActionType, truncateID(entry.ID))
	return nil
}

func runActivityList(cmd *cobra.Command, e *env) error {
	ctx := cmd.Context()

	page := max(1, activityPage)
	limit := min(max(1, activityLimit), 50)

	total, err := e.db.CountActivity(ctx, e.cfg.UserID)
	if err != nil {
		return fmt.Errorf("counting activity: %w", err)
	}
	entries, err := e.db.ListActivity(ctx, e.cfg.UserID, limit, (page-1)*limit)
	if err != nil {
		return fmt.Errorf("listing activity: %w", err)
	}

	if flagJSON {
		return printJSON(map[string]any{"entries": entries, "total": total})
	}

	if total == 0 {
		fmt.Println("No activity logged yet. Use 'focuscoach activity <action_type> <description>' to start.")
		return nil
	}

	fmt.Println(output.Section("Coach Activity"))
	fmt.Println()

	tbl := output.NewTable("Time", "Action", "Description", "ID").MaxWidth(2, 48)
	for _, a := range entries {
		tbl.AddRow(
			a.CreatedAt.Local().Format("2006-01-02 15:04"),
			a.ActionType,
			a.Description,
			output.StyleMuted.Render(truncateID(a.ID)),
		)
	}
	tbl.Print()

	pages := (total + limit - 1) / limit
	fmt.Println(output.StyleMuted.Render(fmt.Sprintf(" Page %d of %d (%d entries)", page, pages, total)))
	return nil
}
