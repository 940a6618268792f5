package app

import (
	"fmt"
	"time"

	"github.com/blackwell-systems/focuscoach/internal/output"
	"github.com/spf13/cobra"
)

var (
	notesRefresh bool
	notesDismiss string
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Show coaching notes raised from your distraction patterns",
	Long: `List open coaching notes, newest first.

Examples:
  focuscoach notes
  focuscoach notes --refresh          # look for new patterns first
  focuscoach notes --dismiss <id>`,
	Args: cobra.NoArgs,
	RunE: runNotes,
}

func init() {
	notesCmd.Flags().BoolVar(&notesRefresh, "refresh", false, "Check recent distractions for new notes before listing")
	notesCmd.Flags().StringVar(&notesDismiss, "dismiss", "", "Dismiss the note with this ID")
	rootCmd.AddCommand(notesCmd)
}

func runNotes(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.close()

	ctx := cmd.Context()

	if notesDismiss != "" {
		if err := e.db.DismissNote(ctx, e.cfg.UserID, notesDismiss, time.Now()); err != nil {
			return fmt.Errorf("dismissing note %s: %w", notesDismiss, err)
		}
		fmt.Printf("Dismissed note %s\n", truncateID(notesDismiss))
		return nil
	}

	if notesRefresh {
		created, err := e.svc.RefreshNotes(ctx, e.cfg.UserID)
		if err != nil {
			return fmt.Errorf("refreshing notes: %w", err)
		}
		if !flagJSON && created > 0 {
			fmt.Printf("%d new note(s)\n\n", created)
		}
	}

	notes, err := e.db.ListActiveNotes(ctx, e.cfg.UserID)
	if err != nil {
		return fmt.Errorf("listing notes: %w", err)
	}
	if flagJSON {
		return printJSON(notes)
	}

	fmt.Println(output.Section("Coach Notes"))
	fmt.Println()
	if len(notes) == 0 {
		fmt.Println(" No open notes.")
		return nil
	}
	for _, n := range notes {
		fmt.Printf(" %s %s\n", output.StyleBold.Render(n.Title), output.StyleMuted.Render(truncateID(n.ID)))
		fmt.Printf("   %s\n", n.Body)
		if n.SuggestionText != "" {
			fmt.Printf("   %s\n", output.StyleSuccess.Render(n.SuggestionText))
		}
		fmt.Println()
	}
	return nil
}
