package app

import (
	"fmt"
	"time"

	"github.com/blackwell-systems/focuscoach/internal/output"
	"github.com/blackwell-systems/focuscoach/internal/store"
	"github.com/spf13/cobra"
)

var (
	recordDistractions int
	recordPauses       int
	recordStarted      string
)

var recordCmd = &cobra.Command{
	Use:   "record <planned> <actual> <status>",
	Short: "Record a finished focus session",
	Long: `Record a focus session you have finished. Durations accept a unit
suffix (s, m, h); a bare number is seconds. Status is completed or abandoned.

Examples:
  focuscoach record 25m 25m completed
  focuscoach record 50m 18m abandoned --distractions 3
  focuscoach record 25m 25m completed --started 2026-03-10T09:00:00Z`,
	Args: cobra.ExactArgs(3),
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().IntVar(&recordDistractions, "distractions", 0, "Number of distractions during the session")
	recordCmd.Flags().IntVar(&recordPauses, "pauses", 0, "Number of pauses during the session")
	recordCmd.Flags().StringVar(&recordStarted, "started", "", "Start time in RFC 3339 (default: now minus the actual duration)")
	rootCmd.AddCommand(recordCmd)
}

// buildSession turns command arguments into a session ready to store.
func buildSession(userID string, args []string, now time.Time) (*store.FocusSession, error) {
	planned, err := parseDurationValue(args[0])
	if err != nil {
		return nil, fmt.Errorf("parsing planned duration %q: %w", args[0], err)
	}
	actual, err := parseDurationValue(args[1])
	if err != nil {
		return nil, fmt.Errorf("parsing actual duration %q: %w", args[1], err)
	}

	status := args[2]
	if status != store.StatusCompleted && status != store.StatusAbandoned {
		return nil, fmt.Errorf("status must be %s or %s, got %q", store.StatusCompleted, store.StatusAbandoned, status)
	}

	started := now.Add(-time.Duration(actual) * time.Second)
	if recordStarted != "" {
		started, err = time.Parse(time.RFC3339, recordStarted)
		if err != nil {
			return nil, fmt.Errorf("parsing --started: %w", err)
		}
	}

	return &store.FocusSession{
		UserID:                 userID,
		PlannedDurationSeconds: int(planned),
		ActualDurationSeconds:  int(actual),
		Status:                 status,
		StartedAt:              started,
		EndedAt:                started.Add(time.Duration(actual) * time.Second),
		TotalDistractions:      recordDistractions,
		TotalPauses:            recordPauses,
	}, nil
}

func runRecord(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.close()

	fs, err := buildSession(e.cfg.UserID, args, time.Now())
	if err != nil {
		return err
	}
	if err := e.db.InsertSession(cmd.Context(), fs); err != nil {
		return fmt.Errorf("recording session: %w", err)
	}

	if flagJSON {
		return printJSON(fs)
	}

	fmt.Printf("Recorded %s session: %s of %s planned (id %s)\n",
		output.StatusLabel(fs.Status),
		formatMinutes(fs.ActualDurationSeconds),
		formatMinutes(fs.PlannedDurationSeconds),
		truncateID(fs.ID),
	)
	return nil
}
