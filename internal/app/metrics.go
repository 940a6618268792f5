package app

import (
	"fmt"

	"github.com/blackwell-systems/focuscoach/internal/analyzer"
	"github.com/blackwell-systems/focuscoach/internal/output"
	"github.com/spf13/cobra"
)

var (
	metricsDays   int
	metricsHourly bool
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Completion rate, streaks, and daily stats",
	Long: `Summarize your finished focus sessions: how many you completed, how
long you focused, how often you were distracted, and your streak of days
with at least one completed session.`,
	RunE: runMetrics,
}

func init() {
	metricsCmd.Flags().IntVar(&metricsDays, "days", 7, "Number of days of daily stats to show")
	metricsCmd.Flags().BoolVar(&metricsHourly, "hourly", false, "Show completion by hour of day")
	rootCmd.AddCommand(metricsCmd)
}

func runMetrics(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.close()

	if metricsDays <= 0 {
		return fmt.Errorf("--days must be positive, got %d", metricsDays)
	}

	report, err := e.svc.Metrics(cmd.Context(), e.cfg.UserID, metricsDays)
	if err != nil {
		return fmt.Errorf("computing metrics: %w", err)
	}

	if flagJSON {
		return printJSON(report)
	}

	renderMetrics(report, metricsHourly)
	return nil
}

func renderMetrics(r analyzer.Report, hourly bool) {
	m := r.Metrics

	fmt.Println(output.Section("Focus Metrics"))
	fmt.Println()
	if m.TotalSessions == 0 {
		fmt.Println(" No finished sessions yet.")
		return
	}

	row := func(label, value string) {
		fmt.Printf(" %s %s\n", output.StyleLabel.Render(label), value)
	}
	row("Sessions", output.StyleValue.Render(fmt.Sprintf("%d", m.TotalSessions)))
	row("Completed / abandoned", fmt.Sprintf("%s / %s",
		output.StyleSuccess.Render(fmt.Sprintf("%d", m.CompletedSessions)),
		output.StyleError.Render(fmt.Sprintf("%d", m.AbandonedSessions))))
	row("Completion rate", output.RateBar(m.CompletionRate, 20))
	row("Focus time", fmt.Sprintf("%d min total, %d min avg", m.TotalFocusMinutes, m.AvgSessionMinutes))
	row("Distractions", fmt.Sprintf("%d total, %.1f per session", m.TotalDistractions, m.AvgDistractionsPerSession))
	row("Streak", fmt.Sprintf("%s current, %d longest",
		output.StyleBold.Render(fmt.Sprintf("%d days", m.CurrentStreak)), m.LongestStreak))

	fmt.Println(output.Section(fmt.Sprintf("Last %d Days", len(r.Daily))))
	fmt.Println()
	tbl := output.NewTable("Date", "Sessions", "Completed", "Focus", "Distractions").AlignRight(1, 2, 3, 4)
	for _, d := range r.Daily {
		tbl.AddRow(
			d.Date,
			fmt.Sprintf("%d", d.Sessions),
			fmt.Sprintf("%d", d.CompletedSessions),
			fmt.Sprintf("%dm", d.FocusMinutes),
			fmt.Sprintf("%d", d.Distractions),
		)
	}
	tbl.Print()

	if len(r.Distractions) > 0 {
		fmt.Println(output.Section("Distraction Types"))
		fmt.Println()
		renderDistractions(r.Distractions)
	}

	if !hourly {
		return
	}
	fmt.Println(output.Section("By Hour (UTC)"))
	fmt.Println()
	htbl := output.NewTable("Hour", "Sessions", "Completion").AlignRight(1)
	for _, h := range r.Hourly {
		if h.Sessions == 0 {
			continue
		}
		htbl.AddRow(fmt.Sprintf("%02d:00", h.Hour), fmt.Sprintf("%d", h.Sessions), output.RateBar(float64(h.CompletionRate), 10))
	}
	htbl.Print()
}
