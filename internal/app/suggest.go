package app

import (
	"fmt"

	"github.com/blackwell-systems/focuscoach/internal/output"
	"github.com/blackwell-systems/focuscoach/internal/service"
	"github.com/spf13/cobra"
)

var (
	suggestSegment string
	suggestStats   bool
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Recommend the length of your next focus session",
	Long: `Look at your most recent finished sessions and recommend how long the
next one should be. Sessions that keep ending early suggest a shorter block;
sessions that consistently finish on plan suggest a slightly longer one.

At least three finished sessions are needed before the recommendation
differs from your default.`,
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().StringVar(&suggestSegment, "segment", "", "Session context such as deep_work (accepted, not yet used)")
	suggestCmd.Flags().BoolVar(&suggestStats, "stats", false, "Show the statistics behind the recommendation")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.close()

	sg, err := e.svc.Suggest(cmd.Context(), e.cfg.UserID, suggestSegment)
	if err != nil {
		return fmt.Errorf("computing suggestion: %w", err)
	}

	if flagJSON {
		if suggestStats {
			return printJSON(sg)
		}
		return printJSON(sg.Result)
	}

	renderSuggestion(sg, suggestStats)
	return nil
}

func renderSuggestion(sg *service.Suggestion, withStats bool) {
	fmt.Println(output.Section("Next Focus Session"))
	fmt.Println()

	fmt.Printf(" %s %s %s\n",
		output.StyleLabel.Render("Focus"),
		output.StyleValue.Render(fmt.Sprintf("%d min", sg.SuggestedDurationMinutes)),
		output.MinutesDelta(sg.DefaultFocusMinutes, sg.SuggestedDurationMinutes),
	)
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Break"),
		output.StyleValue.Render(fmt.Sprintf("%d min", sg.SuggestedBreakMinutes)),
	)
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Your default"),
		output.StyleMuted.Render(fmt.Sprintf("%d min", sg.DefaultFocusMinutes)),
	)
	fmt.Println()

	switch {
	case sg.Reason != nil:
		fmt.Printf(" %s\n", output.StyleWarning.Render(*sg.Reason))
	case sg.SessionCountUsed == 0:
		fmt.Println(output.StyleMuted.Render(" No finished sessions yet. Record a few with 'focuscoach record'."))
	default:
		fmt.Println(output.StyleMuted.Render(fmt.Sprintf(" Based on %d sessions, stick with your default.", sg.SessionCountUsed)))
	}

	if !withStats {
		return
	}

	fmt.Println(output.Section("Statistics"))
	fmt.Println()
	if sg.Stats == nil {
		fmt.Println(output.StyleMuted.Render(" Not enough history to analyze."))
		return
	}
	st := sg.Stats
	tbl := output.NewTable("Measure", "Value")
	tbl.AddRow("Sessions", fmt.Sprintf("%d", st.SessionCount))
	tbl.AddRow("Median actual", fmt.Sprintf("%.1f min", st.MedianActual))
	tbl.AddRow("Median planned", fmt.Sprintf("%.1f min", st.MedianPlanned))
	tbl.AddRow("Weighted actual", fmt.Sprintf("%.1f min", st.WeightedActual))
	tbl.AddRow("Trimmed mean actual", fmt.Sprintf("%.1f min", st.TrimmedMeanActual))
	tbl.AddRow("Abandonment", output.RateBar(st.AbandonmentRate*100, 10))
	tbl.Print()
}
