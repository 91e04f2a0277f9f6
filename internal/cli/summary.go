package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/habitflow/habitflow/internal/app/engagement"
)

func init() {
	summaryCmd.Flags().BoolVar(&summaryPerformance, "performance", false, "Also list per-task completions and streaks")
	rootCmd.AddCommand(summaryCmd)
}

var summaryPerformance bool

var summaryCmd = &cobra.Command{
	Use:     "summary",
	Aliases: []string{"stats"},
	Short:   "Show today's progress, level and the last seven days",
	RunE:    runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	d, err := openDaemon(readOnly)
	if err != nil {
		return err
	}
	defer d.Close()

	snap := d.Store.Snapshot()
	sum := d.Store.Summary()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Today:     %d/%d completed (%.0f%%)\n", sum.CompletedToday, sum.Total, sum.CompletionRate)
	fmt.Fprintf(out, "At risk:   %d\n", sum.AtRiskCount)
	fmt.Fprintf(out, "Points:    %d\n", snap.TotalPoints)
	fmt.Fprintf(out, "Rewards:   %d/%d unlocked\n", snap.UnlockedCount(), len(snap.Rewards))
	fmt.Fprintln(out, renderLevel(engagement.LevelForPoints(snap.TotalPoints), engagement.PointsToNextLevel(snap.TotalPoints)))
	if snap.Quote != "" {
		fmt.Fprintf(out, "\n  %q\n", snap.Quote)
	}

	fmt.Fprintln(out, "\nLast 7 days:")
	for _, row := range renderActivity(d.Store.Activity()) {
		fmt.Fprintln(out, "  "+row)
	}

	if !summaryPerformance || len(snap.Tasks) == 0 {
		return nil
	}

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TITLE\tCOMPLETIONS\tSTREAK\tLONGEST")
	for _, p := range engagement.Performance(snap.Tasks) {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", p.Title, p.Completions, p.Streak, p.Longest)
	}
	return w.Flush()
}
