package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/habitflow/habitflow/internal/app/engagement"
)

func init() {
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show TASK",
	Short: "Show detailed information about a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	d, err := openDaemon(readOnly)
	if err != nil {
		return err
	}
	defer d.Close()

	t, err := resolveTask(d.Store.Snapshot(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:          %s\n", t.ID)
	fmt.Fprintf(out, "Title:       %s\n", t.Title)
	if t.Description != "" {
		fmt.Fprintf(out, "Description: %s\n", t.Description)
	}
	fmt.Fprintf(out, "Kind:        %s\n", t.Kind)
	if t.Color != "" {
		fmt.Fprintf(out, "Color:       %s\n", t.Color)
	}
	if t.WeeklyTarget != nil {
		fmt.Fprintf(out, "Target:      %d per week\n", *t.WeeklyTarget)
	}
	if t.Frequency != nil {
		fmt.Fprintf(out, "Frequency:   every %d %s\n", t.Frequency.Value, t.Frequency.Unit)
	}
	fmt.Fprintf(out, "Streak:      %d (longest %d)\n", t.Streak, engagement.LongestStreak(t.CompletionDates))
	fmt.Fprintf(out, "Points:      %d\n", t.Points)
	fmt.Fprintf(out, "Completions: %d\n", len(t.CompletionDates))
	if n := len(t.CompletionDates); n > 0 {
		recent := t.CompletionDates[max(0, n-7):]
		dates := make([]string, len(recent))
		for i, day := range recent {
			dates[i] = string(day)
		}
		fmt.Fprintf(out, "Recent:      %s\n", strings.Join(dates, ", "))
	}
	fmt.Fprintf(out, "Created:     %s\n", t.CreatedAt.Format("2006-01-02 15:04:05"))

	return nil
}
