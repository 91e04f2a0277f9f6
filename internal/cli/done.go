package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	doneCmd.Flags().StringVar(&doneDate, "date", "", "Day to toggle as YYYY-MM-DD (default today)")
	rootCmd.AddCommand(doneCmd)
}

var doneDate string

var doneCmd = &cobra.Command{
	Use:     "done TASK",
	Aliases: []string{"toggle"},
	Short:   "Toggle a task's completion for a day",
	Long: `Mark a task complete for today (or --date). Running it again on the same
day undoes the completion and takes the points back.`,
	Args: cobra.ExactArgs(1),
	RunE: runDone,
}

func runDone(cmd *cobra.Command, args []string) error {
	d, err := openDaemon(writable)
	if err != nil {
		return err
	}
	defer d.Close()

	before := d.Store.Snapshot()
	t, err := resolveTask(before, args[0])
	if err != nil {
		return err
	}
	day, err := parseDay(doneDate, d.Store.Today())
	if err != nil {
		return err
	}

	snap, err := d.Store.ToggleDay(t.ID, day)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	toggled, _ := snap.Task(t.ID)
	if toggled.CompletedOn(day) {
		fmt.Fprintf(out, "Completed %q on %s: streak %d, %d points\n", toggled.Title, day, toggled.Streak, snap.TotalPoints)
	} else {
		fmt.Fprintf(out, "Undid %q on %s: streak %d, %d points\n", toggled.Title, day, toggled.Streak, snap.TotalPoints)
	}

	for _, r := range newlyUnlocked(before, snap) {
		fmt.Fprintf(out, "Unlocked reward: %s %s\n", r.Icon, r.Title)
	}
	return nil
}
