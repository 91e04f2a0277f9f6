package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/habitflow/habitflow/internal/app/store"
	"github.com/habitflow/habitflow/internal/domain"
)

func init() {
	editCmd.Flags().StringVarP(&editTitle, "title", "t", "", "New title")
	editCmd.Flags().StringVarP(&editDescription, "description", "d", "", "New description")
	editCmd.Flags().StringVarP(&editKind, "kind", "k", "", "New kind: habit, daily or todo")
	editCmd.Flags().StringVar(&editColor, "color", "", "New display color")
	editCmd.Flags().IntVar(&editTarget, "target", 0, "New weekly target (1-7)")
	editCmd.Flags().StringVar(&editEvery, "every", "", `New repeat interval, e.g. "2 weeks"`)
	rootCmd.AddCommand(editCmd)
}

var (
	editTitle       string
	editDescription string
	editKind        string
	editColor       string
	editTarget      int
	editEvery       string
)

var editCmd = &cobra.Command{
	Use:   "edit TASK",
	Short: "Change a task's title, kind or schedule",
	Long: `Edit the fields given as flags; everything else is left as is.
Streaks, completions and points are derived and cannot be edited.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	var update store.TaskUpdate
	if flags.Changed("title") {
		update.Title = &editTitle
	}
	if flags.Changed("description") {
		update.Description = &editDescription
	}
	if flags.Changed("kind") {
		kind := domain.TaskKind(strings.ToLower(editKind))
		update.Kind = &kind
	}
	if flags.Changed("color") {
		update.Color = &editColor
	}
	if flags.Changed("target") {
		update.WeeklyTarget = &editTarget
	}
	if flags.Changed("every") {
		freq, err := parseFrequency(editEvery)
		if err != nil {
			return err
		}
		update.Frequency = freq
	}
	if update == (store.TaskUpdate{}) {
		return errors.New("nothing to change: pass at least one flag")
	}

	d, err := openDaemon(writable)
	if err != nil {
		return err
	}
	defer d.Close()

	t, err := resolveTask(d.Store.Snapshot(), args[0])
	if err != nil {
		return err
	}
	snap, err := d.Store.EditTask(t.ID, update)
	if err != nil {
		return err
	}

	edited, _ := snap.Task(t.ID)
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %q (%s)\n", edited.Title, shortID(edited.ID))
	return nil
}
