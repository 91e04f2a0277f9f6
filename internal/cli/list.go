package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/habitflow/habitflow/internal/domain"
)

func init() {
	listCmd.Flags().StringVarP(&listKind, "kind", "k", "", "Only show tasks of this kind (habit, daily, todo)")
	rootCmd.AddCommand(listCmd)
}

var listKind string

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks with today's status and streaks",
	RunE:    runList,
}

func runList(cmd *cobra.Command, args []string) error {
	kind := domain.TaskKind(strings.ToLower(listKind))
	if kind != "" {
		if err := domain.ValidateKind(kind); err != nil {
			return err
		}
	}

	d, err := openDaemon(readOnly)
	if err != nil {
		return err
	}
	defer d.Close()

	snap := d.Store.Snapshot()
	today := d.Store.Today()
	out := cmd.OutOrStdout()

	var tasks []domain.Task
	for _, t := range snap.Tasks {
		if kind == "" || t.Kind == kind {
			tasks = append(tasks, t)
		}
	}
	if len(tasks) == 0 {
		fmt.Fprintln(out, "No tasks yet. Run 'habitflow add <title>' to get started.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tKIND\tTODAY\tSTREAK\tPOINTS")
	for _, t := range tasks {
		status := " "
		if t.CompletedOn(today) {
			status = "x"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t[%s]\t%d\t%d\n",
			shortID(t.ID),
			t.Title,
			t.Kind,
			status,
			t.Streak,
			t.Points,
		)
	}
	return w.Flush()
}
