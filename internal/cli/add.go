package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/habitflow/habitflow/internal/app/store"
	"github.com/habitflow/habitflow/internal/domain"
)

func init() {
	addCmd.Flags().StringVarP(&addKind, "kind", "k", "habit", "Task kind: habit, daily or todo")
	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "Longer description")
	addCmd.Flags().StringVar(&addColor, "color", "", "Display color, e.g. #22c55e")
	addCmd.Flags().IntVar(&addTarget, "target", 0, "Completions per week to aim for (1-7)")
	addCmd.Flags().StringVar(&addEvery, "every", "", `Repeat interval, e.g. "2 weeks" or "days"`)
	rootCmd.AddCommand(addCmd)
}

var (
	addKind        string
	addDescription string
	addColor       string
	addTarget      int
	addEvery       string
)

var addCmd = &cobra.Command{
	Use:   "add TITLE",
	Short: "Add a habit, daily or todo",
	Long: `Add a new task.

Examples:
  habitflow add "Read 20 pages"
  habitflow add "Gym" --kind daily --target 3
  habitflow add "Water plants" --every "3 days"
  habitflow add "File taxes" --kind todo`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	spec := store.NewTask{
		Title:       strings.Join(args, " "),
		Description: addDescription,
		Kind:        domain.TaskKind(strings.ToLower(addKind)),
		Color:       addColor,
	}
	if cmd.Flags().Changed("target") {
		target := addTarget
		spec.WeeklyTarget = &target
	}
	if addEvery != "" {
		freq, err := parseFrequency(addEvery)
		if err != nil {
			return err
		}
		spec.Frequency = freq
	}

	d, err := openDaemon(writable)
	if err != nil {
		return err
	}
	defer d.Close()

	task, _, err := d.Store.AddTask(spec)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added %s %q (%s)\n", task.Kind, task.Title, shortID(task.ID))
	return nil
}

// parseFrequency accepts "N unit" or a bare unit meaning N = 1. Singular
// units are accepted.
func parseFrequency(s string) (*domain.Frequency, error) {
	fields := strings.Fields(strings.ToLower(s))
	value := 1
	switch len(fields) {
	case 1:
	case 2:
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("--every %q: count must be a number", s)
		}
		value = n
		fields = fields[1:]
	default:
		return nil, fmt.Errorf("--every %q: want e.g. \"2 weeks\"", s)
	}

	unit := fields[0]
	if !strings.HasSuffix(unit, "s") {
		unit += "s"
	}
	freq := &domain.Frequency{Unit: domain.FrequencyUnit(unit), Value: value}
	if err := freq.Validate(); err != nil {
		return nil, err
	}
	return freq, nil
}
