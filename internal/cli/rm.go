package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(rmCmd)
}

var rmCmd = &cobra.Command{
	Use:   "rm TASK",
	Short: "Delete a task",
	Long:  `Delete a task and its completion history. Points already earned are kept.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runRm,
}

func runRm(cmd *cobra.Command, args []string) error {
	d, err := openDaemon(writable)
	if err != nil {
		return err
	}
	defer d.Close()

	t, err := resolveTask(d.Store.Snapshot(), args[0])
	if err != nil {
		return err
	}
	d.Store.DeleteTask(t.ID)

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %q\n", t.Title)
	return nil
}
