package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/habitflow/habitflow/internal/daemon"
	"github.com/habitflow/habitflow/internal/infra/jsonfile"
)

func init() {
	exportCmd.Flags().StringVarP(&exportFile, "output", "o", "", "Write to this file instead of stdout")
	importCmd.Flags().BoolVar(&importForce, "force", false, "Replace existing tasks")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

var (
	exportFile  string
	importForce bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the full state as JSON",
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Replace the stored state with a JSON export",
	Long: `Load a file written by 'habitflow export' into the data directory.
Use '-' to read from stdin. Refused while 'habitflow serve' is running.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runExport(cmd *cobra.Command, args []string) error {
	d, err := openDaemon(readOnly)
	if err != nil {
		return err
	}
	defer d.Close()

	var w io.Writer = cmd.OutOrStdout()
	if exportFile != "" {
		f, err := os.Create(exportFile)
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := jsonfile.WriteSnapshot(w, d.Store.Snapshot()); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if exportFile != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", exportFile)
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open import file: %w", err)
		}
		defer f.Close()
		r = f
	}

	snap, err := jsonfile.ReadSnapshot(r)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	cfg, err := daemon.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := ensureServerStopped(cfg); err != nil {
		return err
	}
	storage, err := daemon.OpenStorage(cfg)
	if err != nil {
		return err
	}
	defer storage.Close()

	ctx := commandContext(cmd)
	current, err := storage.Persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("load current state: %w", err)
	}
	if current != nil {
		if len(current.Tasks) > 0 && !importForce {
			return errors.New("data directory already has tasks, pass --force to replace them")
		}
		// Saves are last-write-wins by version, so the import must outrank
		// whatever is stored.
		snap.Version = max(snap.Version, current.Version+1)
	}

	if err := storage.Persister.Save(ctx, snap); err != nil {
		return fmt.Errorf("save imported state: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d tasks, %d points\n", len(snap.Tasks), snap.TotalPoints)
	return nil
}
