package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/habitflow/habitflow/internal/app/engagement"
	"github.com/habitflow/habitflow/internal/domain"
)

func init() {
	rootCmd.AddCommand(rewardsCmd)
}

var rewardsCmd = &cobra.Command{
	Use:   "rewards",
	Short: "List reward tiers and which are unlocked",
	RunE:  runRewards,
}

func runRewards(cmd *cobra.Command, args []string) error {
	d, err := openDaemon(readOnly)
	if err != nil {
		return err
	}
	defer d.Close()

	snap := d.Store.Snapshot()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%d points\n\n", snap.TotalPoints)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REWARD\tREQUIRES\tSTATUS")
	for _, r := range snap.Rewards {
		status := fmt.Sprintf("%d to go", r.PointRequirement-snap.TotalPoints)
		if r.Unlocked {
			status = "unlocked"
			if r.UnlockedAt != "" {
				status += " " + string(r.UnlockedAt)
			}
		}
		fmt.Fprintf(w, "%s %s\t%d\t%s\n", r.Icon, r.Title, r.PointRequirement, status)
	}
	return w.Flush()
}

func newlyUnlocked(before, after domain.Snapshot) []domain.Reward {
	return engagement.NewlyUnlocked(before.Rewards, after.Rewards)
}
