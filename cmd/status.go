package cmd

import (
	"github.com/clusterlab/nodealloc/internal/allocation"
	"github.com/clusterlab/nodealloc/internal/utils"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <allocation-id>",
	Short: "Show the current state of an allocation",
	Long: `Query squeue for one allocation and show its state and nodes.

An allocation that has completed and one that never existed look the
same: both report not_found.`,
	Example: `  nodealloc status 12345
  nodealloc status 12345 --json`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newManager()
		if err != nil {
			utils.PrintError("%v", err)
			return err
		}

		st := mgr.GetStatus(cmd.Context(), args[0])

		if jsonOutput {
			if err := printJSON(st); err != nil {
				return err
			}
			if st.State == string(allocation.StatusError) {
				return errSilent
			}
			return nil
		}

		switch st.State {
		case string(allocation.StatusError):
			utils.PrintError("%s", st.Message)
			return errSilent
		case allocation.StateNotFound:
			utils.PrintWarning("%s", st.Message)
			return nil
		case allocation.StateUnknown:
			utils.PrintWarning("Could not decode status for allocation %s", st.AllocationID)
			utils.PrintDebug("raw record: %s", st.RawOutput)
			return nil
		}

		utils.PrintMessage("Allocation %s: %s", utils.StyleNumber(st.AllocationID), utils.StyleInfo(st.State))
		utils.PrintMessage("Nodes: %s", utils.StyleName(joinNodes(st.Nodes)))
		if st.TimeElapsed != "" {
			utils.PrintMessage("Elapsed: %s / %s", st.TimeElapsed, st.TimeLimit)
		}
		if st.Partition != "" {
			utils.PrintMessage("Partition: %s", st.Partition)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
