package cmd

import (
	"github.com/clusterlab/nodealloc/internal/allocation"
	"github.com/clusterlab/nodealloc/internal/utils"
	"github.com/spf13/cobra"
)

var deallocateCmd = &cobra.Command{
	Use:     "deallocate <allocation-id>",
	Aliases: []string{"cancel"},
	Short:   "Release a node allocation",
	Long: `Cancel an allocation with scancel. Cancelling an allocation that has
already completed, or one that never existed, reports the scheduler's
error but is otherwise harmless.`,
	Example:       `  nodealloc deallocate 12345`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newManager()
		if err != nil {
			utils.PrintError("%v", err)
			return err
		}

		res := mgr.Deallocate(cmd.Context(), args[0])

		if jsonOutput {
			if err := printJSON(res); err != nil {
				return err
			}
			if res.Status != allocation.StatusDeallocated {
				return errSilent
			}
			return nil
		}

		if res.Status != allocation.StatusDeallocated {
			utils.PrintError("%s", res.Message)
			return errSilent
		}
		utils.PrintSuccess("%s", res.Message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deallocateCmd)
}
