package cmd

import (
	"github.com/clusterlab/nodealloc/internal/utils"
	"github.com/spf13/cobra"
)

var partitionsCmd = &cobra.Command{
	Use:   "partitions",
	Short: "List the partitions known to the scheduler",
	Long: `Query sinfo for the current partition names. Useful before allocating
into a specific partition with 'allocate -p'.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newManager()
		if err != nil {
			utils.PrintError("%v", err)
			return err
		}

		catalog := mgr.ListPartitions(cmd.Context())

		if jsonOutput {
			return printJSON(catalog)
		}

		if !catalog.Available {
			utils.PrintWarning("Partition catalog is unavailable (sinfo not usable)")
			return errSilent
		}
		if len(catalog.Names) == 0 {
			utils.PrintMessage("No partitions reported")
			return nil
		}
		utils.PrintMessage("%s", utils.StyleTitle("Partitions"))
		for _, name := range catalog.Names {
			utils.PrintMessage("  %s", utils.StyleName(name))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(partitionsCmd)
}
