package cmd

import (
	"fmt"

	"github.com/clusterlab/nodealloc/internal/allocation"
	"github.com/spf13/cobra"
)

var expandCmd = &cobra.Command{
	Use:   "expand <node-expression>",
	Short: "Expand a compact Slurm node expression into individual names",
	Long: `Expand bracketed node expressions like node[1-3] or cn[01,05] into one
name per line. Expressions without brackets are split on commas.`,
	Example: `  nodealloc expand 'node[1-3]'
  nodealloc expand 'gpu[01,05],cn42'`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		names := allocation.ExpandNodeList(args[0])

		if jsonOutput {
			return printJSON(names)
		}

		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(expandCmd)
}
