package cmd

import (
	"github.com/clusterlab/nodealloc/internal/allocation"
	"github.com/clusterlab/nodealloc/internal/utils"
	"github.com/spf13/cobra"
)

var allocateReq allocation.AllocationRequest

var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Request a node allocation from Slurm",
	Long: `Request a node allocation via salloc and report the outcome.

The allocation is created detached (--no-shell); use the printed
allocation ID with 'status' and 'deallocate' to manage it. With
--immediate the request fails fast when nodes are not free right now.`,
	Example: `  nodealloc allocate -N 2 -t 1:00:00 -J myjob
  nodealloc allocate -p gpu --gres gpu:1 --immediate
  nodealloc allocate -w node001,node002 --exclusive`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newManager()
		if err != nil {
			utils.PrintError("%v", err)
			return err
		}

		utils.PrintDebug("requesting %d node(s)", allocateReq.NumNodes)
		res := mgr.Allocate(cmd.Context(), allocateReq)
		utils.PrintDebug("command: %s", utils.StyleCommand(res.CommandUsed))

		if jsonOutput {
			if err := printJSON(res); err != nil {
				return err
			}
			switch res.Status {
			case allocation.StatusAllocated, allocation.StatusAllocatedUnknownID:
				return nil
			default:
				return errSilent
			}
		}

		return reportResult(res)
	},
}

func init() {
	rootCmd.AddCommand(allocateCmd)

	flags := allocateCmd.Flags()
	flags.IntVarP(&allocateReq.NumNodes, "nodes", "N", 1, "Number of nodes to allocate")
	flags.StringVarP(&allocateReq.TimeLimit, "time", "t", "", "Time limit (HH:MM:SS), empty uses the scheduler default")
	flags.StringVarP(&allocateReq.JobName, "job-name", "J", "", "Name for the allocation")
	flags.BoolVar(&allocateReq.Exclusive, "exclusive", false, "Request exclusive node access")
	flags.StringSliceVarP(&allocateReq.SpecificNodes, "nodelist", "w", nil, "Specific nodes to request (comma-separated)")
	flags.StringVarP(&allocateReq.Partition, "partition", "p", "", "Target partition")
	flags.IntVarP(&allocateReq.CpusPerTask, "cpus-per-task", "c", 0, "CPUs per task")
	flags.StringVar(&allocateReq.Memory, "mem", "", "Memory per node, e.g. 4G")
	flags.StringVar(&allocateReq.Gres, "gres", "", "Generic resources, e.g. gpu:1")
	flags.BoolVar(&allocateReq.Immediate, "immediate", false, "Fail fast if nodes are not available now")
}
