package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/clusterlab/nodealloc/internal/allocation"
	"github.com/clusterlab/nodealloc/internal/config"
	"github.com/clusterlab/nodealloc/internal/utils"
)

// errSilent signals a non-zero exit whose details were already printed,
// typically as JSON. Execute suppresses its message.
var errSilent = errors.New("")

// newManager wires the configured Slurm binaries into a lifecycle manager.
// A missing salloc is reported here once instead of per command.
func newManager() (*allocation.Manager, error) {
	client, err := allocation.NewSlurmClientWithBinaries(
		config.Global.SallocBin,
		config.Global.SqueueBin,
		config.Global.ScancelBin,
		config.Global.SinfoBin,
	)
	if err != nil {
		return nil, fmt.Errorf("%w; please install Slurm or set salloc_bin in the config", allocation.ErrSlurmNotAvailable)
	}
	client.SetQueryTimeout(config.Global.QueryTimeout)

	mgr := allocation.NewManager(client)
	mgr.SetTimeouts(config.Global.AllocateTimeout, config.Global.ImmediateTimeout)
	return mgr, nil
}

// printJSON writes v to stdout as indented JSON, for --json consumers.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// joinNodes renders a node list for human output.
func joinNodes(nodes []string) string {
	if len(nodes) == 0 {
		return "(none)"
	}
	return strings.Join(nodes, ", ")
}

// reportResult prints a human-readable allocation result and returns an
// error for statuses the caller should treat as command failure.
func reportResult(res *allocation.AllocationResult) error {
	switch res.Status {
	case allocation.StatusAllocated:
		utils.PrintSuccess("%s", res.Message)
		utils.PrintMessage("Allocation ID: %s", utils.StyleNumber(res.AllocationID))
		utils.PrintMessage("Nodes: %s", utils.StyleName(joinNodes(res.AllocatedNodes)))
		return nil

	case allocation.StatusAllocatedUnknownID:
		utils.PrintWarning("%s", res.Message)
		if res.RawOutput != "" {
			utils.PrintDebug("salloc output: %s", res.RawOutput)
		}
		return nil

	case allocation.StatusRejected:
		utils.PrintError("%s", res.Message)
		if len(res.AvailablePartitions) > 0 {
			utils.PrintHint("Available partitions: %s", strings.Join(res.AvailablePartitions, ", "))
		}
		return errSilent

	case allocation.StatusTimedOut:
		utils.PrintError("%s", res.Message)
		return errSilent

	default:
		utils.PrintError("%s", res.Message)
		if res.CommandUsed != "" {
			utils.PrintDebug("command: %s", utils.StyleCommand(res.CommandUsed))
		}
		return errSilent
	}
}
