package allocation

import (
	"strconv"
	"strings"
)

// BuildSallocArgs assembles the salloc argument vector for a request.
// The flag order is fixed so command lines are stable across calls: node
// count first, then each optional flag only when its field is set, and
// --no-shell always last so salloc returns once the allocation decision is
// known instead of spawning an interactive session.
func BuildSallocArgs(req AllocationRequest) []string {
	numNodes := req.NumNodes
	if numNodes < 1 {
		numNodes = 1
	}

	args := []string{"-N", strconv.Itoa(numNodes)}

	// Presence of -t is semantic: when unset the scheduler default applies
	if req.TimeLimit != "" {
		args = append(args, "-t", req.TimeLimit)
	}
	if req.JobName != "" {
		args = append(args, "-J", req.JobName)
	}
	if req.Exclusive {
		args = append(args, "--exclusive")
	}
	if len(req.SpecificNodes) > 0 {
		args = append(args, "-w", strings.Join(req.SpecificNodes, ","))
	}
	if req.Partition != "" {
		args = append(args, "-p", req.Partition)
	}
	if req.CpusPerTask > 0 {
		args = append(args, "-c", strconv.Itoa(req.CpusPerTask))
	}
	if req.Memory != "" {
		args = append(args, "--mem", req.Memory)
	}
	if req.Gres != "" {
		args = append(args, "--gres", req.Gres)
	}
	if req.Immediate {
		args = append(args, "--immediate")
	}

	args = append(args, "--no-shell")
	return args
}

// CommandLine renders the literal command for diagnostics, as it would be
// typed in a shell.
func CommandLine(args []string) string {
	return strings.Join(append([]string{"salloc"}, args...), " ")
}
