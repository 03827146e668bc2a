// Package allocation manages the lifecycle of compute-node allocations
// against a Slurm scheduler: requesting nodes with salloc, querying live
// allocations with squeue, and releasing them with scancel. The scheduler
// is the only durable store of allocation state; this package keeps no
// registry between calls.
package allocation

// Status classifies the outcome of an allocation lifecycle operation.
// The string values match what the scheduler tooling reports on the wire
// so results can be logged and compared against operator expectations.
type Status string

const (
	// StatusAllocated indicates nodes were granted and a job ID was parsed.
	StatusAllocated Status = "allocated"

	// StatusAllocatedUnknownID indicates the allocation command succeeded
	// but no job ID could be extracted from its output. This happens with
	// immediate allocations whose output is minimal; the allocation may
	// still exist on the scheduler side.
	StatusAllocatedUnknownID Status = "allocated_no_id"

	// StatusRejected indicates the request was refused, either by local
	// validation (unknown partition) or by the scheduler itself.
	StatusRejected Status = "rejected"

	// StatusTimedOut indicates the bounded wait expired before the
	// scheduler answered. The allocation may or may not have been granted.
	StatusTimedOut Status = "timeout"

	// StatusError indicates any other failure.
	StatusError Status = "error"

	// StatusDeallocated indicates a cancel request was accepted.
	StatusDeallocated Status = "deallocated"
)

// Status-line states reported by GetStatus in addition to the scheduler's
// own job states (RUNNING, PENDING, ...), which are passed through opaquely.
const (
	// StateNotFound means the scheduler has no record of the allocation.
	// A completed job and a job that never existed are indistinguishable.
	StateNotFound = "not_found"

	// StateUnknown means the status record could not be decoded.
	StateUnknown = "unknown"
)

// AllocationRequest describes a node allocation to be requested via salloc.
// Zero values mean "not specified": the corresponding flag is omitted and
// the scheduler's own default applies. TimeLimit in particular is
// presence-sensitive, an empty string omits -t entirely rather than
// passing a default.
type AllocationRequest struct {
	NumNodes      int      // Number of nodes (defaults to 1 when < 1)
	TimeLimit     string   // HH:MM:SS, empty = scheduler default
	JobName       string   // Optional job name (-J)
	Exclusive     bool     // Request exclusive node access
	SpecificNodes []string // Specific node names to request (-w)
	Partition     string   // Target partition (-p)
	CpusPerTask   int      // CPUs per task (-c), 0 = unset
	Memory        string   // Memory requirement, e.g. "4G" (--mem)
	Gres          string   // Generic resources, e.g. "gpu:1" (--gres)
	Immediate     bool     // Fail fast if nodes are not available now
}

// AllocationResult is the outcome of a single Allocate call. It is created
// once and never mutated; the caller is responsible for retaining
// AllocationID for later GetStatus/Deallocate calls.
type AllocationResult struct {
	Status         Status   `json:"status"`
	AllocationID   string   `json:"allocation_id,omitempty"`
	AllocatedNodes []string `json:"allocated_nodes,omitempty"`
	Message        string   `json:"message"`
	CommandUsed    string   `json:"command_used,omitempty"`
	RawOutput      string   `json:"raw_output,omitempty"`
	RawError       string   `json:"raw_error,omitempty"`

	// AvailablePartitions is populated on a validation rejection so the
	// caller can retry with a known-good partition.
	AvailablePartitions []string `json:"available_partitions,omitempty"`
}

// AllocationStatus is one decoded squeue record for an allocation, or a
// not_found/unknown placeholder. Scheduler-reported fields are kept as
// opaque strings; nothing here re-interprets them.
type AllocationStatus struct {
	AllocationID string   `json:"allocation_id"`
	State        string   `json:"state"`
	Nodes        []string `json:"nodes"`
	NumNodes     string   `json:"num_nodes,omitempty"`
	Cpus         string   `json:"cpus,omitempty"`
	TimeElapsed  string   `json:"time_elapsed,omitempty"`
	TimeLimit    string   `json:"time_limit,omitempty"`
	Partition    string   `json:"partition,omitempty"`
	User         string   `json:"user,omitempty"`
	Message      string   `json:"message,omitempty"`
	RawOutput    string   `json:"raw_output,omitempty"`
}

// DeallocationResult is the outcome of a Deallocate call. Cancellation is
// idempotent: cancelling an unknown or completed allocation yields a
// well-formed result, never a panic or error.
type DeallocationResult struct {
	AllocationID string `json:"allocation_id"`
	Status       Status `json:"status"`
	Message      string `json:"message"`
}

// PartitionCatalog holds the partition names currently known to the
// scheduler. Available is false when the catalog query itself failed, in
// which case validation proceeds permissively.
type PartitionCatalog struct {
	Available bool     `json:"available"`
	Names     []string `json:"names"`
}

// Has reports whether the catalog contains the named partition.
func (c *PartitionCatalog) Has(name string) bool {
	for _, n := range c.Names {
		if n == name {
			return true
		}
	}
	return false
}

// ValidationResult is the outcome of pre-flight request validation.
type ValidationResult struct {
	OK                  bool     `json:"ok"`
	Reason              string   `json:"reason,omitempty"`
	AvailablePartitions []string `json:"available_partitions,omitempty"`
}
