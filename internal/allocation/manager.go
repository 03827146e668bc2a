package allocation

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Default bounded waits for salloc. These are policy, not protocol, and can
// be tuned through the config layer.
const (
	DefaultAllocateTimeout  = 30 * time.Second
	DefaultImmediateTimeout = 10 * time.Second
)

// Manager orchestrates the allocation lifecycle: validate, build the
// command, invoke, parse, classify. It holds no mutable state between
// calls, so a single Manager is safe for concurrent use; the scheduler
// itself is the only shared resource.
type Manager struct {
	client           SchedulerClient
	allocateTimeout  time.Duration
	immediateTimeout time.Duration
}

// NewManager creates a Manager on top of a SchedulerClient.
func NewManager(client SchedulerClient) *Manager {
	return &Manager{
		client:           client,
		allocateTimeout:  DefaultAllocateTimeout,
		immediateTimeout: DefaultImmediateTimeout,
	}
}

// SetTimeouts overrides the salloc wait budgets. Zero values keep the
// current setting.
func (m *Manager) SetTimeouts(allocate, immediate time.Duration) {
	if allocate > 0 {
		m.allocateTimeout = allocate
	}
	if immediate > 0 {
		m.immediateTimeout = immediate
	}
}

// Allocate requests nodes from the scheduler and classifies the outcome.
// It never returns an error: every failure mode is folded into the result
// so callers can decide what is fatal for them.
func (m *Manager) Allocate(ctx context.Context, req AllocationRequest) *AllocationResult {
	if !m.client.IsAvailable() {
		return &AllocationResult{
			Status:  StatusError,
			Message: "Slurm is not available on this system. Please install Slurm.",
		}
	}

	// Fail fast on an unknown partition before spending the request
	if req.Partition != "" {
		if v := m.Validate(ctx, req); !v.OK {
			return &AllocationResult{
				Status:              StatusRejected,
				Message:             v.Reason,
				AvailablePartitions: v.AvailablePartitions,
			}
		}
	}

	args := BuildSallocArgs(req)
	command := CommandLine(args)

	timeout := m.allocateTimeout
	if req.Immediate {
		timeout = m.immediateTimeout
	}

	proc, err := m.client.Run(ctx, args, timeout)
	if err != nil {
		return &AllocationResult{
			Status:      StatusError,
			Message:     fmt.Sprintf("Error during node allocation: %v", err),
			CommandUsed: command,
		}
	}

	if proc.TimedOut {
		// The scheduler may have granted the allocation even though we gave
		// up waiting. If an ID made it into the partial output, hand it to
		// the caller so they can follow up.
		ack := ParseAcknowledgment(proc.Stdout, proc.Stderr)
		msg := "Node allocation request timed out. This might indicate the nodes are not immediately available."
		if ack.JobID != "" {
			msg += fmt.Sprintf(" A job ID %s was seen before the timeout; check it with get-status or cancel it with deallocate.", ack.JobID)
		}
		return &AllocationResult{
			Status:       StatusTimedOut,
			AllocationID: ack.JobID,
			Message:      msg,
			CommandUsed:  command,
			RawOutput:    strings.TrimSpace(proc.Stdout),
			RawError:     strings.TrimSpace(proc.Stderr),
		}
	}

	if proc.ExitCode != 0 {
		return m.classifyFailure(proc, command)
	}

	ack := ParseAcknowledgment(proc.Stdout, proc.Stderr)
	if ack.JobID == "" {
		// Exit 0 but nothing parseable: the allocation may exist with
		// minimal output, common for immediate allocations.
		return &AllocationResult{
			Status:      StatusAllocatedUnknownID,
			Message:     "Nodes may have been allocated but job ID could not be determined",
			CommandUsed: command,
			RawOutput:   strings.TrimSpace(proc.Stdout),
			RawError:    strings.TrimSpace(proc.Stderr),
		}
	}

	nodes := ack.Nodes
	if nodes == nil {
		nodes = []string{}
	}
	return &AllocationResult{
		Status:         StatusAllocated,
		AllocationID:   ack.JobID,
		AllocatedNodes: nodes,
		Message:        "Nodes allocated successfully",
		CommandUsed:    command,
		RawOutput:      strings.TrimSpace(proc.Stdout),
		RawError:       strings.TrimSpace(proc.Stderr),
	}
}

// classifyFailure sub-classifies a non-zero salloc exit by sniffing the
// error text: partition complaints are rejections the validator could not
// catch (catalog unavailable or raced), everything else is a plain error.
func (m *Manager) classifyFailure(proc *ProcResult, command string) *AllocationResult {
	errMsg := strings.TrimSpace(proc.Stderr)
	if errMsg == "" {
		errMsg = strings.TrimSpace(proc.Stdout)
	}

	lower := strings.ToLower(errMsg)
	if strings.Contains(lower, "partition") && strings.Contains(lower, "invalid") {
		return &AllocationResult{
			Status:      StatusRejected,
			Message:     fmt.Sprintf("Invalid partition specified. Please check partitions first with: sinfo -s. Error: %s", errMsg),
			CommandUsed: command,
			RawOutput:   strings.TrimSpace(proc.Stdout),
			RawError:    strings.TrimSpace(proc.Stderr),
		}
	}

	return &AllocationResult{
		Status:      StatusError,
		Message:     fmt.Sprintf("Failed to allocate nodes: %s", errMsg),
		CommandUsed: command,
		RawOutput:   strings.TrimSpace(proc.Stdout),
		RawError:    strings.TrimSpace(proc.Stderr),
	}
}

// Validate checks a request against the live partition catalog. When the
// catalog query itself is unavailable the request passes through unchecked
// and partition correctness is deferred to the scheduler's own error
// reporting at allocation time.
func (m *Manager) Validate(ctx context.Context, req AllocationRequest) *ValidationResult {
	if req.Partition == "" {
		return &ValidationResult{OK: true}
	}

	catalog := m.ListPartitions(ctx)
	if !catalog.Available || len(catalog.Names) == 0 {
		return &ValidationResult{OK: true}
	}

	if catalog.Has(req.Partition) {
		return &ValidationResult{OK: true, AvailablePartitions: catalog.Names}
	}

	return &ValidationResult{
		OK: false,
		Reason: fmt.Sprintf("Unknown partition '%s'. Available partitions: %s. Please check partitions first with: sinfo -s",
			req.Partition, strings.Join(catalog.Names, ", ")),
		AvailablePartitions: catalog.Names,
	}
}

// ListPartitions queries the scheduler for the current partition names.
// Any failure yields an unavailable catalog rather than an error, so
// validation can proceed permissively.
func (m *Manager) ListPartitions(ctx context.Context) *PartitionCatalog {
	if !m.client.IsAvailable() {
		return &PartitionCatalog{Names: []string{}}
	}

	proc, err := m.client.QueryPartitions(ctx)
	if err != nil || proc.TimedOut || proc.ExitCode != 0 {
		return &PartitionCatalog{Names: []string{}}
	}

	names := ParsePartitionNames(proc.Stdout)
	if names == nil {
		names = []string{}
	}
	return &PartitionCatalog{Available: true, Names: names}
}

// GetStatus queries the scheduler for one allocation. An empty result set
// maps to not_found; a completed job and a never-existing one cannot be
// told apart through this interface.
func (m *Manager) GetStatus(ctx context.Context, allocationID string) *AllocationStatus {
	if allocationID == "" {
		return &AllocationStatus{
			State:   string(StatusError),
			Message: ErrEmptyAllocationID.Error(),
		}
	}

	if !m.client.IsAvailable() {
		return &AllocationStatus{
			AllocationID: allocationID,
			State:        string(StatusError),
			Message:      "Slurm is not available on this system. Please install Slurm.",
		}
	}

	proc, err := m.client.QueryStatus(ctx, allocationID)
	if err != nil {
		return &AllocationStatus{
			AllocationID: allocationID,
			State:        string(StatusError),
			Message:      err.Error(),
		}
	}

	if proc.TimedOut || proc.ExitCode != 0 || strings.TrimSpace(proc.Stdout) == "" {
		return &AllocationStatus{
			AllocationID: allocationID,
			State:        StateNotFound,
			Message:      fmt.Sprintf("Allocation %s not found or completed", allocationID),
		}
	}

	return ParseStatusRecord(allocationID, proc.Stdout)
}

// Deallocate cancels an allocation. The call is idempotent and never
// fails structurally: cancelling an unknown or completed ID yields an
// error-status result carrying the scheduler's message, with the input ID
// echoed back.
func (m *Manager) Deallocate(ctx context.Context, allocationID string) *DeallocationResult {
	if allocationID == "" {
		return &DeallocationResult{
			Status:  StatusError,
			Message: ErrEmptyAllocationID.Error(),
		}
	}

	if !m.client.IsAvailable() {
		return &DeallocationResult{
			AllocationID: allocationID,
			Status:       StatusError,
			Message:      "Slurm is not available on this system. Please install Slurm.",
		}
	}

	proc, err := m.client.Cancel(ctx, allocationID)
	if err != nil {
		return &DeallocationResult{
			AllocationID: allocationID,
			Status:       StatusError,
			Message:      err.Error(),
		}
	}

	if proc.TimedOut {
		return &DeallocationResult{
			AllocationID: allocationID,
			Status:       StatusError,
			Message:      "Cancel request timed out",
		}
	}

	if proc.ExitCode != 0 {
		return &DeallocationResult{
			AllocationID: allocationID,
			Status:       StatusError,
			Message:      fmt.Sprintf("Failed to cancel allocation: %s", strings.TrimSpace(proc.Stderr)),
		}
	}

	return &DeallocationResult{
		AllocationID: allocationID,
		Status:       StatusDeallocated,
		Message:      fmt.Sprintf("Allocation %s cancelled successfully", allocationID),
	}
}
