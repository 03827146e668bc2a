package allocation

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

// fakeClient is a deterministic SchedulerClient that records every call so
// tests can assert which external invocations happened.
type fakeClient struct {
	available bool

	runResult        *ProcResult
	runErr           error
	statusResult     *ProcResult
	statusErr        error
	partitionsResult *ProcResult
	partitionsErr    error
	cancelResults    []*ProcResult // consumed in order, last one repeats
	cancelErr        error

	runCalls        [][]string
	runTimeouts     []time.Duration
	statusCalls     []string
	cancelCalls     []string
	partitionsCalls int
}

func (f *fakeClient) IsAvailable() bool { return f.available }

func (f *fakeClient) Run(_ context.Context, args []string, timeout time.Duration) (*ProcResult, error) {
	f.runCalls = append(f.runCalls, args)
	f.runTimeouts = append(f.runTimeouts, timeout)
	return f.runResult, f.runErr
}

func (f *fakeClient) QueryStatus(_ context.Context, id string) (*ProcResult, error) {
	f.statusCalls = append(f.statusCalls, id)
	return f.statusResult, f.statusErr
}

func (f *fakeClient) QueryPartitions(_ context.Context) (*ProcResult, error) {
	f.partitionsCalls++
	return f.partitionsResult, f.partitionsErr
}

func (f *fakeClient) Cancel(_ context.Context, id string) (*ProcResult, error) {
	f.cancelCalls = append(f.cancelCalls, id)
	if f.cancelErr != nil {
		return nil, f.cancelErr
	}
	idx := len(f.cancelCalls) - 1
	if idx >= len(f.cancelResults) {
		idx = len(f.cancelResults) - 1
	}
	return f.cancelResults[idx], nil
}

// sinfoFixture is a partition summary with a default-partition marker and
// per-state duplicate rows, as sinfo -s prints them.
const sinfoFixture = `debug*   up   infinite   2/0/0/2   node[1-2]
batch    up 7-00:00:00 10/2/0/12 cn[1-12]
`

func TestAllocateEndToEnd(t *testing.T) {
	client := &fakeClient{
		available: true,
		runResult: &ProcResult{
			ExitCode: 0,
			Stdout:   "salloc: Granted job allocation 12345\nsalloc: Nodes node001 are ready",
		},
	}
	m := NewManager(client)

	res := m.Allocate(context.Background(), AllocationRequest{
		NumNodes:  1,
		TimeLimit: "0:02:00",
		JobName:   "t",
		Immediate: true,
	})

	if res.Status != StatusAllocated {
		t.Fatalf("Status = %q; want %q (message: %s)", res.Status, StatusAllocated, res.Message)
	}
	if res.AllocationID != "12345" {
		t.Errorf("AllocationID = %q; want 12345", res.AllocationID)
	}
	if want := []string{"node001"}; !reflect.DeepEqual(res.AllocatedNodes, want) {
		t.Errorf("AllocatedNodes = %v; want %v", res.AllocatedNodes, want)
	}
	if !strings.Contains(res.CommandUsed, "-t 0:02:00") || !strings.Contains(res.CommandUsed, "--no-shell") {
		t.Errorf("CommandUsed = %q; missing expected flags", res.CommandUsed)
	}
	if len(client.runCalls) != 1 {
		t.Errorf("expected exactly one salloc invocation, got %d", len(client.runCalls))
	}
}

func TestAllocateImmediateUsesShortTimeout(t *testing.T) {
	client := &fakeClient{
		available: true,
		runResult: &ProcResult{ExitCode: 0, Stdout: "salloc: Granted job allocation 1"},
	}
	m := NewManager(client)

	m.Allocate(context.Background(), AllocationRequest{Immediate: true})
	m.Allocate(context.Background(), AllocationRequest{})

	if client.runTimeouts[0] != DefaultImmediateTimeout {
		t.Errorf("immediate timeout = %v; want %v", client.runTimeouts[0], DefaultImmediateTimeout)
	}
	if client.runTimeouts[1] != DefaultAllocateTimeout {
		t.Errorf("non-immediate timeout = %v; want %v", client.runTimeouts[1], DefaultAllocateTimeout)
	}
}

func TestAllocateUnknownPartitionRejectedBeforeInvocation(t *testing.T) {
	client := &fakeClient{
		available:        true,
		partitionsResult: &ProcResult{ExitCode: 0, Stdout: sinfoFixture},
	}
	m := NewManager(client)

	res := m.Allocate(context.Background(), AllocationRequest{Partition: "nosuch"})

	if res.Status != StatusRejected {
		t.Fatalf("Status = %q; want %q", res.Status, StatusRejected)
	}
	if len(client.runCalls) != 0 {
		t.Errorf("salloc must not be invoked on a rejected request, got %d calls", len(client.runCalls))
	}
	if want := []string{"debug", "batch"}; !reflect.DeepEqual(res.AvailablePartitions, want) {
		t.Errorf("AvailablePartitions = %v; want %v", res.AvailablePartitions, want)
	}
	for _, name := range []string{"debug", "batch", "sinfo -s"} {
		if !strings.Contains(res.Message, name) {
			t.Errorf("Message %q should mention %q", res.Message, name)
		}
	}
}

func TestAllocatePermissiveWhenCatalogUnavailable(t *testing.T) {
	// When the partition query fails the request passes through and the
	// scheduler's own error reporting takes over.
	client := &fakeClient{
		available:     true,
		partitionsErr: NewInvocationError("sinfo", ErrSlurmNotFound),
		runResult:     &ProcResult{ExitCode: 0, Stdout: "salloc: Granted job allocation 7"},
	}
	m := NewManager(client)

	res := m.Allocate(context.Background(), AllocationRequest{Partition: "whatever"})

	if res.Status != StatusAllocated {
		t.Fatalf("Status = %q; want %q", res.Status, StatusAllocated)
	}
	if len(client.runCalls) != 1 {
		t.Errorf("expected salloc to run despite unavailable catalog")
	}
}

func TestAllocateSchedulerDetectedBadPartition(t *testing.T) {
	client := &fakeClient{
		available:     true,
		partitionsErr: errors.New("sinfo unavailable"),
		runResult: &ProcResult{
			ExitCode: 1,
			Stderr:   "salloc: error: invalid partition specified: typo",
		},
	}
	m := NewManager(client)

	res := m.Allocate(context.Background(), AllocationRequest{Partition: "typo"})

	if res.Status != StatusRejected {
		t.Fatalf("Status = %q; want %q", res.Status, StatusRejected)
	}
	if !strings.Contains(res.Message, "sinfo -s") {
		t.Errorf("Message %q should point at sinfo -s", res.Message)
	}
}

func TestAllocateGenericFailure(t *testing.T) {
	client := &fakeClient{
		available: true,
		runResult: &ProcResult{ExitCode: 1, Stderr: "salloc: error: Requested node configuration is not available"},
	}
	m := NewManager(client)

	res := m.Allocate(context.Background(), AllocationRequest{NumNodes: 64})

	if res.Status != StatusError {
		t.Fatalf("Status = %q; want %q", res.Status, StatusError)
	}
	if !strings.Contains(res.Message, "not available") {
		t.Errorf("Message should carry the scheduler text verbatim, got %q", res.Message)
	}
	if res.CommandUsed == "" {
		t.Errorf("CommandUsed must be set on failures for retry diagnosis")
	}
}

func TestAllocateTimeout(t *testing.T) {
	client := &fakeClient{
		available: true,
		runResult: &ProcResult{
			TimedOut: true,
			Stderr:   "salloc: Granted job allocation 4242\nsalloc: Waiting for resource configuration",
		},
	}
	m := NewManager(client)

	res := m.Allocate(context.Background(), AllocationRequest{})

	if res.Status != StatusTimedOut {
		t.Fatalf("Status = %q; want %q", res.Status, StatusTimedOut)
	}
	// An ID recovered from partial output is surfaced for follow-up, but
	// the status stays timeout: nobody knows whether the grant completed.
	if res.AllocationID != "4242" {
		t.Errorf("AllocationID = %q; want partially-parsed 4242", res.AllocationID)
	}
}

func TestAllocateZeroExitWithoutID(t *testing.T) {
	client := &fakeClient{
		available: true,
		runResult: &ProcResult{ExitCode: 0, Stdout: ""},
	}
	m := NewManager(client)

	res := m.Allocate(context.Background(), AllocationRequest{Immediate: true})

	if res.Status != StatusAllocatedUnknownID {
		t.Fatalf("Status = %q; want %q", res.Status, StatusAllocatedUnknownID)
	}
	if res.AllocationID != "" {
		t.Errorf("AllocationID must never be fabricated, got %q", res.AllocationID)
	}
}

func TestAllocateSlurmUnavailable(t *testing.T) {
	client := &fakeClient{available: false}
	m := NewManager(client)

	res := m.Allocate(context.Background(), AllocationRequest{})

	if res.Status != StatusError {
		t.Fatalf("Status = %q; want %q", res.Status, StatusError)
	}
	if len(client.runCalls)+client.partitionsCalls != 0 {
		t.Errorf("no external call may happen when the tooling is unavailable")
	}
}

func TestGetStatusRunning(t *testing.T) {
	client := &fakeClient{
		available:    true,
		statusResult: &ProcResult{ExitCode: 0, Stdout: "12345,RUNNING,node[1-2],2,8,5:23,30:00,debug,alice\n"},
	}
	m := NewManager(client)

	st := m.GetStatus(context.Background(), "12345")

	if st.State != "RUNNING" {
		t.Fatalf("State = %q; want RUNNING", st.State)
	}
	if want := []string{"node1", "node2"}; !reflect.DeepEqual(st.Nodes, want) {
		t.Errorf("Nodes = %v; want %v", st.Nodes, want)
	}
	if client.statusCalls[0] != "12345" {
		t.Errorf("queried id = %q; want 12345", client.statusCalls[0])
	}
}

func TestGetStatusNotFound(t *testing.T) {
	// A completed job and a never-existing job both produce empty squeue
	// output; both map to not_found, not an error.
	client := &fakeClient{
		available:    true,
		statusResult: &ProcResult{ExitCode: 0, Stdout: "\n"},
	}
	m := NewManager(client)

	st := m.GetStatus(context.Background(), "999999")

	if st.State != StateNotFound {
		t.Fatalf("State = %q; want %q", st.State, StateNotFound)
	}
	if st.AllocationID != "999999" {
		t.Errorf("AllocationID = %q; want input echoed back", st.AllocationID)
	}
}

func TestGetStatusNonZeroExitMapsToNotFound(t *testing.T) {
	client := &fakeClient{
		available:    true,
		statusResult: &ProcResult{ExitCode: 1, Stderr: "slurm_load_jobs error: Invalid job id specified"},
	}
	m := NewManager(client)

	st := m.GetStatus(context.Background(), "abc")
	if st.State != StateNotFound {
		t.Errorf("State = %q; want %q", st.State, StateNotFound)
	}
}

func TestDeallocate(t *testing.T) {
	client := &fakeClient{
		available:     true,
		cancelResults: []*ProcResult{{ExitCode: 0}},
	}
	m := NewManager(client)

	res := m.Deallocate(context.Background(), "12345")

	if res.Status != StatusDeallocated {
		t.Fatalf("Status = %q; want %q (message: %s)", res.Status, StatusDeallocated, res.Message)
	}
	if res.AllocationID != "12345" {
		t.Errorf("AllocationID = %q; want 12345", res.AllocationID)
	}
}

func TestDeallocateUnknownIDNeverFails(t *testing.T) {
	client := &fakeClient{
		available:     true,
		cancelResults: []*ProcResult{{ExitCode: 1, Stderr: "scancel: error: Invalid job id 999999"}},
	}
	m := NewManager(client)

	res := m.Deallocate(context.Background(), "999999")

	if res.Status != StatusError {
		t.Fatalf("Status = %q; want %q", res.Status, StatusError)
	}
	if res.AllocationID != "999999" {
		t.Errorf("AllocationID = %q; want input echoed back", res.AllocationID)
	}
	if !strings.Contains(res.Message, "Invalid job id") {
		t.Errorf("Message should carry the raw scheduler text, got %q", res.Message)
	}
}

func TestDeallocateIsIdempotent(t *testing.T) {
	// First cancel succeeds, second hits an already-completed job. Both
	// return well-formed results.
	client := &fakeClient{
		available: true,
		cancelResults: []*ProcResult{
			{ExitCode: 0},
			{ExitCode: 1, Stderr: "scancel: error: Kill job error: Job has finished"},
		},
	}
	m := NewManager(client)

	first := m.Deallocate(context.Background(), "31337")
	second := m.Deallocate(context.Background(), "31337")

	if first.Status != StatusDeallocated {
		t.Errorf("first Status = %q; want %q", first.Status, StatusDeallocated)
	}
	if second.Status != StatusError && second.Status != StatusDeallocated {
		t.Errorf("second Status = %q; want a non-fatal outcome", second.Status)
	}
	if second.AllocationID != "31337" {
		t.Errorf("second AllocationID = %q; want 31337", second.AllocationID)
	}
}

func TestEmptyAllocationIDRejectedLocally(t *testing.T) {
	client := &fakeClient{available: true}
	m := NewManager(client)

	st := m.GetStatus(context.Background(), "")
	if st.State != string(StatusError) {
		t.Errorf("GetStatus State = %q; want %q", st.State, StatusError)
	}

	res := m.Deallocate(context.Background(), "")
	if res.Status != StatusError {
		t.Errorf("Deallocate Status = %q; want %q", res.Status, StatusError)
	}

	if len(client.statusCalls)+len(client.cancelCalls) != 0 {
		t.Errorf("empty IDs must not reach the scheduler")
	}
}

func TestListPartitions(t *testing.T) {
	client := &fakeClient{
		available:        true,
		partitionsResult: &ProcResult{ExitCode: 0, Stdout: sinfoFixture},
	}
	m := NewManager(client)

	catalog := m.ListPartitions(context.Background())

	if !catalog.Available {
		t.Fatalf("catalog should be available")
	}
	if want := []string{"debug", "batch"}; !reflect.DeepEqual(catalog.Names, want) {
		t.Errorf("Names = %v; want %v", catalog.Names, want)
	}
	if !catalog.Has("debug") || catalog.Has("gpu") {
		t.Errorf("Has() membership checks wrong for %v", catalog.Names)
	}
}

func TestListPartitionsUnavailableOnFailure(t *testing.T) {
	client := &fakeClient{
		available:        true,
		partitionsResult: &ProcResult{ExitCode: 1, Stderr: "sinfo: error"},
	}
	m := NewManager(client)

	catalog := m.ListPartitions(context.Background())
	if catalog.Available {
		t.Errorf("catalog must be unavailable on sinfo failure")
	}
	if len(catalog.Names) != 0 {
		t.Errorf("Names = %v; want empty", catalog.Names)
	}
}
