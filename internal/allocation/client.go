package allocation

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// ProcResult captures one bounded external invocation. TimedOut is a
// distinct outcome, not an exit code: when the wait expires the child is
// killed, but the scheduler may already have acted on the request.
type ProcResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
}

// SchedulerClient is the boundary between the lifecycle manager and the
// scheduler tooling. The manager depends on this interface rather than on
// process spawning so tests can substitute a deterministic fake.
type SchedulerClient interface {
	// IsAvailable reports whether the scheduler tooling can be invoked at all.
	IsAvailable() bool

	// Run invokes salloc with the given arguments under a bounded wait.
	Run(ctx context.Context, args []string, timeout time.Duration) (*ProcResult, error)

	// QueryStatus invokes the status query for one allocation ID.
	QueryStatus(ctx context.Context, allocationID string) (*ProcResult, error)

	// QueryPartitions invokes the partition summary query.
	QueryPartitions(ctx context.Context) (*ProcResult, error)

	// Cancel invokes the cancel command for one allocation ID.
	Cancel(ctx context.Context, allocationID string) (*ProcResult, error)
}

// SlurmClient implements SchedulerClient by spawning the Slurm command-line
// tools.
type SlurmClient struct {
	sallocBin  string
	squeueBin  string
	scancelBin string
	sinfoBin   string

	// queryTimeout bounds squeue/sinfo/scancel calls; salloc timeouts are
	// passed per call because they depend on the request.
	queryTimeout time.Duration
}

// statusFormat matches the nine-field record ParseStatusRecord expects.
const statusFormat = "%i,%T,%N,%D,%C,%M,%l,%P,%u"

// DefaultQueryTimeout bounds status, partition, and cancel invocations.
const DefaultQueryTimeout = 15 * time.Second

// NewSlurmClient creates a client using the Slurm binaries from PATH.
// salloc is required; the companion tools are probed best-effort and their
// absence surfaces later as unavailable catalog or status queries.
func NewSlurmClient() (*SlurmClient, error) {
	sallocBin, err := exec.LookPath("salloc")
	if err != nil {
		return nil, ErrSlurmNotFound
	}
	squeueBin, _ := exec.LookPath("squeue")
	scancelBin, _ := exec.LookPath("scancel")
	sinfoBin, _ := exec.LookPath("sinfo")

	return NewSlurmClientWithBinaries(sallocBin, squeueBin, scancelBin, sinfoBin)
}

// NewSlurmClientWithBinaries creates a client with explicit binary paths.
// Empty companion paths are allowed; an empty salloc path is not.
func NewSlurmClientWithBinaries(sallocBin, squeueBin, scancelBin, sinfoBin string) (*SlurmClient, error) {
	if sallocBin == "" {
		return nil, ErrSlurmNotFound
	}
	return &SlurmClient{
		sallocBin:    sallocBin,
		squeueBin:    squeueBin,
		scancelBin:   scancelBin,
		sinfoBin:     sinfoBin,
		queryTimeout: DefaultQueryTimeout,
	}, nil
}

// SetQueryTimeout overrides the bounded wait for status, partition, and
// cancel invocations.
func (c *SlurmClient) SetQueryTimeout(d time.Duration) {
	if d > 0 {
		c.queryTimeout = d
	}
}

// IsAvailable reports whether salloc can be invoked.
func (c *SlurmClient) IsAvailable() bool {
	return c.sallocBin != ""
}

// Run invokes salloc with a bounded wait.
func (c *SlurmClient) Run(ctx context.Context, args []string, timeout time.Duration) (*ProcResult, error) {
	return runProcess(ctx, timeout, c.sallocBin, args...)
}

// QueryStatus invokes squeue for a single allocation ID.
func (c *SlurmClient) QueryStatus(ctx context.Context, allocationID string) (*ProcResult, error) {
	if c.squeueBin == "" {
		return nil, NewInvocationError("squeue", ErrSlurmNotFound)
	}
	return runProcess(ctx, c.queryTimeout, c.squeueBin,
		"-j", allocationID, "--format="+statusFormat, "--noheader")
}

// QueryPartitions invokes the sinfo partition summary.
func (c *SlurmClient) QueryPartitions(ctx context.Context) (*ProcResult, error) {
	if c.sinfoBin == "" {
		return nil, NewInvocationError("sinfo", ErrSlurmNotFound)
	}
	return runProcess(ctx, c.queryTimeout, c.sinfoBin, "-s", "--noheader")
}

// Cancel invokes scancel for a single allocation ID.
func (c *SlurmClient) Cancel(ctx context.Context, allocationID string) (*ProcResult, error) {
	if c.scancelBin == "" {
		return nil, NewInvocationError("scancel", ErrSlurmNotFound)
	}
	return runProcess(ctx, c.queryTimeout, c.scancelBin, allocationID)
}

// runProcess executes one external command with a bounded wait, capturing
// exit code and both output streams. A deadline hit is reported via
// TimedOut with whatever partial output was captured; any other failure to
// run the binary at all is an InvocationError.
func runProcess(ctx context.Context, timeout time.Duration, bin string, args ...string) (*ProcResult, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Grandchildren inheriting the output pipes must not extend the wait
	// after the deadline kills the direct child.
	cmd.WaitDelay = time.Second

	err := cmd.Run()

	res := &ProcResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if runCtx.Err() == context.DeadlineExceeded {
		res.TimedOut = true
		return res, nil
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return nil, NewInvocationError(bin, err)
	}

	return res, nil
}
