package allocation

import (
	"reflect"
	"strings"
	"testing"
)

func TestBuildSallocArgsDefaults(t *testing.T) {
	args := BuildSallocArgs(AllocationRequest{})

	want := []string{"-N", "1", "--no-shell"}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("BuildSallocArgs(zero request) = %v; want %v", args, want)
	}
}

func TestBuildSallocArgsTimeLimitPresence(t *testing.T) {
	// -t must be omitted entirely when no time limit is given, so the
	// scheduler default applies; when given it is passed verbatim.
	withoutLimit := BuildSallocArgs(AllocationRequest{NumNodes: 1})
	for _, arg := range withoutLimit {
		if arg == "-t" {
			t.Errorf("unexpected -t flag without time limit: %v", withoutLimit)
		}
	}

	withLimit := BuildSallocArgs(AllocationRequest{NumNodes: 1, TimeLimit: "0:02:00"})
	joined := strings.Join(withLimit, " ")
	if !strings.Contains(joined, "-t 0:02:00") {
		t.Errorf("expected verbatim '-t 0:02:00' in %v", withLimit)
	}
}

func TestBuildSallocArgsAllFlags(t *testing.T) {
	req := AllocationRequest{
		NumNodes:      2,
		TimeLimit:     "01:00:00",
		JobName:       "bench",
		Exclusive:     true,
		SpecificNodes: []string{"node1", "node2"},
		Partition:     "gpu",
		CpusPerTask:   4,
		Memory:        "8G",
		Gres:          "gpu:1",
		Immediate:     true,
	}

	want := []string{
		"-N", "2",
		"-t", "01:00:00",
		"-J", "bench",
		"--exclusive",
		"-w", "node1,node2",
		"-p", "gpu",
		"-c", "4",
		"--mem", "8G",
		"--gres", "gpu:1",
		"--immediate",
		"--no-shell",
	}

	got := BuildSallocArgs(req)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildSallocArgs = %v; want %v", got, want)
	}
}

func TestBuildSallocArgsStableOrder(t *testing.T) {
	req := AllocationRequest{NumNodes: 3, Partition: "debug", Memory: "1G"}

	first := BuildSallocArgs(req)
	second := BuildSallocArgs(req)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("argument order not stable across calls: %v vs %v", first, second)
	}
}

func TestBuildSallocArgsNormalizesNodeCount(t *testing.T) {
	for _, n := range []int{0, -5} {
		args := BuildSallocArgs(AllocationRequest{NumNodes: n})
		if args[0] != "-N" || args[1] != "1" {
			t.Errorf("NumNodes=%d: got %v; want -N 1", n, args[:2])
		}
	}
}

func TestCommandLine(t *testing.T) {
	args := BuildSallocArgs(AllocationRequest{NumNodes: 1, Immediate: true})
	got := CommandLine(args)
	want := "salloc -N 1 --immediate --no-shell"
	if got != want {
		t.Errorf("CommandLine = %q; want %q", got, want)
	}
}
