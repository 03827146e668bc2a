package allocation

import (
	"regexp"
	"strings"
)

// Acknowledgment holds what could be extracted from salloc output. A nil
// JobID after all patterns have been tried is not an error by itself; the
// lifecycle manager classifies that case using the exit code.
type Acknowledgment struct {
	JobID string
	Nodes []string
}

// jobIDPatterns are tried in priority order against the combined
// stdout+stderr text; the first match wins. Order is a correctness
// requirement: ambiguous output containing several candidate substrings
// must resolve to the most specific form. New output shapes are supported
// by appending here, not by touching control flow.
var jobIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`Granted job allocation (\d+)`),
	regexp.MustCompile(`salloc: Granted job allocation (\d+)`),
	regexp.MustCompile(`(?i)(?:allocation|job)\s+(\d+)`),
}

// nodeListPatterns locate the assigned node-list token, which is then fed
// through ExpandNodeList. The "on" form is word-bounded so the tail of
// "allocation 12345" is never mistaken for a node list.
var nodeListPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bon (\S+)`),
	regexp.MustCompile(`(?i)nodelist[:\s]+(\S+)`),
	regexp.MustCompile(`(?i)\bnodes?\s+(\S+) (?:is|are) ready`),
}

// ParseAcknowledgment extracts the allocation ID and assigned nodes from
// salloc's acknowledgment text. Slurm versions differ in which stream they
// write to, so stdout and stderr are scanned together.
func ParseAcknowledgment(stdout, stderr string) Acknowledgment {
	combined := stdout + "\n" + stderr

	var ack Acknowledgment
	for _, re := range jobIDPatterns {
		if m := re.FindStringSubmatch(combined); m != nil {
			ack.JobID = m[1]
			break
		}
	}
	for _, re := range nodeListPatterns {
		if m := re.FindStringSubmatch(combined); m != nil {
			ack.Nodes = ExpandNodeList(m[1])
			break
		}
	}
	return ack
}

// statusFieldCount is the number of comma-delimited fields squeue emits for
// the format %i,%T,%N,%D,%C,%M,%l,%P,%u.
const statusFieldCount = 9

// noNodesSentinel is what squeue prints in the %N column before any nodes
// are assigned.
const noNodesSentinel = "None assigned"

// ParseStatusRecord decodes one squeue status record into an
// AllocationStatus. A record with fewer than the expected fields yields
// state "unknown" with the raw text attached rather than an error.
func ParseStatusRecord(allocationID, raw string) *AllocationStatus {
	line := firstLine(raw)

	fields := strings.Split(line, ",")
	if len(fields) < statusFieldCount {
		return &AllocationStatus{
			AllocationID: allocationID,
			State:        StateUnknown,
			Message:      "could not parse allocation information",
			RawOutput:    strings.TrimSpace(raw),
		}
	}

	nodes := []string{}
	if nodeField := strings.TrimSpace(fields[2]); nodeField != "" && nodeField != noNodesSentinel {
		nodes = ExpandNodeList(nodeField)
	}

	return &AllocationStatus{
		AllocationID: strings.TrimSpace(fields[0]),
		State:        strings.TrimSpace(fields[1]),
		Nodes:        nodes,
		NumNodes:     strings.TrimSpace(fields[3]),
		Cpus:         strings.TrimSpace(fields[4]),
		TimeElapsed:  strings.TrimSpace(fields[5]),
		TimeLimit:    strings.TrimSpace(fields[6]),
		Partition:    strings.TrimSpace(fields[7]),
		User:         strings.TrimSpace(fields[8]),
	}
}

// ParsePartitionNames extracts partition names from sinfo summary output,
// one per line, first column, with Slurm's default-partition marker "*"
// stripped. Duplicate lines (one per node state) collapse to one name.
func ParsePartitionNames(output string) []string {
	seen := make(map[string]bool)
	var names []string

	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		cols := strings.Fields(line)
		if len(cols) == 0 {
			continue
		}
		name := strings.TrimSuffix(cols[0], "*")
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}

	return names
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
