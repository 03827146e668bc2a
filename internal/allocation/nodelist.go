package allocation

import (
	"strconv"
	"strings"
)

// ExpandNodeList expands compact Slurm node-list notation into explicit,
// ordered node names:
//
//	"node7"        -> ["node7"]
//	"nodeA,nodeB"  -> ["nodeA", "nodeB"]
//	"node[1-3]"    -> ["node1", "node2", "node3"]
//	"node[1,3,5]"  -> ["node1", "node3", "node5"]
//
// The function is pure and never fails: an empty or malformed bracket spec
// (including a reversed range like "node[5-2]") yields the literal input as
// a single-element list so callers always get something addressable.
func ExpandNodeList(token string) []string {
	token = strings.TrimSpace(token)

	open := strings.Index(token, "[")
	close := strings.Index(token, "]")
	if open >= 0 && close > open {
		prefix := token[:open]
		spec := token[open+1 : close]

		switch {
		case strings.Contains(spec, "-"):
			if nodes := expandRange(prefix, spec); nodes != nil {
				return nodes
			}
		case strings.Contains(spec, ","):
			indices := strings.Split(spec, ",")
			nodes := make([]string, 0, len(indices))
			for _, idx := range indices {
				nodes = append(nodes, prefix+strings.TrimSpace(idx))
			}
			return nodes
		case spec != "":
			return []string{prefix + spec}
		}

		// Malformed or empty bracket spec
		return []string{token}
	}

	// Plain name or comma-separated list
	parts := strings.Split(token, ",")
	nodes := make([]string, 0, len(parts))
	for _, part := range parts {
		nodes = append(nodes, strings.TrimSpace(part))
	}
	return nodes
}

// expandRange expands "a-b" where both sides are pure digits and a <= b.
// Returns nil if the spec does not qualify.
func expandRange(prefix, spec string) []string {
	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 || !isDigits(parts[0]) || !isDigits(parts[1]) {
		return nil
	}
	start, _ := strconv.Atoi(parts[0])
	end, _ := strconv.Atoi(parts[1])
	if start > end {
		return nil
	}

	nodes := make([]string, 0, end-start+1)
	for i := start; i <= end; i++ {
		nodes = append(nodes, prefix+strconv.Itoa(i))
	}
	return nodes
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
