package compiler

import "github.com/telcoflow/workflowengine/pkg/catalog"

func computeMetadata(nodes map[string]*ExecutionNode, order []string, triggerID string) GraphMetadata {
	meta := GraphMetadata{HasCycles: false}

	for _, n := range nodes {
		if n.RequiresSession {
			meta.RequiresSession = true
		}
		if n.EndsSession {
			meta.HasSessionEnd = true
		}
	}

	meta.MaxDepth = longestPath(nodes, triggerID)
	return meta
}

// longestPath returns the longest edge count from the trigger to any
// terminal node, computed over the DAG in a reverse post-order that it
// derives by its own depth-first walk from the trigger.
func longestPath(nodes map[string]*ExecutionNode, triggerID string) int {
	depth := make(map[string]int, len(nodes))

	order := make([]string, 0, len(nodes))
	visited := make(map[string]bool, len(nodes))
	var walk func(id string)
	walk = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		n, ok := nodes[id]
		if !ok {
			return
		}
		for _, e := range n.Outgoing {
			walk(e.Target)
		}
		order = append(order, id)
	}
	walk(triggerID)

	// order is post-order; reverse gives predecessors before successors.
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}

	max := 0
	for _, id := range order {
		n := nodes[id]
		for _, e := range n.Outgoing {
			if depth[id]+1 > depth[e.Target] {
				depth[e.Target] = depth[id] + 1
			}
			if depth[e.Target] > max {
				max = depth[e.Target]
			}
		}
	}
	return max
}

func deadEndWarnings(nodes map[string]*ExecutionNode, cat *catalog.Catalog) []Warning {
	var warnings []Warning
	for id, n := range nodes {
		if len(n.Outgoing) > 0 {
			continue
		}
		if n.EndsSession {
			continue
		}
		entry, ok := cat.Lookup(n.Type)
		if ok && entry.EndsSession {
			continue
		}
		warnings = append(warnings, Warning{
			Code:    "dead_end_node",
			NodeID:  id,
			Message: "node has no outgoing edges",
		})
	}
	return warnings
}
