package compiler

import "fmt"

// topoSort performs a depth-first visitation from the trigger, emitting
// the post-order reversed so every predecessor precedes every successor.
// A back-edge yields cycle_detected; a node never reached yields
// unreachable_node for each one.
func topoSort(nodes map[string]*ExecutionNode, triggerID string) ([]string, []CompileError) {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(nodes))
	var postOrder []string
	var cycleErr *CompileError

	var visit func(id string)
	visit = func(id string) {
		if cycleErr != nil {
			return
		}
		switch state[id] {
		case visiting:
			cycleErr = &CompileError{
				Code:    CodeCycleDetected,
				Message: fmt.Sprintf("cycle detected reaching node %q", id),
				NodeID:  id,
			}
			return
		case done:
			return
		}

		state[id] = visiting
		n, ok := nodes[id]
		if ok {
			for _, e := range n.Outgoing {
				visit(e.Target)
				if cycleErr != nil {
					return
				}
			}
		}
		state[id] = done
		postOrder = append(postOrder, id)
	}

	visit(triggerID)
	if cycleErr != nil {
		return nil, []CompileError{*cycleErr}
	}

	var unreached []CompileError
	for id := range nodes {
		if state[id] != done {
			unreached = append(unreached, CompileError{
				Code:    CodeUnreachableNode,
				Message: fmt.Sprintf("node %q is not reachable from the trigger", id),
				NodeID:  id,
			})
		}
	}
	if len(unreached) > 0 {
		return nil, unreached
	}

	order := make([]string, len(postOrder))
	for i, id := range postOrder {
		order[len(postOrder)-1-i] = id
	}
	return order, nil
}
