package engine

import (
	"github.com/telcoflow/workflowengine/pkg/compiler"
	"github.com/telcoflow/workflowengine/pkg/workflowdesc"
)

// allSuppressed reports whether every incoming edge of a node has been
// suppressed by upstream conditional routing.
func allSuppressed(incoming []workflowdesc.Edge, suppressed map[string]bool) bool {
	for _, e := range incoming {
		if !suppressed[e.ID] {
			return false
		}
	}
	return true
}

// suppressSiblingEdges marks every outgoing edge whose source_handle does
// not match the handler-chosen handle as suppressed. Edges with no
// source_handle are unconditional and are never suppressed.
func suppressSiblingEdges(outgoing []workflowdesc.Edge, handle string, suppressed map[string]bool) {
	for _, e := range outgoing {
		if e.SourceHandle != "" && e.SourceHandle != handle {
			suppressed[e.ID] = true
		}
	}
}

// suppressAllOutgoing propagates skip through a node whose own incoming
// edges were all suppressed (or that was itself disabled), so its
// successors see every path through it as suppressed too.
func suppressAllOutgoing(outgoing []workflowdesc.Edge, suppressed map[string]bool) {
	for _, e := range outgoing {
		suppressed[e.ID] = true
	}
}

// assembleInputs merges the output of every non-suppressed incoming edge
// (pulling a single key when the edge carries a source_handle) into one
// map for template resolution, plus the ordered per-edge list merge
// nodes need for their strategy.
func assembleInputs(node *compiler.ExecutionNode, suppressed map[string]bool, nodeOutputs map[string]map[string]any) (map[string]any, []map[string]any) {
	merged := map[string]any{}
	var ordered []map[string]any

	for _, e := range node.Incoming {
		if suppressed[e.ID] {
			continue
		}
		output := nodeOutputs[e.Source]
		if output == nil {
			continue
		}

		var contribution map[string]any
		if e.SourceHandle != "" {
			if v, ok := output[e.SourceHandle]; ok {
				contribution = map[string]any{e.SourceHandle: v}
			}
		} else {
			contribution = output
		}
		if contribution == nil {
			continue
		}
		for k, v := range contribution {
			merged[k] = v
		}
		ordered = append(ordered, contribution)
	}
	return merged, ordered
}
