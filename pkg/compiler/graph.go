// Package compiler turns a WorkflowDescription into a validated,
// topologically ordered ExecutionGraph the Engine can run, or a list of
// structured errors explaining why it can't.
package compiler

import (
	"github.com/telcoflow/workflowengine/pkg/catalog"
	"github.com/telcoflow/workflowengine/pkg/workflowdesc"
)

// ExecutionNode is one node of a compiled graph: its resolved config and
// effective policy, plus the ordered edges that connect it to the rest of
// the graph.
type ExecutionNode struct {
	ID       string
	Type     string
	Category catalog.Category
	Config   map[string]any

	EffectiveRetry   *workflowdesc.RetryPolicy
	EffectiveTimeout *int
	Disabled         bool

	Incoming []workflowdesc.Edge
	Outgoing []workflowdesc.Edge

	RequiresSession bool
	EndsSession     bool
	Ordinal         int
}

// GraphMetadata summarizes properties computed once at compile time.
type GraphMetadata struct {
	RequiresSession bool `json:"requires_session"`
	HasSessionEnd   bool `json:"has_session_end"`
	MaxDepth        int  `json:"max_depth"`
	HasCycles       bool `json:"has_cycles"`
}

// ExecutionGraph is the Compiler's output: immutable once produced, safe
// to cache and share across invocations keyed by (workflow_id, version).
type ExecutionGraph struct {
	WorkflowID      string
	WorkflowVersion int
	TriggerNodeID   string

	Nodes          map[string]*ExecutionNode
	ExecutionOrder []string

	Metadata GraphMetadata
}
