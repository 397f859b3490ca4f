package compiler

import (
	"fmt"
	"log/slog"

	"github.com/telcoflow/workflowengine/pkg/catalog"
	"github.com/telcoflow/workflowengine/pkg/workflowdesc"
)

// Result is the outcome of a Compile call: either a graph with warnings,
// or a list of errors and whatever warnings were collected before the
// failing stage aborted the pipeline.
type Result struct {
	Success  bool
	Graph    *ExecutionGraph
	Errors   []CompileError
	Warnings []Warning
}

// Compiler runs the seven-stage pipeline against a Catalog snapshot. It is
// pure over its inputs: the same WorkflowDescription against the same
// Catalog always produces the same Result, so graphs are safe to cache by
// (workflow_id, version).
type Compiler struct {
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// New builds a Compiler bound to a Catalog.
func New(cat *catalog.Catalog, logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Compiler{catalog: cat, logger: logger.With("module", "compiler")}
}

// Compile runs the pipeline. It aborts at the first stage producing one
// or more errors, returning whatever warnings were already collected.
func (c *Compiler) Compile(wd *workflowdesc.WorkflowDescription) *Result {
	var warnings []Warning

	// Stage 1: structural validation.
	if verr := workflowdesc.ValidateStructural(wd); verr != nil {
		return failWith(mapStructuralErrors(verr), warnings)
	}

	allNodes := allNodesOf(wd)

	// Stage 2: type check.
	if errs := c.checkTypes(allNodes); len(errs) > 0 {
		return failWith(errs, warnings)
	}

	// Stage 3: config check.
	if errs := c.checkConfigs(allNodes); len(errs) > 0 {
		return failWith(errs, warnings)
	}

	// Stage 4: graph construction.
	nodes, dupErrs := buildGraphNodes(allNodes, c.catalog)
	if len(dupErrs) > 0 {
		return failWith(dupErrs, warnings)
	}
	linkEdges(nodes, wd.Edges)

	// Stage 5: topological order.
	order, topoErrs := topoSort(nodes, wd.Trigger.ID)
	if len(topoErrs) > 0 {
		return failWith(topoErrs, warnings)
	}

	// Stage 6: semantic validation.
	if errs := c.semanticValidate(wd, nodes); len(errs) > 0 {
		return failWith(errs, warnings)
	}

	// Stage 7: metadata + warnings.
	meta := computeMetadata(nodes, order, wd.Trigger.ID)
	warnings = append(warnings, deadEndWarnings(nodes, c.catalog)...)

	graph := &ExecutionGraph{
		WorkflowID:      wd.Metadata.ID,
		WorkflowVersion: wd.Metadata.Version,
		TriggerNodeID:   wd.Trigger.ID,
		Nodes:           nodes,
		ExecutionOrder:  order,
		Metadata:        meta,
	}

	return &Result{Success: true, Graph: graph, Warnings: warnings}
}

func failWith(errs []CompileError, warnings []Warning) *Result {
	return &Result{Success: false, Errors: errs, Warnings: warnings}
}

func allNodesOf(wd *workflowdesc.WorkflowDescription) []workflowdesc.Node {
	return wd.Nodes
}

func mapStructuralErrors(verr *workflowdesc.ValidationError) []CompileError {
	out := make([]CompileError, 0, len(verr.Errors))
	for _, fe := range verr.Errors {
		out = append(out, CompileError{
			Code:    CodeSchemaValidationError,
			Message: fe.Message,
			Path:    fe.Path,
		})
	}
	return out
}

func (c *Compiler) checkTypes(nodes []workflowdesc.Node) []CompileError {
	var errs []CompileError
	for _, n := range nodes {
		if _, ok := c.catalog.Lookup(n.Type); !ok {
			errs = append(errs, CompileError{
				Code:    CodeUnknownNodeType,
				Message: fmt.Sprintf("node type %q is not registered", n.Type),
				NodeID:  n.ID,
			})
		}
	}
	return errs
}

func (c *Compiler) checkConfigs(nodes []workflowdesc.Node) []CompileError {
	var errs []CompileError
	for _, n := range nodes {
		ok, issues := c.catalog.ValidateConfig(n.Type, n.Config, catalog.ConfigValidationContext{})
		if !ok {
			for _, issue := range issues {
				errs = append(errs, CompileError{
					Code:    CodeNodeConfigValidationError,
					Message: issue.Message,
					NodeID:  n.ID,
					Path:    issue.Path,
				})
			}
		}
	}
	return errs
}

func buildGraphNodes(nodes []workflowdesc.Node, cat *catalog.Catalog) (map[string]*ExecutionNode, []CompileError) {
	out := make(map[string]*ExecutionNode, len(nodes))
	var errs []CompileError

	for i, n := range nodes {
		if _, exists := out[n.ID]; exists {
			errs = append(errs, CompileError{
				Code:    CodeDuplicateNodeID,
				Message: fmt.Sprintf("node id %q appears more than once", n.ID),
				NodeID:  n.ID,
			})
			continue
		}

		entry, _ := cat.Lookup(n.Type)

		en := &ExecutionNode{
			ID:              n.ID,
			Type:            n.Type,
			Config:          n.Config,
			Disabled:        n.Disabled,
			EffectiveRetry:  n.Retry,
			EffectiveTimeout: n.Timeout,
			Ordinal:         i,
		}
		if entry != nil {
			en.Category = entry.Category
			en.RequiresSession = entry.RequiresSession
			en.EndsSession = entry.EndsSession
			if en.EffectiveRetry == nil {
				en.EffectiveRetry = entry.DefaultRetryPolicy
			}
			if en.EffectiveTimeout == nil {
				en.EffectiveTimeout = entry.DefaultTimeoutMS
			}
		}
		out[n.ID] = en
	}
	return out, errs
}

func linkEdges(nodes map[string]*ExecutionNode, edges []workflowdesc.Edge) {
	for _, e := range edges {
		if src, ok := nodes[e.Source]; ok {
			src.Outgoing = append(src.Outgoing, e)
		}
		if tgt, ok := nodes[e.Target]; ok {
			tgt.Incoming = append(tgt.Incoming, e)
		}
	}
}
