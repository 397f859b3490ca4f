package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/telcoflow/workflowengine/pkg/catalog"
	"github.com/telcoflow/workflowengine/pkg/compiler"
	"github.com/telcoflow/workflowengine/pkg/dispatcher"
	"github.com/telcoflow/workflowengine/pkg/session"
)

// Engine drives one invocation of a compiled ExecutionGraph.
type Engine struct {
	catalog    *catalog.Catalog
	dispatcher *dispatcher.Dispatcher
	logger     *slog.Logger
	now        func() time.Time
}

// New builds an Engine. cat is currently unused by the sequential
// scheduler but kept for future output-handle validation and parallel
// scheduling across independent branches (spec.md §4.6's MAY clause).
func New(cat *catalog.Catalog, disp *dispatcher.Dispatcher, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		catalog:    cat,
		dispatcher: disp,
		logger:     logger.With("module", "engine"),
		now:        time.Now,
	}
}

// Execute runs graph once for triggerPayload, optionally against an
// attached session, returning the invocation's final Result.
func (e *Engine) Execute(ctx context.Context, graph *compiler.ExecutionGraph, triggerPayload map[string]any, sess *session.Record, opts Options) *Result {
	executionID := opts.ExecutionID
	if executionID == "" {
		executionID = uuid.NewString()
	}
	startedAt := e.now()

	invocationCtx, cancelTimeout := context.WithTimeout(ctx, opts.deadline())
	defer cancelTimeout()
	invocationCtx, cancelSignal := withCancelSignal(invocationCtx, opts.Cancel)
	defer cancelSignal()

	logger := e.logger.With("execution_id", executionID, "workflow_id", graph.WorkflowID)
	logger.Info("execution started")

	variables := cloneMap(triggerPayload)
	if variables == nil {
		variables = map[string]any{}
	}

	var sessionView *dispatcher.SessionView
	if sess != nil {
		sessionView = &dispatcher.SessionView{
			SessionID:  sess.SessionID,
			Channel:    string(sess.Channel),
			Subscriber: sess.Subscriber,
			Data:       sess.Data,
		}
	}

	execCtx := &dispatcher.ExecutionContext{
		ExecutionID:     executionID,
		WorkflowID:      graph.WorkflowID,
		WorkflowVersion: graph.WorkflowVersion,
		TriggerPayload:  triggerPayload,
		Session:         sessionView,
		Variables:       variables,
		StartedAt:       startedAt,
	}

	nodeOutputs := map[string]map[string]any{graph.TriggerNodeID: cloneMap(triggerPayload)}
	suppressedEdges := map[string]bool{}
	results := map[string][]dispatcher.NodeExecutionResult{}

	var finalState State
	var finalErr *dispatcher.NodeError

	for _, nodeID := range graph.ExecutionOrder {
		if nodeID == graph.TriggerNodeID {
			continue
		}
		node := graph.Nodes[nodeID]
		nodeLogger := logger.With("node_id", nodeID, "node_type", node.Type)

		if err := invocationCtx.Err(); err != nil {
			finalState, finalErr = terminalStateFor(err)
			break
		}

		if node.Disabled {
			res := skippedResult(nodeID, "disabled")
			results[nodeID] = prepend(results[nodeID], res)
			suppressAllOutgoing(node.Outgoing, suppressedEdges)
			continue
		}

		if len(node.Incoming) > 0 && allSuppressed(node.Incoming, suppressedEdges) {
			res := skippedResult(nodeID, "unselected_branch")
			results[nodeID] = prepend(results[nodeID], res)
			suppressAllOutgoing(node.Outgoing, suppressedEdges)
			continue
		}

		mergedInput, inputs := assembleInputs(node, suppressedEdges, nodeOutputs)

		res, attempts := e.executeWithRetry(invocationCtx, node, execCtx, mergedInput, inputs, opts, nodeLogger)
		for _, a := range attempts {
			results[nodeID] = prepend(results[nodeID], a)
		}

		suppressSiblingEdges(node.Outgoing, res.OutputHandle, suppressedEdges)

		if res.Status != dispatcher.StatusSuccess && res.Status != dispatcher.StatusSkipped {
			// A deadline or cancellation signal that fired mid-node takes
			// precedence over the node's own reported failure, so the
			// invocation's terminal state reflects the real cause.
			if err := invocationCtx.Err(); err != nil {
				finalState, finalErr = terminalStateFor(err)
			} else {
				finalErr = res.Error
				finalState = StateFailed
			}
			nodeLogger.Warn("node failed without remaining retries", "code", errorCode(finalErr))
			break
		}

		nodeOutputs[nodeID] = res.Output
		for k, v := range res.Output {
			variables[k] = v
		}
		variables["node_"+nodeID] = res.Output

		if node.EndsSession {
			nodeLogger.Info("session-ending node reached, stopping invocation")
			break
		}
	}

	if finalState == "" {
		if err := invocationCtx.Err(); err != nil {
			finalState, finalErr = terminalStateFor(err)
		} else {
			finalState = StateCompleted
		}
	}

	completedAt := e.now()
	logger.Info("execution finished", "state", finalState, "duration_ms", completedAt.Sub(startedAt).Milliseconds())

	return &Result{
		ExecutionID: executionID,
		WorkflowID:  graph.WorkflowID,
		State:       finalState,
		StartedAt:   startedAt,
		CompletedAt: completedAt,
		Variables:   variables,
		NodeResults: results,
		Error:       finalErr,
	}
}

func terminalStateFor(err error) (State, *dispatcher.NodeError) {
	if errors.Is(err, context.Canceled) {
		return StateCancelled, nil
	}
	return StateFailed, executionTimeoutError()
}

func errorCode(e *dispatcher.NodeError) string {
	if e == nil {
		return ""
	}
	return e.Code
}

func skippedResult(nodeID, reason string) dispatcher.NodeExecutionResult {
	return dispatcher.NodeExecutionResult{
		NodeID: nodeID,
		Status: dispatcher.StatusSkipped,
		Output: map[string]any{"reason": reason},
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func prepend(list []dispatcher.NodeExecutionResult, res dispatcher.NodeExecutionResult) []dispatcher.NodeExecutionResult {
	return append([]dispatcher.NodeExecutionResult{res}, list...)
}
