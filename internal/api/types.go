// Package api provides the HTTP handlers and request/response types for
// the workflow engine's validate/compile/execute/executions/health
// endpoints (spec §6).
package api

import (
	"time"

	"github.com/telcoflow/workflowengine/pkg/compiler"
	"github.com/telcoflow/workflowengine/pkg/dispatcher"
	"github.com/telcoflow/workflowengine/pkg/execlog"
	"github.com/telcoflow/workflowengine/pkg/workflowdesc"
)

// ExecuteRequest is the body of POST /workflows/execute.
type ExecuteRequest struct {
	Workflow       *workflowdesc.WorkflowDescription `json:"workflow"        validate:"required"`
	TriggerPayload map[string]any                    `json:"trigger_payload"`
	SessionID      string                             `json:"session_id,omitempty"`
	Options        *ExecuteOptions                    `json:"options,omitempty"`
}

// ExecuteOptions mirrors engine.Options for the wire format.
type ExecuteOptions struct {
	MaxExecutionMs int  `json:"max_execution_ms,omitempty"`
	EnableRetries  *bool `json:"enable_retries,omitempty"`
}

// ValidateResponse is the body of a successful POST /workflows/validate.
type ValidateResponse struct {
	Valid    bool                   `json:"valid"`
	Errors   []compiler.CompileError `json:"errors,omitempty"`
	Warnings []compiler.Warning      `json:"warnings,omitempty"`
}

// CompileResponse is the body of POST /workflows/compile.
type CompileResponse struct {
	Success  bool                     `json:"success"`
	Graph    *GraphView               `json:"graph,omitempty"`
	Errors   []compiler.CompileError  `json:"errors,omitempty"`
	Warnings []compiler.Warning       `json:"warnings,omitempty"`
}

// GraphView is the JSON-serializable projection of an ExecutionGraph;
// *compiler.ExecutionGraph itself carries workflowdesc.Edge slices keyed
// by node, which already marshal cleanly, so this just picks the fields
// callers need without the internal Ordinal bookkeeping.
type GraphView struct {
	WorkflowID      string                       `json:"workflow_id"`
	WorkflowVersion int                          `json:"workflow_version"`
	TriggerNodeID   string                       `json:"trigger_node_id"`
	ExecutionOrder  []string                     `json:"execution_order"`
	Metadata        compiler.GraphMetadata       `json:"metadata"`
}

// ExecuteResponse is the body of a successful POST /workflows/execute.
type ExecuteResponse struct {
	ExecutionID string                                          `json:"execution_id"`
	Status      string                                          `json:"status"`
	Output      map[string]any                                  `json:"output,omitempty"`
	Error       *dispatcher.NodeError                           `json:"error,omitempty"`
	NodeResults map[string][]dispatcher.NodeExecutionResult      `json:"node_results"`
	DurationMs  int64                                           `json:"duration_ms"`
	SessionID   string                                          `json:"session_id,omitempty"`
}

// ExecutionLogResponse is the body of GET /workflows/executions/{id}.
type ExecutionLogResponse struct {
	ExecutionID     string                                      `json:"execution_id"`
	WorkflowID      string                                      `json:"workflow_id"`
	WorkflowVersion int                                          `json:"workflow_version"`
	State           string                                      `json:"state"`
	StartedAt       time.Time                                   `json:"started_at"`
	CompletedAt     *time.Time                                  `json:"completed_at,omitempty"`
	NodeResults     map[string][]dispatcher.NodeExecutionResult `json:"node_results"`
	Error           *dispatcher.NodeError                       `json:"error,omitempty"`
}

func fromLog(l *execlog.Log) ExecutionLogResponse {
	return ExecutionLogResponse{
		ExecutionID:     l.ExecutionID,
		WorkflowID:      l.WorkflowID,
		WorkflowVersion: l.WorkflowVersion,
		State:           string(l.State),
		StartedAt:       l.StartedAt,
		CompletedAt:     l.CompletedAt,
		NodeResults:     l.NodeResults,
		Error:           l.Error,
	}
}

// ExecutionsResponse is the body of GET /workflows/executions.
type ExecutionsResponse struct {
	Executions []ExecutionLogResponse `json:"executions"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}
