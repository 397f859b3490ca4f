// Package dispatcher is the Action Dispatcher: a registry mapping node
// type to handler, invoked by the Engine instead of the Engine knowing
// anything about node types itself. Built-in handlers cover the logic
// and state node families; telecom action handlers live under
// pkg/dispatcher/actions.
package dispatcher

import (
	"context"
	"time"

	"github.com/telcoflow/workflowengine/pkg/compiler"
)

// ErrorType is the retry-eligibility taxonomy (spec §7).
type ErrorType string

const (
	ErrorTransient  ErrorType = "transient"
	ErrorPermanent  ErrorType = "permanent"
	ErrorRateLimit  ErrorType = "rate_limit"
	ErrorValidation ErrorType = "validation"
)

// NodeError is a structured node failure.
type NodeError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Type    ErrorType      `json:"type"`
	Details map[string]any `json:"details,omitempty"`
}

// NodeStatus is the outcome of one node attempt.
type NodeStatus string

const (
	StatusSuccess NodeStatus = "success"
	StatusError   NodeStatus = "error"
	StatusSkipped NodeStatus = "skipped"
	StatusTimeout NodeStatus = "timeout"
)

// NodeExecutionResult is one attempt's record. OutputHandle names which
// output branch the handler selected (e.g. "success", "true", a switch
// case label) so the Engine can suppress sibling edges.
type NodeExecutionResult struct {
	NodeID       string         `json:"node_id"`
	Status       NodeStatus     `json:"status"`
	Output       map[string]any `json:"output,omitempty"`
	OutputHandle string         `json:"output_handle,omitempty"`
	Error        *NodeError     `json:"error,omitempty"`
	DurationMs   int64          `json:"duration_ms"`
	ExecutedAt   time.Time      `json:"executed_at"`
	Attempt      int            `json:"attempt"`
}

// SessionView is the subset of SessionRecord a handler needs; kept
// narrow so dispatcher handlers don't need to import pkg/session.
type SessionView struct {
	SessionID  string
	Channel    string
	Subscriber string
	Data       map[string]any
}

// ExecutionContext is the per-invocation state a handler may read.
// Handlers never mutate it directly — the Engine owns writes.
type ExecutionContext struct {
	ExecutionID     string
	WorkflowID      string
	WorkflowVersion int
	TriggerPayload  map[string]any
	Session         *SessionView
	Variables       map[string]any
	StartedAt       time.Time
}

// HandlerInput is what the Engine hands a handler for one node attempt.
type HandlerInput struct {
	Node    *compiler.ExecutionNode
	Context *ExecutionContext

	// Input is the merged output of every inbound edge (node input <
	// context variables precedence is applied by the caller building the
	// template scope, not here).
	Input map[string]any

	// Inputs is the ordered, per-edge contribution, used only by
	// multi-input nodes (merge) whose strategy needs to see each
	// predecessor's output separately.
	Inputs []map[string]any

	Attempt int
}

// Handler executes one node attempt and returns its result. Handlers
// must return promptly when ctx is done.
type Handler func(ctx context.Context, in HandlerInput) NodeExecutionResult
