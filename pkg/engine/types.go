// Package engine is the Execution Engine: it walks a compiled
// ExecutionGraph for one invocation, dispatching each node through the
// Action Dispatcher, applying per-node retry/timeout, propagating
// outputs, suppressing unselected branches, and enforcing the
// invocation-wide deadline and cancellation signal.
package engine

import (
	"time"

	"github.com/telcoflow/workflowengine/pkg/dispatcher"
)

// State is the terminal or in-flight state of one invocation.
type State string

const (
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Options configures one Execute call.
type Options struct {
	// ExecutionID, if set, is used verbatim instead of generating a new
	// uuid — lets a caller correlate the Execution Log entry it opened
	// before calling Execute with the result Execute returns.
	ExecutionID string

	// MaxExecutionMs bounds the whole invocation. Zero means the
	// spec.md default of 300000ms.
	MaxExecutionMs int

	// EnableRetries gates whether the Engine retries a retryable
	// node error. Defaults to true via NewOptions.
	EnableRetries bool

	// Cancel, if set, lets a caller abort the invocation cooperatively,
	// distinct from MaxExecutionMs expiring.
	Cancel *CancelSignal
}

// NewOptions returns Options with spec.md's defaults applied.
func NewOptions() Options {
	return Options{MaxExecutionMs: 300_000, EnableRetries: true}
}

func (o Options) deadline() time.Duration {
	if o.MaxExecutionMs <= 0 {
		return 300_000 * time.Millisecond
	}
	return time.Duration(o.MaxExecutionMs) * time.Millisecond
}

// Result is the outcome of one invocation.
type Result struct {
	ExecutionID string                              `json:"execution_id"`
	WorkflowID  string                              `json:"workflow_id"`
	State       State                               `json:"state"`
	StartedAt   time.Time                           `json:"started_at"`
	CompletedAt time.Time                           `json:"completed_at"`
	Variables   map[string]any                      `json:"variables"`
	NodeResults map[string][]dispatcher.NodeExecutionResult `json:"node_results"`
	Error       *dispatcher.NodeError               `json:"error,omitempty"`
}
