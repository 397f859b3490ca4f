// Package execlog is the Execution Log: an append-only, queryable record
// of every invocation the Engine has run, keyed by execution_id.
package execlog

import (
	"time"

	"github.com/telcoflow/workflowengine/pkg/dispatcher"
)

// State mirrors engine.State without importing pkg/engine, keeping
// execlog usable by anything that can name a terminal state string.
type State string

const (
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Log is one invocation's full record.
type Log struct {
	ExecutionID     string                                       `json:"execution_id"`
	WorkflowID      string                                       `json:"workflow_id"`
	WorkflowVersion int                                          `json:"workflow_version"`
	State           State                                        `json:"state"`
	StartedAt       time.Time                                    `json:"started_at"`
	CompletedAt     *time.Time                                   `json:"completed_at,omitempty"`
	NodeResults     map[string][]dispatcher.NodeExecutionResult  `json:"node_results,omitempty"`
	Error           *dispatcher.NodeError                        `json:"error,omitempty"`
}

func (l *Log) clone() *Log {
	cp := *l
	if l.CompletedAt != nil {
		t := *l.CompletedAt
		cp.CompletedAt = &t
	}
	if l.NodeResults != nil {
		cp.NodeResults = make(map[string][]dispatcher.NodeExecutionResult, len(l.NodeResults))
		for k, v := range l.NodeResults {
			cp.NodeResults[k] = append([]dispatcher.NodeExecutionResult(nil), v...)
		}
	}
	return &cp
}

// Filters narrows a Query call.
type Filters struct {
	WorkflowID    string
	State         State
	StartedAtFrom *time.Time
	StartedAtTo   *time.Time
	Limit         int
}

// MaxQueryLimit bounds every Query call regardless of the requested limit.
const MaxQueryLimit = 1000
