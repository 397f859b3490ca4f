package execlog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/telcoflow/workflowengine/pkg/dispatcher"
)

// Store is the Execution Log contract (spec.md §4.7). Every operation is
// total and idempotent on execution_id.
type Store interface {
	LogStart(ctx context.Context, executionID, workflowID string, workflowVersion int, startedAt time.Time) error
	LogNode(ctx context.Context, executionID string, result dispatcher.NodeExecutionResult) error
	LogEnd(ctx context.Context, executionID string, state State, completedAt time.Time, execErr *dispatcher.NodeError) error
	Get(ctx context.Context, executionID string) (*Log, error)
	Query(ctx context.Context, filters Filters) ([]*Log, error)
	HealthCheck(ctx context.Context) error
}

// MemoryStore is the in-memory Execution Log: spec.md §1 scopes durable
// persistence out of this module, so there is no SQL driver to wire here.
type MemoryStore struct {
	mu   sync.RWMutex
	logs map[string]*Log
}

// NewMemoryStore builds an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{logs: make(map[string]*Log)}
}

func (s *MemoryStore) LogStart(_ context.Context, executionID, workflowID string, workflowVersion int, startedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs[executionID] = &Log{
		ExecutionID:     executionID,
		WorkflowID:      workflowID,
		WorkflowVersion: workflowVersion,
		State:           StateRunning,
		StartedAt:       startedAt,
		NodeResults:     make(map[string][]dispatcher.NodeExecutionResult),
	}
	return nil
}

func (s *MemoryStore) LogNode(_ context.Context, executionID string, result dispatcher.NodeExecutionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log, ok := s.logs[executionID]
	if !ok {
		return &OpError{Op: "LogNode", ExecutionID: executionID, Err: ErrNotFound}
	}
	if log.NodeResults == nil {
		log.NodeResults = make(map[string][]dispatcher.NodeExecutionResult)
	}
	log.NodeResults[result.NodeID] = append([]dispatcher.NodeExecutionResult{result}, log.NodeResults[result.NodeID]...)
	return nil
}

func (s *MemoryStore) LogEnd(_ context.Context, executionID string, state State, completedAt time.Time, execErr *dispatcher.NodeError) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log, ok := s.logs[executionID]
	if !ok {
		return &OpError{Op: "LogEnd", ExecutionID: executionID, Err: ErrNotFound}
	}
	log.State = state
	t := completedAt
	log.CompletedAt = &t
	log.Error = execErr
	return nil
}

func (s *MemoryStore) Get(_ context.Context, executionID string) (*Log, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log, ok := s.logs[executionID]
	if !ok {
		return nil, &OpError{Op: "Get", ExecutionID: executionID, Err: ErrNotFound}
	}
	return log.clone(), nil
}

func (s *MemoryStore) Query(_ context.Context, filters Filters) ([]*Log, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]*Log, 0, len(s.logs))
	for _, log := range s.logs {
		if filters.WorkflowID != "" && log.WorkflowID != filters.WorkflowID {
			continue
		}
		if filters.State != "" && log.State != filters.State {
			continue
		}
		if filters.StartedAtFrom != nil && log.StartedAt.Before(*filters.StartedAtFrom) {
			continue
		}
		if filters.StartedAtTo != nil && log.StartedAt.After(*filters.StartedAtTo) {
			continue
		}
		matches = append(matches, log.clone())
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].StartedAt.After(matches[j].StartedAt)
	})

	limit := filters.Limit
	if limit <= 0 || limit > MaxQueryLimit {
		limit = MaxQueryLimit
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (s *MemoryStore) HealthCheck(_ context.Context) error {
	return nil
}
