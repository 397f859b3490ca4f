package execlog_test

import (
	"context"
	"testing"
	"time"

	"github.com/telcoflow/workflowengine/pkg/dispatcher"
	"github.com/telcoflow/workflowengine/pkg/execlog"
)

func TestMemoryStore_StartNodeEnd_RoundTrip(t *testing.T) {
	store := execlog.NewMemoryStore()
	ctx := context.Background()
	started := time.Now()

	if err := store.LogStart(ctx, "exec1", "wf1", 1, started); err != nil {
		t.Fatalf("LogStart: %v", err)
	}
	if err := store.LogNode(ctx, "exec1", dispatcher.NodeExecutionResult{NodeID: "n1", Status: dispatcher.StatusSuccess}); err != nil {
		t.Fatalf("LogNode: %v", err)
	}
	if err := store.LogEnd(ctx, "exec1", execlog.StateCompleted, started.Add(time.Second), nil); err != nil {
		t.Fatalf("LogEnd: %v", err)
	}

	got, err := store.Get(ctx, "exec1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.State != execlog.StateCompleted {
		t.Fatalf("expected completed, got %s", got.State)
	}
	if len(got.NodeResults["n1"]) != 1 {
		t.Fatalf("expected 1 node result, got %+v", got.NodeResults)
	}
}

func TestLogNode_UnknownExecutionFails(t *testing.T) {
	store := execlog.NewMemoryStore()
	err := store.LogNode(context.Background(), "ghost", dispatcher.NodeExecutionResult{NodeID: "n1"})
	if err == nil {
		t.Fatal("expected an error for an unknown execution id")
	}
}

func TestGet_UnknownExecutionFails(t *testing.T) {
	store := execlog.NewMemoryStore()
	if _, err := store.Get(context.Background(), "ghost"); err == nil {
		t.Fatal("expected an error for an unknown execution id")
	}
}

// S7: query filtering by workflow_id/state, newest first, limit honored.
func TestQuery_FiltersAndOrdersNewestFirst(t *testing.T) {
	store := execlog.NewMemoryStore()
	ctx := context.Background()
	base := time.Now()

	seed := func(id, workflowID string, state execlog.State, offset time.Duration) {
		started := base.Add(offset)
		if err := store.LogStart(ctx, id, workflowID, 1, started); err != nil {
			t.Fatalf("LogStart: %v", err)
		}
		if err := store.LogEnd(ctx, id, state, started.Add(time.Millisecond), nil); err != nil {
			t.Fatalf("LogEnd: %v", err)
		}
	}

	seed("e1", "wfA", execlog.StateCompleted, 0)
	seed("e2", "wfA", execlog.StateFailed, time.Minute)
	seed("e3", "wfB", execlog.StateCompleted, 2*time.Minute)

	results, err := store.Query(ctx, execlog.Filters{WorkflowID: "wfA"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results for wfA, got %d", len(results))
	}
	if results[0].ExecutionID != "e2" {
		t.Fatalf("expected newest first (e2), got %s", results[0].ExecutionID)
	}

	failedOnly, err := store.Query(ctx, execlog.Filters{State: execlog.StateFailed})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(failedOnly) != 1 || failedOnly[0].ExecutionID != "e2" {
		t.Fatalf("expected only e2 for state=failed, got %+v", failedOnly)
	}

	limited, err := store.Query(ctx, execlog.Filters{Limit: 1})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected limit=1 to be honored, got %d", len(limited))
	}
}
