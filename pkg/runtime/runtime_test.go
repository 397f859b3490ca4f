package runtime_test

import (
	"context"
	"testing"
	"time"

	"github.com/telcoflow/workflowengine/pkg/engine"
	"github.com/telcoflow/workflowengine/pkg/runtime"
	"github.com/telcoflow/workflowengine/pkg/workflowdesc"
)

func baseMetadata() workflowdesc.Metadata {
	return workflowdesc.Metadata{
		ID:        "3fa85f64-5717-4562-b3fc-2c963f66afa6",
		Version:   1,
		Name:      "echo",
		CreatedAt: time.Now(),
	}
}

func smsEchoWorkflow() *workflowdesc.WorkflowDescription {
	trigger := workflowdesc.Node{ID: "t1", Type: "sms_received", Config: map[string]any{}}
	action := workflowdesc.Node{ID: "a1", Type: "send_sms", Config: map[string]any{
		"to": "{{subscriber}}", "message": "You said: {{message}}",
	}}
	return &workflowdesc.WorkflowDescription{
		Metadata: baseMetadata(),
		Trigger:  trigger,
		Nodes:    []workflowdesc.Node{trigger, action},
		Edges:    []workflowdesc.Edge{{ID: "e1", Source: "t1", Target: "a1"}},
	}
}

func TestNew_WiresAHealthyRuntime(t *testing.T) {
	rt, err := runtime.New(runtime.Config{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	checks := rt.HealthCheck(context.Background())
	if !runtime.Healthy(checks) {
		t.Fatalf("expected a healthy runtime, got %+v", checks)
	}
}

func TestExecute_CompilesAndLogsTheInvocation(t *testing.T) {
	rt, err := runtime.New(runtime.Config{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	wd := smsEchoWorkflow()
	result, err := rt.Execute(context.Background(), wd, map[string]any{
		"subscriber": "+254700000000",
		"message":    "hello",
	}, nil, engine.NewOptions())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.State != engine.StateCompleted {
		t.Fatalf("expected completed, got %s (%v)", result.State, result.Error)
	}

	logged, err := rt.ExecLog.Get(context.Background(), result.ExecutionID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(logged.State) != string(result.State) {
		t.Fatalf("execution log state mismatch: %s vs %s", logged.State, result.State)
	}
	if len(logged.NodeResults["a1"]) == 0 {
		t.Fatalf("expected node a1 to be logged, got %+v", logged.NodeResults)
	}
}

func TestExecute_InvalidWorkflowFailsToCompile(t *testing.T) {
	rt, err := runtime.New(runtime.Config{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	trigger := workflowdesc.Node{ID: "t1", Type: "sms_received", Config: map[string]any{}}
	wd := &workflowdesc.WorkflowDescription{
		Metadata: baseMetadata(),
		Trigger:  trigger,
		Nodes:    []workflowdesc.Node{trigger},
		Edges: []workflowdesc.Edge{
			{ID: "e1", Source: "t1", Target: "ghost"},
		},
	}

	if _, err := rt.Execute(context.Background(), wd, nil, nil, engine.NewOptions()); err == nil {
		t.Fatal("expected a compile error for a dangling edge")
	} else if _, ok := err.(*runtime.CompileFailedError); !ok {
		t.Fatalf("expected a *runtime.CompileFailedError, got %T: %v", err, err)
	}
}
