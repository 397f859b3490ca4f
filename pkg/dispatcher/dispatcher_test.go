package dispatcher_test

import (
	"context"
	"testing"
	"time"

	"github.com/telcoflow/workflowengine/pkg/compiler"
	"github.com/telcoflow/workflowengine/pkg/dispatcher"
	"github.com/telcoflow/workflowengine/pkg/session"
)

func newTestDispatcher() (*dispatcher.Dispatcher, session.Store) {
	store := session.NewMemoryStore()
	d := dispatcher.New(nil)
	dispatcher.RegisterBuiltins(d, store)
	return d, store
}

func TestDispatch_UnknownType(t *testing.T) {
	d, _ := newTestDispatcher()
	res := d.Dispatch(context.Background(), dispatcher.HandlerInput{
		Node: &compiler.ExecutionNode{ID: "n1", Type: "not_registered"},
	})
	if res.Status != dispatcher.StatusError {
		t.Fatalf("expected error status, got %s", res.Status)
	}
	if res.Error == nil || res.Error.Type != dispatcher.ErrorPermanent {
		t.Fatalf("expected a permanent error, got %+v", res.Error)
	}
}

func TestCondition_RoutesOnExpression(t *testing.T) {
	d, _ := newTestDispatcher()
	node := &compiler.ExecutionNode{ID: "c1", Type: "condition", Config: map[string]any{
		"expression": "{{amount}} > 100",
	}}

	res := d.Dispatch(context.Background(), dispatcher.HandlerInput{
		Node:    node,
		Context: &dispatcher.ExecutionContext{Variables: map[string]any{"amount": 150.0}},
	})
	if res.OutputHandle != "true" {
		t.Fatalf("expected true branch, got %s", res.OutputHandle)
	}

	res = d.Dispatch(context.Background(), dispatcher.HandlerInput{
		Node:    node,
		Context: &dispatcher.ExecutionContext{Variables: map[string]any{"amount": 50.0}},
	})
	if res.OutputHandle != "false" {
		t.Fatalf("expected false branch, got %s", res.OutputHandle)
	}
}

func TestSwitch_MatchesCaseOrDefault(t *testing.T) {
	d, _ := newTestDispatcher()
	node := &compiler.ExecutionNode{ID: "s1", Type: "switch", Config: map[string]any{
		"value": "{{status}}",
		"cases": []any{
			map[string]any{"value": "ok", "label": "ok_branch"},
		},
	}}

	res := d.Dispatch(context.Background(), dispatcher.HandlerInput{
		Node:    node,
		Context: &dispatcher.ExecutionContext{Variables: map[string]any{"status": "ok"}},
	})
	if res.OutputHandle != "ok_branch" {
		t.Fatalf("expected ok_branch, got %s", res.OutputHandle)
	}

	res = d.Dispatch(context.Background(), dispatcher.HandlerInput{
		Node:    node,
		Context: &dispatcher.ExecutionContext{Variables: map[string]any{"status": "other"}},
	})
	if res.OutputHandle != "default" {
		t.Fatalf("expected default, got %s", res.OutputHandle)
	}
}

func TestMerge_StrategyAll(t *testing.T) {
	d, _ := newTestDispatcher()
	node := &compiler.ExecutionNode{ID: "m1", Type: "merge", Config: map[string]any{"strategy": "all"}}

	res := d.Dispatch(context.Background(), dispatcher.HandlerInput{
		Node:   node,
		Inputs: []map[string]any{{"a": 1}, {"b": 2}},
	})
	inputs, ok := res.Output["inputs"].([]map[string]any)
	if !ok || len(inputs) != 2 {
		t.Fatalf("expected 2 buffered inputs, got %+v", res.Output)
	}
}

func TestMerge_StrategyMergeUnionsKeys(t *testing.T) {
	d, _ := newTestDispatcher()
	node := &compiler.ExecutionNode{ID: "m2", Type: "merge", Config: map[string]any{"strategy": "merge"}}

	res := d.Dispatch(context.Background(), dispatcher.HandlerInput{
		Node:   node,
		Inputs: []map[string]any{{"a": 1}, {"b": 2}},
	})
	if res.Output["a"] != 1 || res.Output["b"] != 2 {
		t.Fatalf("expected union of keys, got %+v", res.Output)
	}
}

func TestSessionWrite_ThenRead(t *testing.T) {
	d, store := newTestDispatcher()
	ctx := context.Background()
	rec, err := store.Create(ctx, session.ChannelUSSD, "+254700000009", nil, 0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	view := &dispatcher.SessionView{SessionID: rec.SessionID, Data: rec.Data}
	execCtx := &dispatcher.ExecutionContext{Session: view}

	writeNode := &compiler.ExecutionNode{ID: "w1", Type: "session_write", Config: map[string]any{
		"data": map[string]any{"step": "1"},
	}}
	writeRes := d.Dispatch(ctx, dispatcher.HandlerInput{Node: writeNode, Context: execCtx})
	if writeRes.Status != dispatcher.StatusSuccess {
		t.Fatalf("expected success, got %+v", writeRes)
	}

	readNode := &compiler.ExecutionNode{ID: "r1", Type: "session_read", Config: map[string]any{
		"keys": []any{"step"},
	}}
	readRes := d.Dispatch(ctx, dispatcher.HandlerInput{Node: readNode, Context: execCtx})
	if readRes.Output["step"] != "1" {
		t.Fatalf("expected step=1, got %+v", readRes.Output)
	}
}

func TestDelay_RespectsDeadline(t *testing.T) {
	d, _ := newTestDispatcher()
	node := &compiler.ExecutionNode{ID: "d1", Type: "delay", Config: map[string]any{"duration_ms": float64(50)}}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	res := d.Dispatch(ctx, dispatcher.HandlerInput{Node: node})
	if res.Status != dispatcher.StatusTimeout {
		t.Fatalf("expected timeout status, got %s", res.Status)
	}
}

func TestRateLimit_FixedWindowDenyAfterMax(t *testing.T) {
	d, _ := newTestDispatcher()
	node := &compiler.ExecutionNode{ID: "rl1", Type: "rate_limit", Config: map[string]any{
		"max_requests": float64(1),
		"window_ms":    float64(60_000),
		"strategy":     "fixed",
		"key":          "fixed-key",
	}}

	first := d.Dispatch(context.Background(), dispatcher.HandlerInput{Node: node})
	if first.Status != dispatcher.StatusSuccess {
		t.Fatalf("expected first call to succeed, got %+v", first)
	}
	second := d.Dispatch(context.Background(), dispatcher.HandlerInput{Node: node})
	if second.Status != dispatcher.StatusError || second.Error.Type != dispatcher.ErrorRateLimit {
		t.Fatalf("expected rate_limit error on second call, got %+v", second)
	}
}
