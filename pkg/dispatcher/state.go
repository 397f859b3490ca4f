package dispatcher

import (
	"context"

	"github.com/telcoflow/workflowengine/pkg/session"
	"github.com/telcoflow/workflowengine/pkg/template"
)

func sessionRequiredError(nodeID string, attempt int) NodeExecutionResult {
	return result(nodeID, attempt, StatusError, "error", nil, &NodeError{
		Code:    "session_required",
		Message: "this node requires an attached session",
		Type:    ErrorPermanent,
	})
}

func sessionReadHandler(_ context.Context, in HandlerInput) NodeExecutionResult {
	if in.Context == nil || in.Context.Session == nil {
		return sessionRequiredError(in.Node.ID, in.Attempt)
	}

	keys := stringSlice(in.Node.Config["keys"])
	data := in.Context.Session.Data

	out := make(map[string]any)
	if len(keys) == 0 {
		for k, v := range data {
			out[k] = v
		}
	} else {
		for _, k := range keys {
			if v, ok := data[k]; ok {
				out[k] = v
			}
		}
	}
	return result(in.Node.ID, in.Attempt, StatusSuccess, "success", out, nil)
}

func sessionWriteHandler(store session.Store) Handler {
	return func(ctx context.Context, in HandlerInput) NodeExecutionResult {
		if in.Context == nil || in.Context.Session == nil {
			return sessionRequiredError(in.Node.ID, in.Attempt)
		}

		raw, _ := in.Node.Config["data"].(map[string]any)
		scope := BuildScope(in)
		rendered := make(map[string]any, len(raw))
		for k, v := range raw {
			if s, ok := v.(string); ok {
				rendered[k] = template.Render(s, scope)
			} else {
				rendered[k] = v
			}
		}

		updated, err := store.UpdateData(ctx, in.Context.Session.SessionID, rendered)
		if err != nil {
			return result(in.Node.ID, in.Attempt, StatusError, "error", nil, &NodeError{
				Code:    "session_not_found",
				Message: err.Error(),
				Type:    ErrorPermanent,
			})
		}
		in.Context.Session.Data = updated.Data
		return result(in.Node.ID, in.Attempt, StatusSuccess, "success", rendered, nil)
	}
}

func sessionEndHandler(store session.Store) Handler {
	return func(ctx context.Context, in HandlerInput) NodeExecutionResult {
		if in.Context == nil || in.Context.Session == nil {
			return sessionRequiredError(in.Node.ID, in.Attempt)
		}

		var out map[string]any
		if msg, ok := in.Node.Config["message"].(string); ok && msg != "" {
			scope := BuildScope(in)
			out = map[string]any{"message": template.Render(msg, scope)}
		}

		if err := store.End(ctx, in.Context.Session.SessionID); err != nil {
			return result(in.Node.ID, in.Attempt, StatusError, "", nil, &NodeError{
				Code:    "session_not_found",
				Message: err.Error(),
				Type:    ErrorPermanent,
			})
		}
		return result(in.Node.ID, in.Attempt, StatusSuccess, "", out, nil)
	}
}

func stringSlice(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// retryHandler is a passthrough for the `retry` policy-wrapper node. It
// never fails on its own; the max_retries branch is only reachable if a
// future handler override exhausts the Engine's generic retry mechanism
// on this node.
func retryHandler(_ context.Context, in HandlerInput) NodeExecutionResult {
	return result(in.Node.ID, in.Attempt, StatusSuccess, "success", in.Input, nil)
}

// mergeHandler combines every predecessor's buffered output per the
// node's configured strategy. The Engine is responsible for not calling
// this until every predecessor has produced a result or been skipped.
func mergeHandler(_ context.Context, in HandlerInput) NodeExecutionResult {
	strategy, _ := in.Node.Config["strategy"].(string)

	var out map[string]any
	switch strategy {
	case "first":
		if len(in.Inputs) > 0 {
			out = in.Inputs[0]
		}
	case "last":
		if len(in.Inputs) > 0 {
			out = in.Inputs[len(in.Inputs)-1]
		}
	case "all":
		out = map[string]any{"inputs": in.Inputs}
	default: // "merge"
		out = map[string]any{}
		for _, m := range in.Inputs {
			for k, v := range m {
				out[k] = v
			}
		}
	}
	return result(in.Node.ID, in.Attempt, StatusSuccess, "default", out, nil)
}
