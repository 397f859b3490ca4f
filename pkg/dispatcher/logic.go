package dispatcher

import (
	"context"
	"fmt"
	"time"

	"github.com/telcoflow/workflowengine/pkg/template"
)

func conditionHandler(_ context.Context, in HandlerInput) NodeExecutionResult {
	expr, _ := in.Node.Config["expression"].(string)
	scope := BuildScope(in)

	handle := "false"
	if template.EvaluatePredicate(expr, scope) {
		handle = "true"
	}
	return result(in.Node.ID, in.Attempt, StatusSuccess, handle, in.Input, nil)
}

type switchCase struct {
	Value string
	Label string
}

func switchHandler(_ context.Context, in HandlerInput) NodeExecutionResult {
	valueExpr, _ := in.Node.Config["value"].(string)
	scope := BuildScope(in)
	rendered := template.Render(valueExpr, scope)

	for _, c := range parseSwitchCases(in.Node.Config["cases"]) {
		renderedCase := template.Render(c.Value, scope)
		if renderedCase == rendered {
			return result(in.Node.ID, in.Attempt, StatusSuccess, c.Label, in.Input, nil)
		}
	}
	return result(in.Node.ID, in.Attempt, StatusSuccess, "default", in.Input, nil)
}

func parseSwitchCases(raw any) []switchCase {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]switchCase, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		value, _ := m["value"].(string)
		label, _ := m["label"].(string)
		out = append(out, switchCase{Value: value, Label: label})
	}
	return out
}

func delayHandler(ctx context.Context, in HandlerInput) NodeExecutionResult {
	durationMs, _ := in.Node.Config["duration_ms"].(float64)
	if durationMs <= 0 {
		if v, ok := in.Node.Config["duration_ms"].(int); ok {
			durationMs = float64(v)
		}
	}

	timer := time.NewTimer(time.Duration(durationMs) * time.Millisecond)
	defer timer.Stop()

	select {
	case <-timer.C:
		return result(in.Node.ID, in.Attempt, StatusSuccess, "default", in.Input, nil)
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return result(in.Node.ID, in.Attempt, StatusTimeout, "", nil, &NodeError{
				Code:    "execution_timeout",
				Message: "delay interrupted by the invocation deadline",
				Type:    ErrorTransient,
			})
		}
		return result(in.Node.ID, in.Attempt, StatusError, "", nil, &NodeError{
			Code:    "cancelled",
			Message: "delay interrupted by cancellation",
			Type:    ErrorPermanent,
		})
	}
}

func rateLimitHandler(limiters *rateLimiterSet) Handler {
	return func(_ context.Context, in HandlerInput) NodeExecutionResult {
		maxRequests, _ := asInt(in.Node.Config["max_requests"])
		windowMs, _ := asInt(in.Node.Config["window_ms"])
		strategy, _ := in.Node.Config["strategy"].(string)
		if strategy == "" {
			strategy = "fixed"
		}
		key, _ := in.Node.Config["key"].(string)
		scope := BuildScope(in)
		if key != "" {
			key = template.Render(key, scope)
		} else {
			key = in.Node.ID
		}

		if limiters.AllowStrategy(key, strategy, maxRequests, time.Duration(windowMs)*time.Millisecond, time.Now()) {
			return result(in.Node.ID, in.Attempt, StatusSuccess, "success", in.Input, nil)
		}
		return result(in.Node.ID, in.Attempt, StatusError, "error", nil, &NodeError{
			Code:    "rate_limit",
			Message: fmt.Sprintf("rate limit exceeded for key %q", key),
			Type:    ErrorRateLimit,
		})
	}
}

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	default:
		return 0, false
	}
}
