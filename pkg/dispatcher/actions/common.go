package actions

import "github.com/telcoflow/workflowengine/pkg/dispatcher"

func actionSuccess(in dispatcher.HandlerInput, output map[string]any) dispatcher.NodeExecutionResult {
	return dispatcher.NodeExecutionResult{
		NodeID:       in.Node.ID,
		Status:       dispatcher.StatusSuccess,
		Output:       output,
		OutputHandle: "success",
		Attempt:      in.Attempt,
	}
}

func actionResult(in dispatcher.HandlerInput, handle string, output map[string]any) dispatcher.NodeExecutionResult {
	return dispatcher.NodeExecutionResult{
		NodeID:       in.Node.ID,
		Status:       dispatcher.StatusSuccess,
		Output:       output,
		OutputHandle: handle,
		Attempt:      in.Attempt,
	}
}

func actionError(in dispatcher.HandlerInput, nodeErr *dispatcher.NodeError) dispatcher.NodeExecutionResult {
	return dispatcher.NodeExecutionResult{
		NodeID:       in.Node.ID,
		Status:       dispatcher.StatusError,
		OutputHandle: "error",
		Error:        nodeErr,
		Attempt:      in.Attempt,
	}
}

func asInt(v any, fallback int) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	default:
		return fallback
	}
}
