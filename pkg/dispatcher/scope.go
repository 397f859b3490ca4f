package dispatcher

import "github.com/telcoflow/workflowengine/pkg/template"

// BuildScope assembles the template scope for one node attempt: node
// input over context variables, with session.* layered on top when a
// session is attached.
func BuildScope(in HandlerInput) map[string]any {
	var sessionMap map[string]any
	if in.Context != nil && in.Context.Session != nil {
		sessionMap = map[string]any{
			"id":         in.Context.Session.SessionID,
			"channel":    in.Context.Session.Channel,
			"subscriber": in.Context.Session.Subscriber,
			"data":       in.Context.Session.Data,
		}
	}
	var ctxVars map[string]any
	if in.Context != nil {
		ctxVars = in.Context.Variables
	}
	return template.BuildScope(ctxVars, in.Input, sessionMap)
}

func result(nodeID string, attempt int, status NodeStatus, handle string, output map[string]any, nodeErr *NodeError) NodeExecutionResult {
	return NodeExecutionResult{
		NodeID:       nodeID,
		Status:       status,
		Output:       output,
		OutputHandle: handle,
		Error:        nodeErr,
		Attempt:      attempt,
	}
}
