package template

import "fmt"

func stringifyFallback(v any) string {
	return fmt.Sprintf("%v", v)
}

// BuildScope composes the per-node template scope: nodeInput overlays
// contextVariables (node input takes precedence on key collision), then
// session is layered on top under the "session" key when non-nil. Other
// well-known keys (subscriber, message, `node_<id>.*`) are visible only
// if they already live inside contextVariables or nodeInput.
func BuildScope(contextVariables, nodeInput map[string]any, session map[string]any) map[string]any {
	scope := make(map[string]any, len(contextVariables)+len(nodeInput)+1)
	for k, v := range contextVariables {
		scope[k] = v
	}
	for k, v := range nodeInput {
		scope[k] = v
	}
	if session != nil {
		scope["session"] = session
	}
	return scope
}
