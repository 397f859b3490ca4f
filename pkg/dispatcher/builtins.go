package dispatcher

import "github.com/telcoflow/workflowengine/pkg/session"

// RegisterBuiltins wires every logic and state node handler spec.md §4.5
// declares as built-in. Telecom action handlers are registered
// separately via pkg/dispatcher/actions.RegisterAll, which needs a
// telecom.Client the core Dispatcher has no business constructing.
func RegisterBuiltins(d *Dispatcher, store session.Store) {
	d.Register("condition", conditionHandler)
	d.Register("switch", switchHandler)
	d.Register("delay", delayHandler)
	d.Register("rate_limit", rateLimitHandler(newRateLimiterSet()))
	d.Register("retry", retryHandler)
	d.Register("merge", mergeHandler)

	d.Register("session_read", sessionReadHandler)
	d.Register("session_write", sessionWriteHandler(store))
	d.Register("session_end", sessionEndHandler(store))
}
