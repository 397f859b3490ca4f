package dispatcher

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Dispatcher is the registry `node_type -> handler`. The Engine never
// switches on node type itself; it asks the registry. Registering over
// an existing type silently replaces it, which is exactly the seam
// spec.md §4.5 calls for: inject a fake in tests, or swap the telecom
// backend, without touching the Engine.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	logger   *slog.Logger
}

// New builds an empty Dispatcher. Use RegisterBuiltins to wire the
// logic/state handlers, and Register for action handlers.
func New(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		handlers: make(map[string]Handler),
		logger:   logger.With("module", "dispatcher"),
	}
}

// Register binds a handler to a node type, replacing any prior one.
func (d *Dispatcher) Register(nodeType string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[nodeType] = h
}

// Lookup returns the handler for a type, if any.
func (d *Dispatcher) Lookup(nodeType string) (Handler, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	h, ok := d.handlers[nodeType]
	return h, ok
}

// Dispatch runs the handler registered for in.Node.Type. A missing
// handler is a permanent error — the catalog should never accept a type
// with none wired.
func (d *Dispatcher) Dispatch(ctx context.Context, in HandlerInput) NodeExecutionResult {
	h, ok := d.Lookup(in.Node.Type)
	if !ok {
		return NodeExecutionResult{
			NodeID:     in.Node.ID,
			Status:     StatusError,
			Attempt:    in.Attempt,
			ExecutedAt: time.Now(),
			Error: &NodeError{
				Code:    "no_handler_registered",
				Message: "no dispatcher handler registered for node type " + in.Node.Type,
				Type:    ErrorPermanent,
			},
		}
	}
	return h(ctx, in)
}

// HealthCheck reports whether any handlers are registered.
func (d *Dispatcher) HealthCheck() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if len(d.handlers) == 0 {
		return errNoHandlers
	}
	return nil
}

var errNoHandlers = &noHandlersError{}

type noHandlersError struct{}

func (*noHandlersError) Error() string { return "dispatcher: no handlers registered" }
