package engine

import (
	"fmt"

	"github.com/telcoflow/workflowengine/pkg/dispatcher"
)

func executionTimeoutError() *dispatcher.NodeError {
	return &dispatcher.NodeError{
		Code:    "execution_timeout",
		Message: "invocation deadline exceeded",
		Type:    dispatcher.ErrorTransient,
	}
}

func panicError(recovered any) *dispatcher.NodeError {
	return &dispatcher.NodeError{
		Code:    "handler_panic",
		Message: panicMessage(recovered),
		Type:    dispatcher.ErrorPermanent,
	}
}

func panicMessage(recovered any) string {
	if err, ok := recovered.(error); ok {
		return err.Error()
	}
	return fmt.Sprintf("unhandled panic in node handler: %v", recovered)
}
