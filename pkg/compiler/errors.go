package compiler

import "fmt"

// Stable error codes surfaced to callers (spec §6 error taxonomy, the
// compile-time subset).
const (
	CodeSchemaValidationError     = "schema_validation_error"
	CodeUnknownNodeType           = "unknown_node_type"
	CodeNodeConfigValidationError = "node_config_validation_error"
	CodeCycleDetected             = "cycle_detected"
	CodeUnreachableNode           = "unreachable_node"
	CodeTriggerHasIncomingEdges   = "trigger_has_incoming_edges"
	CodeInvalidNodeConnection     = "invalid_node_connection"
	CodeUSSDMissingSessionEnd     = "ussd_missing_session_end"
	CodeDuplicateNodeID           = "duplicate_node_id"
)

// CompileError is one failure, pinpointed to a node and/or path when
// applicable.
type CompileError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	NodeID  string `json:"node_id,omitempty"`
	Path    string `json:"path,omitempty"`
}

func (e CompileError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("%s: %s (node %s)", e.Code, e.Message, e.NodeID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Warning is a non-fatal compiler observation.
type Warning struct {
	Code    string `json:"code"`
	NodeID  string `json:"node_id,omitempty"`
	Message string `json:"message"`
}
