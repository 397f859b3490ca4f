// Package workflowdesc defines the user-authored WorkflowDescription — the
// input to the Compiler — and its structural validation.
package workflowdesc

import "time"

// TriggerType enumerates the node types allowed to occupy the trigger slot.
type TriggerType string

const (
	TriggerSMSReceived      TriggerType = "sms_received"
	TriggerUSSDSessionStart TriggerType = "ussd_session_start"
	TriggerIncomingCall     TriggerType = "incoming_call"
	TriggerPaymentCallback  TriggerType = "payment_callback"
	TriggerScheduled        TriggerType = "scheduled"
	TriggerHTTPWebhook      TriggerType = "http_webhook"
)

// TriggerTypes is the fixed enum of node types allowed in the trigger slot.
var TriggerTypes = map[string]bool{
	string(TriggerSMSReceived):      true,
	string(TriggerUSSDSessionStart): true,
	string(TriggerIncomingCall):     true,
	string(TriggerPaymentCallback):  true,
	string(TriggerScheduled):        true,
	string(TriggerHTTPWebhook):      true,
}

// RetryPolicy describes retry eligibility and backoff for a node.
type RetryPolicy struct {
	MaxAttempts      int      `json:"max_attempts"`
	InitialDelayMs   int      `json:"initial_delay_ms"`
	BackoffMult      float64  `json:"backoff_multiplier"`
	MaxDelayMs       int      `json:"max_delay_ms"`
	RetryableErrors  []string `json:"retryable_errors,omitempty"`
}

// Position is opaque UI placement data, carried through but never
// interpreted by the Compiler or Engine.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is one step of a workflow: the trigger plus every action/logic/state
// node reachable from it.
type Node struct {
	ID       string         `json:"id"                 validate:"required"`
	Type     string         `json:"type"                validate:"required"`
	Label    string         `json:"label,omitempty"`
	Config   map[string]any `json:"config"`
	Retry    *RetryPolicy   `json:"retry,omitempty"`
	Timeout  *int           `json:"timeout_ms,omitempty"`
	Disabled bool           `json:"disabled,omitempty"`
	Position *Position      `json:"position,omitempty"`
}

// Edge connects one node's output handle to another node's input handle.
type Edge struct {
	ID            string `json:"id"                     validate:"required"`
	Source        string `json:"source"                 validate:"required"`
	Target        string `json:"target"                 validate:"required"`
	SourceHandle  string `json:"source_handle,omitempty"`
	TargetHandle  string `json:"target_handle,omitempty"`
	Condition     string `json:"condition,omitempty"`
	Label         string `json:"label,omitempty"`
}

// Metadata carries identity and bookkeeping for a WorkflowDescription.
type Metadata struct {
	ID          string    `json:"id"                    validate:"required,uuid"`
	Version     int       `json:"version"                validate:"required,min=1"`
	Name        string    `json:"name"                   validate:"required,min=1"`
	Description string    `json:"description,omitempty"`
	Author      string    `json:"author,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Tags        []string  `json:"tags,omitempty"`
	Environment string    `json:"environment,omitempty"`
}

// WorkflowDescription is the user-authored, JSON-serializable input to the
// Compiler.
type WorkflowDescription struct {
	Metadata Metadata `json:"metadata" validate:"required"`
	Trigger  Node     `json:"trigger"  validate:"required"`
	Nodes    []Node   `json:"nodes"    validate:"required,dive"`
	Edges    []Edge   `json:"edges"    validate:"dive"`
}
