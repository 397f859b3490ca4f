// Package catalog is the process-wide Node Catalog: the registry of every
// node type a WorkflowDescription may reference, its configuration schema,
// its input/output handles, and its session/retry/timeout defaults.
package catalog

import "github.com/telcoflow/workflowengine/pkg/workflowdesc"

// Category is one of the four node families.
type Category string

const (
	CategoryTrigger Category = "trigger"
	CategoryAction  Category = "action"
	CategoryLogic   Category = "logic"
	CategoryState   Category = "state"
)

// HandleDirection distinguishes a node's inputs from its outputs.
type HandleDirection string

const (
	DirectionInput  HandleDirection = "input"
	DirectionOutput HandleDirection = "output"
)

// Handle is one named connection point on a node.
type Handle struct {
	ID        string          `json:"id"`
	Label     string          `json:"label"`
	Direction HandleDirection `json:"direction"`
	DataShape string          `json:"data_shape,omitempty"`
}

// ConfigIssue is one config validation failure, pinpointing the JSON path.
type ConfigIssue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ConfigValidationContext carries whatever the custom_validate hook needs
// beyond the raw config map (currently nothing, but kept as a seam per the
// catalog's `validate_config(type, config, context)` contract).
type ConfigValidationContext struct{}

// CustomValidator is the per-type hook run after schema validation; it
// runs whether or not the schema check reported issues.
type CustomValidator func(config map[string]any, ctx ConfigValidationContext) []ConfigIssue

// Entry is one registered node type.
type Entry struct {
	Type        string
	Category    Category
	Name        string
	Description string

	InputHandles  []Handle
	OutputHandles []Handle

	// ConfigSchema is a JSON Schema document (as a Go value tree) compiled
	// with gojsonschema at validate_config time.
	ConfigSchema map[string]any

	AllowedIncomingTypes []string
	AllowedOutgoingTypes []string

	RequiresSession        bool
	EndsSession             bool
	AllowsMultipleInputs    bool
	AllowsMultipleOutputs   bool

	DefaultTimeoutMS    *int
	DefaultRetryPolicy  *workflowdesc.RetryPolicy
	CustomValidate      CustomValidator
}

// HasOutputHandle reports whether the entry declares an output handle
// with the given id.
func (e *Entry) HasOutputHandle(id string) bool {
	for _, h := range e.OutputHandles {
		if h.ID == id {
			return true
		}
	}
	return false
}
