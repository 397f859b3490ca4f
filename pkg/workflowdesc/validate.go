package workflowdesc

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var structValidate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStructural is Compiler stage 1 (spec §4.3.1): shape and identity
// checks that do not require the catalog. It never inspects config
// contents or node types beyond presence.
func ValidateStructural(wd *WorkflowDescription) *ValidationError {
	var errs []FieldError

	if err := structValidate.Struct(wd); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				errs = append(errs, FieldError{
					Path:    fe.Namespace(),
					Message: fmt.Sprintf("failed on %q", fe.Tag()),
				})
			}
		} else {
			errs = append(errs, FieldError{Path: "", Message: err.Error()})
		}
	}

	if wd.Metadata.ID != "" {
		if _, err := uuid.Parse(wd.Metadata.ID); err != nil {
			errs = append(errs, FieldError{Path: "metadata.id", Message: "must be a UUID"})
		}
	}

	if !TriggerTypes[wd.Trigger.Type] {
		errs = append(errs, FieldError{
			Path:    "trigger.type",
			Message: fmt.Sprintf("%q is not a recognized trigger type", wd.Trigger.Type),
		})
	}

	nodeIDs := make(map[string]bool, len(wd.Nodes))
	for _, n := range wd.Nodes {
		if n.ID != "" {
			nodeIDs[n.ID] = true
		}
	}

	if wd.Trigger.ID != "" && !nodeIDs[wd.Trigger.ID] {
		errs = append(errs, FieldError{
			Path:    "trigger.id",
			Message: "trigger id must also appear in nodes",
		})
	}

	for i, e := range wd.Edges {
		if e.Source != "" && !nodeIDs[e.Source] {
			errs = append(errs, FieldError{
				Path:    fmt.Sprintf("edges[%d].source", i),
				Message: fmt.Sprintf("references undeclared node %q", e.Source),
			})
		}
		if e.Target != "" && !nodeIDs[e.Target] {
			errs = append(errs, FieldError{
				Path:    fmt.Sprintf("edges[%d].target", i),
				Message: fmt.Sprintf("references undeclared node %q", e.Target),
			})
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Code: CodeSchemaValidationError, Errors: errs}
}

// NodeByID finds a node (including the trigger) by id.
func (wd *WorkflowDescription) NodeByID(id string) (Node, bool) {
	if wd.Trigger.ID == id {
		return wd.Trigger, true
	}
	for _, n := range wd.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
