package workflowdesc

import "fmt"

// FieldError is one structural validation failure, pinpointing the path
// that failed.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationError wraps every FieldError found during structural
// validation under the stable code the Compiler surfaces to callers.
type ValidationError struct {
	Code   string
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Errors[0].Error())
}

// CodeSchemaValidationError is the stable error code for structural
// validation failures (spec §6 error taxonomy).
const CodeSchemaValidationError = "schema_validation_error"
