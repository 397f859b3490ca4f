package api

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/telcoflow/workflowengine/pkg/execlog"
	"github.com/telcoflow/workflowengine/pkg/runtime"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)
	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)
	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)
	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleExecuteError maps Runtime.Execute's error into an RFC7807 body,
// distinguishing compile-time rejection (400) from everything else (500).
func handleExecuteError(c fiber.Ctx, err error) error {
	var compileErr *runtime.CompileFailedError
	if errors.As(err, &compileErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"errors":  compileErr.Errors,
		})
	}
	return internalError(c, err)
}

func handleExecLogError(c fiber.Ctx, executionID string, err error) error {
	if errors.Is(err, execlog.ErrNotFound) {
		return notFound(c, "execution "+executionID+" not found")
	}
	return internalError(c, err)
}
