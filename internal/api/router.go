package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/telcoflow/workflowengine/pkg/runtime"
)

// NewApp builds the fiber app with every route wired to rt.
func NewApp(rt *runtime.Runtime, appLogger *slog.Logger) *fiber.App {
	h := NewHandlers(rt, appLogger)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{DisableColors: true}))

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Telco Workflow Engine")
	})
	app.Get("/health", h.HealthCheck)

	w := app.Group("/workflows")
	w.Post("/validate", h.ValidateWorkflow)
	w.Post("/compile", h.CompileWorkflow)
	w.Post("/execute", h.ExecuteWorkflow)
	w.Get("/executions", h.ListExecutions)
	w.Get("/executions/:id", h.GetExecution)

	return app
}
