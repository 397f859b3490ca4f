package api

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/telcoflow/workflowengine/pkg/engine"
	"github.com/telcoflow/workflowengine/pkg/execlog"
	"github.com/telcoflow/workflowengine/pkg/runtime"
	"github.com/telcoflow/workflowengine/pkg/session"
	"github.com/telcoflow/workflowengine/pkg/workflowdesc"
)

// Handlers binds the Runtime into the HTTP layer.
type Handlers struct {
	runtime  *runtime.Runtime
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandlers builds Handlers bound to rt.
func NewHandlers(rt *runtime.Runtime, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		runtime:  rt,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With("module", "api"),
	}
}

// ValidateWorkflow handles POST /workflows/validate.
func (h *Handlers) ValidateWorkflow(c fiber.Ctx) error {
	wd := new(workflowdesc.WorkflowDescription)
	if err := c.Bind().JSON(wd); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}

	result := h.runtime.Compile(wd)
	return c.JSON(ValidateResponse{
		Valid:    result.Success,
		Errors:   result.Errors,
		Warnings: result.Warnings,
	})
}

// CompileWorkflow handles POST /workflows/compile.
func (h *Handlers) CompileWorkflow(c fiber.Ctx) error {
	wd := new(workflowdesc.WorkflowDescription)
	if err := c.Bind().JSON(wd); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}

	result := h.runtime.Compile(wd)
	if !result.Success {
		return c.Status(fiber.StatusBadRequest).JSON(CompileResponse{
			Success:  false,
			Errors:   result.Errors,
			Warnings: result.Warnings,
		})
	}

	return c.JSON(CompileResponse{
		Success: true,
		Graph: &GraphView{
			WorkflowID:      result.Graph.WorkflowID,
			WorkflowVersion: result.Graph.WorkflowVersion,
			TriggerNodeID:   result.Graph.TriggerNodeID,
			ExecutionOrder:  result.Graph.ExecutionOrder,
			Metadata:        result.Graph.Metadata,
		},
		Warnings: result.Warnings,
	})
}

// ExecuteWorkflow handles POST /workflows/execute.
func (h *Handlers) ExecuteWorkflow(c fiber.Ctx) error {
	req := new(ExecuteRequest)
	if err := c.Bind().JSON(req); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}
	if err := h.validate.Struct(req); err != nil {
		return badRequest(c, "invalid request: "+err.Error())
	}

	var sess *session.Record
	switch {
	case req.SessionID != "":
		found, err := h.runtime.Sessions.Get(c.Context(), req.SessionID)
		if err != nil || found == nil {
			return notFound(c, "session "+req.SessionID+" not found")
		}
		sess = found
	case h.requiresSession(req.Workflow.Trigger.Type):
		created, err := h.runtime.Sessions.Create(c.Context(), channelForTrigger(req.Workflow.Trigger.Type),
			subscriberFrom(req.TriggerPayload), nil, h.runtime.Config.SessionTTL)
		if err != nil {
			return internalError(c, err)
		}
		sess = created
	}

	opts := engine.NewOptions()
	if req.Options != nil {
		if req.Options.MaxExecutionMs > 0 {
			opts.MaxExecutionMs = req.Options.MaxExecutionMs
		}
		if req.Options.EnableRetries != nil {
			opts.EnableRetries = *req.Options.EnableRetries
		}
	}

	result, err := h.runtime.Execute(c.Context(), req.Workflow, req.TriggerPayload, sess, opts)
	if err != nil {
		return handleExecuteError(c, err)
	}

	resp := ExecuteResponse{
		ExecutionID: result.ExecutionID,
		Status:      string(result.State),
		Output:      result.Variables,
		Error:       result.Error,
		NodeResults: result.NodeResults,
		DurationMs:  result.CompletedAt.Sub(result.StartedAt).Milliseconds(),
	}
	if sess != nil {
		resp.SessionID = sess.SessionID
	}
	return c.JSON(resp)
}

// requiresSession consults the trigger's own catalog entry rather than
// re-deriving the compiler's computed graph metadata, since a session
// is needed before the trigger node's output exists to compile against.
func (h *Handlers) requiresSession(triggerType string) bool {
	entry, ok := h.runtime.Catalog.Lookup(triggerType)
	return ok && entry.RequiresSession
}

func channelForTrigger(triggerType string) session.Channel {
	if triggerType == string(workflowdesc.TriggerIncomingCall) {
		return session.ChannelVoice
	}
	return session.ChannelUSSD
}

func subscriberFrom(payload map[string]any) string {
	if v, ok := payload["subscriber"].(string); ok {
		return v
	}
	return ""
}

// GetExecution handles GET /workflows/executions/{id}.
func (h *Handlers) GetExecution(c fiber.Ctx) error {
	id := c.Params("id")
	log, err := h.runtime.ExecLog.Get(c.Context(), id)
	if err != nil {
		return handleExecLogError(c, id, err)
	}
	return c.JSON(fromLog(log))
}

// ListExecutions handles GET /workflows/executions.
func (h *Handlers) ListExecutions(c fiber.Ctx) error {
	filters := execlog.Filters{
		WorkflowID: c.Query("workflow_id"),
		State:      execlog.State(c.Query("state")),
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return badRequest(c, "invalid limit: "+err.Error())
		}
		filters.Limit = limit
	}
	if fromStr := c.Query("started_at_from"); fromStr != "" {
		t, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			return badRequest(c, "invalid started_at_from: "+err.Error())
		}
		filters.StartedAtFrom = &t
	}
	if toStr := c.Query("started_at_to"); toStr != "" {
		t, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			return badRequest(c, "invalid started_at_to: "+err.Error())
		}
		filters.StartedAtTo = &t
	}

	logs, err := h.runtime.ExecLog.Query(c.Context(), filters)
	if err != nil {
		return internalError(c, err)
	}

	resp := ExecutionsResponse{Executions: make([]ExecutionLogResponse, len(logs))}
	for i, l := range logs {
		resp.Executions[i] = fromLog(l)
	}
	return c.JSON(resp)
}

// HealthCheck handles GET /health.
func (h *Handlers) HealthCheck(c fiber.Ctx) error {
	checks := h.runtime.HealthCheck(c.Context())
	rendered := make(map[string]string, len(checks))
	status := "ok"
	httpStatus := fiber.StatusOK
	for name, err := range checks {
		if err == nil {
			rendered[name] = "ok"
			continue
		}
		rendered[name] = err.Error()
		status = "degraded"
		httpStatus = fiber.StatusInternalServerError
	}

	return c.Status(httpStatus).JSON(HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Checks:    rendered,
	})
}
