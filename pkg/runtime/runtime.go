// Package runtime assembles the Catalog, Compiler, Dispatcher, Engine,
// Session Store, Execution Log and Scheduler into one bundle, built once
// at process startup and threaded explicitly into every entry point
// (HTTP handlers, the scheduler, the CLI) instead of reached for through
// package-level globals.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/telcoflow/workflowengine/pkg/catalog"
	"github.com/telcoflow/workflowengine/pkg/compiler"
	"github.com/telcoflow/workflowengine/pkg/dispatcher"
	"github.com/telcoflow/workflowengine/pkg/dispatcher/actions"
	"github.com/telcoflow/workflowengine/pkg/engine"
	"github.com/telcoflow/workflowengine/pkg/execlog"
	"github.com/telcoflow/workflowengine/pkg/scheduler"
	"github.com/telcoflow/workflowengine/pkg/session"
	"github.com/telcoflow/workflowengine/pkg/telecom"
	"github.com/telcoflow/workflowengine/pkg/workflowdesc"
)

// Config carries the handful of environment-bound choices the Runtime
// needs at construction time.
type Config struct {
	// SessionTTL is the lifetime, counted from creation, of sessions the
	// HTTP execute handler creates. Zero creates sessions that never
	// expire.
	SessionTTL time.Duration

	// RedisURL, if non-empty, selects the Redis-backed session store; it
	// is passed verbatim as the "host:port" address. The database index
	// and password come only from RedisDB and RedisPassword.
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// ATUsername, ATAPIKey and ATEnvironment identify the telecom
	// provider account. The reference Runtime always talks to the
	// sandbox implementation of pkg/telecom.Client; these are threaded
	// through so a real provider client can be selected later without
	// touching every caller.
	ATUsername    string
	ATAPIKey      string
	ATEnvironment string
}

// Runtime is the DI bundle. All fields are safe for concurrent use.
type Runtime struct {
	Config     Config
	Logger     *slog.Logger
	Catalog    *catalog.Catalog
	Compiler   *compiler.Compiler
	Dispatcher *dispatcher.Dispatcher
	Engine     *engine.Engine
	Sessions   session.Store
	ExecLog    execlog.Store
	Telecom    telecom.Client
	Scheduler  *scheduler.Scheduler

	now func() time.Time
}

// New builds a fully-wired Runtime: catalog populated with the built-in
// node types, dispatcher populated with the built-in logic/state/action
// handlers, and the session store chosen per cfg.RedisURL.
func New(cfg Config, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cat := catalog.New(logger)
	if err := catalog.RegisterDefaultNodes(cat); err != nil {
		return nil, fmt.Errorf("runtime: register node types: %w", err)
	}

	sessions, err := buildSessionStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("runtime: build session store: %w", err)
	}

	client := &telecom.Sandbox{}

	disp := dispatcher.New(logger)
	dispatcher.RegisterBuiltins(disp, sessions)
	actions.RegisterAll(disp, client, &http.Client{Timeout: 60 * time.Second})

	comp := compiler.New(cat, logger)
	eng := engine.New(cat, disp, logger)
	logs := execlog.NewMemoryStore()

	rt := &Runtime{
		Config:     cfg,
		Logger:     logger.With("module", "runtime"),
		Catalog:    cat,
		Compiler:   comp,
		Dispatcher: disp,
		Engine:     eng,
		Sessions:   sessions,
		ExecLog:    logs,
		Telecom:    client,
		now:        time.Now,
	}
	rt.Scheduler = scheduler.New(logger, rt.fireScheduledWorkflow)
	return rt, nil
}

func buildSessionStore(cfg Config) (session.Store, error) {
	if cfg.RedisURL == "" {
		return session.NewMemoryStore(), nil
	}
	return session.NewRedisStore(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
}

// Compile runs the Compiler pipeline and caches nothing: callers that
// want to cache by (workflow_id, version) do so above this layer.
func (r *Runtime) Compile(wd *workflowdesc.WorkflowDescription) *compiler.Result {
	return r.Compiler.Compile(wd)
}

// Execute compiles wd if necessary, runs it through the Engine, and
// records the outcome into the Execution Log before returning it.
func (r *Runtime) Execute(ctx context.Context, wd *workflowdesc.WorkflowDescription, triggerPayload map[string]any, sess *session.Record, opts engine.Options) (*engine.Result, error) {
	compiled := r.Compile(wd)
	if !compiled.Success {
		return nil, &CompileFailedError{Errors: compiled.Errors}
	}

	if opts.ExecutionID == "" {
		opts.ExecutionID = uuid.NewString()
	}
	startedAt := r.now()
	if err := r.ExecLog.LogStart(ctx, opts.ExecutionID, wd.Metadata.ID, wd.Metadata.Version, startedAt); err != nil {
		r.Logger.Warn("failed to log execution start", "error", err)
	}

	result := r.Engine.Execute(ctx, compiled.Graph, triggerPayload, sess, opts)

	for _, attempts := range result.NodeResults {
		for _, attempt := range attempts {
			if err := r.ExecLog.LogNode(ctx, result.ExecutionID, attempt); err != nil {
				r.Logger.Warn("failed to log node result", "execution_id", result.ExecutionID, "error", err)
			}
		}
	}
	if err := r.ExecLog.LogEnd(ctx, result.ExecutionID, execlog.State(result.State), result.CompletedAt, result.Error); err != nil {
		r.Logger.Warn("failed to log execution end", "execution_id", result.ExecutionID, "error", err)
	}

	return result, nil
}

// fireScheduledWorkflow is the Scheduler's callback. The Runtime holds no
// workflow lookup, so a fired job is logged and dropped; no invocation is
// started.
func (r *Runtime) fireScheduledWorkflow(job scheduler.Job) {
	r.Logger.Info("scheduled trigger fired with no workflow lookup configured",
		"workflow_id", job.WorkflowID, "node_id", job.NodeID)
}

// HealthCheck reports catalog readiness, dispatcher readiness,
// session-store reachability and execution-log reachability as one map
// entry per component ("catalog", "dispatcher", "sessions", "exec_log"),
// each nil when that component is healthy.
func (r *Runtime) HealthCheck(ctx context.Context) map[string]error {
	checks := map[string]error{
		"catalog":    r.Catalog.HealthCheck(),
		"dispatcher": r.Dispatcher.HealthCheck(),
		"sessions":   r.Sessions.HealthCheck(ctx),
		"exec_log":   r.ExecLog.HealthCheck(ctx),
	}
	return checks
}

// Healthy reports whether every HealthCheck entry passed.
func Healthy(checks map[string]error) bool {
	for _, err := range checks {
		if err != nil {
			return false
		}
	}
	return true
}

// CompileFailedError wraps the Compiler's structured errors so callers
// one layer up (internal/api) can render them without re-deriving the
// "compilation failed" framing every time.
type CompileFailedError struct {
	Errors []compiler.CompileError
}

func (e *CompileFailedError) Error() string {
	if len(e.Errors) == 0 {
		return "workflow failed to compile"
	}
	return fmt.Sprintf("workflow failed to compile: %s", e.Errors[0].Message)
}
