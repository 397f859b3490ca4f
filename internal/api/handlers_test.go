package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telcoflow/workflowengine/internal/api"
	"github.com/telcoflow/workflowengine/pkg/runtime"
	"github.com/telcoflow/workflowengine/pkg/workflowdesc"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()
	rt, err := runtime.New(runtime.Config{}, nil)
	require.NoError(t, err)
	return api.NewApp(rt, nil)
}

func baseMetadata() workflowdesc.Metadata {
	return workflowdesc.Metadata{
		ID:        "3fa85f64-5717-4562-b3fc-2c963f66afa6",
		Version:   1,
		Name:      "echo",
		CreatedAt: time.Now(),
	}
}

func smsEchoWorkflow() *workflowdesc.WorkflowDescription {
	trigger := workflowdesc.Node{ID: "t1", Type: "sms_received", Config: map[string]any{}}
	action := workflowdesc.Node{ID: "a1", Type: "send_sms", Config: map[string]any{
		"to": "{{subscriber}}", "message": "You said: {{message}}",
	}}
	return &workflowdesc.WorkflowDescription{
		Metadata: baseMetadata(),
		Trigger:  trigger,
		Nodes:    []workflowdesc.Node{trigger, action},
		Edges:    []workflowdesc.Edge{{ID: "e1", Source: "t1", Target: "a1"}},
	}
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestValidateWorkflow_ValidWorkflowIsAccepted(t *testing.T) {
	app := setupTestApp(t)
	resp := doJSON(t, app, http.MethodPost, "/workflows/validate", smsEchoWorkflow())
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body api.ValidateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Valid)
	assert.Empty(t, body.Errors)
}

func TestCompileWorkflow_DanglingEdgeFails(t *testing.T) {
	app := setupTestApp(t)
	trigger := workflowdesc.Node{ID: "t1", Type: "sms_received", Config: map[string]any{}}
	wd := &workflowdesc.WorkflowDescription{
		Metadata: baseMetadata(),
		Trigger:  trigger,
		Nodes:    []workflowdesc.Node{trigger},
		Edges:    []workflowdesc.Edge{{ID: "e1", Source: "t1", Target: "ghost"}},
	}

	resp := doJSON(t, app, http.MethodPost, "/workflows/compile", wd)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body api.CompileResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.NotEmpty(t, body.Errors)
}

func TestExecuteWorkflow_RoundTripsThroughExecutionLog(t *testing.T) {
	app := setupTestApp(t)

	execResp := doJSON(t, app, http.MethodPost, "/workflows/execute", api.ExecuteRequest{
		Workflow: smsEchoWorkflow(),
		TriggerPayload: map[string]any{
			"subscriber": "+254700000000",
			"message":    "hello",
		},
	})
	defer execResp.Body.Close()
	require.Equal(t, http.StatusOK, execResp.StatusCode)

	var executed api.ExecuteResponse
	require.NoError(t, json.NewDecoder(execResp.Body).Decode(&executed))
	assert.Equal(t, "completed", executed.Status)
	assert.NotEmpty(t, executed.ExecutionID)

	logResp := doJSON(t, app, http.MethodGet, "/workflows/executions/"+executed.ExecutionID, nil)
	defer logResp.Body.Close()
	assert.Equal(t, http.StatusOK, logResp.StatusCode)

	listResp := doJSON(t, app, http.MethodGet, "/workflows/executions?workflow_id="+smsEchoWorkflow().Metadata.ID, nil)
	defer listResp.Body.Close()
	assert.Equal(t, http.StatusOK, listResp.StatusCode)

	var list api.ExecutionsResponse
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&list))
	assert.Len(t, list.Executions, 1)
}

func TestGetExecution_UnknownIDReturns404(t *testing.T) {
	app := setupTestApp(t)
	resp := doJSON(t, app, http.MethodGet, "/workflows/executions/does-not-exist", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthCheck_ReportsOK(t *testing.T) {
	app := setupTestApp(t)
	resp := doJSON(t, app, http.MethodGet, "/health", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body api.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
}
