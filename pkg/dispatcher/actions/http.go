package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/telcoflow/workflowengine/pkg/dispatcher"
	"github.com/telcoflow/workflowengine/pkg/template"
)

// httpError carries the response status so classify can tell a server
// error (retryable) from a client error (permanent).
type httpError struct {
	StatusCode int
	Body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Body)
}

func httpRequestHandler(httpClient *http.Client) dispatcher.Handler {
	return func(ctx context.Context, in dispatcher.HandlerInput) dispatcher.NodeExecutionResult {
		scope := dispatcher.BuildScope(in)

		method, _ := in.Node.Config["method"].(string)
		if method == "" {
			method = "GET"
		}
		url, _ := in.Node.Config["url"].(string)
		url = template.Render(url, scope)

		headers := renderHeaders(in.Node.Config["headers"], scope)
		body := renderBody(in.Node.Config["body"], scope)

		timeoutMs := asInt(in.Node.Config["timeout_ms"], 10_000)
		reqCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
		defer cancel()

		result, err := performRequest(reqCtx, httpClient, method, url, body, headers)
		if err != nil {
			return actionError(in, classifyHTTPError(err))
		}
		return actionSuccess(in, result)
	}
}

func renderHeaders(raw any, scope map[string]any) map[string]string {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok {
			out[k] = template.Render(s, scope)
		}
	}
	return out
}

func renderBody(raw any, scope map[string]any) string {
	switch t := raw.(type) {
	case string:
		return template.Render(t, scope)
	case map[string]any:
		rendered := template.RenderMap(t, scope)
		encoded, err := json.Marshal(rendered)
		if err != nil {
			return ""
		}
		return string(encoded)
	default:
		return ""
	}
}

func performRequest(ctx context.Context, client *http.Client, method, url, body string, headers map[string]string) (map[string]any, error) {
	var reqBody io.Reader
	if body != "" {
		reqBody = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if body != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &httpError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	result := map[string]any{
		"status_code": resp.StatusCode,
		"body":        string(respBody),
	}
	var jsonBody any
	if err := json.Unmarshal(respBody, &jsonBody); err == nil {
		result["json"] = jsonBody
	}
	return result, nil
}

func classifyHTTPError(err error) *dispatcher.NodeError {
	if httpErr, ok := err.(*httpError); ok {
		if httpErr.StatusCode == 429 || httpErr.StatusCode >= 500 {
			return &dispatcher.NodeError{Code: "http_error", Message: httpErr.Error(), Type: dispatcher.ErrorTransient}
		}
		return &dispatcher.NodeError{Code: "http_error", Message: httpErr.Error(), Type: dispatcher.ErrorPermanent}
	}
	return &dispatcher.NodeError{Code: "network_error", Message: err.Error(), Type: dispatcher.ErrorTransient}
}
