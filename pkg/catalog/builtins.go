package catalog

import (
	"github.com/telcoflow/workflowengine/pkg/scheduler"
	"github.com/telcoflow/workflowengine/pkg/workflowdesc"
)

func out(ids ...string) []Handle {
	hs := make([]Handle, len(ids))
	for i, id := range ids {
		hs[i] = Handle{ID: id, Label: id, Direction: DirectionOutput}
	}
	return hs
}

func in(ids ...string) []Handle {
	hs := make([]Handle, len(ids))
	for i, id := range ids {
		hs[i] = Handle{ID: id, Label: id, Direction: DirectionInput}
	}
	return hs
}

func ms(v int) *int { return &v }

var defaultActionRetry = &workflowdesc.RetryPolicy{
	MaxAttempts:    3,
	InitialDelayMs: 500,
	BackoffMult:    2,
	MaxDelayMs:     10_000,
}

// RegisterDefaultNodes populates a Catalog with every built-in node type
// named for this platform: the telecom trigger/action set plus the
// general-purpose logic and state nodes.
func RegisterDefaultNodes(c *Catalog) error {
	entries := append(append(append(triggerEntries(), actionEntries()...), logicEntries()...), stateEntries()...)
	for _, e := range entries {
		if err := c.Register(e); err != nil {
			return err
		}
	}
	return nil
}

func triggerEntries() []*Entry {
	return []*Entry{
		{
			Type:        "sms_received",
			Category:    CategoryTrigger,
			Name:        "SMS Received",
			Description: "Fires when an inbound SMS matches the configured filter.",
			OutputHandles: out("default"),
			ConfigSchema: objectSchema(map[string]any{
				"phone_number":   stringProp("restrict to a specific sender"),
				"keyword":        stringProp("require the message to contain this keyword"),
				"case_sensitive": boolProp("keyword match is case sensitive", false),
			}),
		},
		{
			Type:             "ussd_session_start",
			Category:         CategoryTrigger,
			Name:              "USSD Session Start",
			Description:       "Fires when a subscriber dials a USSD service code.",
			OutputHandles:     out("default"),
			RequiresSession:   true,
			ConfigSchema: objectSchema(map[string]any{
				"service_code": stringProp("restrict to a specific service code"),
			}),
		},
		{
			Type:            "incoming_call",
			Category:        CategoryTrigger,
			Name:             "Incoming Call",
			Description:      "Fires when a voice call is offered to the platform.",
			OutputHandles:    out("default"),
			RequiresSession:  true,
			ConfigSchema: objectSchema(map[string]any{
				"phone_number": stringProp("restrict to a specific callee number"),
			}),
		},
		{
			Type:        "payment_callback",
			Category:    CategoryTrigger,
			Name:        "Payment Callback",
			Description: "Fires when the telecom provider reports a mobile-money transaction result.",
			OutputHandles: out("default"),
			ConfigSchema: objectSchema(map[string]any{
				"transaction_type": enumProp("restrict to a transaction type", "checkout", "b2c", "b2b"),
				"status":           stringProp("restrict to a specific transaction status"),
			}),
		},
		{
			Type:        "scheduled",
			Category:    CategoryTrigger,
			Name:        "Scheduled",
			Description: "Fires on a cron schedule.",
			OutputHandles: out("default"),
			ConfigSchema: objectSchema(map[string]any{
				"cron_expression": stringProp("5- or 6-field cron expression"),
				"timezone":        stringProp("IANA timezone name"),
			}, "cron_expression"),
			CustomValidate: validateScheduledConfig,
		},
		{
			Type:        "http_webhook",
			Category:    CategoryTrigger,
			Name:        "HTTP Webhook",
			Description: "Fires on an inbound HTTP request to a registered path.",
			OutputHandles: out("default"),
			ConfigSchema: objectSchema(map[string]any{
				"method":      enumProp("HTTP method", "GET", "POST", "PUT", "PATCH", "DELETE"),
				"path":        stringPropPattern("request path", "^/[A-Za-z0-9/_-]*$"),
				"require_auth": boolProp("require a bearer token", false),
				"auth_token":  stringProp("expected bearer token"),
			}, "method", "path"),
		},
	}
}

func validateScheduledConfig(config map[string]any, _ ConfigValidationContext) []ConfigIssue {
	var issues []ConfigIssue
	expr, _ := config["cron_expression"].(string)
	if err := scheduler.ValidateCronExpression(expr); err != nil {
		issues = append(issues, ConfigIssue{Path: "cron_expression", Message: err.Error()})
	}
	tz, _ := config["timezone"].(string)
	if err := scheduler.ValidateTimezone(tz); err != nil {
		issues = append(issues, ConfigIssue{Path: "timezone", Message: err.Error()})
	}
	return issues
}

func actionEntries() []*Entry {
	return []*Entry{
		{
			Type:        "send_sms",
			Category:    CategoryAction,
			Name:        "Send SMS",
			Description: "Sends an SMS through the telecom provider.",
			InputHandles:  in("main"),
			OutputHandles: out("success", "error"),
			ConfigSchema: objectSchema(map[string]any{
				"to":      stringProp("destination MSISDN, templated"),
				"message": stringProp("message body, templated"),
				"from":    stringProp("sender id, templated"),
			}, "to", "message"),
			DefaultRetryPolicy: &workflowdesc.RetryPolicy{
				MaxAttempts:     3,
				InitialDelayMs:  500,
				BackoffMult:     2,
				MaxDelayMs:      10_000,
				RetryableErrors: []string{"rate_limit", "network_error"},
			},
		},
		{
			Type:            "send_ussd_response",
			Category:        CategoryAction,
			Name:             "Send USSD Response",
			Description:      "Sends the next USSD screen to the subscriber.",
			InputHandles:      in("main"),
			OutputHandles:     out("success", "error"),
			RequiresSession:   true,
			ConfigSchema: objectSchema(map[string]any{
				"message":      stringProp("screen text, templated"),
				"expect_input": boolProp("keep the session open for another turn", true),
			}, "message"),
			DefaultRetryPolicy: defaultActionRetry,
		},
		{
			Type:             "initiate_call",
			Category:         CategoryAction,
			Name:              "Initiate Call",
			Description:       "Starts an outbound voice call.",
			InputHandles:       in("main"),
			OutputHandles:      out("success", "error", "no_answer"),
			RequiresSession:    true,
			ConfigSchema:       objectSchema(map[string]any{"to": stringProp("destination MSISDN, templated")}, "to"),
			DefaultRetryPolicy: defaultActionRetry,
		},
		{
			Type:            "play_ivr",
			Category:        CategoryAction,
			Name:             "Play IVR Prompt",
			Description:      "Plays a prompt (text-to-speech or audio) into an active call.",
			InputHandles:      in("main"),
			OutputHandles:     out("success", "error"),
			RequiresSession:   true,
			ConfigSchema: objectSchema(map[string]any{
				"text":      stringProp("text-to-speech prompt, templated"),
				"audio_url": stringProp("pre-recorded audio URL, templated"),
			}),
			CustomValidate:     validatePlayIVRConfig,
			DefaultRetryPolicy: defaultActionRetry,
		},
		{
			Type:            "collect_dtmf",
			Category:        CategoryAction,
			Name:             "Collect DTMF",
			Description:      "Collects keypad digits from the caller.",
			InputHandles:      in("main"),
			OutputHandles:     out("success", "error", "timeout"),
			RequiresSession:   true,
			ConfigSchema: objectSchema(map[string]any{
				"prompt":     stringProp("prompt before collecting, templated"),
				"max_digits": integerProp("maximum digits to collect"),
				"timeout_ms": integerProp("collection timeout"),
			}),
			DefaultRetryPolicy: defaultActionRetry,
		},
		{
			Type:        "request_payment",
			Category:    CategoryAction,
			Name:        "Request Payment",
			Description: "Initiates a mobile-money charge.",
			InputHandles:  in("main"),
			OutputHandles: out("success", "error"),
			ConfigSchema: objectSchema(map[string]any{
				"transaction_type": enumProp("transaction type", "checkout", "b2c", "b2b"),
				"amount":           numberProp("amount, templated"),
				"currency":         stringProp("ISO currency code"),
				"phone_number":     stringProp("payer MSISDN, templated"),
				"product_name":     stringProp("product description"),
				"metadata":         objectProp("arbitrary passthrough metadata"),
			}, "transaction_type", "amount", "currency", "phone_number", "product_name"),
			DefaultRetryPolicy: defaultActionRetry,
		},
		{
			Type:        "refund_payment",
			Category:    CategoryAction,
			Name:        "Refund Payment",
			Description: "Reverses a prior mobile-money transaction.",
			InputHandles:  in("main"),
			OutputHandles: out("success", "error"),
			ConfigSchema: objectSchema(map[string]any{
				"transaction_id": stringProp("original transaction id, templated"),
				"amount":         numberProp("partial refund amount, templated"),
			}, "transaction_id"),
			DefaultRetryPolicy: defaultActionRetry,
		},
		{
			Type:        "http_request",
			Category:    CategoryAction,
			Name:        "HTTP Request",
			Description: "Performs an arbitrary outbound HTTP call.",
			InputHandles:  in("main"),
			OutputHandles: out("success", "error"),
			ConfigSchema: objectSchema(map[string]any{
				"method":     enumProp("HTTP method", "GET", "POST", "PUT", "PATCH", "DELETE"),
				"url":        stringProp("request URL, templated"),
				"headers":    objectProp("request headers, values templated"),
				"body":       objectProp("request body, templated"),
				"timeout_ms": integerProp("per-call timeout"),
			}, "method", "url"),
			DefaultRetryPolicy: defaultActionRetry,
			DefaultTimeoutMS:   ms(10_000),
		},
	}
}

func validatePlayIVRConfig(config map[string]any, _ ConfigValidationContext) []ConfigIssue {
	text, hasText := config["text"]
	audio, hasAudio := config["audio_url"]
	hasText = hasText && text != ""
	hasAudio = hasAudio && audio != ""

	if hasText == hasAudio {
		return []ConfigIssue{{
			Path:    "",
			Message: "exactly one of text or audio_url is required",
		}}
	}
	return nil
}

func logicEntries() []*Entry {
	return []*Entry{
		{
			Type:        "condition",
			Category:    CategoryLogic,
			Name:        "Condition",
			Description: "Evaluates a boolean expression and routes to true or false.",
			InputHandles:  in("main"),
			OutputHandles: out("true", "false"),
			ConfigSchema: objectSchema(map[string]any{
				"expression": stringProp("templated boolean expression"),
			}, "expression"),
		},
		{
			Type:                "switch",
			Category:            CategoryLogic,
			Name:                 "Switch",
			Description:          "Routes on the rendered value of an expression against declared cases.",
			InputHandles:          in("main"),
			OutputHandles:         out("default"),
			AllowsMultipleOutputs: true,
			ConfigSchema: objectSchema(map[string]any{
				"value": stringProp("templated value to match"),
				"cases": arrayProp("case list", objectSchema(map[string]any{
					"value": stringProp("case match value"),
					"label": stringProp("output handle label"),
				}, "value", "label")),
			}, "value"),
		},
		{
			Type:        "delay",
			Category:    CategoryLogic,
			Name:        "Delay",
			Description: "Suspends the invocation for a fixed duration, then passes input through.",
			InputHandles:  in("main"),
			OutputHandles: out("default"),
			ConfigSchema: objectSchema(map[string]any{
				"duration_ms": integerProp("suspend duration"),
			}, "duration_ms"),
		},
		{
			Type:        "retry",
			Category:    CategoryLogic,
			Name:        "Retry",
			Description: "Policy wrapper exposing explicit success/exhaustion branches.",
			InputHandles:  in("main"),
			OutputHandles: out("success", "max_retries"),
			ConfigSchema: objectSchema(map[string]any{
				"max_attempts":     integerProp("maximum attempts"),
				"initial_delay_ms": integerProp("first retry delay"),
				"backoff_multiplier": numberProp("multiplier applied per retry"),
				"max_delay_ms":     integerProp("backoff ceiling"),
			}),
		},
		{
			Type:        "rate_limit",
			Category:    CategoryLogic,
			Name:        "Rate Limit",
			Description: "Caps throughput within a window, keyed optionally by an expression.",
			InputHandles:  in("main"),
			OutputHandles: out("success", "error"),
			ConfigSchema: objectSchema(map[string]any{
				"max_requests": integerProp("requests allowed per window"),
				"window_ms":    integerProp("window size"),
				"strategy":     enumProp("limiting strategy", "fixed", "sliding"),
				"key":          stringProp("templated key to scope the limit"),
			}, "max_requests", "window_ms", "strategy"),
		},
		{
			Type:                 "merge",
			Category:             CategoryLogic,
			Name:                  "Merge",
			Description:           "Joins multiple predecessor branches before continuing.",
			InputHandles:           in("main"),
			OutputHandles:          out("default"),
			AllowsMultipleInputs:   true,
			ConfigSchema: objectSchema(map[string]any{
				"strategy": enumProp("merge strategy", "first", "last", "all", "merge"),
			}, "strategy"),
		},
	}
}

func stateEntries() []*Entry {
	return []*Entry{
		{
			Type:            "session_read",
			Category:        CategoryState,
			Name:             "Session Read",
			Description:      "Projects keys from session.data into the node output.",
			InputHandles:      in("main"),
			OutputHandles:     out("success"),
			RequiresSession:   true,
			ConfigSchema: objectSchema(map[string]any{
				"keys": arrayProp("keys to project; all of session.data if omitted", stringProp("")),
			}),
		},
		{
			Type:            "session_write",
			Category:        CategoryState,
			Name:             "Session Write",
			Description:      "Writes templated values into session.data.",
			InputHandles:      in("main"),
			OutputHandles:     out("success"),
			RequiresSession:   true,
			ConfigSchema: objectSchema(map[string]any{
				"data":  objectProp("map of key to templated string value"),
				"merge": boolProp("merge into existing data rather than replace", true),
			}, "data"),
		},
		{
			Type:             "session_end",
			Category:         CategoryState,
			Name:              "Session End",
			Description:       "Marks the session inactive. Terminal: no outgoing edges.",
			InputHandles:       in("main"),
			OutputHandles:      nil,
			RequiresSession:    true,
			EndsSession:        true,
			ConfigSchema: objectSchema(map[string]any{
				"message": stringProp("optional closing message, templated"),
			}),
		},
	}
}
