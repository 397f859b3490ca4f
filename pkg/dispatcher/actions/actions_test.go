package actions_test

import (
	"context"
	"testing"

	"github.com/telcoflow/workflowengine/pkg/compiler"
	"github.com/telcoflow/workflowengine/pkg/dispatcher"
	"github.com/telcoflow/workflowengine/pkg/dispatcher/actions"
	"github.com/telcoflow/workflowengine/pkg/telecom"
)

func newTestDispatcher(client telecom.Client) *dispatcher.Dispatcher {
	d := dispatcher.New(nil)
	actions.RegisterAll(d, client, nil)
	return d
}

func TestSendSMS_Success(t *testing.T) {
	sandbox := &telecom.Sandbox{}
	d := newTestDispatcher(sandbox)

	node := &compiler.ExecutionNode{ID: "sms1", Type: "send_sms", Config: map[string]any{
		"to":      "{{trigger.from}}",
		"message": "hello {{trigger.name}}",
	}}

	res := d.Dispatch(context.Background(), dispatcher.HandlerInput{
		Node:  node,
		Input: map[string]any{"trigger": map[string]any{"from": "+254700000001", "name": "Jo"}},
	})
	if res.Status != dispatcher.StatusSuccess {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.Output["message_id"] == "" {
		t.Fatalf("expected a message id, got %+v", res.Output)
	}
	if len(sandbox.Calls) != 1 {
		t.Fatalf("expected 1 recorded call, got %d", len(sandbox.Calls))
	}
	sent := sandbox.Calls[0].Data.(telecom.SMSRequest)
	if sent.To != "+254700000001" || sent.Message != "hello Jo" {
		t.Fatalf("template was not rendered correctly: %+v", sent)
	}
}

func TestSendSMS_ClassifiesRateLimit(t *testing.T) {
	sandbox := &telecom.Sandbox{
		FailSendSMS: func(_ telecom.SMSRequest) error {
			return &telecom.APIError{StatusCode: 429, Code: "throttled", Message: "too many requests", RateLimit: true}
		},
	}
	d := newTestDispatcher(sandbox)
	node := &compiler.ExecutionNode{ID: "sms2", Type: "send_sms", Config: map[string]any{
		"to": "+254700000001", "message": "hi",
	}}

	res := d.Dispatch(context.Background(), dispatcher.HandlerInput{Node: node})
	if res.Status != dispatcher.StatusError || res.Error.Type != dispatcher.ErrorRateLimit {
		t.Fatalf("expected rate_limit error, got %+v", res)
	}
}

func TestInitiateCall_NoAnswerRoutesDistinctHandle(t *testing.T) {
	sandbox := &telecom.Sandbox{}
	// Wrap the sandbox so Answered is false for this assertion.
	notAnswered := &notAnsweredClient{Sandbox: sandbox}
	d := newTestDispatcher(notAnswered)

	node := &compiler.ExecutionNode{ID: "call1", Type: "initiate_call", Config: map[string]any{"to": "+254700000002"}}
	res := d.Dispatch(context.Background(), dispatcher.HandlerInput{
		Node:    node,
		Context: &dispatcher.ExecutionContext{Session: &dispatcher.SessionView{SessionID: "voice-1", Channel: "voice"}},
	})
	if res.OutputHandle != "no_answer" {
		t.Fatalf("expected no_answer handle, got %s", res.OutputHandle)
	}
}

type notAnsweredClient struct {
	*telecom.Sandbox
}

func (c *notAnsweredClient) InitiateCall(ctx context.Context, req telecom.CallRequest) (*telecom.CallResult, error) {
	res, err := c.Sandbox.InitiateCall(ctx, req)
	if err != nil {
		return nil, err
	}
	res.Answered = false
	return res, nil
}

func TestRequestPayment_RendersTemplatedAmount(t *testing.T) {
	sandbox := &telecom.Sandbox{}
	d := newTestDispatcher(sandbox)

	node := &compiler.ExecutionNode{ID: "pay1", Type: "request_payment", Config: map[string]any{
		"transaction_type": "checkout",
		"amount":           "{{trigger.amount}}",
		"currency":         "KES",
		"phone_number":     "{{trigger.from}}",
		"product_name":     "airtime",
	}}

	res := d.Dispatch(context.Background(), dispatcher.HandlerInput{
		Node:  node,
		Input: map[string]any{"trigger": map[string]any{"amount": "250", "from": "+254700000003"}},
	})
	if res.Status != dispatcher.StatusSuccess {
		t.Fatalf("expected success, got %+v", res)
	}
	sent := sandbox.Calls[0].Data.(telecom.PaymentRequest)
	if sent.Amount != 250 || sent.PhoneNumber != "+254700000003" {
		t.Fatalf("expected rendered amount/phone, got %+v", sent)
	}
}
