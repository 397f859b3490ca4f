package actions

import (
	"context"

	"github.com/telcoflow/workflowengine/pkg/dispatcher"
	"github.com/telcoflow/workflowengine/pkg/telecom"
	"github.com/telcoflow/workflowengine/pkg/template"
)

func sendUSSDResponseHandler(client telecom.Client) dispatcher.Handler {
	return func(ctx context.Context, in dispatcher.HandlerInput) dispatcher.NodeExecutionResult {
		if in.Context == nil || in.Context.Session == nil {
			return actionError(in, &dispatcher.NodeError{
				Code:    "session_required",
				Message: "send_ussd_response requires an attached session",
				Type:    dispatcher.ErrorPermanent,
			})
		}

		scope := dispatcher.BuildScope(in)
		message, _ := in.Node.Config["message"].(string)
		expectInput, _ := in.Node.Config["expect_input"].(bool)

		err := client.RespondUSSD(ctx, telecom.USSDResponseRequest{
			SessionID:   in.Context.Session.SessionID,
			Message:     template.Render(message, scope),
			ExpectInput: expectInput,
		})
		if err != nil {
			return actionError(in, classify(err, "ussd_response_error"))
		}
		return actionSuccess(in, nil)
	}
}
