package actions

import (
	"context"

	"github.com/telcoflow/workflowengine/pkg/dispatcher"
	"github.com/telcoflow/workflowengine/pkg/telecom"
	"github.com/telcoflow/workflowengine/pkg/template"
)

func sendSMSHandler(client telecom.Client) dispatcher.Handler {
	return func(ctx context.Context, in dispatcher.HandlerInput) dispatcher.NodeExecutionResult {
		scope := dispatcher.BuildScope(in)
		to, _ := in.Node.Config["to"].(string)
		message, _ := in.Node.Config["message"].(string)
		from, _ := in.Node.Config["from"].(string)

		req := telecom.SMSRequest{
			To:      template.Render(to, scope),
			Message: template.Render(message, scope),
			From:    template.Render(from, scope),
		}

		res, err := client.SendSMS(ctx, req)
		if err != nil {
			return actionError(in, classify(err, "sms_send_error"))
		}
		return actionSuccess(in, map[string]any{"message_id": res.MessageID})
	}
}
