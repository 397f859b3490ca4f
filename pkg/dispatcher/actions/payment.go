package actions

import (
	"context"
	"strconv"

	"github.com/telcoflow/workflowengine/pkg/dispatcher"
	"github.com/telcoflow/workflowengine/pkg/telecom"
	"github.com/telcoflow/workflowengine/pkg/template"
)

func requestPaymentHandler(client telecom.Client) dispatcher.Handler {
	return func(ctx context.Context, in dispatcher.HandlerInput) dispatcher.NodeExecutionResult {
		scope := dispatcher.BuildScope(in)
		transactionType, _ := in.Node.Config["transaction_type"].(string)
		currency, _ := in.Node.Config["currency"].(string)
		phoneNumber, _ := in.Node.Config["phone_number"].(string)
		productName, _ := in.Node.Config["product_name"].(string)
		metadata, _ := in.Node.Config["metadata"].(map[string]any)

		res, err := client.RequestPayment(ctx, telecom.PaymentRequest{
			TransactionType: transactionType,
			Amount:          renderAmount(in.Node.Config["amount"], scope),
			Currency:        currency,
			PhoneNumber:     template.Render(phoneNumber, scope),
			ProductName:     productName,
			Metadata:        metadata,
		})
		if err != nil {
			return actionError(in, classify(err, "payment_request_error"))
		}
		return actionSuccess(in, map[string]any{
			"transaction_id": res.TransactionID,
			"status":         res.Status,
		})
	}
}

func refundPaymentHandler(client telecom.Client) dispatcher.Handler {
	return func(ctx context.Context, in dispatcher.HandlerInput) dispatcher.NodeExecutionResult {
		scope := dispatcher.BuildScope(in)
		transactionID, _ := in.Node.Config["transaction_id"].(string)

		res, err := client.RefundPayment(ctx, telecom.RefundRequest{
			TransactionID: template.Render(transactionID, scope),
			Amount:        renderAmount(in.Node.Config["amount"], scope),
		})
		if err != nil {
			return actionError(in, classify(err, "payment_refund_error"))
		}
		return actionSuccess(in, map[string]any{
			"refund_id": res.RefundID,
			"status":    res.Status,
		})
	}
}

// renderAmount handles both a literal number config value and a
// templated string ("{{amount}}") config value.
func renderAmount(v any, scope map[string]any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		rendered := template.Render(t, scope)
		f, err := strconv.ParseFloat(rendered, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
