// Package actions provides the telecom Action Dispatcher handlers:
// send_sms, send_ussd_response, initiate_call, play_ivr, collect_dtmf,
// request_payment, refund_payment, and http_request. Each renders its
// config with the Template Evaluator, calls the telecom.Client seam, and
// classifies any failure into the transient/permanent/rate_limit
// taxonomy spec.md §4.5 requires.
package actions

import (
	"errors"

	"github.com/telcoflow/workflowengine/pkg/dispatcher"
	"github.com/telcoflow/workflowengine/pkg/telecom"
)

// classify turns a telecom.Client error into a NodeError carrying the
// given fallback code for errors classify can't otherwise identify.
func classify(err error, fallbackCode string) *dispatcher.NodeError {
	var apiErr *telecom.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.RateLimit:
			return &dispatcher.NodeError{Code: "rate_limit", Message: apiErr.Message, Type: dispatcher.ErrorRateLimit}
		case apiErr.Network, apiErr.StatusCode >= 500, apiErr.StatusCode == 429:
			code := apiErr.Code
			if code == "" {
				code = "network_error"
			}
			return &dispatcher.NodeError{Code: code, Message: apiErr.Message, Type: dispatcher.ErrorTransient}
		case apiErr.StatusCode >= 400:
			code := apiErr.Code
			if code == "" {
				code = fallbackCode
			}
			return &dispatcher.NodeError{Code: code, Message: apiErr.Message, Type: dispatcher.ErrorPermanent}
		default:
			return &dispatcher.NodeError{Code: fallbackCode, Message: apiErr.Message, Type: dispatcher.ErrorPermanent}
		}
	}

	// An un-typed error from the client is treated as a transport failure.
	return &dispatcher.NodeError{Code: "network_error", Message: err.Error(), Type: dispatcher.ErrorTransient}
}
