package actions

import (
	"net/http"
	"time"

	"github.com/telcoflow/workflowengine/pkg/dispatcher"
	"github.com/telcoflow/workflowengine/pkg/telecom"
)

// RegisterAll wires every telecom action handler into the dispatcher
// registry. httpClient may be nil, in which case a default client with a
// generous top-level timeout is used (the http_request node's own
// timeout_ms still governs each individual call).
func RegisterAll(d *dispatcher.Dispatcher, client telecom.Client, httpClient *http.Client) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	d.Register("send_sms", sendSMSHandler(client))
	d.Register("send_ussd_response", sendUSSDResponseHandler(client))
	d.Register("initiate_call", initiateCallHandler(client))
	d.Register("play_ivr", playIVRHandler(client))
	d.Register("collect_dtmf", collectDTMFHandler(client))
	d.Register("request_payment", requestPaymentHandler(client))
	d.Register("refund_payment", refundPaymentHandler(client))
	d.Register("http_request", httpRequestHandler(httpClient))
}
