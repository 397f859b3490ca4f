// Package telecom is the seam between the platform and its telecom
// provider: a pluggable Client interface covering SMS, USSD, voice/IVR,
// and mobile-money payments, plus a sandbox implementation for tests and
// local development. The provider's remote APIs are deliberately out of
// this module's scope (spec §1) — this package is the boundary.
package telecom

import "context"

// SMSRequest is the input to Send.
type SMSRequest struct {
	To      string
	Message string
	From    string
}

// SMSResult is the output of a successful Send.
type SMSResult struct {
	MessageID string
}

// USSDResponseRequest is the input to RespondUSSD.
type USSDResponseRequest struct {
	SessionID   string
	Message     string
	ExpectInput bool
}

// CallRequest is the input to InitiateCall.
type CallRequest struct {
	SessionID string
	To        string
}

// CallResult is the output of a successful InitiateCall.
type CallResult struct {
	CallSessionID string
	Answered      bool
}

// IVRPlayRequest is the input to PlayIVR.
type IVRPlayRequest struct {
	SessionID string
	Text      string
	AudioURL  string
}

// DTMFCollectRequest is the input to CollectDTMF.
type DTMFCollectRequest struct {
	SessionID string
	Prompt    string
	MaxDigits int
	TimeoutMs int
}

// DTMFCollectResult is the output of CollectDTMF.
type DTMFCollectResult struct {
	Digits    string
	TimedOut  bool
}

// PaymentRequest is the input to RequestPayment.
type PaymentRequest struct {
	TransactionType string
	Amount          float64
	Currency        string
	PhoneNumber     string
	ProductName     string
	Metadata        map[string]any
}

// PaymentResult is the output of RequestPayment.
type PaymentResult struct {
	TransactionID string
	Status        string
}

// RefundRequest is the input to RefundPayment.
type RefundRequest struct {
	TransactionID string
	Amount        float64
}

// RefundResult is the output of RefundPayment.
type RefundResult struct {
	RefundID string
	Status   string
}

// Client is the pluggable telecom provider seam. Every method returns an
// *APIError on provider-reported failure so callers can classify it into
// the transient/permanent/rate_limit taxonomy.
type Client interface {
	SendSMS(ctx context.Context, req SMSRequest) (*SMSResult, error)
	RespondUSSD(ctx context.Context, req USSDResponseRequest) error
	InitiateCall(ctx context.Context, req CallRequest) (*CallResult, error)
	PlayIVR(ctx context.Context, req IVRPlayRequest) error
	CollectDTMF(ctx context.Context, req DTMFCollectRequest) (*DTMFCollectResult, error)
	RequestPayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error)
	RefundPayment(ctx context.Context, req RefundRequest) (*RefundResult, error)
}
