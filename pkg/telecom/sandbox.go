package telecom

import (
	"context"

	"github.com/google/uuid"
)

// Sandbox is a deterministic fake Client for tests and local development
// (AT_ENVIRONMENT=sandbox). Every hook is optional; a nil hook means
// "succeed". A non-nil hook's returned error is propagated verbatim,
// letting tests inject any point on the transient/permanent/rate_limit
// taxonomy.
type Sandbox struct {
	FailSendSMS        func(req SMSRequest) error
	FailRespondUSSD     func(req USSDResponseRequest) error
	FailInitiateCall    func(req CallRequest) error
	FailPlayIVR         func(req IVRPlayRequest) error
	FailCollectDTMF     func(req DTMFCollectRequest) error
	FailRequestPayment  func(req PaymentRequest) error
	FailRefundPayment   func(req RefundRequest) error

	// Calls records every invocation in order, for assertions like
	// "the dispatcher was called with to=... message=...".
	Calls []Call
}

// Call is one recorded Sandbox invocation.
type Call struct {
	Method string
	Data   any
}

func (s *Sandbox) record(method string, data any) {
	s.Calls = append(s.Calls, Call{Method: method, Data: data})
}

func (s *Sandbox) SendSMS(_ context.Context, req SMSRequest) (*SMSResult, error) {
	s.record("SendSMS", req)
	if s.FailSendSMS != nil {
		if err := s.FailSendSMS(req); err != nil {
			return nil, err
		}
	}
	return &SMSResult{MessageID: uuid.NewString()}, nil
}

func (s *Sandbox) RespondUSSD(_ context.Context, req USSDResponseRequest) error {
	s.record("RespondUSSD", req)
	if s.FailRespondUSSD != nil {
		return s.FailRespondUSSD(req)
	}
	return nil
}

func (s *Sandbox) InitiateCall(_ context.Context, req CallRequest) (*CallResult, error) {
	s.record("InitiateCall", req)
	if s.FailInitiateCall != nil {
		if err := s.FailInitiateCall(req); err != nil {
			return nil, err
		}
	}
	return &CallResult{CallSessionID: uuid.NewString(), Answered: true}, nil
}

func (s *Sandbox) PlayIVR(_ context.Context, req IVRPlayRequest) error {
	s.record("PlayIVR", req)
	if s.FailPlayIVR != nil {
		return s.FailPlayIVR(req)
	}
	return nil
}

func (s *Sandbox) CollectDTMF(_ context.Context, req DTMFCollectRequest) (*DTMFCollectResult, error) {
	s.record("CollectDTMF", req)
	if s.FailCollectDTMF != nil {
		if err := s.FailCollectDTMF(req); err != nil {
			return nil, err
		}
	}
	return &DTMFCollectResult{Digits: "0000"}, nil
}

func (s *Sandbox) RequestPayment(_ context.Context, req PaymentRequest) (*PaymentResult, error) {
	s.record("RequestPayment", req)
	if s.FailRequestPayment != nil {
		if err := s.FailRequestPayment(req); err != nil {
			return nil, err
		}
	}
	return &PaymentResult{TransactionID: uuid.NewString(), Status: "pending"}, nil
}

func (s *Sandbox) RefundPayment(_ context.Context, req RefundRequest) (*RefundResult, error) {
	s.record("RefundPayment", req)
	if s.FailRefundPayment != nil {
		if err := s.FailRefundPayment(req); err != nil {
			return nil, err
		}
	}
	return &RefundResult{RefundID: uuid.NewString(), Status: "pending"}, nil
}
