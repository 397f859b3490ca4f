package telecom

import "fmt"

// APIError is how a Client reports a provider-side failure. StatusCode
// follows HTTP conventions even for non-HTTP transports, because that is
// the taxonomy spec.md's error classification keys off of:
// network/timeout/5xx/429 -> transient, config or 4xx (non-429) ->
// permanent, explicit rate-limit -> rate_limit.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	RateLimit  bool
	Network    bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telecom: %s (status %d): %s", e.Code, e.StatusCode, e.Message)
}
