package crawler

import "errors"

// ErrInvalidDomain is returned by NormalizeTarget and Locate when the input
// cannot be turned into an http(s) site address.
var ErrInvalidDomain = errors.New("invalid domain")

// Failure reasons recorded on model.PolicyDocument and model.RetrievalAttempt.
const (
	ReasonNoPolicyURL    = "no privacy policy URL found"
	ReasonTooShort       = "content too short to be a privacy policy"
	ReasonNotPolicy      = "content does not appear to be a privacy policy"
	ReasonBudgetExceeded = "discovery time budget exceeded"
)

// Retrieval outcomes reported to an Observer.
const (
	OutcomeOK           = "ok"
	OutcomeNetworkError = "network_error"
	OutcomeBadStatus    = "bad_status"
	OutcomeTooShort     = "too_short"
	OutcomeNotPolicy    = "not_policy"
)
