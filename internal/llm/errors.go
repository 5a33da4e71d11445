package llm

import "errors"

var (
	// ErrEmptyResponse is returned when the model answers with no text.
	ErrEmptyResponse = errors.New("model returned an empty response")

	// ErrMalformedResponse is returned when a reply has none of the expected labels.
	ErrMalformedResponse = errors.New("model response has no recognizable sections")

	// ErrBackendStatus is returned when the endpoint answers with a non-200 status.
	ErrBackendStatus = errors.New("model endpoint returned an error status")

	// ErrNoEndpoint is returned when a client is built without a base URL.
	ErrNoEndpoint = errors.New("model endpoint is not configured")
)
