package pipeline

import "errors"

// ErrMalformedInput is returned for input that cannot be analyzed at all,
// such as an empty question or a string that is not a domain.
var ErrMalformedInput = errors.New("malformed input")
