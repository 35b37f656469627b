package offerprovider

import "errors"

var (
	// ErrUpstreamUnavailable indicates a transport failure or non-2xx response
	// from the provider. Transient; retry policy belongs to the caller.
	ErrUpstreamUnavailable = errors.New("offer provider unavailable")

	// ErrMalformedResponse indicates the provider answered with a payload we
	// could not decode.
	ErrMalformedResponse = errors.New("offer provider returned malformed response")
)
