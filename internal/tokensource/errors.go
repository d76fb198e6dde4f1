package tokensource

import (
	"fmt"

	"golang.org/x/oauth2"
)

// TransportError reports a login request that received a non-2xx response.
type TransportError struct {
	StatusCode int
	Body       []byte

	// Retrieve carries the OAuth2 error fields parsed from Body, if any.
	Retrieve *oauth2.RetrieveError
}

func (e *TransportError) Error() string {
	if e.Retrieve != nil && e.Retrieve.ErrorCode != "" {
		return fmt.Sprintf("login failed with status %d: %s", e.StatusCode, e.Retrieve.ErrorCode)
	}
	return fmt.Sprintf("login failed with status %d", e.StatusCode)
}

// Unwrap exposes the oauth2 error so callers can use errors.As with *oauth2.RetrieveError.
func (e *TransportError) Unwrap() error {
	if e.Retrieve == nil {
		return nil
	}
	return e.Retrieve
}

// NetworkError reports a login request that could not complete: dial, TLS,
// timeout, cancellation or too many redirects.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// DecodeError reports a 2xx response whose body is not a JSON object.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding login response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
