package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/meshcloud/meshstack-auth/internal/tokensource"
)

// Class groups failures by how much is known about them.
type Class int

const (
	// ClassUnexpected covers everything else, including persistence failures.
	ClassUnexpected Class = iota
	// ClassTransport means a response was received with a non-2xx status.
	ClassTransport
	// ClassNetwork means the request could not complete.
	ClassNetwork
)

func (c Class) String() string {
	switch c {
	case ClassTransport:
		return "transport"
	case ClassNetwork:
		return "network"
	default:
		return "unexpected"
	}
}

// Classify returns the Class of err.
func Classify(err error) Class {
	var te *tokensource.TransportError
	if errors.As(err, &te) {
		return ClassTransport
	}
	var ne *tokensource.NetworkError
	if errors.As(err, &ne) {
		return ClassNetwork
	}
	return ClassUnexpected
}

// logFailure writes the diagnostic lines for err according to its class.
func logFailure(ctx context.Context, err error) {
	var (
		te *tokensource.TransportError
		ne *tokensource.NetworkError
	)

	switch {
	case errors.As(err, &te):
		slog.ErrorContext(ctx, "authentication error response", "body", string(te.Body))
		slog.ErrorContext(ctx, "status code", "status", te.StatusCode)
	case errors.As(err, &ne):
		slog.ErrorContext(ctx, "authentication error message", "error", ne.Error())
	default:
		slog.ErrorContext(ctx, "unexpected error", "error", err.Error())
	}
}
