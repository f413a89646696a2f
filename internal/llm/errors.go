package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind classifies a service failure.
type Kind int

const (
	Unavailable Kind = iota
	Timeout
	RateLimited
	MalformedResponse
	AuthError
)

func (k Kind) String() string {
	switch k {
	case Timeout:
		return "timeout"
	case RateLimited:
		return "rate limited"
	case MalformedResponse:
		return "malformed response"
	case AuthError:
		return "auth error"
	default:
		return "unavailable"
	}
}

// ServiceError is returned by every Service implementation.
type ServiceError struct {
	Kind     Kind
	Provider string
	Err      error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Retryable reports whether the failure is transient.
func (e *ServiceError) Retryable() bool {
	return e.Kind == Timeout || e.Kind == RateLimited
}

// IsRetryable reports whether err carries a transient ServiceError.
func IsRetryable(err error) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Retryable()
}

// KindOf returns the Kind of the ServiceError in err's chain, or Unavailable.
func KindOf(err error) Kind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return Unavailable
}

func malformed(provider string, err error) *ServiceError {
	return &ServiceError{Kind: MalformedResponse, Provider: provider, Err: err}
}

// kindForStatus maps an HTTP status code to a Kind.
func kindForStatus(code int) Kind {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return AuthError
	case http.StatusTooManyRequests:
		return RateLimited
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return Timeout
	default:
		return Unavailable
	}
}

// kindForTransport classifies errors that never produced a status code.
func kindForTransport(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return Timeout
	}
	return Unavailable
}
