package domain

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrBotNotFound     = errors.New("bot not found")
	ErrRosterFull      = errors.New("bot limit reached")
	ErrEmptyInput      = errors.New("empty input")
	ErrRequestInFlight = errors.New("a reply is already pending")
	ErrUnknownModel    = errors.New("unknown model")
	ErrEmailTaken      = errors.New("email already registered")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrUpstream        = errors.New("language model provider failed")
)

// Messages shown in the transcript when a completion fails.
const (
	MsgServerError    = "Error en la respuesta del servidor"
	MsgTransportError = "Error al comunicarse con la IA"
	MsgTimeout        = "La IA tardó demasiado en responder. Intenta de nuevo."
)

// MsgRosterFull is shown instead of the create form once MaxBots is reached.
const MsgRosterFull = "Has alcanzado el límite máximo de 8 bots"

// FailureKind classifies why a completion request failed.
type FailureKind int

const (
	FailureTransport FailureKind = iota
	FailureStatus
	FailureMalformed
	FailureTimeout
)

// CompletionError is returned by completion clients.
type CompletionError struct {
	Kind   FailureKind
	Status int
	Detail string
	Err    error
}

func (e *CompletionError) Error() string {
	switch e.Kind {
	case FailureStatus:
		if e.Detail != "" {
			return fmt.Sprintf("completion service returned %d: %s", e.Status, e.Detail)
		}
		return fmt.Sprintf("completion service returned %d", e.Status)
	case FailureMalformed:
		return fmt.Sprintf("malformed completion response: %v", e.Err)
	case FailureTimeout:
		return "completion request timed out"
	default:
		return fmt.Sprintf("completion transport: %v", e.Err)
	}
}

func (e *CompletionError) Unwrap() error { return e.Err }

// FailureText turns a completion error into the text of a bot message.
func FailureText(err error) string {
	var cerr *CompletionError
	if errors.As(err, &cerr) {
		switch cerr.Kind {
		case FailureStatus:
			if cerr.Detail != "" {
				return cerr.Detail
			}
			return MsgServerError
		case FailureMalformed:
			return MsgServerError
		case FailureTimeout:
			return MsgTimeout
		default:
			return MsgTransportError
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return MsgTimeout
	}
	return MsgTransportError
}

// AuthError is a form-level identity failure.
type AuthError struct {
	Op      string
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ValidationError reports an invalid request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}
