package kb

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
)

// Kind categorizes client failures.
type Kind string

const (
	// KindTransport covers network, DNS and timeout failures.
	KindTransport Kind = "transport"
	// KindProtocol covers non-2xx replies and bodies that cannot be decoded.
	KindProtocol Kind = "protocol"
	// KindValidation covers input rejected locally before any request.
	KindValidation Kind = "validation"
)

// Error is the single error type produced by this package.
type Error struct {
	Kind   Kind
	Op     string // endpoint or operation, e.g. "GET /status"
	Status int    // HTTP status for protocol errors, zero otherwise
	Detail string // server-supplied or validation message
	Cause  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var msg string
	switch {
	case e.Detail != "" && e.Status != 0:
		msg = fmt.Sprintf("%s %s: status %d: %s", e.Kind, e.Op, e.Status, e.Detail)
	case e.Detail != "":
		msg = fmt.Sprintf("%s %s: %s", e.Kind, e.Op, e.Detail)
	case e.Status != 0:
		msg = fmt.Sprintf("%s %s: returned status %d", e.Kind, e.Op, e.Status)
	default:
		msg = fmt.Sprintf("%s %s", e.Kind, e.Op)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// UserMessage returns the text shown in the status line or transcript.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindTransport:
		if cause := transportCause(e.Cause); cause != "" {
			return "Could not reach the knowledge-base service: " + cause + "."
		}
		return "Could not reach the knowledge-base service."
	case KindProtocol:
		if e.Detail != "" {
			return e.Detail
		}
		if e.Status != 0 {
			return fmt.Sprintf("Service returned status %d.", e.Status)
		}
		return "Service sent a response that could not be read."
	case KindValidation:
		return e.Detail
	default:
		return e.Error()
	}
}

// transportCause shortens a network failure to the part a user can act on.
func transportCause(err error) string {
	if err == nil {
		return ""
	}
	var (
		dnsErr *net.DNSError
		netErr net.Error
		urlErr *url.Error
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	case errors.As(err, &dnsErr):
		return "host not found"
	case errors.Is(err, syscall.ECONNREFUSED):
		return "connection refused"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "request timed out"
	case errors.As(err, &urlErr):
		return urlErr.Err.Error()
	}
	return err.Error()
}

// UserMessage extracts a display message from any error.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var kbErr *Error
	if errors.As(err, &kbErr) {
		return kbErr.UserMessage()
	}
	return err.Error()
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool { return isKind(err, KindTransport) }

// IsProtocol reports whether err is a protocol failure.
func IsProtocol(err error) bool { return isKind(err, KindProtocol) }

// IsValidation reports whether err was raised by local validation.
func IsValidation(err error) bool { return isKind(err, KindValidation) }

func isKind(err error, kind Kind) bool {
	var kbErr *Error
	return errors.As(err, &kbErr) && kbErr.Kind == kind
}

// Validation builds a local validation error.
func Validation(op, detail string) *Error {
	return &Error{Kind: KindValidation, Op: op, Detail: detail}
}

func transportError(op string, cause error) *Error {
	return &Error{Kind: KindTransport, Op: op, Cause: cause}
}

func protocolError(op string, status int, detail string, cause error) *Error {
	return &Error{Kind: KindProtocol, Op: op, Status: status, Detail: detail, Cause: cause}
}
