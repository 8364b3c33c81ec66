package llm

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindTimeout            ErrorKind = "Timeout"
	KindNetworkUnavailable ErrorKind = "NetworkUnavailable"
	KindClientRejected     ErrorKind = "ClientRejected"
	KindServerFault        ErrorKind = "ServerFault"
	KindMalformedResponse  ErrorKind = "MalformedResponse"
)

// Error is the only error type that leaves the client. Message is safe to
// show to a user; the underlying cause is kept for logs and errors.Is.
type Error struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	Attempts   int
	cause      error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Retryable reports whether another attempt could change the outcome.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindTimeout, KindNetworkUnavailable, KindServerFault:
		return true
	}
	return false
}

func newError(kind ErrorKind, status int, cause error) *Error {
	return &Error{Kind: kind, Message: userMessage(kind, status), StatusCode: status, cause: cause}
}

func userMessage(kind ErrorKind, status int) string {
	switch kind {
	case KindTimeout:
		return "The comment service took too long to respond."
	case KindNetworkUnavailable:
		return "Cannot reach the comment service. Check your network connection."
	case KindClientRejected:
		switch status {
		case 401, 403:
			return "The comment service rejected the credentials. Check your API key."
		case 429:
			return "The comment service rate limit was reached. Try again later."
		}
		return fmt.Sprintf("The comment service rejected the request (HTTP %d).", status)
	case KindServerFault:
		return fmt.Sprintf("The comment service failed (HTTP %d).", status)
	case KindMalformedResponse:
		return "The comment service returned an unreadable response."
	}
	return "The comment service call failed."
}

// KindOf returns the kind of a client error, or "" for any other error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable()
}

// UserMessage returns presentable text for err.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
