// Package remote holds the failure taxonomy shared by the remote
// transcription and polishing clients.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind classifies a remote-call failure.
type Kind string

const (
	KindNetwork Kind = "network"
	KindTimeout Kind = "timeout"
	KindService Kind = "service"
	KindParse   Kind = "parse"
)

// Error is a remote-call failure with a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error returns the message; the scheduler stores it verbatim on the item.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// KindOf returns the kind of err, or "" when err is not a remote error.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}

// Transport wraps an error returned by http.Client.Do.
func Transport(err error, networkMsg, timeoutMsg string) *Error {
	if IsTimeout(err) {
		return &Error{Kind: KindTimeout, Message: timeoutMsg, Err: err}
	}
	return &Error{Kind: KindNetwork, Message: networkMsg, Err: err}
}

// Status builds a service error for a non-2xx response.
func Status(prefix string, resp *http.Response) *Error {
	text := http.StatusText(resp.StatusCode)
	if text == "" {
		text = fmt.Sprintf("status %d", resp.StatusCode)
	}
	return &Error{
		Kind:    KindService,
		Message: fmt.Sprintf("%s: %d %s", prefix, resp.StatusCode, text),
	}
}

// Parse builds a response-integrity error.
func Parse(msg string, err error) *Error {
	return &Error{Kind: KindParse, Message: msg, Err: err}
}

// IsTimeout reports whether err is a deadline or network timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
