// Package faults defines the closed set of failures the model lifecycle can
// report to callers, and translates raw provider failures into them.
package faults

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// Kind classifies a failure. The set is closed.
type Kind int

const (
	KindUnexpected Kind = iota
	KindNotFound
	KindBadRequest
	KindInsufficientCapacity
	KindCredentialsRejected
	KindCredentialsMissing
	KindRemoteModelMissing
	KindRateLimited
	KindInsufficientTrainingData
)

var kindNames = map[Kind]string{
	KindUnexpected:               "Unexpected",
	KindNotFound:                 "NotFound",
	KindBadRequest:               "BadRequest",
	KindInsufficientCapacity:     "InsufficientCapacity",
	KindCredentialsRejected:      "CredentialsRejected",
	KindCredentialsMissing:       "CredentialsMissing",
	KindRemoteModelMissing:       "RemoteModelMissing",
	KindRateLimited:              "RateLimited",
	KindInsufficientTrainingData: "InsufficientTrainingData",
}

var kindStatus = map[Kind]int{
	KindUnexpected:               http.StatusInternalServerError,
	KindNotFound:                 http.StatusNotFound,
	KindBadRequest:               http.StatusBadRequest,
	KindInsufficientCapacity:     http.StatusConflict,
	KindCredentialsRejected:      http.StatusConflict,
	KindCredentialsMissing:       http.StatusConflict,
	KindRemoteModelMissing:       http.StatusNotFound,
	KindRateLimited:              http.StatusTooManyRequests,
	KindInsufficientTrainingData: http.StatusBadRequest,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Status is the HTTP status a failure of this kind is reported with.
func (k Kind) Status() int {
	if status, ok := kindStatus[k]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error is a classified failure. Message is safe to show to students;
// Detail and Err are for logs only.
type Error struct {
	Kind     Kind
	Message  string
	Provider string
	Detail   string
	Err      error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind, so the sentinels below work
// with errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// PublicMessage is the caller-facing message.
func (e *Error) PublicMessage() string {
	return e.Error()
}

// LogValue exposes the diagnostic fields to slog.
func (e *Error) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("kind", e.Kind.String()),
		slog.String("message", e.Message),
	}
	if e.Provider != "" {
		attrs = append(attrs, slog.String("provider", e.Provider))
	}
	if e.Detail != "" {
		attrs = append(attrs, slog.String("detail", e.Detail))
	}
	if e.Err != nil {
		attrs = append(attrs, slog.String("cause", e.Err.Error()))
	}
	return slog.GroupValue(attrs...)
}

// Sentinels for errors.Is. They match by Kind only.
var (
	ErrUnexpected               = &Error{Kind: KindUnexpected}
	ErrNotFound                 = &Error{Kind: KindNotFound}
	ErrBadRequest               = &Error{Kind: KindBadRequest}
	ErrInsufficientCapacity     = &Error{Kind: KindInsufficientCapacity}
	ErrCredentialsRejected      = &Error{Kind: KindCredentialsRejected}
	ErrCredentialsMissing       = &Error{Kind: KindCredentialsMissing}
	ErrRemoteModelMissing       = &Error{Kind: KindRemoteModelMissing}
	ErrRateLimited              = &Error{Kind: KindRateLimited}
	ErrInsufficientTrainingData = &Error{Kind: KindInsufficientTrainingData}
)

// KindOf returns the Kind of err, or KindUnexpected when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// MapHTTPStatus maps err to the status of its Kind.
func MapHTTPStatus(err error) int {
	return KindOf(err).Status()
}
