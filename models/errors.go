package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a trading error for callers and the HTTP layer.
type ErrorKind int

const (
	// KindInvalidArgument marks a malformed request: unknown broker family,
	// non-positive volume, missing price on limit/stop orders.
	KindInvalidArgument ErrorKind = iota + 1
	// KindPreconditionFailed marks a request rejected before dispatch:
	// inactive account, auto-trading disabled, empty account list.
	KindPreconditionFailed
	// KindNotFound marks an unknown order, account or signal id.
	KindNotFound
	// KindBrokerFailure marks an adapter-reported failure: network error,
	// venue rejection, timeout.
	KindBrokerFailure
	// KindInternal marks a persistence or other infrastructure failure.
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidArgument:
		return "INVALID_ARGUMENT"
	case KindPreconditionFailed:
		return "PRECONDITION_FAILED"
	case KindNotFound:
		return "NOT_FOUND"
	case KindBrokerFailure:
		return "BROKER_FAILURE"
	case KindInternal:
		return "INTERNAL"
	}
	return "UNKNOWN"
}

// TradeError carries an ErrorKind alongside the message so callers can branch
// on the class of failure without parsing strings.
type TradeError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *TradeError) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Msg + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Msg
}

func (e *TradeError) Unwrap() error {
	return e.Err
}

// Errf builds a TradeError of the given kind.
func Errf(kind ErrorKind, format string, args ...any) *TradeError {
	return &TradeError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// WrapErr builds a TradeError of the given kind wrapping a cause.
func WrapErr(kind ErrorKind, err error, format string, args ...any) *TradeError {
	return &TradeError{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the ErrorKind from err, or KindInternal when err carries
// no trading classification.
func KindOf(err error) ErrorKind {
	var te *TradeError
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
