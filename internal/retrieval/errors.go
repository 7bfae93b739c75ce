package retrieval

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for store failures seen by retrieval.
var (
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrStoreTimeout     = errors.New("store timeout")
)

// ErrorKind classifies a retrieval failure.
type ErrorKind int

const (
	KindUnavailable ErrorKind = iota
	KindTimeout
)

func (k ErrorKind) sentinel() error {
	if k == KindTimeout {
		return ErrStoreTimeout
	}
	return ErrStoreUnavailable
}

func (k ErrorKind) String() string {
	return k.sentinel().Error()
}

// Error is returned by every query mode when the store could not answer.
type Error struct {
	// Op is the query mode that failed (e.g. "relevant", "search").
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("retrieval %s: %s", e.Op, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// storeError wraps a store failure, classifying deadlines as timeouts.
func storeError(op string, err error) *Error {
	kind := KindUnavailable
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	return &Error{Op: op, Kind: kind, Err: err}
}
