package util

import (
	"fmt"

	"github.com/pkg/errors"
)

type ErrorCode uint

const (
	ErrUnknown ErrorCode = iota
	// ErrFilterableData: an entity references something that was filtered out. Counted, never fatal.
	ErrFilterableData
	// ErrInvariantViolation: an upstream stage produced inconsistent data. Aborts the run.
	ErrInvariantViolation
	// ErrCorruptData: a persisted file does not match its declared layout.
	ErrCorruptData
	ErrBadConfig
)

var (
	ErrCorrupt   = errors.New("corrupt data")
	ErrInvariant = errors.New("invariant violation")
)

type Error struct {
	orig error
	msg  string
	code ErrorCode
}

func (e *Error) Error() string {
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.orig
}

func (e *Error) Code() ErrorCode {
	return e.code
}

func WrapErrorf(orig error, code ErrorCode, format string, a ...interface{}) error {
	return &Error{
		code: code,
		orig: orig,
		msg:  fmt.Sprintf(format, a...),
	}
}

func NewErrorf(code ErrorCode, format string, a ...interface{}) error {
	return WrapErrorf(nil, code, format, a...)
}

// Code returns the code of the outermost coded error in the chain.
func Code(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return ErrUnknown
}
