package asm

import (
	"errors"
	"fmt"
)

// Kinds of fatal emission errors. An *Error always wraps exactly one of them.
var (
	// ErrRange means an immediate, shift amount or distance does not fit its encoding.
	ErrRange = errors.New("out of range")
	// ErrProtocol means the caller misused a label or the buffer.
	ErrProtocol = errors.New("protocol violation")
	// ErrCapacity means the code buffer is exhausted.
	ErrCapacity = errors.New("capacity exceeded")
)

// Error describes a fatal emission error. Emission panics with *Error values: each one is a
// bug in the caller, and nothing is written for the failing operation.
type Error struct {
	// Kind is ErrRange, ErrProtocol or ErrCapacity.
	Kind error
	// Op is the instruction mnemonic or buffer operation that failed.
	Op     string
	Detail string
}

// Error implements error.
func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("BUG: %s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("BUG: %s: %v: %s", e.Op, e.Kind, e.Detail)
}

// Unwrap allows errors.Is against the kind sentinels.
func (e *Error) Unwrap() error {
	return e.Kind
}

// Panicf panics with an *Error of the given kind.
func Panicf(kind error, op, format string, args ...interface{}) {
	panic(&Error{Kind: kind, Op: op, Detail: fmt.Sprintf(format, args...)})
}

// Guard runs fn and returns the *Error it panicked with, if any. Other panics propagate.
func Guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(*Error)
			if !ok {
				panic(r)
			}
			err = e
		}
	}()
	fn()
	return nil
}
