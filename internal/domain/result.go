// Package domain – Result
//
// This file implements the Result tagged union used throughout the service
// layer. Operations that can fail for an expected reason (validation,
// not-found, conflict) return a Result or Result[T] instead of an error;
// unexpected faults still travel as plain Go errors (or panics caught by the
// HTTP boundary). Handlers inspect OK() before touching the payload and map
// Err().Code to an HTTP status with an operation-local table.
package domain

// Result is the payload-less outcome of a fallible operation: either a
// success, or a failure carrying exactly one registry Error. The zero value
// is a failure with the zero Error and should not be used; construct values
// with Ok or Fail. Results are immutable once constructed and consumed once
// by the caller.
type Result struct {
	ok  bool
	err Error
}

// Ok returns a successful Result.
func Ok() Result { return Result{ok: true} }

// Fail returns a failed Result carrying err.
func Fail(err Error) Result { return Result{err: err} }

// OK reports whether the operation succeeded.
func (r Result) OK() bool { return r.ok }

// Err returns the failure Error, or ErrNone when the Result is a success.
func (r Result) Err() Error {
	if r.ok {
		return ErrNone
	}
	return r.err
}

// ValueResult is the payload-carrying outcome of a fallible operation.
// Invariants: a success never carries an Error, a failure never carries a
// payload. Reading the payload of a failed result is a programming error;
// Value returns the zero T in that case and MustValue panics, so misuse
// fails fast in tests instead of silently propagating garbage.
type ValueResult[T any] struct {
	ok    bool
	value T
	err   Error
}

// OkOf returns a successful ValueResult holding v.
func OkOf[T any](v T) ValueResult[T] { return ValueResult[T]{ok: true, value: v} }

// FailOf returns a failed ValueResult carrying err and no payload.
func FailOf[T any](err Error) ValueResult[T] { return ValueResult[T]{err: err} }

// OK reports whether the operation succeeded.
func (r ValueResult[T]) OK() bool { return r.ok }

// Err returns the failure Error, or ErrNone when the result is a success.
func (r ValueResult[T]) Err() Error {
	if r.ok {
		return ErrNone
	}
	return r.err
}

// Value returns the payload of a successful result. On a failed result it
// returns the zero T; callers must check OK() first.
func (r ValueResult[T]) Value() T {
	if !r.ok {
		var zero T
		return zero
	}
	return r.value
}

// MustValue returns the payload or panics when the result is a failure.
// Intended for tests and for callers that have already checked OK().
func (r ValueResult[T]) MustValue() T {
	if !r.ok {
		panic("domain: MustValue called on failed result (" + r.err.Code + ")")
	}
	return r.value
}
