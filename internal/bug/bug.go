// Package bug reports internal consistency violations.
//
// A violation means a caller (or this module) broke an invariant that a
// well-typed input can never break. It is never turned into a diagnostic:
// the current operation unwinds with a *Error panic value.
package bug

import (
	"fmt"

	"github.com/pkg/errors"
)

type Error struct {
	err error
}

func (e *Error) Error() string {
	return "internal error: " + e.err.Error()
}

func (e *Error) Unwrap() error {
	return e.err
}

// Format prints the stack captured at the violation with %+v.
func (e *Error) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "internal error: %+v", e.err)
		return
	}
	fmt.Fprint(s, e.Error())
}

func Panicf(format string, args ...interface{}) {
	panic(&Error{err: errors.Errorf(format, args...)})
}

func Assert(cond bool, format string, args ...interface{}) {
	if !cond {
		Panicf(format, args...)
	}
}

// From returns the violation err wraps, if any.
func From(err error) (*Error, bool) {
	var violation *Error
	if errors.As(err, &violation) {
		return violation, true
	}
	return nil, false
}

// Catch runs f and returns the violation it raised, if any. Panics that are
// not violations keep unwinding.
func Catch(f func()) (violation *Error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*Error); ok {
				violation = e
				return
			}
			panic(r)
		}
	}()
	f()
	return nil
}
