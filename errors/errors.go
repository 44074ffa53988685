// Package errors provides constant sentinel errors and wrapping helpers used across arazzo-writer.
//
// It shadows the standard library errors package so callers only need a single import.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Separator splits a sentinel message from the cause it wraps.
const Separator = " -- "

// Error is a string based error allowing packages to declare const sentinel errors.
type Error string

func (s Error) Error() string {
	return string(s)
}

// Is reports whether target carries the same sentinel message, either directly or as the prefix of a wrapped error.
func (s Error) Is(target error) bool {
	if target == nil {
		return false
	}
	msg := target.Error()
	return msg == string(s) || strings.HasPrefix(msg, string(s)+Separator)
}

// Wrap attaches err as the cause of this sentinel.
func (s Error) Wrap(err error) error {
	return &wrappedError{sentinel: s, cause: err}
}

// Wrapf attaches a formatted cause to this sentinel.
func (s Error) Wrapf(format string, args ...any) error {
	return &wrappedError{sentinel: s, cause: fmt.Errorf(format, args...)}
}

type wrappedError struct {
	sentinel Error
	cause    error
}

func (w *wrappedError) Error() string {
	if w.cause == nil {
		return string(w.sentinel)
	}
	return string(w.sentinel) + Separator + w.cause.Error()
}

func (w *wrappedError) Is(target error) bool {
	var sentinel Error
	if errors.As(target, &sentinel) {
		return sentinel == w.sentinel
	}
	return false
}

func (w *wrappedError) Unwrap() error {
	return w.cause
}

// Is is errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New is errors.New.
func New(message string) error {
	return errors.New(message)
}

// Join is errors.Join.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

type joinedErrors interface {
	Unwrap() []error
}

// UnwrapErrors flattens an error created with Join back into its parts.
func UnwrapErrors(err error) []error {
	if err == nil {
		return nil
	}

	if je, ok := err.(joinedErrors); ok {
		return je.Unwrap()
	}
	return []error{err}
}
