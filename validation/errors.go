package validation

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Severity ranks how serious a finding is.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityHint:
		return "hint"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Error is a single finding against an Arazzo document, anchored to the YAML node it was raised for.
type Error struct {
	UnderlyingError  error
	Node             *yaml.Node
	Severity         Severity
	Rule             string
	DocumentLocation string
}

var _ error = (*Error)(nil)

// NewValidationError creates a finding for node.
func NewValidationError(severity Severity, rule string, err error, node *yaml.Node) *Error {
	return &Error{
		UnderlyingError: err,
		Node:            node,
		Severity:        severity,
		Rule:            rule,
	}
}

// NewNodeError creates an error severity finding with a formatted message.
func NewNodeError(rule string, node *yaml.Node, format string, args ...any) *Error {
	return NewValidationError(SeverityError, rule, fmt.Errorf(format, args...), node)
}

func (e *Error) Error() string {
	msg := ""
	if e.UnderlyingError != nil {
		msg = e.UnderlyingError.Error()
	}

	prefix := fmt.Sprintf("[%d:%d]", e.GetLineNumber(), e.GetColumnNumber())
	if e.DocumentLocation != "" {
		prefix = fmt.Sprintf("%s:%d:%d", e.DocumentLocation, e.GetLineNumber(), e.GetColumnNumber())
	}

	return fmt.Sprintf("%s %s %s %s", prefix, e.Severity, e.Rule, msg)
}

func (e *Error) Unwrap() error {
	return e.UnderlyingError
}

// GetLineNumber returns the 1-based line of the offending node, or -1 when unknown.
func (e *Error) GetLineNumber() int {
	if e == nil || e.Node == nil {
		return -1
	}
	return e.Node.Line
}

// GetColumnNumber returns the 1-based column of the offending node, or -1 when unknown.
func (e *Error) GetColumnNumber() int {
	if e == nil || e.Node == nil {
		return -1
	}
	return e.Node.Column
}

// Message returns the finding without its position prefix.
func (e *Error) Message() string {
	if e.UnderlyingError == nil {
		return ""
	}
	return e.UnderlyingError.Error()
}

// WithDocumentLocation stamps every *Error in errs with the document they were found in.
func WithDocumentLocation(errs []error, location string) []error {
	for _, err := range errs {
		var vErr *Error
		if asValidationError(err, &vErr) {
			vErr.DocumentLocation = location
		}
	}
	return errs
}
