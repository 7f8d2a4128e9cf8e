// Package errdefs defines the error taxonomy of the detection pipeline.
// Every failure surfaced by a phase carries a Kind; the kind alone decides
// whether the run aborts or the failure stays local to one service.
package errdefs

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindScan          Kind = "scan_failure"
	KindWorkspace     Kind = "workspace_failure"
	KindNoBuildSystem Kind = "no_build_system"
	KindNoLanguage    Kind = "no_language"
	KindLLMDeclined   Kind = "llm_declined"
	KindValidation    Kind = "validation_failure"
	KindTimeout       Kind = "timeout"
	KindLLMTransport  Kind = "llm_transport"
)

// Fatal reports whether a failure of this kind aborts the whole run.
// Detection failures stay local to the service they occurred in.
func (k Kind) Fatal() bool {
	switch k {
	case KindNoBuildSystem, KindNoLanguage, KindLLMDeclined:
		return false
	default:
		return true
	}
}

// Error is the pipeline error type. Stage names the phase that failed,
// Service the package path when the failure is service-local.
type Error struct {
	Kind       Kind
	Stage      string
	Service    string
	Message    string
	Suggestion string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	switch {
	case e.Service != "":
		return fmt.Sprintf("%s: %s [%s, service %s]", e.Kind, msg, e.Stage, e.Service)
	case e.Stage != "":
		return fmt.Sprintf("%s: %s [%s]", e.Kind, msg, e.Stage)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an error of the given kind.
func New(kind Kind, stage, format string, args ...any) *Error {
	return &Error{Kind: kind, Stage: stage, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind and stage to an underlying error.
func Wrap(kind Kind, stage string, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Stage: stage, Message: fmt.Sprintf(format, args...), Err: err}
}

// ForService returns a copy of the error bound to a service path.
func (e *Error) ForService(service string) *Error {
	dup := *e
	dup.Service = service
	return &dup
}

// WithSuggestion returns a copy carrying a remediation hint.
func (e *Error) WithSuggestion(s string) *Error {
	dup := *e
	dup.Suggestion = s
	return &dup
}

// KindOf extracts the Kind from an error chain. Unclassified errors map to
// the empty kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether the error chain carries the given kind.
func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }

// IsFatal reports whether the error should abort the run. Errors outside
// this taxonomy are treated as fatal.
func IsFatal(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind.Fatal()
	}
	return true
}
