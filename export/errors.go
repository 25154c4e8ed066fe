package export

import (
	"context"
	"errors"

	errorslib "github.com/goliatone/go-errors"
)

// Phase identifies where in the export an error occurred.
type Phase string

const (
	PhaseNormalize Phase = "normalize_theme"
	PhaseResolve   Phase = "resolve_images"
	PhaseCapture   Phase = "capture"
	PhasePaginate  Phase = "paginate"
	PhaseEmit      Phase = "emit"
)

// ErrorKind defines export error kinds.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindConflict   ErrorKind = "conflict"
	KindCapture    ErrorKind = "capture"
	KindPaginate   ErrorKind = "paginate"
	KindTimeout    ErrorKind = "timeout"
	KindCanceled   ErrorKind = "canceled"
	KindInternal   ErrorKind = "internal"
)

// Error wraps export failures with their phase and kind.
type Error struct {
	Phase Phase
	Kind  ErrorKind
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Phase != "" {
		msg = string(e.Phase) + ": " + msg
	}
	if e.Err == nil {
		return msg
	}
	return msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new export error.
func NewError(phase Phase, kind ErrorKind, msg string, err error) *Error {
	return &Error{Phase: phase, Kind: kind, Msg: msg, Err: err}
}

// KindFromError maps an error to its export error kind.
func KindFromError(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var exportErr *Error
	if errors.As(err, &exportErr) {
		return exportErr.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}

	return KindInternal
}

// PhaseFromError reports the failed phase, if known.
func PhaseFromError(err error) Phase {
	var exportErr *Error
	if errors.As(err, &exportErr) {
		return exportErr.Phase
	}
	return ""
}

// AsGoError maps an error into a go-errors error.
func AsGoError(err error) *errorslib.Error {
	if err == nil {
		return nil
	}

	var ge *errorslib.Error
	if errors.As(err, &ge) {
		return ge
	}

	kind := KindInternal
	msg := err.Error()

	var exportErr *Error
	if errors.As(err, &exportErr) {
		kind = exportErr.Kind
		if exportErr.Msg != "" {
			msg = exportErr.Msg
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		kind = KindCanceled
	}

	switch kind {
	case KindValidation:
		return errorslib.New(msg, errorslib.CategoryValidation).WithTextCode("validation")
	case KindConflict:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("conflict")
	case KindTimeout:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("timeout")
	case KindCanceled:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("canceled")
	case KindCapture, KindPaginate:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode(string(kind))
	default:
		return errorslib.New(msg, errorslib.CategoryInternal).WithTextCode("internal")
	}
}
