package pipeline

import (
	"context"
	"errors"

	errorslib "github.com/goliatone/go-errors"
)

// Stage identifies one sequential unit of the runner's work.
type Stage string

const (
	StageValidate   Stage = "validate"
	StageParse      Stage = "parse"
	StageSummarize  Stage = "summarize"
	StageIllustrate Stage = "illustrate"
)

// ErrorKind defines pipeline error kinds.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindRemote     ErrorKind = "remote_call"
	KindTimeout    ErrorKind = "timeout"
	KindCanceled   ErrorKind = "canceled"
	KindInternal   ErrorKind = "internal"
)

// Error wraps a stage failure with its kind.
type Error struct {
	Stage Stage
	Kind  ErrorKind
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Stage != "" {
		msg = string(e.Stage) + ": " + msg
	}
	if e.Err == nil {
		return msg
	}
	return msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new pipeline error.
func NewError(stage Stage, kind ErrorKind, msg string, err error) *Error {
	return &Error{Stage: stage, Kind: kind, Msg: msg, Err: err}
}

// KindFromError maps an error to its pipeline error kind.
func KindFromError(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var pipeErr *Error
	if errors.As(err, &pipeErr) {
		return pipeErr.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}

	return KindInternal
}

// StageFromError reports which stage produced the error, if known.
func StageFromError(err error) Stage {
	var pipeErr *Error
	if errors.As(err, &pipeErr) {
		return pipeErr.Stage
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

	var pipeErr *Error
	if errors.As(err, &pipeErr) {
		kind = pipeErr.Kind
		if pipeErr.Msg != "" {
			msg = pipeErr.Msg
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
	case KindRemote:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("remote_call")
	case KindTimeout:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("timeout")
	case KindCanceled:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("canceled")
	default:
		return errorslib.New(msg, errorslib.CategoryInternal).WithTextCode("internal")
	}
}
