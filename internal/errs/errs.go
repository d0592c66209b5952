// Package errs carries coded errors across the pipeline surface. Extraction
// and generation wrap their hard failures in a PipelineError so the batch
// layer can record what stage broke without string matching.
package errs

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeReadFailed Code = "READ_FAILED"
	CodeBadSpec    Code = "BAD_SPEC"
	CodeBadMapping Code = "BAD_MAPPING"
	CodeWriteOut   Code = "WRITE_FAILED"
	CodeInternal   Code = "INTERNAL"
)

const (
	CtxPath      = "path"
	CtxOperation = "operation"
	CtxStage     = "stage"
)

type PipelineError struct {
	Code    Code
	Message string
	Err     error
	Context map[string]any
}

func (e *PipelineError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if len(e.Context) > 0 {
		msg += fmt.Sprintf(" %v", e.Context)
	}
	return msg
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func (e *PipelineError) WithContext(key string, value any) *PipelineError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func New(code Code, msg string) error {
	return &PipelineError{Code: code, Message: msg}
}

func Wrap(err error, code Code, msg string) error {
	return &PipelineError{Code: code, Message: msg, Err: err}
}

// AddContext attaches a key/value pair to an existing PipelineError, or
// wraps a foreign error so the context is not lost.
func AddContext(err error, key string, value any) error {
	var pe *PipelineError
	if errors.As(err, &pe) {
		pe.WithContext(key, value)
		return pe
	}
	return &PipelineError{
		Code:    CodeInternal,
		Message: "wrapped error",
		Err:     err,
		Context: map[string]any{key: value},
	}
}

func IsCode(err error, code Code) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}
