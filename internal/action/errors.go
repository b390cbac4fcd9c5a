package action

import (
	"errors"
	"fmt"
)

// ErrorCode is a string type used for structured error reporting.
type ErrorCode string

const (
	ErrCodeValidation        ErrorCode = "VALIDATION_ERROR"
	ErrCodeUnsupportedAction ErrorCode = "UNSUPPORTED_ACTION"
	ErrCodeParseFailure      ErrorCode = "PARSE_FAILURE"
	ErrCodeNoAction          ErrorCode = "NO_ACTION"
	ErrCodeUnmappedKey       ErrorCode = "UNMAPPED_KEY"
)

// ValidationError reports malformed, missing or conflicting arguments.
type ValidationError struct {
	Action string
	Msg    string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Code returns ErrCodeValidation.
func (e *ValidationError) Code() ErrorCode { return ErrCodeValidation }

func invalid(name, format string, args ...any) error {
	return &ValidationError{Action: name, Msg: fmt.Sprintf(format, args...)}
}

// UnsupportedActionError reports a recognized action that is intentionally not implemented.
type UnsupportedActionError struct {
	Action string
}

func (e *UnsupportedActionError) Error() string {
	return fmt.Sprintf("action %s is not supported", e.Action)
}

// Code returns ErrCodeUnsupportedAction.
func (e *UnsupportedActionError) Code() ErrorCode { return ErrCodeUnsupportedAction }

// CodeOf extracts the ErrorCode of err, or "" if it carries none.
func CodeOf(err error) ErrorCode {
	var coded interface{ Code() ErrorCode }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return ""
}
