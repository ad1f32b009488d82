package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error codes.
const (
	CodeSchema    = "SCHEMA_ERROR"
	CodeData      = "DATA_ERROR"
	CodeAlignment = "ALIGNMENT_ERROR"
	CodeConfig    = "CONFIG_ERROR"
)

// Common application errors
var (
	ErrSchema       = errors.New("required column missing")
	ErrData         = errors.New("value has unexpected type")
	ErrAlignment    = errors.New("feature and label rows are misaligned")
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewSchemaError reports a column that a stage requires but source lacks.
func NewSchemaError(source, column string) *AppError {
	return NewAppError(CodeSchema, fmt.Sprintf("column %q not found in %s", column, sourceName(source)), ErrSchema)
}

// NewDataError reports a cell that could not be cast to its expected type.
func NewDataError(source, column, value string, row int, cause error) *AppError {
	msg := fmt.Sprintf("cannot convert %q in column %q (row %d) of %s", value, column, row, sourceName(source))
	if cause != nil {
		return NewAppError(CodeData, msg, errors.Join(ErrData, cause))
	}
	return NewAppError(CodeData, msg, ErrData)
}

// NewAlignmentError reports a row identity mismatch between features and labels.
func NewAlignmentError(message string) *AppError {
	return NewAppError(CodeAlignment, message, ErrAlignment)
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

func sourceName(source string) string {
	if source == "" {
		return "<unnamed table>"
	}
	return source
}
