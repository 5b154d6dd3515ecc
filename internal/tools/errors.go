package tools

import (
	"errors"
	"fmt"
)

// JSON-RPC error codes used by tool failures.
const (
	CodeInvalidParams  = -32602
	CodeMethodNotFound = -32601
	CodeInternalError  = -32603
)

type ToolError struct {
	Code    int
	Message string
	Err     error
}

func (e *ToolError) Error() string {
	return e.Message
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

func NewToolNotFoundError(name string) *ToolError {
	return &ToolError{
		Code:    CodeMethodNotFound,
		Message: fmt.Sprintf("Tool not found: %s", name),
	}
}

func NewToolExecutionError(name string, err error) *ToolError {
	return &ToolError{
		Code:    CodeInternalError,
		Message: fmt.Sprintf("Error executing tool %s: %v", name, err),
		Err:     err,
	}
}

func NewInvalidParamsError(format string, args ...any) *ToolError {
	return &ToolError{
		Code:    CodeInvalidParams,
		Message: fmt.Sprintf(format, args...),
	}
}

// Code returns the JSON-RPC code for err, defaulting to an internal error.
func Code(err error) int {
	var te *ToolError
	if errors.As(err, &te) {
		return te.Code
	}
	return CodeInternalError
}
