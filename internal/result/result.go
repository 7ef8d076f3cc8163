// Package result defines the envelope every corkboard tool call returns.
//
// An envelope is either a success carrying a data payload (plus an optional
// human-readable message) or a failure carrying an error string and a
// symbolic code. Operations never let raw Go errors or panics cross this
// boundary; callers branch on Success before reading Data.
package result

import (
	"encoding/json"
	"fmt"
)

// Code tags a failure with a stable, machine-matchable category.
type Code string

const (
	CodeWorkspaceNotFound  Code = "WORKSPACE_NOT_FOUND"
	CodeProjectNotFound    Code = "PROJECT_NOT_FOUND"
	CodeTaskNotFound       Code = "TASK_NOT_FOUND"
	CodeMissingWorkspaceID Code = "MISSING_WORKSPACE_ID"
	CodeInvalidStatus      Code = "INVALID_STATUS"
	CodeInvalidArguments   Code = "INVALID_ARGUMENTS"
	CodeDatabaseError      Code = "DATABASE_ERROR"
	CodeUnknownTool        Code = "UNKNOWN_TOOL"
	CodeInternalError      Code = "INTERNAL_ERROR"
)

// Result is the two-variant outcome envelope.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    Code   `json:"code,omitempty"`
}

// OK returns a success envelope carrying data.
func OK(data any) Result {
	return Result{Success: true, Data: data}
}

// OKf returns a success envelope carrying data and a formatted message.
func OKf(data any, format string, args ...any) Result {
	return Result{Success: true, Data: data, Message: fmt.Sprintf(format, args...)}
}

// Errorf returns a failure envelope with a formatted message.
func Errorf(code Code, format string, args ...any) Result {
	return Result{Success: false, Error: fmt.Sprintf(format, args...), Code: code}
}

// Error returns a failure envelope passing err's message through verbatim.
func Error(code Code, err error) Result {
	return Result{Success: false, Error: err.Error(), Code: code}
}

// JSON renders the envelope as a compact JSON string. Envelope payloads are
// plain structs, maps, and slices and always marshal.
func (r Result) JSON() string {
	b, err := json.Marshal(r)
	if err != nil {
		return `{"success":false,"error":"result: unmarshalable payload","code":"INTERNAL_ERROR"}`
	}
	return string(b)
}
