// Package dispatch implements method invocation resolution and signal
// fan-out: spec.md §4.7/§4.8.
package dispatch

import (
	"fmt"

	"github.com/InsightCenterNoodles/noodles-core/anyvar"
)

// Standard JSON-RPC 2.0 error codes (spec.md §4.7/§7).
const (
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// MethodException is the structured error a handler may return; it
// becomes MethodReply.exception and never closes the session.
type MethodException struct {
	Code    int64
	Message string
	Data    anyvar.AnyVar
}

func (e *MethodException) Error() string {
	return fmt.Sprintf("method exception %d: %s", e.Code, e.Message)
}

// NotFound, NotAttached, and Internal are the three exceptions the
// dispatcher itself raises (as opposed to ones a handler returns).
func NotFound(methodName string) *MethodException {
	return &MethodException{Code: CodeMethodNotFound, Message: "method not found: " + methodName}
}

func NotAttached(methodName string) *MethodException {
	return &MethodException{Code: CodeInvalidRequest, Message: "method not attached to context: " + methodName}
}

func Internal(cause error) *MethodException {
	msg := "internal error"
	if cause != nil {
		msg = cause.Error()
	}
	return &MethodException{Code: CodeInternalError, Message: msg}
}

func InvalidParams(reason string) *MethodException {
	return &MethodException{Code: CodeInvalidParams, Message: reason}
}
