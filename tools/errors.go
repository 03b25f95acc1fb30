package tools

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrFailedUnmarshalInput is returned by a tool when the raw argument payload
// does not parse as the tool's expected shape.
var ErrFailedUnmarshalInput = errors.New("failed to unmarshal input: check the schema and try again")

// DuplicateError is returned when a tool is registered under a name that is
// already taken. This is a construction-time failure.
type DuplicateError struct {
	Name string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("tool %q is already registered", e.Name)
}

// NotFoundError indicates the model requested a tool that is not registered.
// Unknown-tool requests originate from model output and are expected,
// recoverable conditions.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tool %q not found", e.Name)
}

// ArgumentError indicates the argument payload parsed but is invalid:
// a missing required field, wrong operand count, or an out-of-domain value
// such as division by zero.
type ArgumentError struct {
	Tool   string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("tool %q: invalid arguments: %s", e.Tool, e.Reason)
}

// ExecutionError wraps any failure raised by a tool handler, including
// unparseable payloads and recovered panics. The handler's error never
// escapes dispatch uncaught.
type ExecutionError struct {
	Tool  string
	Cause error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("tool %q failed: %s", e.Tool, e.Cause.Error())
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether the error is a tool-not-found failure.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// IsArgumentInvalid reports whether the error is an argument validation or
// domain failure.
func IsArgumentInvalid(err error) bool {
	var ae *ArgumentError
	return errors.As(err, &ae)
}

// IsExecutionFailed reports whether the error is a tool execution failure.
func IsExecutionFailed(err error) bool {
	var ee *ExecutionError
	return errors.As(err, &ee)
}
