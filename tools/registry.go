package tools

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/toolchat-ai/toolchat/pkg/llms"
	"github.com/toolchat-ai/toolchat/pkg/metricskey"
)

var logger = xlog.NewPackageLogger("github.com/toolchat-ai/toolchat", "tools")

// Registry is an immutable-after-construction collection of tools, keyed by
// name. It advertises tool declarations to the model in registration order
// and dispatches invocation requests.
type Registry struct {
	byName  map[string]ITool
	ordered []ITool
	defs    []llms.Tool
	cb      Callback
}

// NewRegistry creates a Registry with the given tools.
// Registering two tools under the same name is a construction-time error.
func NewRegistry(list ...ITool) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]ITool, len(list)),
	}
	for _, tool := range list {
		if err := r.Register(tool); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustNewRegistry is like NewRegistry but panics on duplicate names.
// Intended for static registries wired at startup.
func MustNewRegistry(list ...ITool) *Registry {
	r, err := NewRegistry(list...)
	if err != nil {
		panic(err)
	}
	return r
}

// WithCallback sets a handler notified of every dispatch through Invoke.
// Events are emitted after name resolution, so unknown names produce none.
func (r *Registry) WithCallback(cb Callback) *Registry {
	r.cb = cb
	return r
}

// Register adds a tool to the registry,
// fails with *DuplicateError if the name is already taken.
func (r *Registry) Register(tool ITool) error {
	name := tool.Name()
	// use lowercase for the key
	key := strings.ToLower(name)
	if _, ok := r.byName[key]; ok {
		return errors.WithStack(&DuplicateError{Name: name})
	}
	r.byName[key] = tool
	r.ordered = append(r.ordered, tool)
	r.defs = append(r.defs, llms.Tool{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        name,
			Description: tool.Description(),
			Parameters:  tool.Parameters(),
		},
	})
	return nil
}

// Describe returns the tool declarations for the model, in registration
// order. The ordering is part of the model-facing contract and is stable
// across calls.
func (r *Registry) Describe() []llms.Tool {
	defs := make([]llms.Tool, len(r.defs))
	copy(defs, r.defs)
	return defs
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []ITool {
	list := make([]ITool, len(r.ordered))
	copy(list, r.ordered)
	return list
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ordered))
	for _, tool := range r.ordered {
		names = append(names, tool.Name())
	}
	return names
}

// Lookup returns the tool registered under the given name.
// Unknown names are not an error condition here, the second return value
// reports presence.
func (r *Registry) Lookup(name string) (ITool, bool) {
	tool, ok := r.byName[strings.ToLower(name)]
	return tool, ok
}

// Invoke resolves and executes a tool by name with the raw argument payload
// received from the model. Failures are returned as one of *NotFoundError,
// *ArgumentError or *ExecutionError; a handler error or panic never escapes
// dispatch uncaught.
func (r *Registry) Invoke(ctx context.Context, name string, rawArguments string) (result string, err error) {
	tool, ok := r.Lookup(name)
	if !ok {
		metricskey.StatsToolCallsNotFound.IncrCounter(1, name)
		logger.ContextKV(ctx, xlog.WARNING,
			"status", "tool_not_found",
			"tool", name,
			"available_tools", strings.Join(r.Names(), ", "),
		)
		return "", errors.WithStack(&NotFoundError{Name: name})
	}

	defer func() {
		if rec := recover(); rec != nil {
			metricskey.StatsToolCallsFailed.IncrCounter(1, name)
			logger.ContextKV(ctx, xlog.ERROR,
				"status", "tool_panic",
				"tool", name,
				"recovered", rec,
			)
			result = ""
			err = &ExecutionError{Tool: name, Cause: errors.Newf("panic: %v", rec)}
			if r.cb != nil {
				r.cb.OnToolError(ctx, tool, rawArguments, err)
			}
		}
	}()

	if r.cb != nil {
		r.cb.OnToolStart(ctx, tool, rawArguments)
	}

	started := time.Now()
	result, err = tool.Call(ctx, rawArguments)
	metricskey.PerfToolCall.MeasureSince(started, name)

	if err != nil {
		metricskey.StatsToolCallsFailed.IncrCounter(1, name)

		var ae *ArgumentError
		if !errors.As(err, &ae) {
			// Unparseable payloads and any other handler failure are execution
			// failures, the payload is never silently coerced.
			err = &ExecutionError{Tool: tool.Name(), Cause: err}
		}
		if r.cb != nil {
			r.cb.OnToolError(ctx, tool, rawArguments, err)
		}
		return "", err
	}

	metricskey.StatsToolCallsSucceeded.IncrCounter(1, name)
	if r.cb != nil {
		r.cb.OnToolEnd(ctx, tool, rawArguments, result)
	}
	return result, nil
}
