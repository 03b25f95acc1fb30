package tools

import (
	"context"

	"github.com/invopop/jsonschema"
)

// ITool is a named capability the model can invoke mid-conversation.
type ITool interface {
	// Name returns the name of the Tool.
	Name() string
	// Description returns the description of the tool, to be used in the prompt.
	// Should not exceed LLM model limit.
	Description() string
	// Parameters returns the JSON schema of the tool arguments, to be
	// advertised to the model.
	Parameters() *jsonschema.Schema

	// Call executes the tool with the given raw JSON input and returns the
	// result rendered as text. If the tool fails to parse the input, it
	// should return ErrFailedUnmarshalInput. Argument validation and domain
	// failures should be returned as *ArgumentError.
	Call(context.Context, string) (string, error)
}

// Tool is a typed tool with a structured request and response.
type Tool[I any, O any] interface {
	ITool
	Run(context.Context, *I) (*O, error)
}

// Callback receives tool dispatch events.
type Callback interface {
	OnToolStart(context.Context, ITool, string)
	OnToolEnd(context.Context, ITool, string, string)
	OnToolError(context.Context, ITool, string, error)
}
