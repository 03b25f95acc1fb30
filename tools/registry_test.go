package tools_test

import (
	"context"
	"testing"

	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toolchat-ai/toolchat/tools"
	"github.com/toolchat-ai/toolchat/tools/calculator"
)

type fakeTool struct {
	name string
	call func(ctx context.Context, input string) (string, error)
}

func (f *fakeTool) Name() string                   { return f.name }
func (f *fakeTool) Description() string            { return "fake tool " + f.name }
func (f *fakeTool) Parameters() *jsonschema.Schema { return &jsonschema.Schema{Type: "object"} }
func (f *fakeTool) Call(ctx context.Context, input string) (string, error) {
	return f.call(ctx, input)
}

func Test_Registry(t *testing.T) {
	calc, err := calculator.New()
	require.NoError(t, err)

	echo := &fakeTool{
		name: "echo",
		call: func(_ context.Context, input string) (string, error) {
			return input, nil
		},
	}

	r, err := tools.NewRegistry(calc, echo)
	require.NoError(t, err)

	assert.Equal(t, []string{"calculator", "echo"}, r.Names())
	assert.Len(t, r.Tools(), 2)

	// declarations keep registration order, stable across calls
	defs := r.Describe()
	require.Len(t, defs, 2)
	assert.Equal(t, "calculator", defs[0].Function.Name)
	assert.Equal(t, "echo", defs[1].Function.Name)
	assert.Equal(t, defs, r.Describe())

	// lookup is case-insensitive
	tool, ok := r.Lookup("Calculator")
	require.True(t, ok)
	assert.Equal(t, calculator.ToolName, tool.Name())

	_, ok = r.Lookup("unknown")
	assert.False(t, ok)
}

func Test_Registry_Duplicate(t *testing.T) {
	a := &fakeTool{name: "sample"}
	b := &fakeTool{name: "Sample"}

	_, err := tools.NewRegistry(a, b)
	require.Error(t, err)
	assert.EqualError(t, err, `tool "Sample" is already registered`)

	var de *tools.DuplicateError
	assert.ErrorAs(t, err, &de)

	assert.Panics(t, func() {
		tools.MustNewRegistry(a, b)
	})
}

func Test_Registry_Invoke(t *testing.T) {
	ctx := context.Background()

	calc, err := calculator.New()
	require.NoError(t, err)

	boom := &fakeTool{
		name: "boom",
		call: func(_ context.Context, _ string) (string, error) {
			panic("unexpected state")
		},
	}

	r, err := tools.NewRegistry(calc, boom)
	require.NoError(t, err)

	res, err := r.Invoke(ctx, "calculator", `{"operation": "add", "operands": [2, 2]}`)
	require.NoError(t, err)
	assert.Equal(t, "2 + 2 = 4", res)

	// unknown tool
	_, err = r.Invoke(ctx, "forecast", `{}`)
	require.Error(t, err)
	assert.True(t, tools.IsNotFound(err))
	assert.EqualError(t, err, `tool "forecast" not found`)

	// argument failures pass through untouched
	_, err = r.Invoke(ctx, "calculator", `{"operation": "divide", "operands": [1, 0]}`)
	require.Error(t, err)
	assert.True(t, tools.IsArgumentInvalid(err))
	assert.False(t, tools.IsExecutionFailed(err))

	// unparseable payloads become execution failures
	_, err = r.Invoke(ctx, "calculator", "not json")
	require.Error(t, err)
	assert.True(t, tools.IsExecutionFailed(err))

	// a panicking handler never escapes dispatch
	_, err = r.Invoke(ctx, "boom", `{}`)
	require.Error(t, err)
	assert.True(t, tools.IsExecutionFailed(err))
	assert.Contains(t, err.Error(), "panic: unexpected state")
}

type recordingCallback struct {
	events []string
}

func (r *recordingCallback) OnToolStart(_ context.Context, tool tools.ITool, _ string) {
	r.events = append(r.events, "start:"+tool.Name())
}

func (r *recordingCallback) OnToolEnd(_ context.Context, tool tools.ITool, _, output string) {
	r.events = append(r.events, "end:"+tool.Name()+":"+output)
}

func (r *recordingCallback) OnToolError(_ context.Context, tool tools.ITool, _ string, err error) {
	r.events = append(r.events, "error:"+tool.Name()+":"+err.Error())
}

func Test_Registry_Callback(t *testing.T) {
	ctx := context.Background()

	calc, err := calculator.New()
	require.NoError(t, err)

	boom := &fakeTool{
		name: "boom",
		call: func(_ context.Context, _ string) (string, error) {
			panic("unexpected state")
		},
	}

	cb := &recordingCallback{}
	r := tools.MustNewRegistry(calc, boom).WithCallback(cb)

	res, err := r.Invoke(ctx, "calculator", `{"operation": "add", "operands": [2, 2]}`)
	require.NoError(t, err)
	assert.Equal(t, "2 + 2 = 4", res)

	_, err = r.Invoke(ctx, "calculator", `{"operation": "divide", "operands": [1, 0]}`)
	require.Error(t, err)

	_, err = r.Invoke(ctx, "boom", `{}`)
	require.Error(t, err)

	// unknown names resolve to nothing, so no event is emitted
	_, err = r.Invoke(ctx, "forecast", `{}`)
	require.Error(t, err)

	assert.Equal(t, []string{
		"start:calculator",
		"end:calculator:2 + 2 = 4",
		"start:calculator",
		`error:calculator:tool "calculator": invalid arguments: division by zero is not allowed`,
		"start:boom",
		`error:boom:tool "boom" failed: panic: unexpected state`,
	}, cb.events)
}
