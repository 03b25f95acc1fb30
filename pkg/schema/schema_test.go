package schema_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toolchat-ai/toolchat/pkg/schema"
)

// searchRequest exercises nested structs, enums and required fields.
type searchRequest struct {
	Query string   `json:"query" validate:"required" jsonschema:"title=Query,description=Query to search for"`
	Kind  string   `json:"kind,omitempty" validate:"omitempty,oneof=web image" jsonschema:"title=Kind,enum=web,enum=image"`
	Tags  []string `json:"tags,omitempty" jsonschema:"title=Tags"`
}

func Test_New(t *testing.T) {
	sc, err := schema.New(reflect.TypeOf(searchRequest{}))
	require.NoError(t, err)
	require.NotNil(t, sc.Parameters)

	js := sc.String()
	assert.Contains(t, js, `"query"`)
	assert.Contains(t, js, `"required"`)
	assert.Contains(t, js, `"web"`)

	// schemas are cached per type
	sc2, err := schema.New(reflect.TypeOf(searchRequest{}))
	require.NoError(t, err)
	assert.Same(t, sc, sc2)
}

func Test_FromAny(t *testing.T) {
	sc, err := schema.FromAny(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "object", sc.Type)

	assert.NotPanics(t, func() {
		schema.MustFromAny(map[string]any{"type": "object"})
	})
}

func Test_Validate(t *testing.T) {
	err := schema.Validate(&searchRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required field Query")

	err = schema.Validate(&searchRequest{Query: "golang", Kind: "audio"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be one of: web image")

	assert.NoError(t, schema.Validate(&searchRequest{Query: "golang", Kind: "web"}))
}
