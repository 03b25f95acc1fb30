package orchestrator_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/toolchat-ai/toolchat/orchestrator"
	"github.com/toolchat-ai/toolchat/pkg/llms"
	"github.com/toolchat-ai/toolchat/pkg/prompts"
)

func Test_Config(t *testing.T) {
	tmpl := prompts.MustNew(
		"You are {{.persona}} with access to tools.",
		[]string{"persona"},
	)

	cfg := orchestrator.NewConfig(
		orchestrator.WithSystemPromptTemplate(tmpl, map[string]any{"persona": "a math tutor"}),
		orchestrator.WithModel("gemini-2.5-flash"),
		orchestrator.WithMaxTokens(1024),
		orchestrator.WithTemperature(0.7),
		orchestrator.WithToolTimeout(30*time.Second),
	)

	assert.Equal(t, "You are a math tutor with access to tools.", cfg.SystemPrompt)
	assert.Equal(t, 30*time.Second, cfg.ToolTimeout)

	var opts llms.CallOptions
	for _, opt := range cfg.GetCallOptions() {
		opt(&opts)
	}
	assert.Equal(t, "gemini-2.5-flash", opts.Model)
	assert.Equal(t, 1024, opts.MaxTokens)
	assert.Equal(t, 0.7, opts.Temperature)
}

func Test_Config_Defaults(t *testing.T) {
	cfg := orchestrator.NewConfig()
	assert.Empty(t, cfg.SystemPrompt)
	assert.Zero(t, cfg.ToolTimeout)

	// unset options are not forwarded to the provider
	assert.Empty(t, cfg.GetCallOptions())
}
