package llmutils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/toolchat-ai/toolchat/pkg/llms"
	"github.com/toolchat-ai/toolchat/pkg/llmutils"
)

func Test_CleanJSON(t *testing.T) {
	llmOutput := "\n```json\n\n{\"operation\": \"add\", \"operands\": [2, 3]}\n\n```\n\n"
	clean := llmutils.CleanJSON([]byte(llmOutput))

	expected := "{\"operation\": \"add\", \"operands\": [2, 3]}"
	assert.Equal(t, expected, string(clean))

	llmOutput = "Here you go:\n```json\n\n[{\"operation\": \"add\"}]\n```\n\n"
	clean = llmutils.CleanJSON([]byte(llmOutput))

	expected = "[{\"operation\": \"add\"}]"
	assert.Equal(t, expected, string(clean))

	// no JSON at all: returned unchanged
	plain := "five plus three"
	assert.Equal(t, plain, string(llmutils.CleanJSON([]byte(plain))))
}

func Test_TrimBackticks(t *testing.T) {
	expected := "{\"operation\": \"sqrt\", \"operands\": [16]}"

	assert.Equal(t, expected, llmutils.TrimBackticks("\n```json\n\n{\"operation\": \"sqrt\", \"operands\": [16]}\n\n```\n\n"))
	// the same
	assert.Equal(t, expected, llmutils.TrimBackticks(expected))
	assert.Equal(t, expected, llmutils.TrimBackticks("\n```\n\n{\"operation\": \"sqrt\", \"operands\": [16]}\n\n```\n\n"))
}

func Test_ToolBlocks(t *testing.T) {
	assert.Equal(t, "[calculator] 2 + 3 = 5", llmutils.ToolResultBlock("calculator", " 2 + 3 = 5\n"))
	assert.Equal(t, "[tool forecast] error: unknown tool: forecast", llmutils.ToolErrorBlock("forecast", "unknown tool: forecast"))
}

func Test_BackticksJSON(t *testing.T) {
	json := "{\"operation\": \"add\"}"
	wrapped := llmutils.BackticksJSON(json)

	expected := "\n```json\n{\"operation\": \"add\"}\n```\n"
	assert.Equal(t, expected, wrapped)
}

func Test_CountMessagesContentSize(t *testing.T) {
	msgs := []llms.Message{
		llms.MessageFromText(llms.RoleSystem, "abc"),
		llms.MessageFromText(llms.RoleUser, "de", "f"),
	}
	assert.Equal(t, uint64(6), llmutils.CountMessagesContentSize(msgs))
}
