package orchestrator

import "context"

// Callback receives turn lifecycle and tool dispatch events.
type Callback interface {
	OnTurnStart(ctx context.Context, conversationID, utterance string)
	OnTurnEnd(ctx context.Context, conversationID, reply string)
	OnTurnError(ctx context.Context, conversationID string, err error)
	OnToolStart(ctx context.Context, tool, input string)
	OnToolEnd(ctx context.Context, tool, input, output string)
	OnToolError(ctx context.Context, tool, input string, err error)
}
