// Package orchestrator drives a single conversational turn: it sends the
// conversation history to the model, executes any tool calls the model
// requested, composes the final reply and persists the exchange.
package orchestrator

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/slices"
	"github.com/effective-security/xlog"
	"github.com/toolchat-ai/toolchat/pkg/llms"
	"github.com/toolchat-ai/toolchat/pkg/llmutils"
	"github.com/toolchat-ai/toolchat/pkg/metricskey"
	"github.com/toolchat-ai/toolchat/store"
	"github.com/toolchat-ai/toolchat/tools"
)

var logger = xlog.NewPackageLogger("github.com/toolchat-ai/toolchat", "orchestrator")

// FallbackReply is persisted and returned when a turn produces no text and
// no tool results.
const FallbackReply = "No response generated"

// Orchestrator executes turns against one model with one tool registry.
type Orchestrator struct {
	llm      llms.Model
	store    store.ConversationStore
	registry *tools.Registry
	cfg      *Config
}

// New creates an Orchestrator.
func New(llmModel llms.Model, convStore store.ConversationStore, registry *tools.Registry, options ...Option) *Orchestrator {
	return &Orchestrator{
		llm:      llmModel,
		store:    convStore,
		registry: registry,
		cfg:      NewConfig(options...),
	}
}

// Turn runs one conversational turn and returns the final reply text.
//
// The user utterance and the composed reply are appended to the conversation
// as one atomic pair: a turn either adds both or, on provider failure,
// neither. Tool failures do not abort the turn, their outcome is folded into
// the reply text.
func (o *Orchestrator) Turn(ctx context.Context, conversationID, utterance string) (string, error) {
	started := time.Now()
	defer metricskey.PerfTurn.MeasureSince(started, o.llm.GetName())

	reply, err := o.turn(ctx, conversationID, utterance)
	if err != nil {
		metricskey.StatsTurnsFailed.IncrCounter(1, o.llm.GetName())
		if o.cfg.CallbackHandler != nil {
			o.cfg.CallbackHandler.OnTurnError(ctx, conversationID, err)
		}
		return "", err
	}
	metricskey.StatsTurnsSucceeded.IncrCounter(1, o.llm.GetName())
	if o.cfg.CallbackHandler != nil {
		o.cfg.CallbackHandler.OnTurnEnd(ctx, conversationID, reply)
	}
	return reply, nil
}

func (o *Orchestrator) turn(ctx context.Context, conversationID, utterance string) (string, error) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return "", errors.WithStack(ErrEmptyUtterance)
	}

	if o.cfg.CallbackHandler != nil {
		o.cfg.CallbackHandler.OnTurnStart(ctx, conversationID, utterance)
	}

	conv, err := o.store.Get(ctx, conversationID)
	if err != nil {
		return "", err
	}

	messages := o.messages(conv, utterance)

	// Tool declarations are only advertised to providers that can act on them.
	var toolOpts []llms.CallOption
	if o.llm.GetProviderType().Supports(llms.CapabilityFunctionCalling) {
		toolOpts = append(toolOpts, llms.WithTools(o.registry.Describe()))
	}
	callOpts := o.cfg.GetCallOptions(toolOpts...)

	modelName := o.llm.GetName()
	metricskey.StatsProviderCalls.IncrCounter(1, modelName)

	providerStarted := time.Now()
	resp, err := o.llm.GenerateContent(ctx, messages, callOpts...)
	metricskey.PerfProviderCall.MeasureSince(providerStarted, modelName)
	if err != nil {
		metricskey.StatsProviderCallsFailed.IncrCounter(1, modelName)
		logger.ContextKV(ctx, xlog.ERROR,
			"status", "provider_call_failed",
			"conversation", conversationID,
			"model", modelName,
			"err", err.Error(),
		)
		return "", &ProviderError{Model: modelName, Cause: err}
	}

	reply := o.compose(ctx, resp)

	// The append runs on a detached context for the same reason tools do: a
	// side-effecting action that already happened must be recorded even if
	// the caller went away mid-turn.
	now := time.Now().UTC()
	err = o.store.Update(context.WithoutCancel(ctx), conversationID, func(c *store.Conversation) error {
		c.Turns = append(c.Turns,
			store.Turn{Role: llms.RoleUser, Content: utterance, Timestamp: now},
			store.Turn{Role: llms.RoleModel, Content: reply, Timestamp: now},
		)
		c.LastActivityAt = now
		return nil
	})
	if err != nil {
		return "", err
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "turn_complete",
		"conversation", conversationID,
		"user", slices.StringUpto(utterance, 64),
		"model_reply", slices.StringUpto(reply, 64),
	)

	return reply, nil
}

// messages builds the provider payload: the system prompt, the persisted
// history in order, then the new utterance.
func (o *Orchestrator) messages(conv *store.Conversation, utterance string) []llms.Message {
	messages := make([]llms.Message, 0, len(conv.Turns)+2)
	if o.cfg.SystemPrompt != "" {
		messages = append(messages, llms.MessageFromText(llms.RoleSystem, o.cfg.SystemPrompt))
	}
	for _, turn := range conv.Turns {
		messages = append(messages, llms.MessageFromText(turn.Role, turn.Content))
	}
	messages = append(messages, llms.MessageFromText(llms.RoleUser, utterance))
	return messages
}

// compose walks the response fragments in order, executing tool calls
// sequentially, and renders the final reply text. Tool results and tool
// failures are folded in as labeled blocks at the position the model
// requested them.
func (o *Orchestrator) compose(ctx context.Context, resp *llms.ContentResponse) string {
	var segments []string
	for _, fragment := range resp.Fragments {
		switch f := fragment.(type) {
		case llms.TextFragment:
			if text := strings.TrimSpace(f.Text); text != "" {
				segments = append(segments, text)
			}
		case llms.ToolCallFragment:
			segments = append(segments, o.executeToolCall(ctx, f))
		}
	}

	reply := strings.Join(segments, "\n\n")
	if reply == "" {
		reply = FallbackReply
	}
	return reply
}

// executeToolCall dispatches one tool call and renders its outcome. The tool
// runs on a context detached from the caller's cancellation: once the model
// has requested a side-effecting action, it completes and its result is
// recorded even if the client went away.
func (o *Orchestrator) executeToolCall(ctx context.Context, call llms.ToolCallFragment) string {
	toolCtx := context.WithoutCancel(ctx)
	if o.cfg.ToolTimeout > 0 {
		var cancel context.CancelFunc
		toolCtx, cancel = context.WithTimeout(toolCtx, o.cfg.ToolTimeout)
		defer cancel()
	}

	if o.cfg.CallbackHandler != nil {
		o.cfg.CallbackHandler.OnToolStart(ctx, call.Name, call.Arguments)
	}

	result, err := o.registry.Invoke(toolCtx, call.Name, call.Arguments)
	if err != nil {
		if o.cfg.CallbackHandler != nil {
			o.cfg.CallbackHandler.OnToolError(ctx, call.Name, call.Arguments, err)
		}
		logger.ContextKV(ctx, xlog.WARNING,
			"status", "tool_call_failed",
			"tool", call.Name,
			"tool_call_id", call.ID,
			"err", err.Error(),
		)
		return llmutils.ToolErrorBlock(call.Name, toolErrorMessage(call.Name, err))
	}

	if o.cfg.CallbackHandler != nil {
		o.cfg.CallbackHandler.OnToolEnd(ctx, call.Name, call.Arguments, result)
	}
	return llmutils.ToolResultBlock(call.Name, result)
}

// toolErrorMessage renders a dispatch failure for the reply text.
// The registry error types carry conversation-safe messages.
func toolErrorMessage(name string, err error) string {
	if tools.IsNotFound(err) {
		return "unknown tool: " + name
	}
	var ae *tools.ArgumentError
	if errors.As(err, &ae) {
		return "invalid arguments: " + ae.Reason
	}
	var ee *tools.ExecutionError
	if errors.As(err, &ee) {
		return ee.Cause.Error()
	}
	return err.Error()
}
