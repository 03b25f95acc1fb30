package chat_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toolchat-ai/toolchat/chat"
	"github.com/toolchat-ai/toolchat/orchestrator"
	"github.com/toolchat-ai/toolchat/pkg/llms"
	"github.com/toolchat-ai/toolchat/pkg/llms/mockllm"
	"github.com/toolchat-ai/toolchat/store"
	"github.com/toolchat-ai/toolchat/tools"
	"github.com/toolchat-ai/toolchat/tools/calculator"
)

func newService(t *testing.T, model llms.Model) (*chat.Service, store.ConversationStore) {
	t.Helper()
	calc, err := calculator.New()
	require.NoError(t, err)
	registry, err := tools.NewRegistry(calc)
	require.NoError(t, err)

	st := store.NewMemoryStore()
	orc := orchestrator.New(model, st, registry)
	return chat.NewService(st, orc), st
}

func Test_Service_Lifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, mockllm.New("test-model"))

	// create without an initial utterance
	created, err := svc.CreateConversation(ctx, "")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ConversationID)
	assert.Empty(t, created.Reply)

	conv, err := svc.GetConversation(ctx, created.ConversationID)
	require.NoError(t, err)
	assert.Empty(t, conv.Turns)

	res, err := svc.Turn(ctx, created.ConversationID, "hello")
	require.NoError(t, err)
	assert.Equal(t, "echo: hello", res.Reply)
	assert.Equal(t, created.ConversationID, res.Summary.ID)
	assert.Equal(t, 2, res.Summary.TurnCount)

	list, err := svc.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ConversationID, list[0].ID)

	require.NoError(t, svc.DeleteConversation(ctx, created.ConversationID))
	_, err = svc.GetConversation(ctx, created.ConversationID)
	assert.True(t, errors.Is(err, chat.ErrConversationNotFound))
}

func Test_Service_CreateWithUtterance(t *testing.T) {
	ctx := context.Background()

	model := mockllm.New("test-model").
		WithResponses(llms.TextResponse("Hi! What can I do for you?"))
	svc, _ := newService(t, model)

	created, err := svc.CreateConversation(ctx, "hello there")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ConversationID)
	assert.Equal(t, "Hi! What can I do for you?", created.Reply)

	conv, err := svc.GetConversation(ctx, created.ConversationID)
	require.NoError(t, err)
	require.Len(t, conv.Turns, 2)
	assert.Equal(t, "hello there", conv.Turns[0].Content)
}

func Test_Service_CreateWithFailingTurn(t *testing.T) {
	ctx := context.Background()

	model := mockllm.New("test-model").WithError(errors.New("quota exceeded"))
	svc, _ := newService(t, model)

	// the conversation survives a failed initial turn
	created, err := svc.CreateConversation(ctx, "hello")
	require.Error(t, err)
	require.NotNil(t, created)
	assert.NotEmpty(t, created.ConversationID)
	assert.True(t, orchestrator.IsProviderFailure(err))

	conv, err := svc.GetConversation(ctx, created.ConversationID)
	require.NoError(t, err)
	assert.Empty(t, conv.Turns)
}

func Test_Service_UnknownConversation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, mockllm.New("test-model"))

	_, err := svc.Turn(ctx, "no-such-id", "hello")
	assert.True(t, errors.Is(err, chat.ErrConversationNotFound))

	err = svc.DeleteConversation(ctx, "no-such-id")
	assert.True(t, errors.Is(err, chat.ErrConversationNotFound))
}
