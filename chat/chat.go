// Package chat exposes the conversation lifecycle as a single service:
// create, converse, inspect, delete.
package chat

import (
	"context"

	"github.com/effective-security/xlog"
	"github.com/toolchat-ai/toolchat/orchestrator"
	"github.com/toolchat-ai/toolchat/store"
)

var logger = xlog.NewPackageLogger("github.com/toolchat-ai/toolchat", "chat")

// ErrConversationNotFound is returned when the conversation ID is unknown.
var ErrConversationNotFound = store.ErrNotFound

// Service manages conversations and runs turns through the orchestrator.
type Service struct {
	store store.ConversationStore
	orc   *orchestrator.Orchestrator
}

// NewService creates a chat Service.
func NewService(convStore store.ConversationStore, orc *orchestrator.Orchestrator) *Service {
	return &Service{
		store: convStore,
		orc:   orc,
	}
}

// CreateResult is the outcome of creating a conversation.
type CreateResult struct {
	ConversationID string `json:"conversation_id"`
	// Reply is the model's reply to the initial utterance, empty when the
	// conversation was created without one.
	Reply string `json:"reply,omitempty"`
}

// TurnResult is the outcome of one turn.
type TurnResult struct {
	Reply   string        `json:"reply"`
	Summary store.Summary `json:"summary"`
}

// CreateConversation creates a new conversation. When initialUtterance is
// non-empty the first turn runs immediately and its reply is returned;
// the conversation exists either way.
func (s *Service) CreateConversation(ctx context.Context, initialUtterance string) (*CreateResult, error) {
	conv, err := s.store.Create(ctx)
	if err != nil {
		return nil, err
	}

	res := &CreateResult{ConversationID: conv.ID}

	if initialUtterance != "" {
		reply, err := s.orc.Turn(ctx, conv.ID, initialUtterance)
		if err != nil {
			// the conversation was created, the caller can retry the turn
			logger.ContextKV(ctx, xlog.WARNING,
				"status", "initial_turn_failed",
				"conversation", conv.ID,
				"err", err.Error(),
			)
			return res, err
		}
		res.Reply = reply
	}

	return res, nil
}

// Turn runs one turn of an existing conversation.
func (s *Service) Turn(ctx context.Context, conversationID, utterance string) (*TurnResult, error) {
	reply, err := s.orc.Turn(ctx, conversationID, utterance)
	if err != nil {
		return nil, err
	}

	conv, err := s.store.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	return &TurnResult{
		Reply:   reply,
		Summary: conv.Summary(),
	}, nil
}

// GetConversation returns the full conversation with its turns.
func (s *Service) GetConversation(ctx context.Context, conversationID string) (*store.Conversation, error) {
	return s.store.Get(ctx, conversationID)
}

// ListConversations returns summaries of all conversations, most recent
// activity first.
func (s *Service) ListConversations(ctx context.Context) ([]store.Summary, error) {
	return s.store.List(ctx)
}

// DeleteConversation removes the conversation and its history.
func (s *Service) DeleteConversation(ctx context.Context, conversationID string) error {
	return s.store.Delete(ctx, conversationID)
}
