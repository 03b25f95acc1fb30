// Package store persists conversation histories. A conversation is an
// append-only ordered sequence of turns; implementations guarantee that
// mutations of the same conversation are serialized.
package store

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/toolchat-ai/toolchat/pkg/llms"
)

var logger = xlog.NewPackageLogger("github.com/toolchat-ai/toolchat", "store")

var (
	// ErrNotFound is returned when the conversation ID is not known to the store.
	ErrNotFound = errors.New("conversation not found")
	// ErrBusy is returned when the per-conversation lease could not be
	// acquired in time.
	ErrBusy = errors.New("conversation is busy")
)

// Turn is a single entry in a conversation history.
type Turn struct {
	Role      llms.Role `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is the full persisted state of one conversation.
type Conversation struct {
	ID             string    `json:"id"`
	Turns          []Turn    `json:"turns"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// Clone returns a deep copy, so callers can never alias stored state.
func (c *Conversation) Clone() *Conversation {
	cp := *c
	cp.Turns = make([]Turn, len(c.Turns))
	copy(cp.Turns, c.Turns)
	return &cp
}

// Summary describes a conversation without its turns.
type Summary struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	TurnCount      int       `json:"turn_count"`
}

func (c *Conversation) Summary() Summary {
	return Summary{
		ID:             c.ID,
		CreatedAt:      c.CreatedAt,
		LastActivityAt: c.LastActivityAt,
		TurnCount:      len(c.Turns),
	}
}

// ConversationStore manages conversation lifecycle and history.
//
// Update serializes concurrent mutations of the same conversation: the
// mutator runs under a per-conversation lease with the latest state, and the
// mutated state replaces it atomically. Either the whole mutation is
// persisted or none of it is.
type ConversationStore interface {
	// Create allocates a new empty conversation.
	Create(ctx context.Context) (*Conversation, error)
	// Get returns a copy of the conversation, or ErrNotFound.
	Get(ctx context.Context, id string) (*Conversation, error)
	// List returns summaries of all conversations, most recent activity first.
	List(ctx context.Context) ([]Summary, error)
	// Delete removes the conversation, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
	// Update applies the mutator to the conversation under the
	// per-conversation lease. A failing mutator leaves the stored state
	// untouched.
	Update(ctx context.Context, id string, mutate func(*Conversation) error) error
}
