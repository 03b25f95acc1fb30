package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// inMemory keeps conversations in a map guarded by a global mutex, with one
// lock per conversation so that concurrent updates of the same conversation
// queue instead of failing.
type inMemory struct {
	mu      sync.RWMutex
	storage map[string]*Conversation
	locks   map[string]*sync.Mutex
}

// NewMemoryStore creates an in-memory ConversationStore.
func NewMemoryStore() ConversationStore {
	return &inMemory{
		storage: make(map[string]*Conversation),
		locks:   make(map[string]*sync.Mutex),
	}
}

func (m *inMemory) Create(_ context.Context) (*Conversation, error) {
	now := time.Now().UTC()
	conv := &Conversation{
		ID:             uuid.NewString(),
		Turns:          []Turn{},
		CreatedAt:      now,
		LastActivityAt: now,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.storage[conv.ID] = conv
	m.locks[conv.ID] = &sync.Mutex{}

	return conv.Clone(), nil
}

func (m *inMemory) Get(_ context.Context, id string) (*Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conv, ok := m.storage[id]
	if !ok {
		return nil, ErrNotFound
	}
	return conv.Clone(), nil
}

func (m *inMemory) List(_ context.Context) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]Summary, 0, len(m.storage))
	for _, conv := range m.storage {
		list = append(list, conv.Summary())
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].LastActivityAt.Equal(list[j].LastActivityAt) {
			return list[i].LastActivityAt.After(list[j].LastActivityAt)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (m *inMemory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.storage[id]; !ok {
		return ErrNotFound
	}
	delete(m.storage, id)
	delete(m.locks, id)
	return nil
}

func (m *inMemory) Update(_ context.Context, id string, mutate func(*Conversation) error) error {
	m.mu.RLock()
	lock, ok := m.locks[id]
	m.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	// queue behind any in-flight update of the same conversation
	lock.Lock()
	defer lock.Unlock()

	m.mu.RLock()
	conv, ok := m.storage[id]
	m.mu.RUnlock()
	if !ok {
		// deleted while waiting for the lock
		return ErrNotFound
	}

	next := conv.Clone()
	if err := mutate(next); err != nil {
		return err
	}
	next.ID = id

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.storage[id]; !ok {
		return ErrNotFound
	}
	m.storage[id] = next
	return nil
}
