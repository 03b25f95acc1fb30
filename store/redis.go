package store

import (
	"context"
	"encoding/json"
	"path"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// The redis store implements the ConversationStore interface using Redis as
// the backend. The keys namespace is organized as follows:
// - `/<prefix>/convstore/conv/<id>` for the conversation record
// - `/<prefix>/convstore/lock/<id>` for the per-conversation update lease
// - `/<prefix>/convstore/conversations` for the set of conversation IDs

const (
	leaseTTL       = 30 * time.Second
	leasePollDelay = 50 * time.Millisecond
	leaseWaitMax   = 10 * time.Second
)

type redisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a ConversationStore backed by Redis.
func NewRedisStore(client *redis.Client, prefix string) ConversationStore {
	return &redisStore{
		client: client,
		prefix: prefix,
	}
}

func (m *redisStore) convKey(id string) string {
	return path.Join(m.prefix, "convstore", "conv", id)
}

func (m *redisStore) lockKey(id string) string {
	return path.Join(m.prefix, "convstore", "lock", id)
}

func (m *redisStore) listKey() string {
	return path.Join(m.prefix, "convstore", "conversations")
}

func (m *redisStore) Create(ctx context.Context) (*Conversation, error) {
	now := time.Now().UTC()
	conv := &Conversation{
		ID:             uuid.NewString(),
		Turns:          []Turn{},
		CreatedAt:      now,
		LastActivityAt: now,
	}

	if err := m.put(ctx, conv, true); err != nil {
		return nil, err
	}
	return conv, nil
}

func (m *redisStore) put(ctx context.Context, conv *Conversation, isNew bool) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return errors.Wrap(err, "failed to marshal conversation")
	}

	pipe := m.client.Pipeline()
	pipe.Set(ctx, m.convKey(conv.ID), data, 0)
	if isNew {
		pipe.SAdd(ctx, m.listKey(), conv.ID)
	}
	_, err = pipe.Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to store conversation in Redis")
	}
	return nil
}

func (m *redisStore) Get(ctx context.Context, id string) (*Conversation, error) {
	data, err := m.client.Get(ctx, m.convKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get conversation from Redis")
	}

	conv := &Conversation{}
	if err := json.Unmarshal([]byte(data), conv); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal conversation")
	}
	return conv, nil
}

func (m *redisStore) List(ctx context.Context) ([]Summary, error) {
	ids, err := m.client.SMembers(ctx, m.listKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to list conversations from Redis")
	}

	list := make([]Summary, 0, len(ids))
	for _, id := range ids {
		conv, err := m.Get(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				// record expired or removed out of band, drop the set entry
				_ = m.client.SRem(ctx, m.listKey(), id).Err()
				continue
			}
			return nil, err
		}
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

func (m *redisStore) Delete(ctx context.Context, id string) error {
	removed, err := m.client.SRem(ctx, m.listKey(), id).Result()
	if err != nil {
		return errors.Wrap(err, "failed to delete conversation from Redis")
	}
	if removed == 0 {
		return ErrNotFound
	}

	pipe := m.client.Pipeline()
	pipe.Del(ctx, m.convKey(id))
	pipe.Del(ctx, m.lockKey(id))
	_, err = pipe.Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to delete conversation from Redis")
	}
	return nil
}

func (m *redisStore) Update(ctx context.Context, id string, mutate func(*Conversation) error) error {
	if err := m.acquireLease(ctx, id); err != nil {
		return err
	}
	defer func() {
		if err := m.client.Del(context.WithoutCancel(ctx), m.lockKey(id)).Err(); err != nil {
			logger.ContextKV(ctx, xlog.WARNING,
				"reason", "release_lease",
				"conversation", id,
				"err", err.Error(),
			)
		}
	}()

	conv, err := m.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := mutate(conv); err != nil {
		return err
	}
	conv.ID = id

	return m.put(ctx, conv, false)
}

// acquireLease takes the per-conversation update lease, polling until the
// holder releases it. The TTL bounds the damage of a crashed holder.
func (m *redisStore) acquireLease(ctx context.Context, id string) error {
	deadline := time.Now().Add(leaseWaitMax)
	for {
		ok, err := m.client.SetNX(ctx, m.lockKey(id), "1", leaseTTL).Result()
		if err != nil {
			return errors.Wrap(err, "failed to acquire conversation lease")
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrBusy
		}
		select {
		case <-ctx.Done():
			return errors.WithStack(ctx.Err())
		case <-time.After(leasePollDelay):
		}
	}
}
