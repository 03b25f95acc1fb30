package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/docker/docker/api/types/container"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	rediscon "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/toolchat-ai/toolchat/pkg/llms"
	"github.com/toolchat-ai/toolchat/store"
)

func Test_RedisStore(t *testing.T) {
	ctx := context.Background()
	redisContainer, err := rediscon.Run(ctx, "redis:7",
		testcontainers.WithConfigModifier(func(config *container.Config) {
			config.Env = []string{
				"ALLOW_EMPTY_PASSWORD=yes",
			}
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, redisContainer.Terminate(ctx))
	})

	state, err := redisContainer.State(ctx)
	require.NoError(t, err)
	require.True(t, state.Running)

	root := fmt.Sprintf("test-%d", time.Now().Unix())

	host, err := redisContainer.ConnectionString(ctx)
	require.NoError(t, err)

	options, err := redis.ParseURL(host)
	require.NoError(t, err)

	client := redis.NewClient(options)

	rs := client.Ping(ctx) // Ensure the connection is established
	require.NoError(t, rs.Err(), "failed to connect to Redis")

	st := store.NewRedisStore(client, root)

	_, err = st.Get(ctx, "unknown")
	assert.True(t, errors.Is(err, store.ErrNotFound))
	assert.True(t, errors.Is(st.Delete(ctx, "unknown"), store.ErrNotFound))

	conv, err := st.Create(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, conv.ID)
	assert.Empty(t, conv.Turns)

	err = st.Update(ctx, conv.ID, func(c *store.Conversation) error {
		c.Turns = append(c.Turns,
			store.Turn{Role: llms.RoleUser, Content: "Hello", Timestamp: time.Now().UTC()},
			store.Turn{Role: llms.RoleModel, Content: "Hi there!", Timestamp: time.Now().UTC()},
		)
		c.LastActivityAt = time.Now().UTC()
		return nil
	})
	require.NoError(t, err)

	got, err := st.Get(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, got.Turns, 2)
	assert.Equal(t, llms.RoleUser, got.Turns[0].Role)
	assert.Equal(t, "Hello", got.Turns[0].Content)

	// a failing mutator leaves the stored state untouched
	boom := errors.New("mutation failed")
	err = st.Update(ctx, conv.ID, func(c *store.Conversation) error {
		c.Turns = nil
		return boom
	})
	assert.True(t, errors.Is(err, boom))
	got, err = st.Get(ctx, conv.ID)
	require.NoError(t, err)
	assert.Len(t, got.Turns, 2)

	second, err := st.Create(ctx)
	require.NoError(t, err)

	list, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, conv.ID, list[1].ID)
	assert.Equal(t, 2, list[1].TurnCount)

	require.NoError(t, st.Delete(ctx, conv.ID))
	_, err = st.Get(ctx, conv.ID)
	assert.True(t, errors.Is(err, store.ErrNotFound))

	list, err = st.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}
