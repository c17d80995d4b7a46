package agent

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestMemoryStateReadWriterClones(t *testing.T) {
	states := NewMemoryStateReadWriter("m")
	ctx := WithStateKey(context.Background(), "k")

	state, err := states.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, "m", state.Metadata.Model)

	state.Request.Destination = "青岛"
	require.NoError(t, states.Write(ctx, state))
	state.Request.Destination = "changed"

	stored, err := states.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, "青岛", stored.Request.Destination)

	stored.Request.Destination = "changed again"
	again, err := states.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, "青岛", again.Request.Destination)
}

func TestStoreUsesDefaultKey(t *testing.T) {
	core := NewMemoryCache[*ConversationState]()
	states := NewCacheStateReadWriter(core, "m")
	require.NoError(t, states.Write(context.Background(), NewConversationState("m")))

	ok, err := core.Exists(context.Background(), "trip:state:"+defaultStateKey)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRedisStateReadWriter(t *testing.T) {
	addr := os.Getenv("TRIPAGENT_REDIS_ADDR")
	if addr == "" {
		t.Skip("TRIPAGENT_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	states := NewCacheStateReadWriter(NewRedisCache[*ConversationState](client, time.Minute), "m")
	ctx := WithStateKey(context.Background(), "redis-test")
	defer states.Remove(ctx)

	state, err := states.Read(ctx)
	require.NoError(t, err)
	state.Request.Destination = "青岛"
	state.Metadata.LastState = StateHumanInput
	require.NoError(t, states.Write(ctx, state))

	stored, err := states.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, "青岛", stored.Request.Destination)
	require.Equal(t, StateHumanInput, stored.Metadata.LastState)

	require.NoError(t, states.Remove(ctx))
	ok, err := states.Exists(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}
