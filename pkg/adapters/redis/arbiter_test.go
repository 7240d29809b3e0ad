package redis_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/strider/pkg/adapters/memory"
	"github.com/aretw0/strider/pkg/adapters/redis"
	"github.com/aretw0/strider/pkg/domain"
	"github.com/aretw0/strider/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisArbiter_Contract(t *testing.T) {
	_, client := setup(t)
	ports.RunLeaseServiceContract(t, redis.NewFromClient(client, memory.NewLeaseService("test")))
}

func TestRedisArbiter_ExcludesOtherProcesses(t *testing.T) {
	mr, client := setup(t)
	ctx := context.Background()

	// Two operator processes, each with its own connection to the robot.
	a := redis.NewFromClient(client, memory.NewLeaseService("a"), redis.WithKey("strider:lease:spot"), redis.WithOwner("alice"))
	b := redis.NewFromClient(client, memory.NewLeaseService("b"), redis.WithKey("strider:lease:spot"), redis.WithOwner("bob"))

	token, err := a.Take(ctx)
	require.NoError(t, err)
	assert.True(t, mr.Exists("strider:lease:spot"))

	_, err = b.Take(ctx)
	require.ErrorIs(t, err, domain.ErrLeaseUnavailable)
	assert.Contains(t, err.Error(), "alice")

	require.NoError(t, a.Return(ctx, token))
	assert.False(t, mr.Exists("strider:lease:spot"))

	_, err = b.Take(ctx)
	assert.NoError(t, err)
}

func TestRedisArbiter_KeepAliveExtendsTTL(t *testing.T) {
	mr, client := setup(t)
	ctx := context.Background()
	a := redis.NewFromClient(client, memory.NewLeaseService("a"), redis.WithTTL(2*time.Second))

	token, err := a.Take(ctx)
	require.NoError(t, err)

	mr.FastForward(1500 * time.Millisecond)
	require.NoError(t, a.KeepAlive(ctx, token))
	mr.FastForward(1500 * time.Millisecond)
	require.NoError(t, a.KeepAlive(ctx, token), "renewed claim is still live")

	mr.FastForward(3 * time.Second)
	assert.ErrorIs(t, a.KeepAlive(ctx, token), domain.ErrLeaseNotHeld, "expired claim")
}

func TestRedisArbiter_InnerTakeFailureDropsClaim(t *testing.T) {
	mr, client := setup(t)
	ctx := context.Background()

	inner := memory.NewLeaseService("robot")
	_, err := inner.Take(ctx)
	require.NoError(t, err)

	a := redis.NewFromClient(client, inner, redis.WithKey("k"))
	_, err = a.Take(ctx)
	assert.ErrorIs(t, err, domain.ErrLeaseUnavailable)
	assert.False(t, mr.Exists("k"), "claim is given back")
}

func TestRedisArbiter_InnerKeepAliveError(t *testing.T) {
	_, client := setup(t)
	ctx := context.Background()
	inner := memory.NewLeaseService("robot")
	a := redis.NewFromClient(client, inner)

	token, err := a.Take(ctx)
	require.NoError(t, err)

	down := errors.New("robot unreachable")
	inner.FailKeepAlive(down)
	assert.ErrorIs(t, a.KeepAlive(ctx, token), down)
}
