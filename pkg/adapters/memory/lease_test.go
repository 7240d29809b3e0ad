package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/strider/pkg/adapters/memory"
	"github.com/aretw0/strider/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLeaseService_Contract(t *testing.T) {
	ports.RunLeaseServiceContract(t, memory.NewLeaseService("test"))
}

func TestMemoryLeaseService_FailKeepAlive(t *testing.T) {
	svc := memory.NewLeaseService("test")
	ctx := context.Background()
	token, err := svc.Take(ctx)
	require.NoError(t, err)

	boom := errors.New("network down")
	svc.FailKeepAlive(boom)
	assert.ErrorIs(t, svc.KeepAlive(ctx, token), boom)

	svc.FailKeepAlive(nil)
	assert.NoError(t, svc.KeepAlive(ctx, token))
	assert.Equal(t, 2, svc.Pings())

	current, ok := svc.Current()
	require.True(t, ok)
	assert.Equal(t, "test", current.Holder)
}
