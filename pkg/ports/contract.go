package ports

import (
	"context"
	"testing"

	"github.com/aretw0/strider/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunLeaseServiceContract runs a suite of tests to verify that a LeaseService implementation
// adheres to the defined interface contract. The service must start with no holder.
func RunLeaseServiceContract(t *testing.T, svc LeaseService) {
	ctx := context.Background()

	t.Run("Take and Return", func(t *testing.T) {
		token, err := svc.Take(ctx)
		require.NoError(t, err)
		assert.False(t, token.IsZero())

		require.NoError(t, svc.KeepAlive(ctx, token))
		require.NoError(t, svc.Return(ctx, token))
	})

	t.Run("Second Take Fails Fast", func(t *testing.T) {
		token, err := svc.Take(ctx)
		require.NoError(t, err)
		defer func() { _ = svc.Return(ctx, token) }()

		_, err = svc.Take(ctx)
		assert.ErrorIs(t, err, domain.ErrLeaseUnavailable)
	})

	t.Run("Round Trip Leaves No Holder", func(t *testing.T) {
		first, err := svc.Take(ctx)
		require.NoError(t, err)
		require.NoError(t, svc.Return(ctx, first))

		second, err := svc.Take(ctx)
		require.NoError(t, err, "Take after Return should succeed")
		assert.NotEqual(t, first.ID, second.ID, "tokens should not be reused")
		require.NoError(t, svc.Return(ctx, second))
	})

	t.Run("Stale Token", func(t *testing.T) {
		token, err := svc.Take(ctx)
		require.NoError(t, err)
		require.NoError(t, svc.Return(ctx, token))

		assert.Error(t, svc.KeepAlive(ctx, token), "KeepAlive on a returned token should fail")
		assert.ErrorIs(t, svc.Return(ctx, token), domain.ErrLeaseNotHeld)
	})
}
