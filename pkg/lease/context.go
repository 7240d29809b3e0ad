package lease

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/strider/pkg/domain"
)

type tokenKey struct{}

func withToken(ctx context.Context, token domain.LeaseToken) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// FromContext returns the lease token bound to ctx by WithKeepAlive.
func FromContext(ctx context.Context) (domain.LeaseToken, bool) {
	token, ok := ctx.Value(tokenKey{}).(domain.LeaseToken)
	return token, ok && !token.IsZero()
}

// Require returns the token of the enclosing keep-alive scope. It fails with
// domain.ErrLeaseNotHeld outside a scope or after the scope ended, and with the
// domain.ErrLeaseLost cause when keep-alive gave up.
func Require(ctx context.Context) (domain.LeaseToken, error) {
	token, ok := FromContext(ctx)
	if !ok {
		return domain.LeaseToken{}, domain.ErrLeaseNotHeld
	}
	if cause := context.Cause(ctx); cause != nil {
		if errors.Is(cause, domain.ErrLeaseLost) {
			return domain.LeaseToken{}, cause
		}
		return domain.LeaseToken{}, fmt.Errorf("%w: scope ended: %v", domain.ErrLeaseNotHeld, cause)
	}
	return token, nil
}
