package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/strider/pkg/domain"
	"github.com/google/uuid"
)

// LeaseService implements ports.LeaseService in memory. At most one token is valid
// at a time. Safe for concurrent use.
type LeaseService struct {
	mu           sync.Mutex
	holder       string
	current      *domain.LeaseToken
	keepAliveErr error
	pings        int
}

// NewLeaseService creates a lease service that stamps tokens with holder.
func NewLeaseService(holder string) *LeaseService {
	return &LeaseService{holder: holder}
}

// Take hands out a new token, or fails with domain.ErrLeaseUnavailable while one is out.
func (l *LeaseService) Take(ctx context.Context) (domain.LeaseToken, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current != nil {
		return domain.LeaseToken{}, fmt.Errorf("%w: held by %s", domain.ErrLeaseUnavailable, l.current.Holder)
	}
	token := domain.LeaseToken{ID: uuid.NewString(), Holder: l.holder, AcquiredAt: time.Now()}
	l.current = &token
	return token, nil
}

// Return invalidates token.
func (l *LeaseService) Return(ctx context.Context, token domain.LeaseToken) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil || l.current.ID != token.ID {
		return fmt.Errorf("%w: %s", domain.ErrLeaseNotHeld, token.ID)
	}
	l.current = nil
	return nil
}

// KeepAlive renews token, or returns the error injected with FailKeepAlive.
func (l *LeaseService) KeepAlive(ctx context.Context, token domain.LeaseToken) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pings++
	if l.keepAliveErr != nil {
		return l.keepAliveErr
	}
	if l.current == nil || l.current.ID != token.ID {
		return fmt.Errorf("%w: %s", domain.ErrLeaseNotHeld, token.ID)
	}
	return nil
}

// FailKeepAlive makes subsequent pings fail with err. Pass nil to recover.
func (l *LeaseService) FailKeepAlive(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keepAliveErr = err
}

// Current returns the outstanding token, if any.
func (l *LeaseService) Current() (domain.LeaseToken, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil {
		return domain.LeaseToken{}, false
	}
	return *l.current, true
}

// Pings returns the number of keep-alive calls received.
func (l *LeaseService) Pings() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pings
}
