package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/strider/pkg/domain"
	"github.com/aretw0/strider/pkg/ports"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

const (
	// compare-and-pexpire: renew only our own claim.
	renewScript = `
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("pexpire", KEYS[1], ARGV[2])
		else
			return 0
		end
	`
	// compare-and-del: release only our own claim.
	releaseScript = `
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`
)

// Arbiter implements ports.LeaseService by decorating a robot's lease service with a
// Redis claim, so operator processes on different hosts cannot hold the robot at once.
//
// The claim is a SET NX PX key whose TTL is renewed on every keep-alive. A claim that
// is not renewed expires on its own, so a crashed process never blocks the robot for
// longer than the TTL.
type Arbiter struct {
	inner  ports.LeaseService
	client *backend.Client
	key    string
	owner  string
	ttl    time.Duration

	mu     sync.Mutex
	claims map[string]string
}

type Option func(*Arbiter)

// WithTTL sets how long a claim survives without a keep-alive.
func WithTTL(ttl time.Duration) Option {
	return func(a *Arbiter) {
		a.ttl = ttl
	}
}

// WithKey sets the claim key. Use one key per robot.
func WithKey(key string) Option {
	return func(a *Arbiter) {
		a.key = key
	}
}

// WithOwner sets the name recorded in the claim, reported to contenders.
func WithOwner(owner string) Option {
	return func(a *Arbiter) {
		a.owner = owner
	}
}

// New creates a new Redis arbiter with options.
func New(address, password string, db int, inner ports.LeaseService, opts ...Option) *Arbiter {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, inner, opts...)
}

// NewFromClient creates a new Redis arbiter from an existing client.
func NewFromClient(client *backend.Client, inner ports.LeaseService, opts ...Option) *Arbiter {
	a := &Arbiter{
		inner:  inner,
		client: client,
		key:    "strider:lease:default",
		owner:  "strider",
		ttl:    10 * time.Second,
		claims: make(map[string]string),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Take claims the key, then takes the robot lease. A live claim held by anyone else
// fails fast with domain.ErrLeaseUnavailable.
func (a *Arbiter) Take(ctx context.Context) (domain.LeaseToken, error) {
	claim := a.owner + "/" + uuid.NewString()
	ok, err := a.client.SetNX(ctx, a.key, claim, a.ttl).Result()
	if err != nil {
		return domain.LeaseToken{}, fmt.Errorf("redis error claiming lease: %w", err)
	}
	if !ok {
		holder, _ := a.client.Get(ctx, a.key).Result()
		owner, _, _ := strings.Cut(holder, "/")
		return domain.LeaseToken{}, fmt.Errorf("%w: claimed by %s", domain.ErrLeaseUnavailable, owner)
	}

	token, err := a.inner.Take(ctx)
	if err != nil {
		// Give the claim back so the next contender is not locked out for a full TTL.
		if relErr := a.client.Eval(context.WithoutCancel(ctx), releaseScript, []string{a.key}, claim).Err(); relErr != nil {
			err = errors.Join(err, fmt.Errorf("redis error dropping claim: %w", relErr))
		}
		return domain.LeaseToken{}, err
	}

	a.mu.Lock()
	a.claims[token.ID] = claim
	a.mu.Unlock()
	return token, nil
}

func (a *Arbiter) claim(token domain.LeaseToken) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.claims[token.ID]
	return c, ok
}

// KeepAlive renews the robot lease and extends the claim TTL. A claim that expired or
// was taken over returns domain.ErrLeaseNotHeld.
func (a *Arbiter) KeepAlive(ctx context.Context, token domain.LeaseToken) error {
	claim, ok := a.claim(token)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrLeaseNotHeld, token.ID)
	}
	if err := a.inner.KeepAlive(ctx, token); err != nil {
		return err
	}
	n, err := a.client.Eval(ctx, renewScript, []string{a.key}, claim, a.ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("redis error renewing claim: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: claim on %s expired", domain.ErrLeaseNotHeld, a.key)
	}
	return nil
}

// Return drops the claim and returns the robot lease.
func (a *Arbiter) Return(ctx context.Context, token domain.LeaseToken) error {
	a.mu.Lock()
	claim, ok := a.claims[token.ID]
	delete(a.claims, token.ID)
	a.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrLeaseNotHeld, token.ID)
	}

	var errs []error
	if err := a.client.Eval(ctx, releaseScript, []string{a.key}, claim).Err(); err != nil {
		errs = append(errs, fmt.Errorf("redis error dropping claim: %w", err))
	}
	if err := a.inner.Return(ctx, token); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
