// Package lock provides named single-flight domains. Concurrent callers for the
// same key share one in-flight call; each domain caps the number of callers that
// may wait and how long any of them waits.
package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"git.home.luguber.info/inful/notionblog/internal/foundation/errors"
)

const (
	DomainPosts    = "posts"
	DomainDatabase = "database"
)

// Sentinels for errors.Is. Returned errors carry domain and key context.
var (
	ErrQueueFull   = errors.LockError("lock queue full").Build()
	ErrHoldTimeout = errors.LockError("lock hold timeout exceeded").Build()
)

// Domain is one named single-flight guard.
type Domain struct {
	name      string
	queueSize int
	maxHold   time.Duration
	group     singleflight.Group
	waiting   atomic.Int64
}

// NewDomain creates a domain. queueSize <= 0 disables the waiter cap and
// maxHold <= 0 disables the hold timeout.
func NewDomain(name string, queueSize int, maxHold time.Duration) *Domain {
	return &Domain{name: name, queueSize: queueSize, maxHold: maxHold}
}

// Name returns the domain name.
func (d *Domain) Name() string { return d.name }

// Waiting returns the number of callers currently inside Do.
func (d *Domain) Waiting() int { return int(d.waiting.Load()) }

// Do runs fn once per key among concurrent callers. fn runs on a context that is
// never canceled, so an abandoned waiter does not abort the shared call. A caller
// gives up with ErrQueueFull when the domain is saturated, or ErrHoldTimeout when
// the shared call outlives maxHold; both affect only that caller. After a hold
// timeout the stuck call is detached from key and later callers start over.
func (d *Domain) Do(ctx context.Context, key string, fn func(ctx context.Context) (any, error)) (any, error) {
	n := d.waiting.Add(1)
	defer d.waiting.Add(-1)
	if d.queueSize > 0 && n > int64(d.queueSize) {
		return nil, d.fail("lock queue full", key).WithContext("queue_size", d.queueSize).Build()
	}

	detached := context.WithoutCancel(ctx)
	ch := d.group.DoChan(key, func() (any, error) {
		return fn(detached)
	})

	var timeout <-chan time.Time
	if d.maxHold > 0 {
		t := time.NewTimer(d.maxHold)
		defer t.Stop()
		timeout = t.C
	}

	select {
	case r := <-ch:
		return r.Val, r.Err
	case <-timeout:
		d.Forget(key)
		return nil, d.fail("lock hold timeout exceeded", key).WithContext("max_hold", d.maxHold.String()).Build()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Forget drops an in-flight key so the next caller starts a fresh call. Do
// forgets a key whose call exceeded maxHold.
func (d *Domain) Forget(key string) { d.group.Forget(key) }

func (d *Domain) fail(msg, key string) *errors.ErrorBuilder {
	return errors.LockError(msg).WithContext("domain", d.name).WithContext("key", key)
}

// Run is a typed wrapper over Domain.Do.
func Run[T any](ctx context.Context, d *Domain, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	v, err := d.Do(ctx, key, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Set hands out domains by name, creating them on first use with shared limits.
type Set struct {
	queueSize int
	maxHold   time.Duration

	mu      sync.Mutex
	domains map[string]*Domain
}

// NewSet returns an empty Set whose domains use the given limits.
func NewSet(queueSize int, maxHold time.Duration) *Set {
	return &Set{queueSize: queueSize, maxHold: maxHold, domains: make(map[string]*Domain)}
}

// Domain returns the named domain.
func (s *Set) Domain(name string) *Domain {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.domains[name]
	if !ok {
		d = NewDomain(name, s.queueSize, s.maxHold)
		s.domains[name] = d
	}
	return d
}
