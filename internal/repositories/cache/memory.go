package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sumitpay/internal/utils/crypto"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLocker is the single-process Locker used when Redis is not
// configured. Each lease stores an owner value; release only removes the
// key while it still holds that value.
type MemoryLocker struct {
	mu    sync.Mutex
	store *gocache.Cache
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{store: gocache.New(5*time.Minute, 10*time.Minute)}
}

func (l *MemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (func(), bool, error) {
	owner, err := crypto.GenerateSecureCode()
	if err != nil {
		return nil, false, fmt.Errorf("failed to generate lock owner: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.store.Add(key, owner, ttl); err != nil {
		return nil, false, nil
	}
	return func() { l.release(key, owner) }, true, nil
}

func (l *MemoryLocker) release(key, owner string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if current, found := l.store.Get(key); found && current == owner {
		l.store.Delete(key)
	}
}
