// Package lockpkg provides expiring mutual exclusion locks shared between
// processes.
package lockpkg

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired indicates that the lock is held by someone else.
var ErrNotAcquired = errors.New("lock is held by another owner")

// Locker acquires named locks that expire after ttl unless released.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (*Lock, error)
}

// Lock is a held lock.
type Lock struct {
	Key     string
	token   string
	release func(ctx context.Context, key, token string) error
}

// Release frees the lock if it is still held by this owner.
func (l *Lock) Release(ctx context.Context) error {
	return l.release(ctx, l.Key, l.token)
}

// RedisLocker keeps locks in Redis so they are shared by every instance.
type RedisLocker struct {
	client *redis.Client
	prefix string
}

// NewRedisLocker returns RedisLocker that namespaces keys with prefix.
func NewRedisLocker(client *redis.Client, prefix string) *RedisLocker {
	return &RedisLocker{client: client, prefix: prefix}
}

// releaseScript deletes the key only when it still holds our token, so an
// expired lock taken over by another owner is left alone.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Acquire takes the lock with SET NX PX.
func (r *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (*Lock, error) {
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, r.prefix+key, token, ttl).Result()
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, ErrNotAcquired
	}

	return &Lock{Key: key, token: token, release: r.release}, nil
}

func (r *RedisLocker) release(ctx context.Context, key, token string) error {
	err := releaseScript.Run(ctx, r.client, []string{r.prefix + key}, token).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}

	return err
}

// MemoryLocker keeps locks in process memory. It only excludes callers
// within the same process.
type MemoryLocker struct {
	mu    sync.Mutex
	now   func() time.Time
	locks map[string]memoryEntry
}

type memoryEntry struct {
	token   string
	expires time.Time
}

// NewMemoryLocker returns MemoryLocker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		now:   time.Now,
		locks: map[string]memoryEntry{},
	}
}

// Acquire takes the lock unless it is held and not yet expired.
func (m *MemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (*Lock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()

	if e, ok := m.locks[key]; ok && now.Before(e.expires) {
		return nil, ErrNotAcquired
	}

	token := uuid.NewString()
	m.locks[key] = memoryEntry{token: token, expires: now.Add(ttl)}

	return &Lock{Key: key, token: token, release: m.release}, nil
}

func (m *MemoryLocker) release(_ context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.locks[key]; ok && e.token == token {
		delete(m.locks, key)
	}

	return nil
}
