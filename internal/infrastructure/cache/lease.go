package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RunLease guards against two pipeline runs advancing the same meeting at
// once. Acquire is best-effort: infrastructure failures report the lease as
// acquired so a broken Redis never blocks processing.
type RunLease interface {
	// Acquire claims the meeting for ttl. Returns false when another run
	// already holds the lease.
	Acquire(ctx context.Context, meetingID uuid.UUID, ttl time.Duration) (bool, error)

	// Release frees the lease early when a run finishes before the TTL
	Release(ctx context.Context, meetingID uuid.UUID) error
}

const leasePrefix = "meeting-scribe:run-lease:"

// RedisLease implements RunLease on Redis SETNX, so the lease holds across
// multiple API replicas.
type RedisLease struct {
	client *redis.Client
}

// NewRedisLease creates a Redis-backed run lease
func NewRedisLease(client *redis.Client) *RedisLease {
	return &RedisLease{client: client}
}

func (l *RedisLease) Acquire(ctx context.Context, meetingID uuid.UUID, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, leasePrefix+meetingID.String(), time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return true, err
	}
	return ok, nil
}

func (l *RedisLease) Release(ctx context.Context, meetingID uuid.UUID) error {
	return l.client.Del(ctx, leasePrefix+meetingID.String()).Err()
}

// MemoryLease implements RunLease in process memory. It is the fallback when
// no Redis host is configured and only protects a single-instance deployment.
type MemoryLease struct {
	mu     sync.Mutex
	leases map[uuid.UUID]time.Time // meeting -> lease expiry
}

// NewMemoryLease creates an in-process run lease
func NewMemoryLease() *MemoryLease {
	return &MemoryLease{leases: make(map[uuid.UUID]time.Time)}
}

func (l *MemoryLease) Acquire(ctx context.Context, meetingID uuid.UUID, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if expiry, held := l.leases[meetingID]; held && now.Before(expiry) {
		return false, nil
	}
	l.leases[meetingID] = now.Add(ttl)
	return true, nil
}

func (l *MemoryLease) Release(ctx context.Context, meetingID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.leases, meetingID)
	return nil
}
