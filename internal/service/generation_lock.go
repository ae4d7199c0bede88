package service

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// GenerationLock enforces single-flight per lesson: at most one plan
// generation may mint a batch for a lesson at a time. Two batches racing on
// the same millisecond clock could otherwise mint colliding ids.
type GenerationLock interface {
	// Acquire returns false without blocking when another generation holds
	// the lesson.
	Acquire(ctx context.Context, lessonID string) (bool, error)
	Release(ctx context.Context, lessonID string) error
}

const generationLockKeyPrefix = "lesson_generation_lock:"

// RedisGenerationLock is the deployment lock: SETNX with a TTL so a crashed
// generation cannot hold a lesson forever.
type RedisGenerationLock struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewRedisGenerationLock(rdb *redis.Client, ttl time.Duration) *RedisGenerationLock {
	return &RedisGenerationLock{Redis: rdb, TTL: ttl}
}

func (l *RedisGenerationLock) Acquire(ctx context.Context, lessonID string) (bool, error) {
	return l.Redis.SetNX(ctx, generationLockKeyPrefix+lessonID, 1, l.TTL).Result()
}

func (l *RedisGenerationLock) Release(ctx context.Context, lessonID string) error {
	return l.Redis.Del(ctx, generationLockKeyPrefix+lessonID).Err()
}

// MemoryGenerationLock backs single-process deployments and the test suite.
type MemoryGenerationLock struct {
	mu     sync.Mutex
	locked map[string]bool
}

func NewMemoryGenerationLock() *MemoryGenerationLock {
	return &MemoryGenerationLock{locked: make(map[string]bool)}
}

func (l *MemoryGenerationLock) Acquire(ctx context.Context, lessonID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locked[lessonID] {
		return false, nil
	}
	l.locked[lessonID] = true
	return true, nil
}

func (l *MemoryGenerationLock) Release(ctx context.Context, lessonID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locked, lessonID)
	return nil
}
