package service

import (
	"context"
	"strings"
	"sync"

	"github.com/go-redis/redis/v8"
)

// Dialogue speaker roles as consumed by the renderer.
const (
	RoleTutor    = "tutor"
	RoleLearner  = "learner"
	RoleNarrator = "narrator"
)

// ClassifySpeakerRole maps an AI-written speaker label to a role. Pure
// function: same label, same role, no hidden state.
func ClassifySpeakerRole(speaker string) string {
	s := strings.ToLower(strings.TrimSpace(speaker))
	switch {
	case s == "narrator" || s == "voiceover":
		return RoleNarrator
	case strings.Contains(s, "teacher") || strings.Contains(s, "tutor") ||
		strings.Contains(s, "instructor") || strings.Contains(s, "waiter") ||
		strings.Contains(s, "clerk") || strings.Contains(s, "agent"):
		return RoleTutor
	default:
		return RoleLearner
	}
}

// RoleStore is the injectable cache behind RoleCache. Read-mostly; a stale
// entry is harmless.
type RoleStore interface {
	Get(ctx context.Context, speaker string) (string, bool, error)
	Set(ctx context.Context, speaker, role string) error
	Clear(ctx context.Context) error
}

// RoleCache resolves speaker roles through the pure classifier with
// populate-on-miss caching. It replaces the module-level mutable map this
// logic grew out of: lifecycle is explicit and Clear is part of the API.
type RoleCache struct {
	Store RoleStore
}

func NewRoleCache(store RoleStore) *RoleCache {
	return &RoleCache{Store: store}
}

func (c *RoleCache) Resolve(ctx context.Context, speaker string) string {
	if role, ok, err := c.Store.Get(ctx, speaker); err == nil && ok {
		return role
	}
	role := ClassifySpeakerRole(speaker)
	// Best effort; classification is recomputable.
	_ = c.Store.Set(ctx, speaker, role)
	return role
}

func (c *RoleCache) Clear(ctx context.Context) error {
	return c.Store.Clear(ctx)
}

// MemoryRoleStore is the in-process store used by tests and single-node
// deployments.
type MemoryRoleStore struct {
	mu    sync.RWMutex
	roles map[string]string
}

func NewMemoryRoleStore() *MemoryRoleStore {
	return &MemoryRoleStore{roles: make(map[string]string)}
}

func (s *MemoryRoleStore) Get(ctx context.Context, speaker string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	role, ok := s.roles[speaker]
	return role, ok, nil
}

func (s *MemoryRoleStore) Set(ctx context.Context, speaker, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[speaker] = role
	return nil
}

func (s *MemoryRoleStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles = make(map[string]string)
	return nil
}

const roleCacheKey = "dialogue_speaker_roles"

// RedisRoleStore shares classifications across instances.
type RedisRoleStore struct {
	Redis *redis.Client
}

func NewRedisRoleStore(rdb *redis.Client) *RedisRoleStore {
	return &RedisRoleStore{Redis: rdb}
}

func (s *RedisRoleStore) Get(ctx context.Context, speaker string) (string, bool, error) {
	role, err := s.Redis.HGet(ctx, roleCacheKey, speaker).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return role, true, nil
}

func (s *RedisRoleStore) Set(ctx context.Context, speaker, role string) error {
	return s.Redis.HSet(ctx, roleCacheKey, speaker, role).Err()
}

func (s *RedisRoleStore) Clear(ctx context.Context) error {
	return s.Redis.Del(ctx, roleCacheKey).Err()
}
