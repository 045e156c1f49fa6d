package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Store persists profiles by the user's contact so they outlive a session.
// Load of an unknown key returns an empty profile and no error.
type Store interface {
	Load(ctx context.Context, key string) (Profile, error)
	Save(ctx context.Context, key string, p Profile) error
	Delete(ctx context.Context, key string) error
}

// InMemoryStore is a process-local Store
type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewInMemoryStore creates an empty store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{profiles: make(map[string]Profile)}
}

// Load implements Store
func (s *InMemoryStore) Load(_ context.Context, key string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.profiles[key]; ok {
		return p.clone(), nil
	}
	return Profile{}, nil
}

// Save implements Store
func (s *InMemoryStore) Save(_ context.Context, key string, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[key] = p.clone()
	return nil
}

// Delete implements Store
func (s *InMemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, key)
	return nil
}

// RedisStore keeps profiles as JSON under profile:<key>
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient parses url and verifies the connection
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolTimeout = 4 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// NewRedisStore creates a store. A zero ttl keeps profiles forever.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func profileKey(key string) string {
	return fmt.Sprintf("profile:%s", key)
}

// Load implements Store
func (s *RedisStore) Load(ctx context.Context, key string) (Profile, error) {
	redisKey := profileKey(key)

	data, err := s.client.Get(ctx, redisKey).Result()
	if err == redis.Nil {
		return Profile{}, nil
	} else if err != nil {
		return Profile{}, fmt.Errorf("redis get failed: %w", err)
	}

	var p Profile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		// drop corrupt data so the next save starts clean
		s.client.Del(ctx, redisKey)
		return Profile{}, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return p, nil
}

// Save implements Store
func (s *RedisStore) Save(ctx context.Context, key string, p Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	return s.client.Set(ctx, profileKey(key), data, s.ttl).Err()
}

// Delete implements Store
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, profileKey(key)).Err()
}
