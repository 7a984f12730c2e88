package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vindennt/quick-little-shop/internal/models"
)

// ErrNoSession is returned by a TokenStore when a browser has no session.
var ErrNoSession = errors.New("no session")

const tokenKeyPrefix = "shop:session:"

// DefaultTokenTTL bounds how long an idle browser keeps its session.
const DefaultTokenTTL = 7 * 24 * time.Hour

// TokenStore keeps each browser's backend session server side. Only the
// browser id travels in the cookie.
type TokenStore interface {
	Get(ctx context.Context, sid string) (*models.Session, error)
	Save(ctx context.Context, sid string, s *models.Session) error
	Delete(ctx context.Context, sid string) error
}

// MemoryStore is a process-local TokenStore.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]models.Session)}
}

func (m *MemoryStore) Get(ctx context.Context, sid string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sid]
	if !ok {
		return nil, ErrNoSession
	}
	return &s, nil
}

func (m *MemoryStore) Save(ctx context.Context, sid string, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sid] = *s
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sid)
	return nil
}

// RedisStore keeps sessions as JSON under "shop:session:<sid>".
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// NewRedisClient parses a redis:// URL or a bare host:port.
func NewRedisClient(addr string) (*redis.Client, error) {
	opts := &redis.Options{Addr: addr}
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		opts = parsed
	}
	return redis.NewClient(opts), nil
}

func (r *RedisStore) Get(ctx context.Context, sid string) (*models.Session, error) {
	data, err := r.client.Get(ctx, tokenKeyPrefix+sid).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("get session from redis: %w", err)
	}

	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, sid string, s *models.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, tokenKeyPrefix+sid, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("set session in redis: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, sid string) error {
	if err := r.client.Del(ctx, tokenKeyPrefix+sid).Err(); err != nil {
		return fmt.Errorf("delete session from redis: %w", err)
	}
	return nil
}
