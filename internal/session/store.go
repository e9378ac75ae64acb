package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store keeps the server-side half of a session: sid -> owning user id.
// A session token whose sid is absent here is dead, regardless of expiry.
type Store interface {
	Put(ctx context.Context, sid, userID string, ttl time.Duration) error
	Get(ctx context.Context, sid string) (string, bool, error)
	Delete(ctx context.Context, sid string) error
}

type RedisStore struct {
	rdb *redis.Client
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisStore(cfg RedisConfig) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &RedisStore{rdb: rdb}
}

func key(sid string) string {
	return "session:" + sid
}

func (s *RedisStore) Put(ctx context.Context, sid, userID string, ttl time.Duration) error {
	return s.rdb.Set(ctx, key(sid), userID, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, sid string) (string, bool, error) {
	userID, err := s.rdb.Get(ctx, key(sid)).Result()

	if err == redis.Nil {
		return "", false, nil
	}

	if err != nil {
		return "", false, err
	}

	return userID, true, nil
}

func (s *RedisStore) Delete(ctx context.Context, sid string) error {
	return s.rdb.Del(ctx, key(sid)).Err()
}

// Ping checks redis connectivity, for readiness probes.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
