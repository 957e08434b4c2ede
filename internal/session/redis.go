package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "session:"

// RedisStore shares the resolve cache between replicas.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, token string) (Session, bool) {
	raw, err := s.client.Get(ctx, redisPrefix+token).Result()
	if err != nil {
		return Anonymous, false
	}
	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return Anonymous, false
	}
	return sess, true
}

func (s *RedisStore) Set(ctx context.Context, token string, sess Session, ttl time.Duration) {
	b, err := json.Marshal(sess)
	if err != nil {
		return
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	_ = s.client.Set(ctx, redisPrefix+token, b, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, token string) {
	_ = s.client.Del(ctx, redisPrefix+token).Err()
}

var _ Store = (*RedisStore)(nil)
