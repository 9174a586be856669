// internal/cache/redis_store.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "poolcache:"

type globalEnvelope struct {
	WrittenAt int64           `json:"written_at"`
	Items     json.RawMessage `json:"items"`
}

// RedisStore shares the pool cache between processes. Global lists carry
// their write time and also expire in redis after the default TTL.
type RedisStore struct {
	client     redis.Cmdable
	defaultTTL time.Duration
	now        func() time.Time
	logger     *zap.Logger
}

// NewRedisStore wraps an existing redis client.
func NewRedisStore(client redis.Cmdable, defaultTTL time.Duration, logger *zap.Logger) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client is nil")
	}
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &RedisStore{
		client:     client,
		defaultTTL: defaultTTL,
		now:        time.Now,
		logger:     logger.Named("pool-cache-redis"),
	}, nil
}

func pairRedisKey(namespace, pairKey string) string {
	return fmt.Sprintf("%s%s:pair:%s", keyPrefix, namespace, canonicalPairKey(pairKey))
}

func globalRedisKey(namespace string) string {
	return fmt.Sprintf("%s%s:global", keyPrefix, namespace)
}

func (s *RedisStore) ReadPair(ctx context.Context, namespace, pairKey string) (string, bool) {
	val, err := s.client.Get(ctx, pairRedisKey(namespace, pairKey)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("failed to read pair cache", zap.Error(err))
		}
		return "", false
	}
	var entry pairEntry
	if err := sonic.UnmarshalString(val, &entry); err != nil || entry.Address == "" {
		return "", false
	}
	return entry.Address, true
}

func (s *RedisStore) WritePair(ctx context.Context, namespace, pairKey, address string) {
	data, err := sonic.Marshal(pairEntry{Address: address})
	if err != nil {
		s.logger.Warn("failed to encode pair cache", zap.Error(err))
		return
	}
	if err := s.client.Set(ctx, pairRedisKey(namespace, pairKey), data, 0).Err(); err != nil {
		s.logger.Warn("failed to write pair cache", zap.Error(err))
	}
}

func (s *RedisStore) ReadGlobal(ctx context.Context, namespace string, ttl time.Duration, dst interface{}) bool {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	val, err := s.client.Get(ctx, globalRedisKey(namespace)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("failed to read global cache", zap.Error(err))
		}
		return false
	}

	var env globalEnvelope
	if err := sonic.Unmarshal(val, &env); err != nil {
		return false
	}
	if s.now().Sub(time.UnixMilli(env.WrittenAt)) >= ttl {
		return false
	}
	if err := sonic.Unmarshal(env.Items, dst); err != nil {
		return false
	}
	return true
}

func (s *RedisStore) WriteGlobal(ctx context.Context, namespace string, items interface{}) {
	raw, err := sonic.Marshal(items)
	if err != nil {
		s.logger.Warn("failed to encode global cache", zap.Error(err))
		return
	}
	data, err := sonic.Marshal(globalEnvelope{WrittenAt: s.now().UnixMilli(), Items: raw})
	if err != nil {
		s.logger.Warn("failed to encode global cache", zap.Error(err))
		return
	}
	if err := s.client.Set(ctx, globalRedisKey(namespace), data, s.defaultTTL).Err(); err != nil {
		s.logger.Warn("failed to write global cache", zap.Error(err))
	}
}

var _ Store = (*RedisStore)(nil)
