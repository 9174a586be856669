// internal/cache/store.go
package cache

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-trade-core/internal/config"
	"github.com/rovshanmuradov/solana-trade-core/internal/types"
)

// Store is the pool discovery cache. Pair entries never expire; the global
// pool list of a venue expires after a TTL. Implementations swallow I/O
// errors: a failed read is a miss and a failed write is logged and dropped.
type Store interface {
	ReadPair(ctx context.Context, namespace, pairKey string) (string, bool)
	WritePair(ctx context.Context, namespace, pairKey, address string)
	ReadGlobal(ctx context.Context, namespace string, ttl time.Duration, dst interface{}) bool
	WriteGlobal(ctx context.Context, namespace string, items interface{})
}

const pairSeparator = "-"

// PairKey builds the order-independent key for two mints.
func PairKey(mintA, mintB string) string {
	pair := []string{mintA, mintB}
	sort.Strings(pair)
	return strings.Join(pair, pairSeparator)
}

// MarketNamespace is the pair namespace of a venue's resolved pools.
func MarketNamespace(market types.Market) string {
	return strings.ToLower(market.String())
}

// canonicalPairKey re-sorts a key that was built by hand in either order.
func canonicalPairKey(key string) string {
	parts := strings.Split(key, pairSeparator)
	if len(parts) != 2 {
		return key
	}
	return PairKey(parts[0], parts[1])
}

// New returns the redis store when cfg.RedisURL is set, the disk store otherwise.
func New(cfg *config.Config, logger *zap.Logger) (Store, error) {
	if cfg.RedisURL == "" {
		return NewPoolCache(cfg.CacheDir, cfg.PairsCacheTTL(), logger), nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return NewRedisStore(redis.NewClient(opts), cfg.PairsCacheTTL(), logger)
}
