// internal/cache/pool_cache.go
package cache

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// DefaultTTL is the freshness window of a global pool list.
const DefaultTTL = 5 * time.Minute

type pairEntry struct {
	Address string `json:"address"`
}

// PoolCache хранит найденные адреса пулов в JSON-файлах на диске.
// Файлы пишутся через временный файл и rename, поэтому читатель никогда не
// видит частично записанный JSON. Блокировок нет: последний писатель побеждает.
type PoolCache struct {
	dir        string
	defaultTTL time.Duration
	now        func() time.Time
	logger     *zap.Logger
}

// NewPoolCache creates a disk cache rooted at dir.
func NewPoolCache(dir string, defaultTTL time.Duration, logger *zap.Logger) *PoolCache {
	if dir == "" {
		dir = ".cache"
	}
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &PoolCache{
		dir:        dir,
		defaultTTL: defaultTTL,
		now:        time.Now,
		logger:     logger.Named("pool-cache"),
	}
}

func (pc *PoolCache) pairPath(namespace, pairKey string) string {
	return filepath.Join(pc.dir, sanitize(namespace)+"_pair_"+sanitize(canonicalPairKey(pairKey))+".json")
}

func (pc *PoolCache) globalPath(namespace string) string {
	return filepath.Join(pc.dir, sanitize(namespace)+"_global.json")
}

// ReadPair returns the cached pool address for a pair key in either order.
func (pc *PoolCache) ReadPair(_ context.Context, namespace, pairKey string) (string, bool) {
	path := pc.pairPath(namespace, pairKey)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			pc.logger.Warn("failed to read pair cache", zap.String("path", path), zap.Error(err))
		}
		return "", false
	}

	var entry pairEntry
	if err := sonic.Unmarshal(data, &entry); err != nil || entry.Address == "" {
		pc.logger.Debug("ignoring corrupt pair cache", zap.String("path", path), zap.Error(err))
		return "", false
	}
	return entry.Address, true
}

// WritePair stores the address; failures are logged and dropped.
func (pc *PoolCache) WritePair(_ context.Context, namespace, pairKey, address string) {
	data, err := sonic.Marshal(pairEntry{Address: address})
	if err != nil {
		pc.logger.Warn("failed to encode pair cache", zap.Error(err))
		return
	}
	pc.writeFile(pc.pairPath(namespace, pairKey), data)
}

// ReadGlobal decodes the venue pool list into dst when the file is younger than ttl.
// A non-positive ttl uses the cache default.
func (pc *PoolCache) ReadGlobal(_ context.Context, namespace string, ttl time.Duration, dst interface{}) bool {
	if ttl <= 0 {
		ttl = pc.defaultTTL
	}
	path := pc.globalPath(namespace)

	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if pc.now().Sub(info.ModTime()) >= ttl {
		pc.logger.Debug("global cache expired",
			zap.String("namespace", namespace),
			zap.Duration("age", pc.now().Sub(info.ModTime())))
		return false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		pc.logger.Warn("failed to read global cache", zap.String("path", path), zap.Error(err))
		return false
	}
	if trimmed := bytes.TrimLeft(data, " \t\r\n"); len(trimmed) == 0 || trimmed[0] != '[' {
		return false
	}
	if err := sonic.Unmarshal(data, dst); err != nil {
		pc.logger.Debug("ignoring corrupt global cache", zap.String("path", path), zap.Error(err))
		return false
	}
	return true
}

// WriteGlobal stores the venue pool list; items must encode as a JSON array.
func (pc *PoolCache) WriteGlobal(_ context.Context, namespace string, items interface{}) {
	data, err := sonic.Marshal(items)
	if err != nil {
		pc.logger.Warn("failed to encode global cache", zap.Error(err))
		return
	}
	pc.writeFile(pc.globalPath(namespace), data)
}

func (pc *PoolCache) writeFile(path string, data []byte) {
	if err := os.MkdirAll(pc.dir, 0o755); err != nil {
		pc.logger.Warn("failed to create cache dir", zap.String("dir", pc.dir), zap.Error(err))
		return
	}

	tmp, err := os.CreateTemp(pc.dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		pc.logger.Warn("failed to create temp cache file", zap.Error(err))
		return
	}
	tmpName := tmp.Name()

	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		_ = os.Remove(tmpName)
		pc.logger.Warn("failed to write cache file",
			zap.String("path", path),
			zap.NamedError("write", werr),
			zap.NamedError("close", cerr))
		return
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		pc.logger.Warn("failed to replace cache file", zap.String("path", path), zap.Error(err))
	}
}

// sanitize keeps file names inside the cache directory.
func sanitize(s string) string {
	return strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(s)
}

var _ Store = (*PoolCache)(nil)
