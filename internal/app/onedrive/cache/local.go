package cache

import (
	"time"

	"github.com/dgraph-io/ristretto"
)

// LocalCache 基于 ristretto 的 L1 本地缓存（短链 -> 展开结果）。
type LocalCache struct {
	cache   *ristretto.Cache
	ttl     time.Duration
	noneTTL time.Duration
}

// NewLocalCache 创建本地缓存。
// maxItems: 最大条目数；maxCost: 最大内存占用（字节）。
// 本地 TTL 比 Redis 短，保证多实例间的结果尽快收敛。
func NewLocalCache(maxItems int64, maxCost int64) (*LocalCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxItems * 10, // 计数器数量，建议为 maxItems 的 10 倍
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &LocalCache{
		cache:   c,
		ttl:     5 * time.Minute,
		noneTTL: 10 * time.Second,
	}, nil
}

func (l *LocalCache) Get(short string) (string, bool) {
	if v, ok := l.cache.Get(short); ok {
		return v.(string), true
	}
	return "", false
}

func (l *LocalCache) Set(short, expanded string) {
	// cost=1 表示按条目数限制
	l.cache.SetWithTTL(short, expanded, 1, l.ttl)
}

func (l *LocalCache) SetNone(short string) {
	l.cache.SetWithTTL(short, NoExpansion, 1, l.noneTTL)
}

func (l *LocalCache) Del(short string) {
	l.cache.Del(short)
}

func (l *LocalCache) Close() {
	l.cache.Close()
}
