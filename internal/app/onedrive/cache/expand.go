package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/634287319/onedrive-direct-link/internal/platform/metrics"
	"github.com/redis/go-redis/v9"
)

// NoExpansion 是"短链展开失败"的负缓存哨兵值。
// 不要用 "" 作哨兵：会把"未命中"和"命中失败记录"混为一谈。
const NoExpansion = "__none__"

// ExpandCache 是展开结果的两级缓存：L1 本地 ristretto，L2 Redis。
//
// 约定（对应整体设计里的缓存纪律）：
// - key 永远是短链原文，不是展开结果
// - 缓存只是加速：miss 时照常走网络并受同一套超时策略约束
// - 负缓存 TTL 很短，只为挡住对已失效短链的反复请求
type ExpandCache struct {
	client  *redis.Client
	local   *LocalCache
	ttl     time.Duration
	noneTTL time.Duration
}

func NewExpandCache(client *redis.Client, local *LocalCache) *ExpandCache {
	return &ExpandCache{
		client:  client,
		local:   local,
		ttl:     time.Hour,
		noneTTL: 30 * time.Second,
	}
}

func (c *ExpandCache) Get(ctx context.Context, short string) (string, error) {
	// L1
	if c.local != nil {
		if v, ok := c.local.Get(short); ok {
			if v == NoExpansion {
				metrics.CacheOperations.WithLabelValues("l1", "hit_negative").Inc()
			} else {
				metrics.CacheOperations.WithLabelValues("l1", "hit").Inc()
			}
			return v, nil
		}
	}

	// L2
	key := "od:exp:" + short
	res, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		metrics.CacheOperations.WithLabelValues("l2", "miss").Inc()
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if res == NoExpansion {
		metrics.CacheOperations.WithLabelValues("l2", "hit_negative").Inc()
	} else {
		metrics.CacheOperations.WithLabelValues("l2", "hit").Inc()
	}

	// 回填 L1
	if c.local != nil {
		if res == NoExpansion {
			c.local.SetNone(short)
		} else {
			c.local.Set(short, res)
		}
	}
	return res, nil
}

func (c *ExpandCache) Set(ctx context.Context, short, expanded string) {
	if c.local != nil {
		c.local.Set(short, expanded)
	}
	if err := c.client.Set(ctx, "od:exp:"+short, expanded, c.ttl).Err(); err != nil {
		slog.Debug("展开缓存写入失败", "err", err)
	}
}

func (c *ExpandCache) SetNone(ctx context.Context, short string) {
	if c.local != nil {
		c.local.SetNone(short)
	}
	if err := c.client.Set(ctx, "od:exp:"+short, NoExpansion, c.noneTTL).Err(); err != nil {
		slog.Debug("展开负缓存写入失败", "err", err)
	}
}

func (c *ExpandCache) Del(ctx context.Context, short string) {
	if c.local != nil {
		c.local.Del(short)
	}
	if err := c.client.Del(ctx, "od:exp:"+short).Err(); err != nil {
		slog.Debug("展开缓存删除失败", "err", err)
	}
}

func (c *ExpandCache) Close() {
	if c.local != nil {
		c.local.Close()
		slog.Info("本地展开缓存已关闭")
	}
}
