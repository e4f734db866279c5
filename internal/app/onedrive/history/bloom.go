package history

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// BloomFilter 记录所有已发放的公开 ID，挡掉对不存在记录的查库。
// 返回 false 表示一定不存在；返回 true 表示可能存在（有误判率）。
type BloomFilter struct {
	filter *bloom.BloomFilter
	mu     sync.RWMutex
}

// NewBloomFilter 创建布隆过滤器。
// expectedItems: 预期记录数；falsePositiveRate: 误判率（建议 0.01）。
func NewBloomFilter(expectedItems uint, falsePositiveRate float64) *BloomFilter {
	return &BloomFilter{
		filter: bloom.NewWithEstimates(expectedItems, falsePositiveRate),
	}
}

func (b *BloomFilter) Add(publicID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter.AddString(publicID)
}

func (b *BloomFilter) MightExist(publicID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.filter.TestString(publicID)
}

// Count 返回已添加的元素数量（估算）。
func (b *BloomFilter) Count() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.filter.ApproximatedSize()
}
