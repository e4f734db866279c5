package history

import (
	"strconv"
	"testing"
)

// 测试加入过的 ID 一定命中
func TestBloomFilterNoFalseNegative(t *testing.T) {
	b := NewBloomFilter(1000, 0.01)
	for i := 0; i < 500; i++ {
		b.Add("pid" + strconv.Itoa(i))
	}
	for i := 0; i < 500; i++ {
		if !b.MightExist("pid" + strconv.Itoa(i)) {
			t.Fatalf("added id pid%d reported as absent", i)
		}
	}
}

// 测试未加入的 ID 大多数被挡掉（误判率约 1%）
func TestBloomFilterFalsePositiveRate(t *testing.T) {
	b := NewBloomFilter(1000, 0.01)
	for i := 0; i < 1000; i++ {
		b.Add("known" + strconv.Itoa(i))
	}

	hits := 0
	const probes = 10000
	for i := 0; i < probes; i++ {
		if b.MightExist("unknown" + strconv.Itoa(i)) {
			hits++
		}
	}
	// 给 1% 的目标误判率留 5 倍余量，避免测试偶发红
	if hits > probes/20 {
		t.Errorf("false positive rate too high: %d/%d", hits, probes)
	}
}

// 测试并发读写安全
func TestBloomFilterConcurrent(t *testing.T) {
	b := NewBloomFilter(10000, 0.01)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			b.Add("c" + strconv.Itoa(i))
		}
		close(done)
	}()
	for i := 0; i < 1000; i++ {
		b.MightExist("c" + strconv.Itoa(i))
	}
	<-done
	if b.Count() == 0 {
		t.Error("count should be positive after adds")
	}
}
