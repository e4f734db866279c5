package onedrive

import (
	"context"
	"sync"
)

// BatchResult 与输入按下标一一对应：Index 即提交顺序。
// DirectURL 与 Err 恰好有一个有值。
type BatchResult struct {
	Index  int
	Input  string
	Result Result
	Err    *ConvError
}

// ConvertAll 用有界并发转换一批链接，结果顺序与输入一致。
//
// 约定：
// - 单条失败只影响自身，不会中断整批
// - 批内不保证处理顺序，只保证结果按下标对位
// - ctx 取消会让仍在网络阶段的条目尽快失败返回
func (c *Converter) ConvertAll(ctx context.Context, urls []string, policy RedirectPolicy, concurrency int) []BatchResult {
	if concurrency <= 0 {
		concurrency = 4
	}

	results := make([]BatchResult, len(urls))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, raw := range urls {
		wg.Add(1)
		go func(i int, raw string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res := BatchResult{Index: i, Input: raw}
			r, err := c.Convert(ctx, raw, policy)
			if err != nil {
				res.Err = AsConvError(err)
			} else {
				res.Result = r
			}
			results[i] = res
		}(i, raw)
	}

	wg.Wait()
	return results
}
