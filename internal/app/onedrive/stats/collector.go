package stats

import "time"

// ConversionEvent 是一次转换的统计事件。
type ConversionEvent struct {
	Family      string    `json:"family"`  // personal / commercial / tenant_cn / ""
	Outcome     string    `json:"outcome"` // "ok" 或错误 kind
	Source      string    `json:"source"`  // api / batch
	DurationMS  int64     `json:"duration_ms"`
	IP          string    `json:"ip"`
	UserAgent   string    `json:"user_agent"`
	ConvertedAt time.Time `json:"converted_at"`
}

// Collector 收集器接口（方便在 Channel 与 Kafka 之间切换）。
// 统计是尽力而为：丢事件可以接受，阻塞请求不可以。
type Collector interface {
	Collect(event ConversionEvent)
	Close()
}

// ChannelCollector 基于 channel 的进程内收集器。
type ChannelCollector struct {
	ch     chan ConversionEvent
	closed bool
}

func NewChannelCollector(bufferSize int) *ChannelCollector {
	return &ChannelCollector{
		ch: make(chan ConversionEvent, bufferSize),
	}
}

func (c *ChannelCollector) Collect(event ConversionEvent) {
	if c.closed {
		return
	}
	select {
	case c.ch <- event:
	default:
		// 通道满了，丢弃
	}
}

func (c *ChannelCollector) Events() <-chan ConversionEvent {
	return c.ch
}

func (c *ChannelCollector) Close() {
	c.closed = true
	close(c.ch)
}
