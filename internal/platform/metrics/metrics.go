package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// once 保证指标只注册一次：registry 不允许重复注册同名指标，否则 panic。
	once sync.Once

	// HTTPRequestsTotal 累计请求数（Counter）。
	//
	// labels：
	// - method：HTTP 方法
	// - route：路由模板（用 pattern 而不是真实 path，避免无限 label）
	// - status：HTTP 状态码字符串
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "HTTP请求的总数",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDurationSeconds 请求耗时分布（Histogram），用于算 P95/P99。
	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency distributions.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// HTTPInflightRequests 当前正在处理中的请求数（Gauge）。
	HTTPInflightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	// ConversionsTotal 按家族与结果统计转换次数。
	// outcome 是 "ok" 或错误 kind（枚举有限，不会产生高基数 label）。
	ConversionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onedrive_conversions_total",
			Help: "直链转换总数（按家族与结果分类）",
		},
		[]string{"family", "outcome"},
	)

	// ConversionDurationSeconds 转换耗时分布。
	// 个人版家族包含短链展开/重定向跟随的网络耗时，其余家族是纯改写。
	ConversionDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "onedrive_conversion_duration_seconds",
			Help:    "直链转换耗时分布",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"family"},
	)

	// CacheOperations 展开缓存的命中情况（layer: l1/l2，op: hit/miss/hit_negative）。
	CacheOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "展开缓存操作计数",
		},
		[]string{"layer", "op"},
	)
)

// Init 注册指标：只允许注册一次（否则 panic: duplicate metrics collector registration）
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDurationSeconds,
			HTTPInflightRequests,
			ConversionsTotal,
			ConversionDurationSeconds,
			CacheOperations,
		)
	})
}
