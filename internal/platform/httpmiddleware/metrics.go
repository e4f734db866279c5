package httpmiddleware

import (
	"strconv"
	"time"

	"github.com/634287319/onedrive-direct-link/gee"
	"github.com/634287319/onedrive-direct-link/internal/platform/metrics"
)

// Metrics 记录请求量、时延分布与 in-flight 数。
// label 用路由模板；没匹配到路由的请求归到 UNMATCHED，避免 label 爆炸。
func Metrics() gee.HandlerFunc {
	return func(ctx *gee.Context) {
		start := time.Now()
		metrics.HTTPInflightRequests.Inc()

		ctx.Next()

		metrics.HTTPInflightRequests.Dec()
		route := ctx.RoutePattern
		if route == "" {
			route = "UNMATCHED"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(ctx.Method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
		metrics.HTTPRequestDurationSeconds.WithLabelValues(ctx.Method, route).Observe(time.Since(start).Seconds())
	}
}
