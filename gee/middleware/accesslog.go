package middleware

import (
	"log/slog"
	"time"

	"github.com/634287319/onedrive-direct-link/gee"
)

// AccessLog 每个请求出一条结构化访问日志。
// route 记路由模板而不是真实 path，和 metrics 的 label 口径一致。
func AccessLog() gee.HandlerFunc {
	return func(ctx *gee.Context) {
		start := time.Now()

		ctx.Next()

		slog.Info("access",
			"request_id", ctx.Req.Header.Get("X-Request-ID"),
			"method", ctx.Method,
			"path", ctx.Path,
			"route", ctx.RoutePattern,
			"status", ctx.Writer.Status(),
			"bytes", ctx.Writer.Size(),
			"latency_ms", time.Since(start).Milliseconds())
	}
}
