package httpmiddleware

import (
	"github.com/634287319/onedrive-direct-link/gee"
	"go.opentelemetry.io/otel/trace"
)

// TraceName 把 otelhttp 外层 span 的名字改成 "方法 路由模板"，
// 否则所有请求都叫同一个名字，没法按接口聚合。
func TraceName() gee.HandlerFunc {
	return func(ctx *gee.Context) {
		span := trace.SpanFromContext(ctx.Req.Context())
		span.SetName(ctx.Method + " " + ctx.RoutePattern)
		ctx.Next()
	}
}
