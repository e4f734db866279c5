package httpapi

import (
	"net/http"
	"time"

	"github.com/634287319/onedrive-direct-link/gee"
	"github.com/634287319/onedrive-direct-link/internal/app/onedrive"
	"github.com/634287319/onedrive-direct-link/internal/app/onedrive/history"
	"github.com/634287319/onedrive-direct-link/internal/app/onedrive/stats"
	"github.com/634287319/onedrive-direct-link/internal/platform/auth"
	"github.com/634287319/onedrive-direct-link/internal/platform/httpmiddleware"
	"github.com/634287319/onedrive-direct-link/internal/platform/ratelimit"
)

// Deps 是挂载路由需要的全部依赖，由 cmd/api 组装后传入。
//
// History 可为 nil（配置关闭时），相关路由不会注册。
type Deps struct {
	Converter *onedrive.Converter
	// Policy 是服务端默认解析策略，单次请求可覆盖 follow 开关。
	Policy    onedrive.RedirectPolicy
	History   *history.Repo
	Collector stats.Collector
	Tokens    auth.TokenService
	Limiter   *ratelimit.Limiter
	// AdminPasswordHash 为空时管理员登录返回 503。
	AdminPasswordHash string
}

// RegisterAPIRoutes 在给定分组（例如 /api/v1）下挂载转换 API 路由。
//
// 约定：本包只做传输层工作；领域逻辑在 internal/app/onedrive。
//
// 设计原因：
// - cmd/api 只负责组装和挂载，路由由业务模块自己提供，避免散落在 main.go
// - 转换接口可能触发出站请求（短链展开），必须限流
func RegisterAPIRoutes(api *gee.RouterGroup, deps Deps) {
	api.Use(httpmiddleware.AuthOptional(deps.Tokens))

	// 单条转换 30次/分钟，批量 5次/分钟（批量一次最多 20 条）
	api.POST("/convert", httpmiddleware.RateLimit(deps.Limiter, "convert", 30, time.Minute), NewConvertHandler(deps))
	api.POST("/convert/batch", httpmiddleware.RateLimit(deps.Limiter, "convert_batch", 5, time.Minute), NewConvertBatchHandler(deps))

	// 管理员登录 5次/分钟
	api.POST("/login", httpmiddleware.RateLimit(deps.Limiter, "login", 5, time.Minute), NewAdminLoginHandler(deps.AdminPasswordHash, deps.Tokens))

	if deps.History != nil {
		hist := api.Group("/history")
		hist.GET("", NewHistoryListHandler(deps.History))
		hist.POST("", NewHistorySaveHandler(deps.History))
		hist.GET("/:id", NewHistoryGetHandler(deps.History))
		hist.DELETE("/:id", NewHistoryDeleteHandler(deps.History))
	}

	admin := api.Group("/admin")
	admin.Use(httpmiddleware.AuthRequired(deps.Tokens), httpmiddleware.RequireRole("admin"))
	admin.GET("/ping", func(ctx *gee.Context) {
		ctx.String(http.StatusOK, "pong")
	})
}
