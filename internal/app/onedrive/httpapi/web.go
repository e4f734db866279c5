package httpapi

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/634287319/onedrive-direct-link/gee"
)

//go:embed static/*
var staticFS embed.FS

// RegisterWebRoutes 挂载内置的单页 UI。
// 页面很小，直接嵌进二进制，部署时不需要额外的静态文件目录。
func RegisterWebRoutes(r *gee.Engine) {
	staticRoot, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("failed to get static subdirectory: " + err.Error())
	}

	r.GET("/", func(ctx *gee.Context) {
		data, err := fs.ReadFile(staticRoot, "index.html")
		if err != nil {
			ctx.AbortWithError(http.StatusInternalServerError, "index.html not found")
			return
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		ctx.Data(http.StatusOK, data)
	})

	// 避免 favicon.ico 的 404 噪音
	r.GET("/favicon.ico", func(ctx *gee.Context) {
		ctx.Status(http.StatusNoContent)
	})
}
