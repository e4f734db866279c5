package httpmiddleware

import (
	"net/http"
	"strings"

	"github.com/634287319/onedrive-direct-link/gee"
	"github.com/634287319/onedrive-direct-link/internal/platform/auth"
)

// parseBearer 从 Authorization 头里取 Bearer token，格式不对返回空串。
func parseBearer(header string) string {
	fields := strings.Fields(header)
	if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
		return ""
	}
	return fields[1]
}

// AuthRequired 要求请求携带有效 JWT，验证通过后把身份挂进请求上下文。
func AuthRequired(ts auth.TokenService) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		header := ctx.Req.Header.Get("Authorization")
		if header == "" {
			ctx.AbortWithError(http.StatusUnauthorized, "missing authorization header")
			return
		}
		token := parseBearer(header)
		if token == "" {
			ctx.AbortWithError(http.StatusUnauthorized, "invalid authorization format")
			return
		}
		claims, err := ts.Verify(token)
		if err != nil {
			ctx.AbortWithError(http.StatusUnauthorized, "invalid token")
			return
		}
		attachIdentity(ctx, claims)
		ctx.Next()
	}
}

// AuthOptional 有 token 就解析身份，没有或无效不拦截。
// 匿名可用的接口也想知道"调用方是不是管理员"时用这个。
func AuthOptional(ts auth.TokenService) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		token := parseBearer(ctx.Req.Header.Get("Authorization"))
		if token == "" {
			ctx.Next()
			return
		}
		claims, err := ts.Verify(token)
		if err != nil {
			ctx.Next()
			return
		}
		attachIdentity(ctx, claims)
		ctx.Next()
	}
}

// RequireRole 在 AuthRequired 之后使用，校验角色。
func RequireRole(role string) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		id, ok := auth.GetIdentity(ctx.Req.Context())
		if !ok {
			ctx.AbortWithError(http.StatusUnauthorized, "unauthorized")
			return
		}
		if id.Role != role {
			ctx.AbortWithError(http.StatusForbidden, "forbidden")
			return
		}
		ctx.Next()
	}
}

func attachIdentity(ctx *gee.Context, claims auth.Claims) {
	ctx.Req = ctx.Req.WithContext(auth.WithIdentity(ctx.Req.Context(), auth.Identity{
		UserID: claims.UserID,
		Role:   claims.Role,
	}))
}
