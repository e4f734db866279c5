package httpapi

import (
	"net/http"

	"github.com/634287319/onedrive-direct-link/gee"
	"github.com/634287319/onedrive-direct-link/internal/platform/auth"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Password string `json:"password"`
}

// NewAdminLoginHandler 校验管理员口令并签发 JWT。
// 服务只有一个管理员账号，口令的 bcrypt 哈希来自配置
// （用 cmd/tools/hashpass 生成）。
func NewAdminLoginHandler(passwordHash string, ts auth.TokenService) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		if passwordHash == "" {
			ctx.AbortWithError(http.StatusServiceUnavailable, "admin login disabled")
			return
		}
		var req LoginRequest
		if err := ctx.BindJSON(&req); err != nil {
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
			ctx.AbortWithError(http.StatusUnauthorized, "invalid credentials")
			return
		}

		token, err := ts.Sign("admin", "admin")
		if err != nil {
			ctx.AbortWithError(http.StatusInternalServerError, "sign failed")
			return
		}
		ctx.JSON(http.StatusOK, map[string]string{"token": token})
	}
}
