package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/634287319/onedrive-direct-link/gee"
)

const requestIDHeader = "X-Request-ID"

// ReqID 透传或生成请求 ID：上游带了就沿用（方便跨服务串日志），
// 没带就生成一个，并写回请求头与响应头。
func ReqID() gee.HandlerFunc {
	return func(ctx *gee.Context) {
		id := ctx.Req.Header.Get(requestIDHeader)
		if id == "" {
			id = newReqID()
			ctx.Req.Header.Set(requestIDHeader, id)
		}
		ctx.SetHeader(requestIDHeader, id)

		ctx.Next()
	}
}

// newReqID 返回 32 个十六进制字符；随机源异常时退化为纳秒时间戳。
func newReqID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	return hex.EncodeToString(buf)
}
