package httpmiddleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/634287319/onedrive-direct-link/gee"
	"github.com/634287319/onedrive-direct-link/internal/platform/ratelimit"
)

// 同一纳秒内的并发请求会生成相同时间戳，补一个递增序列号保证 member 唯一。
var rateLimitMemberSeq uint64

// ClientIP 取真实客户端 IP（限流/审计/统计共用）。
//
// 只有请求来自可信代理（同机反代、内网、docker bridge）时才信转发头，
// 否则客户端伪造一个 X-Forwarded-For 就能绕过按 IP 限流。
func ClientIP(req *http.Request) string {
	remoteHost, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		remoteHost = req.RemoteAddr
	}
	remoteIP := net.ParseIP(remoteHost)
	if remoteIP == nil || !isTrustedProxy(remoteIP) {
		return remoteHost
	}

	// Cloudflare 注入的真实客户端 IP，优先级最高
	if cf := strings.TrimSpace(req.Header.Get("CF-Connecting-IP")); net.ParseIP(cf) != nil {
		return cf
	}

	// X-Forwarded-For 的第一个 IP 是原始客户端，后面是沿途代理
	if xff := req.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			xff = xff[:i]
		}
		if xff = strings.TrimSpace(xff); net.ParseIP(xff) != nil {
			return xff
		}
	}

	if xrip := strings.TrimSpace(req.Header.Get("X-Real-IP")); net.ParseIP(xrip) != nil {
		return xrip
	}

	return remoteHost
}

func isTrustedProxy(ip net.IP) bool {
	// 同机反代
	if ip.IsLoopback() {
		return true
	}

	ip4 := ip.To4()
	if ip4 == nil {
		// IPv6 ULA fc00::/7
		return len(ip) == net.IPv6len && (ip[0]&0xfe) == 0xfc
	}
	// RFC1918 私网网段
	switch {
	case ip4[0] == 10:
		return true
	case ip4[0] == 172 && ip4[1] >= 16 && ip4[1] <= 31:
		return true
	case ip4[0] == 192 && ip4[1] == 168:
		return true
	}
	return false
}

// RateLimit 按客户端 IP 做滑动窗口限流。
// limiter 为 nil（配置关闭）时直接放行；Redis 故障时也放行，
// 限流是保护措施，不能因为依赖挂了把正常请求全拒掉。
func RateLimit(limiter *ratelimit.Limiter, prefix string, limit int, window time.Duration) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		if limiter == nil {
			ctx.Next()
			return
		}

		key := "rl:" + prefix + ":" + ClientIP(ctx.Req)
		member := strconv.FormatInt(time.Now().UnixNano(), 10) + "-" +
			strconv.FormatUint(atomic.AddUint64(&rateLimitMemberSeq, 1), 10)

		rlCtx, cancel := context.WithTimeout(ctx.Req.Context(), 50*time.Millisecond)
		defer cancel()
		allowed, retryAfter, err := limiter.Allow(rlCtx, key, limit, window, member)
		if err != nil {
			slog.Error("rate limit check failed", "err", err)
			ctx.Next()
			return
		}
		if !allowed {
			if retryAfter > 0 {
				// Retry-After 单位是秒，向上取整
				secs := int64((retryAfter + time.Second - 1) / time.Second)
				ctx.SetHeader("Retry-After", strconv.FormatInt(secs, 10))
			}
			ctx.AbortWithError(http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		ctx.Next()
	}
}
