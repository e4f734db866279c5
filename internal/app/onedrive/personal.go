package onedrive

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/634287319/onedrive-direct-link/internal/app/onedrive/cache"
)

// 跟随重定向的最大跳数，防止上游环路导致请求打转。
const maxRedirectHops = 10

// resolvePersonal 处理个人版链接：
//
//  1. 1drv.ms 短链先在超时内展开（读 Location，不下载响应体）
//  2. 短链可能展开成文件夹分享页，这里重新分类并拒绝，
//     而不是把浏览页原样当直链返回
//  3. 在展开后的长链上派生直链（redeem / resid+authkey / download=1）
//  4. 按 policy 决定是否再跟随重定向拿最终签名直链
func (c *Converter) resolvePersonal(ctx context.Context, raw string, cls Classification, policy RedirectPolicy) (Result, error) {
	if policy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, policy.Timeout)
		defer cancel()
	}

	expanded := raw
	if cls.IsShort {
		var convErr *ConvError
		expanded, convErr = c.expand(ctx, raw)
		if convErr != nil {
			return Result{}, convErr
		}
		ecls, err := Classify(expanded)
		if err != nil {
			return Result{}, err
		}
		cls = ecls
	}
	if cls.IsFolder {
		return Result{}, newConvError(KindFolderNotSupported)
	}

	direct := personalDirect(expanded, policy.AppendDownloadParam)

	if policy.FollowRedirects {
		final, convErr := c.followFinal(ctx, direct)
		if convErr != nil {
			return Result{}, convErr
		}
		direct = final
	}

	return Result{DirectURL: direct, Family: FamilyPersonal, Ephemeral: true}, nil
}

// expand 展开 1drv.ms 短链，返回实际的分享页 URL。
//
// 先发 HEAD；部分端点对 HEAD 返回 405/403，此时换 GET 重试
// （沿用原工具的行为）。两次请求都不跟随重定向，只读 Location。
func (c *Converter) expand(ctx context.Context, short string) (string, *ConvError) {
	if c.expCache != nil {
		if v, err := c.expCache.Get(ctx, short); err == nil && v != "" {
			if v == cache.NoExpansion {
				return "", newConvError(KindShortLinkExpansion)
			}
			return v, nil
		}
	}

	resp, convErr := c.roundTrip(ctx, http.MethodHead, short, KindShortLinkExpansion)
	if convErr != nil {
		return "", convErr
	}
	if resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusForbidden {
		resp, convErr = c.roundTrip(ctx, http.MethodGet, short, KindShortLinkExpansion)
		if convErr != nil {
			return "", convErr
		}
	}

	loc := resp.Header.Get("Location")
	if resp.StatusCode < 300 || resp.StatusCode > 399 || loc == "" {
		// 短链本身就打不开，短 TTL 负缓存，避免反复打上游
		if c.expCache != nil {
			c.expCache.SetNone(ctx, short)
		}
		return "", newConvError(KindShortLinkExpansion)
	}

	expanded := resolveReference(short, loc)
	if c.expCache != nil {
		c.expCache.Set(ctx, short, expanded)
	}
	return expanded, nil
}

// followFinal 跟随重定向直到非 3xx，返回最终签名直链。
func (c *Converter) followFinal(ctx context.Context, start string) (string, *ConvError) {
	cur := start
	for i := 0; i < maxRedirectHops; i++ {
		resp, convErr := c.roundTrip(ctx, http.MethodGet, cur, KindRedirectResolution)
		if convErr != nil {
			return "", convErr
		}
		loc := resp.Header.Get("Location")
		if resp.StatusCode >= 300 && resp.StatusCode <= 399 && loc != "" {
			cur = resolveReference(cur, loc)
			continue
		}
		return cur, nil
	}
	return "", newConvError(KindRedirectResolution)
}

// roundTrip 发起单次请求并立即关闭响应体（只需要状态码和头）。
func (c *Converter) roundTrip(ctx context.Context, method, target string, failKind Kind) (*http.Response, *ConvError) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, newConvError(failKind)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, timeoutOrKind(err, failKind)
	}
	resp.Body.Close()
	return resp, nil
}

// timeoutOrKind 把网络超时/上下文超时归到 KindTimeout，其余归 failKind。
func timeoutOrKind(err error, failKind Kind) *ConvError {
	if errors.Is(err, context.DeadlineExceeded) {
		return newConvError(KindTimeout)
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return newConvError(KindTimeout)
	}
	return newConvError(failKind)
}

// personalDirect 在长链上派生个人版直链。
//
// 优先级与原工具一致：
//  1. redeem 参数 -> dlink.host 无登录直链
//  2. resid+authkey -> onedrive.live.com/download 传统直链
//  3. 按 policy 注入 download=1（访问时直接出字节流而不是预览页）
func personalDirect(expanded string, appendParam bool) string {
	u, err := url.Parse(expanded)
	if err != nil {
		return expanded
	}
	q := u.Query()

	if redeem := q.Get("redeem"); redeem != "" {
		return "https://dlink.host/1drv/" + redeem
	}
	if resid, authkey := q.Get("resid"), q.Get("authkey"); resid != "" && authkey != "" {
		return "https://onedrive.live.com/download?resid=" + url.QueryEscape(resid) +
			"&authkey=" + url.QueryEscape(authkey)
	}
	if appendParam {
		return ensureDownloadParam(u)
	}
	return expanded
}

// ensureDownloadParam 幂等注入 download=1：键名大小写不敏感，
// 已有同名参数时替换，保证输出里恰好出现一次。
func ensureDownloadParam(u *url.URL) string {
	q := u.Query()
	for k := range q {
		if strings.EqualFold(k, "download") {
			q.Del(k)
		}
	}
	q.Set("download", "1")
	u.RawQuery = q.Encode()
	return u.String()
}

func resolveReference(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
