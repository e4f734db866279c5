package onedrive

import (
	"context"
	"net/http"
	"time"

	"github.com/634287319/onedrive-direct-link/internal/app/onedrive/cache"
)

// Doer 是发起出站 HTTP 请求的最小接口。
//
// 设计原因：
// - 测试里可以换成假客户端，确定性地覆盖"跟随/不跟随重定向"两个分支
// - 重定向由本包自己处理，注入的客户端必须不自动跟随（见 NewHTTPClient）
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RedirectPolicy 控制个人版链接的解析行为，按调用传入，不做持久化。
//
// FollowRedirects 是显式开关而不是隐藏默认：开了之后返回的是带
// 时效的签名直链（会过期，这是上游的属性，不是 bug）。
type RedirectPolicy struct {
	FollowRedirects     bool
	Timeout             time.Duration
	AppendDownloadParam bool
}

// Result 是一次成功转换的产物。
type Result struct {
	DirectURL string
	Family    Family
	// Ephemeral 表示直链不保证长期有效（个人版输出都是如此）。
	Ephemeral bool
}

// Converter 聚合出站客户端与可选的短链展开缓存。
//
// 每次转换相互独立、无共享可变状态，可被多个 goroutine 并发调用。
type Converter struct {
	client    Doer
	expCache  *cache.ExpandCache // 可为 nil，缓存只是加速，不影响正确性
	userAgent string
}

// 原工具使用的桌面浏览器 UA，部分 OneDrive 端点对空 UA 不友好。
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/126.0 Safari/537.36"

func NewConverter(client Doer, expCache *cache.ExpandCache, userAgent string) *Converter {
	if client == nil {
		client = NewHTTPClient()
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Converter{
		client:    client,
		expCache:  expCache,
		userAgent: userAgent,
	}
}

// NewHTTPClient 返回一个不自动跟随重定向的客户端。
// 短链展开要靠读 Location 头拿到长链，不能把响应体下载下来。
func NewHTTPClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Convert 是周边组件（web handler、CLI 循环）调用的唯一入口。
//
// 控制流：原始 URL -> 分类 -> （短链则先展开）-> 改写 -> Result。
// 企业版/世纪互联走纯改写；个人版可能发起网络请求，受 policy 约束。
func (c *Converter) Convert(ctx context.Context, raw string, policy RedirectPolicy) (Result, error) {
	cls, err := Classify(raw)
	if err != nil {
		return Result{}, err
	}

	switch cls.Family {
	case FamilyCommercial, FamilyTenantCN:
		direct, err := DirectURL(cls)
		if err != nil {
			return Result{}, err
		}
		return Result{DirectURL: direct, Family: cls.Family}, nil
	default:
		return c.resolvePersonal(ctx, raw, cls, policy)
	}
}
