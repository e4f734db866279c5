package onedrive

import "errors"

// Kind 是转换失败的稳定分类，供上层（HTTP/CLI）做映射与判断。
//
// 设计原因：
// - 三类链接家族的失败原因差异很大，必须能区分展示，禁止笼统的"转换失败"
// - 字符串形式便于直接进 JSON 响应和 metrics label
type Kind string

const (
	KindMalformedURL          Kind = "malformed_url"
	KindUnsupportedDomain     Kind = "unsupported_domain"
	KindFolderNotSupported    Kind = "folder_not_supported"
	KindMalformedShareSegment Kind = "malformed_share_segment"
	KindShortLinkExpansion    Kind = "short_link_expansion_failed"
	KindRedirectResolution    Kind = "redirect_resolution_failed"
	KindTimeout               Kind = "timeout"
)

// ConvError 携带稳定 kind 与可直接展示给用户的 hint。
//
// 约定：核心层所有失败都以错误值返回，不打日志、不 panic；
// 怎么渲染（控制台/HTTP 响应体）由外层决定。
type ConvError struct {
	Kind Kind
	Hint string
}

func (e *ConvError) Error() string {
	return string(e.Kind) + ": " + e.Hint
}

// hints 每个 kind 对应一条具体提示（提示文案沿用原工具的口吻）。
var hints = map[Kind]string{
	KindMalformedURL:          "请输入以 http:// 或 https:// 开头的完整分享链接",
	KindUnsupportedDomain:     "不支持的链接域名：仅支持 OneDrive/SharePoint/世纪互联分享链接",
	KindFolderNotSupported:    "这是文件夹分享链接，只有单个文件的分享可以转换为直链",
	KindMalformedShareSegment: "请使用标准分享链接格式：https://域名/:u:/g/personal/用户名/分享token",
	KindShortLinkExpansion:    "无法展开 1drv.ms 短链，请检查链接是否仍然有效",
	KindRedirectResolution:    "跟随重定向获取签名直链失败，可稍后重试",
	KindTimeout:               "请求 OneDrive 服务超时，请稍后重试",
}

func newConvError(kind Kind) *ConvError {
	return &ConvError{Kind: kind, Hint: hints[kind]}
}

// AsConvError 把 error 还原为 *ConvError。
// 核心层产生的错误都满足该类型；兜底分支只为防御上层误传。
func AsConvError(err error) *ConvError {
	var ce *ConvError
	if errors.As(err, &ce) {
		return ce
	}
	return &ConvError{Kind: KindShortLinkExpansion, Hint: err.Error()}
}
