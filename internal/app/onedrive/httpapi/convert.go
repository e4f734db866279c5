package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/634287319/onedrive-direct-link/gee"
	"github.com/634287319/onedrive-direct-link/internal/app/onedrive"
	"github.com/634287319/onedrive-direct-link/internal/app/onedrive/stats"
	"github.com/634287319/onedrive-direct-link/internal/platform/httpmiddleware"
	"github.com/634287319/onedrive-direct-link/internal/platform/metrics"
)

// 批量接口单次最多条数，防止一个请求吃满出站配额。
const maxBatchURLs = 20

type ConvertRequest struct {
	URL string `json:"url"`
	// Follow 覆盖服务端默认的"是否跟随重定向到签名直链"。
	Follow *bool `json:"follow,omitempty"`
}

type ConvertResponse struct {
	DirectURL string `json:"direct_url"`
	Family    string `json:"family"`
	Ephemeral bool   `json:"ephemeral"`
}

type ConvertError struct {
	Kind string `json:"kind"`
	Hint string `json:"hint"`
}

// statusForKind 把转换错误分类映射为 HTTP 状态码。
// 输入问题是 4xx，上游（短链展开/重定向）问题是 5xx。
func statusForKind(kind onedrive.Kind) int {
	switch kind {
	case onedrive.KindMalformedURL, onedrive.KindMalformedShareSegment:
		return http.StatusBadRequest
	case onedrive.KindUnsupportedDomain, onedrive.KindFolderNotSupported:
		return http.StatusUnprocessableEntity
	case onedrive.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func requestPolicy(base onedrive.RedirectPolicy, follow *bool) onedrive.RedirectPolicy {
	if follow != nil {
		base.FollowRedirects = *follow
	}
	return base
}

func NewConvertHandler(deps Deps) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		var req ConvertRequest
		if err := ctx.BindJSON(&req); err != nil {
			return
		}
		if strings.TrimSpace(req.URL) == "" {
			ctx.AbortWithError(http.StatusBadRequest, "url is required")
			return
		}

		start := time.Now()
		res, err := deps.Converter.Convert(ctx.Req.Context(), req.URL, requestPolicy(deps.Policy, req.Follow))
		elapsed := time.Since(start)

		event := stats.ConversionEvent{
			Source:      "api",
			DurationMS:  elapsed.Milliseconds(),
			IP:          httpmiddleware.ClientIP(ctx.Req),
			UserAgent:   ctx.Req.UserAgent(),
			ConvertedAt: time.Now(),
		}

		if err != nil {
			ce := onedrive.AsConvError(err)
			event.Outcome = string(ce.Kind)
			deps.Collector.Collect(event)
			metrics.ConversionsTotal.WithLabelValues("unknown", string(ce.Kind)).Inc()
			ctx.JSON(statusForKind(ce.Kind), ConvertError{Kind: string(ce.Kind), Hint: ce.Hint})
			ctx.Abort()
			return
		}

		family := res.Family.String()
		event.Family = family
		event.Outcome = "ok"
		deps.Collector.Collect(event)
		metrics.ConversionsTotal.WithLabelValues(family, "ok").Inc()
		metrics.ConversionDurationSeconds.WithLabelValues(family).Observe(elapsed.Seconds())

		ctx.JSON(http.StatusOK, ConvertResponse{
			DirectURL: res.DirectURL,
			Family:    family,
			Ephemeral: res.Ephemeral,
		})
	}
}

type BatchConvertRequest struct {
	URLs   []string `json:"urls"`
	Follow *bool    `json:"follow,omitempty"`
}

// BatchItem 与输入一一对应：Result 与 Error 恰有一个非空。
type BatchItem struct {
	Index  int              `json:"index"`
	Input  string           `json:"input"`
	Result *ConvertResponse `json:"result,omitempty"`
	Error  *ConvertError    `json:"error,omitempty"`
}

type BatchConvertResponse struct {
	Items  []BatchItem `json:"items"`
	Failed int         `json:"failed"`
}

func NewConvertBatchHandler(deps Deps) gee.HandlerFunc {
	return func(ctx *gee.Context) {
		var req BatchConvertRequest
		if err := ctx.BindJSON(&req); err != nil {
			return
		}
		if len(req.URLs) == 0 {
			ctx.AbortWithError(http.StatusBadRequest, "urls is required")
			return
		}
		if len(req.URLs) > maxBatchURLs {
			ctx.AbortWithError(http.StatusBadRequest, "too many urls (max 20)")
			return
		}

		start := time.Now()
		results := deps.Converter.ConvertAll(ctx.Req.Context(), req.URLs, requestPolicy(deps.Policy, req.Follow), 0)
		elapsed := time.Since(start)

		resp := BatchConvertResponse{Items: make([]BatchItem, len(results))}
		for i, r := range results {
			item := BatchItem{Index: r.Index, Input: r.Input}
			if r.Err != nil {
				item.Error = &ConvertError{Kind: string(r.Err.Kind), Hint: r.Err.Hint}
				metrics.ConversionsTotal.WithLabelValues("unknown", string(r.Err.Kind)).Inc()
				resp.Failed++
			} else {
				family := r.Result.Family.String()
				item.Result = &ConvertResponse{
					DirectURL: r.Result.DirectURL,
					Family:    family,
					Ephemeral: r.Result.Ephemeral,
				}
				metrics.ConversionsTotal.WithLabelValues(family, "ok").Inc()
			}
			resp.Items[i] = item
		}

		deps.Collector.Collect(stats.ConversionEvent{
			Outcome:     "ok",
			Source:      "batch",
			DurationMS:  elapsed.Milliseconds(),
			IP:          httpmiddleware.ClientIP(ctx.Req),
			UserAgent:   ctx.Req.UserAgent(),
			ConvertedAt: time.Now(),
		})

		ctx.JSON(http.StatusOK, resp)
	}
}
