package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/634287319/onedrive-direct-link/gee"
	"github.com/634287319/onedrive-direct-link/internal/app/onedrive"
	"github.com/634287319/onedrive-direct-link/internal/app/onedrive/stats"
	"github.com/634287319/onedrive-direct-link/internal/platform/auth"
	"golang.org/x/crypto/bcrypt"
)

// failDoer 保证测试里不会真的发出站请求。
type failDoer struct{}

func (failDoer) Do(req *http.Request) (*http.Response, error) {
	return nil, errors.New("no network in tests")
}

func newTestEngine(t *testing.T, adminHash string) (*gee.Engine, *stats.ChannelCollector) {
	t.Helper()

	ts, err := auth.NewHS256Service("test-secret", "odlink", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	collector := stats.NewChannelCollector(16)

	engine := gee.New()
	api := engine.Group("/api/v1")
	RegisterAPIRoutes(api, Deps{
		Converter:         onedrive.NewConverter(failDoer{}, nil, ""),
		Policy:            onedrive.RedirectPolicy{AppendDownloadParam: true},
		Collector:         collector,
		Tokens:            ts,
		AdminPasswordHash: adminHash,
	})
	return engine, collector
}

func doJSON(engine *gee.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

// 测试企业版链接经 API 转换
func TestConvertHandlerCommercial(t *testing.T) {
	engine, collector := newTestEngine(t, "")

	w := doJSON(engine, "POST", "/api/v1/convert",
		`{"url":"https://contoso-my.sharepoint.com/:u:/g/personal/alice_contoso_com/EXabc123"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp ConvertResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	want := "https://contoso-my.sharepoint.com/personal/alice_contoso_com/_layouts/52/download.aspx?share=EXabc123"
	if resp.DirectURL != want {
		t.Errorf("direct_url = %s", resp.DirectURL)
	}
	if resp.Family != "commercial" {
		t.Errorf("family = %s", resp.Family)
	}
	if resp.Ephemeral {
		t.Error("rewrite-only result should not be ephemeral")
	}

	// 统计事件已收集
	select {
	case e := <-collector.Events():
		if e.Outcome != "ok" || e.Source != "api" {
			t.Errorf("event = %+v", e)
		}
	default:
		t.Error("expected a conversion event")
	}
}

// 测试错误分类到 HTTP 状态码的映射
func TestConvertHandlerErrorMapping(t *testing.T) {
	engine, _ := newTestEngine(t, "")

	cases := []struct {
		url    string
		status int
		kind   string
	}{
		{"not a url", http.StatusBadRequest, "malformed_url"},
		{"https://example.com/x", http.StatusUnprocessableEntity, "unsupported_domain"},
		{"https://contoso-my.sharepoint.com/:f:/g/personal/a_b_com/Folder", http.StatusUnprocessableEntity, "folder_not_supported"},
		{"https://contoso-my.sharepoint.com/other/path", http.StatusBadRequest, "malformed_share_segment"},
	}
	for _, c := range cases {
		w := doJSON(engine, "POST", "/api/v1/convert", `{"url":"`+c.url+`"}`, "")
		if w.Code != c.status {
			t.Errorf("url %q: status = %d, want %d", c.url, w.Code, c.status)
			continue
		}
		var e ConvertError
		if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
			t.Errorf("url %q: bad json: %v", c.url, err)
			continue
		}
		if e.Kind != c.kind {
			t.Errorf("url %q: kind = %s, want %s", c.url, e.Kind, c.kind)
		}
		if e.Hint == "" {
			t.Errorf("url %q: hint should not be empty", c.url)
		}
	}
}

// 测试缺 url 字段时 400
func TestConvertHandlerMissingURL(t *testing.T) {
	engine, _ := newTestEngine(t, "")

	w := doJSON(engine, "POST", "/api/v1/convert", `{}`, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// 测试批量转换按下标对位返回
func TestConvertBatchHandler(t *testing.T) {
	engine, _ := newTestEngine(t, "")

	body := `{"urls":[
		"https://contoso-my.sharepoint.cn/:u:/g/personal/alice_contoso_partner_onmschina_cn/ABC123",
		"https://example.com/x"
	]}`
	w := doJSON(engine, "POST", "/api/v1/convert/batch", body, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp BatchConvertResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(resp.Items))
	}
	if resp.Failed != 1 {
		t.Errorf("failed = %d, want 1", resp.Failed)
	}
	if resp.Items[0].Result == nil || resp.Items[0].Error != nil {
		t.Errorf("items[0] = %+v, want success", resp.Items[0])
	}
	if !strings.Contains(resp.Items[0].Result.DirectURL, "share=ABC123") {
		t.Errorf("items[0].direct_url = %s", resp.Items[0].Result.DirectURL)
	}
	if resp.Items[1].Error == nil || resp.Items[1].Error.Kind != "unsupported_domain" {
		t.Errorf("items[1] = %+v, want unsupported_domain", resp.Items[1])
	}
}

// 测试批量超限
func TestConvertBatchHandlerTooMany(t *testing.T) {
	engine, _ := newTestEngine(t, "")

	urls := make([]string, maxBatchURLs+1)
	for i := range urls {
		urls[i] = "https://contoso-my.sharepoint.com/:u:/g/personal/a_b_com/T1"
	}
	body, _ := json.Marshal(BatchConvertRequest{URLs: urls})
	w := doJSON(engine, "POST", "/api/v1/convert/batch", string(body), "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// 测试管理员登录与受保护路由
func TestAdminLoginAndPing(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	engine, _ := newTestEngine(t, string(hash))

	// 未登录访问受保护路由
	w := doJSON(engine, "GET", "/api/v1/admin/ping", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated ping status = %d, want 401", w.Code)
	}

	// 错误口令
	w = doJSON(engine, "POST", "/api/v1/login", `{"password":"wrong"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d, want 401", w.Code)
	}

	// 正确口令拿 token
	w = doJSON(engine, "POST", "/api/v1/login", `{"password":"s3cret"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	token := resp["token"]
	if token == "" {
		t.Fatal("empty token")
	}

	w = doJSON(engine, "GET", "/api/v1/admin/ping", "", token)
	if w.Code != http.StatusOK {
		t.Errorf("authenticated ping status = %d, body = %s", w.Code, w.Body.String())
	}
}

// 测试未配置口令哈希时登录关闭
func TestAdminLoginDisabled(t *testing.T) {
	engine, _ := newTestEngine(t, "")

	w := doJSON(engine, "POST", "/api/v1/login", `{"password":"any"}`, "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

// 测试历史仓库未启用时路由不存在
func TestHistoryRoutesAbsentWhenDisabled(t *testing.T) {
	engine, _ := newTestEngine(t, "")

	w := doJSON(engine, "GET", "/api/v1/history", "", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
