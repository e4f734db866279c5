package onedrive

import "testing"

// 测试三个家族的域名都能被正确识别
func TestClassifyFamilies(t *testing.T) {
	cases := []struct {
		raw    string
		family Family
	}{
		{"https://onedrive.live.com/?cid=ABC&resid=ABC%21123", FamilyPersonal},
		{"https://1drv.ms/u/s!AbCdEf123", FamilyPersonal},
		{"https://contoso-my.sharepoint.com/:u:/g/personal/alice_contoso_com/EXabc123", FamilyCommercial},
		{"https://contoso.sharepoint.com/:u:/g/personal/bob_contoso_com/EYdef456", FamilyCommercial},
		{"https://contoso-my.sharepoint.cn/:u:/g/personal/alice_contoso_partner_onmschina_cn/ABC123", FamilyTenantCN},
	}
	for _, c := range cases {
		cls, err := Classify(c.raw)
		if err != nil {
			t.Errorf("Classify(%s) unexpected error: %v", c.raw, err)
			continue
		}
		if cls.Family != c.family {
			t.Errorf("Classify(%s) family = %s, want %s", c.raw, cls.Family, c.family)
		}
	}
}

// 测试 1drv.ms 标记为短链，onedrive.live.com 不标记
func TestClassifyShortLink(t *testing.T) {
	cls, err := Classify("https://1drv.ms/u/s!AbCdEf123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cls.IsShort {
		t.Error("1drv.ms should be classified as short link")
	}

	cls, err = Classify("https://onedrive.live.com/?cid=ABC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cls.IsShort {
		t.Error("onedrive.live.com should not be classified as short link")
	}
}

// 测试分享路径片段的提取
func TestClassifyShareSegment(t *testing.T) {
	cls, err := Classify("https://contoso-my.sharepoint.com/:u:/g/personal/alice_contoso_com/EXabc123?e=xyz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cls.User != "alice_contoso_com" {
		t.Errorf("user = %q, want alice_contoso_com", cls.User)
	}
	if cls.Token != "EXabc123" {
		t.Errorf("token = %q, want EXabc123", cls.Token)
	}
	if cls.IsFolder {
		t.Error("single file share should not be folder")
	}
}

// 测试文件夹分享的识别：:f: 标记、:b: 标记、文档库浏览页
func TestClassifyFolder(t *testing.T) {
	cases := []string{
		"https://contoso-my.sharepoint.com/:f:/g/personal/alice_contoso_com/EXabc123",
		"https://contoso-my.sharepoint.com/:b:/g/personal/alice_contoso_com/Documents",
		"https://contoso-my.sharepoint.com/personal/alice_contoso_com/Documents/Forms/AllItems.aspx",
	}
	for _, raw := range cases {
		cls, err := Classify(raw)
		if err != nil {
			t.Errorf("Classify(%s) unexpected error: %v", raw, err)
			continue
		}
		if !cls.IsFolder {
			t.Errorf("Classify(%s) should be folder", raw)
		}
	}
}

// 测试不带标准分享标记的 SharePoint 链接
func TestClassifyMissingShareMarker(t *testing.T) {
	_, err := Classify("https://contoso-my.sharepoint.com/some/random/path")
	if err == nil {
		t.Fatal("expected error for missing share marker")
	}
	if ce := AsConvError(err); ce.Kind != KindMalformedShareSegment {
		t.Errorf("kind = %s, want %s", ce.Kind, KindMalformedShareSegment)
	}
}

// 测试畸形输入与不支持的域名
func TestClassifyRejects(t *testing.T) {
	cases := []struct {
		raw  string
		kind Kind
	}{
		{"", KindMalformedURL},
		{"not a url", KindMalformedURL},
		{"ftp://contoso-my.sharepoint.com/:u:/g/personal/a/b", KindMalformedURL},
		{"https://example.com/share/abc", KindUnsupportedDomain},
		{"https://sharepoint.com.evil.com/:u:/g/personal/a/b", KindUnsupportedDomain},
	}
	for _, c := range cases {
		_, err := Classify(c.raw)
		if err == nil {
			t.Errorf("Classify(%q) expected error", c.raw)
			continue
		}
		if ce := AsConvError(err); ce.Kind != c.kind {
			t.Errorf("Classify(%q) kind = %s, want %s", c.raw, ce.Kind, c.kind)
		}
	}
}

// 测试域名匹配大小写不敏感
func TestClassifyHostCaseInsensitive(t *testing.T) {
	cls, err := Classify("https://Contoso-My.SharePoint.COM/:u:/g/personal/alice_contoso_com/EXabc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cls.Family != FamilyCommercial {
		t.Errorf("family = %s, want commercial", cls.Family)
	}
}
