package onedrive

import (
	"net/url"
	"regexp"
	"strings"
)

// Family 表示分享链接所属的 OneDrive 家族。
type Family int

const (
	// FamilyPersonal 个人版（onedrive.live.com / 1drv.ms）
	FamilyPersonal Family = iota + 1
	// FamilyCommercial 海外企业版（*.sharepoint.com / *.my.sharepoint.com）
	FamilyCommercial
	// FamilyTenantCN 世纪互联版（*.sharepoint.cn / *.my.sharepoint.cn）
	FamilyTenantCN
)

func (f Family) String() string {
	switch f {
	case FamilyPersonal:
		return "personal"
	case FamilyCommercial:
		return "commercial"
	case FamilyTenantCN:
		return "tenant_cn"
	default:
		return "unknown"
	}
}

// Classification 是分类器的输出：家族 + 链接形态 + 分享路径片段。
//
// 不变式：Family 由域名规则唯一决定；没有规则命中就直接分类失败，
// 不存在"分类成功但家族未知"的状态。
type Classification struct {
	Family   Family
	Host     string
	IsShort  bool   // 1drv.ms 短链，需要先展开
	IsFolder bool   // 文件夹分享：可分类，但下游不可转换
	User     string // /:u:/g/personal/<user>/<token> 中的 user
	Token    string // 同上的 token
	RawQuery string
}

// domainRule 是一条 域名匹配 -> 家族 规则。
//
// 设计原因：用有序规则表代替嵌套分支，之后追加新的租户后缀
// 只需要加一行，不用动控制流。
type domainRule struct {
	match  func(host string) bool
	family Family
}

func hostIs(names ...string) func(string) bool {
	return func(host string) bool {
		for _, n := range names {
			if host == n {
				return true
			}
		}
		return false
	}
}

func hostSuffix(suffixes ...string) func(string) bool {
	return func(host string) bool {
		for _, s := range suffixes {
			if strings.HasSuffix(host, s) {
				return true
			}
		}
		return false
	}
}

// 按顺序匹配，命中即停。
var domainRules = []domainRule{
	{hostIs("onedrive.live.com", "1drv.ms"), FamilyPersonal},
	{hostSuffix(".sharepoint.com", ".my.sharepoint.com"), FamilyCommercial},
	{hostSuffix(".sharepoint.cn", ".my.sharepoint.cn"), FamilyTenantCN},
}

// shareMarkerRe 匹配 SharePoint 分享路径：/:u:/g/personal/<user>/<token>。
// 标记字母不只 u（还有 w/x/v 等 Office 文件类型），统一捕获。
var shareMarkerRe = regexp.MustCompile(`/:([a-z]):/g/personal/([^/]+)/([^/?#]+)`)

// Classify 检查原始 URL 并确定 {家族, 链接形态, 分享片段}。
// 纯解析，无副作用；失败返回 *ConvError。
func Classify(raw string) (Classification, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Classification{}, newConvError(KindMalformedURL)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return Classification{}, newConvError(KindMalformedURL)
	}

	host := strings.ToLower(u.Hostname())
	var family Family
	for _, rule := range domainRules {
		if rule.match(host) {
			family = rule.family
			break
		}
	}
	if family == 0 {
		return Classification{}, newConvError(KindUnsupportedDomain)
	}

	cls := Classification{
		Family:   family,
		Host:     u.Host,
		RawQuery: u.RawQuery,
		IsFolder: isFolderPath(u.Path),
	}

	if family == FamilyPersonal {
		cls.IsShort = host == "1drv.ms"
		return cls, nil
	}

	// 企业版/世纪互联：必须带标准分享标记；文件夹链接分类成功，
	// 由下游转换时报 FolderNotSupported。
	m := shareMarkerRe.FindStringSubmatch(u.Path)
	if m == nil {
		if cls.IsFolder {
			return cls, nil
		}
		return Classification{}, newConvError(KindMalformedShareSegment)
	}
	if m[1] == "f" {
		cls.IsFolder = true
	}
	cls.User = m[2]
	cls.Token = m[3]
	return cls, nil
}

// isFolderPath 判断路径是否指向文件夹分享。
// SharePoint 路径包含 :f:（或 :b:）基本可判定为文件夹；
// Forms/AllItems.aspx 是文档库根目录浏览页。
func isFolderPath(path string) bool {
	p := strings.ToLower(path)
	return strings.Contains(p, "/:f:/") ||
		strings.Contains(p, "/:b:/") ||
		strings.Contains(p, "forms/allitems.aspx")
}
