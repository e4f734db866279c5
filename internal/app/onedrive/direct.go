package onedrive

// DirectURL 把企业版/世纪互联分享链接改写为 download.aspx 直链。
//
// 转换规则（与原工具一致）：
//
//	输入: https://{domain}/:u:/g/personal/{user}/{token}
//	输出: https://{domain}/personal/{user}/_layouts/52/download.aspx?share={token}
//
// 纯字符串改写：不发网络请求、不需要登录态，原始 query 一律丢弃。
// /_layouts/52/download.aspx?share= 在企业版和世纪互联租户上都是
// 匿名可访问的下载跳转端点，同一输入永远得到同一输出。
func DirectURL(cls Classification) (string, error) {
	if cls.Family != FamilyCommercial && cls.Family != FamilyTenantCN {
		return "", newConvError(KindUnsupportedDomain)
	}
	if cls.IsFolder {
		return "", newConvError(KindFolderNotSupported)
	}
	if cls.User == "" || cls.Token == "" {
		return "", newConvError(KindMalformedShareSegment)
	}
	return "https://" + cls.Host + "/personal/" + cls.User +
		"/_layouts/52/download.aspx?share=" + cls.Token, nil
}
