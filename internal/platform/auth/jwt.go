package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims 是验证通过后交给业务层的最小身份集合。
type Claims struct {
	UserID string
	Role   string
}

// jwtClaims 是 token 里的实际负载：标准字段 + 自定义 role。
type jwtClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService 签发与验证会话 token。
// 接口化是为了测试替身和将来换签名算法时不动调用方。
type TokenService interface {
	Sign(userID string, role string) (string, error)
	Verify(token string) (Claims, error)
}

// NewHS256Service 构造 HS256 对称签名的 TokenService。
// 三个参数都不允许为零值，配置缺失宁可启动失败。
func NewHS256Service(secret, issuer string, ttl time.Duration) (TokenService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	if issuer == "" {
		return nil, errors.New("jwt issuer is empty")
	}
	if ttl <= 0 {
		return nil, errors.New("jwt ttl must be > 0")
	}
	return &hs256Service{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}, nil
}
