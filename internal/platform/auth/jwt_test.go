package auth

import (
	"testing"
	"time"
)

// 测试签发后的 token 能验证回相同身份
func TestSignVerifyRoundTrip(t *testing.T) {
	ts, err := NewHS256Service("test-secret", "odlink", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, err := ts.Sign("admin", "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := ts.Verify(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != "admin" || claims.Role != "admin" {
		t.Errorf("claims = %+v", claims)
	}
}

// 测试换了密钥后验证失败
func TestVerifyWrongSecret(t *testing.T) {
	a, _ := NewHS256Service("secret-a", "odlink", time.Hour)
	b, _ := NewHS256Service("secret-b", "odlink", time.Hour)

	token, err := a.Sign("admin", "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := b.Verify(token); err == nil {
		t.Error("expected verification failure with wrong secret")
	}
}

// 测试 issuer 不匹配时验证失败
func TestVerifyWrongIssuer(t *testing.T) {
	a, _ := NewHS256Service("secret", "issuer-a", time.Hour)
	b, _ := NewHS256Service("secret", "issuer-b", time.Hour)

	token, err := a.Sign("admin", "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := b.Verify(token); err == nil {
		t.Error("expected verification failure with wrong issuer")
	}
}

// 测试过期 token 被拒绝
func TestVerifyExpired(t *testing.T) {
	ts, _ := NewHS256Service("secret", "odlink", time.Millisecond)

	token, err := ts.Sign("admin", "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := ts.Verify(token); err == nil {
		t.Error("expected verification failure for expired token")
	}
}

// 测试非法参数直接拒绝构造
func TestNewHS256ServiceValidation(t *testing.T) {
	if _, err := NewHS256Service("", "odlink", time.Hour); err == nil {
		t.Error("empty secret should be rejected")
	}
	if _, err := NewHS256Service("secret", "", time.Hour); err == nil {
		t.Error("empty issuer should be rejected")
	}
	if _, err := NewHS256Service("secret", "odlink", 0); err == nil {
		t.Error("zero ttl should be rejected")
	}
}
