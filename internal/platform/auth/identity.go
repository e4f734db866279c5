package auth

import "context"

// Identity 是验证通过后挂在请求上下文里的身份信息。
type Identity struct {
	UserID string
	Role   string
}

// 私有 key 类型，避免和其他包的 context value 撞 key。
type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func GetIdentity(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
