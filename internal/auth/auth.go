package auth

import (
	"context"
	stdhttp "net/http"

	"github.com/go-kratos/kratos/v2/errors"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// 定义 context key
type contextKey string

const (
	// UserIDKey 用户ID的context key（外部认证系统的 subject id，字符串）
	UserIDKey contextKey = "user_id"
	// UserRoleKey 用户角色的context key
	UserRoleKey contextKey = "user_role"
)

// 网关透传的认证头
const (
	HeaderUserID   = "X-User-Id"
	HeaderUserRole = "X-User-Role"
)

// Role 用户角色
type Role string

const (
	RoleDriver        Role = "driver"
	RoleMechanic      Role = "mechanic"
	RoleWorkshopOwner Role = "workshop_owner"
	RoleAdmin         Role = "admin"
)

// IsProvider 判断角色是否可以接单（技师或门店老板）
func (r Role) IsProvider() bool {
	return r == RoleMechanic || r == RoleWorkshopOwner
}

// GetUIDFromContext 从context中获取用户ID（字符串 subject id）
func GetUIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(UserIDKey).(string)
	return uid, ok && uid != ""
}

// GetRoleFromContext 从context中获取用户角色
func GetRoleFromContext(ctx context.Context) (Role, bool) {
	role, ok := ctx.Value(UserRoleKey).(Role)
	return role, ok
}

// RequireUID 获取当前用户ID，未认证时返回 Unauthorized
func RequireUID(ctx context.Context) (string, error) {
	uid, ok := GetUIDFromContext(ctx)
	if !ok {
		return "", errors.Unauthorized("UNAUTHORIZED", "authentication required")
	}
	return uid, nil
}

// IsAdmin 判断当前用户是否为管理员
func IsAdmin(ctx context.Context) bool {
	role, ok := GetRoleFromContext(ctx)
	return ok && role == RoleAdmin
}

// WithIdentity 将用户身份写入 context（测试和 cron 场景使用）
func WithIdentity(ctx context.Context, uid string, role Role) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, uid)
	ctx = context.WithValue(ctx, UserRoleKey, role)
	return ctx
}

// Filter 从网关透传的请求头中提取用户身份写入 context
// 身份认证本身由上游网关完成，这里只负责透传
func Filter() khttp.FilterFunc {
	return func(next stdhttp.Handler) stdhttp.Handler {
		return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
			ctx := r.Context()
			if uid := r.Header.Get(HeaderUserID); uid != "" {
				ctx = context.WithValue(ctx, UserIDKey, uid)
			}
			if role := r.Header.Get(HeaderUserRole); role != "" {
				ctx = context.WithValue(ctx, UserRoleKey, Role(role))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
