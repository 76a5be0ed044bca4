package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	apperrors "github.com/weiwangfds/lzydiary/internal/errors"
	"github.com/weiwangfds/lzydiary/internal/response"
	"github.com/weiwangfds/lzydiary/internal/service/auth"
)

// 登录身份在 gin.Context 中的键
const (
	AccountIDKey = "account_id"
	IdentityKey  = "identity"
)

// SessionChecker 校验访问令牌
type SessionChecker interface {
	CurrentSession(ctx context.Context, token string) (*auth.Identity, error)
}

// RequireAuth 要求请求携带有效的 Bearer 令牌
// 校验失败或超时一律按未登录处理
func RequireAuth(checker SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			response.FromError(c, apperrors.FromCode(apperrors.ErrUnauthorized))
			c.Abort()
			return
		}

		identity, err := checker.CurrentSession(c.Request.Context(), token)
		if err != nil {
			response.FromError(c, err)
			c.Abort()
			return
		}

		c.Set(IdentityKey, identity)
		c.Set(AccountIDKey, identity.AccountID)
		c.Next()
	}
}

// CurrentIdentity 取出 RequireAuth 写入的身份
func CurrentIdentity(c *gin.Context) (*auth.Identity, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*auth.Identity)
	return identity, ok
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
