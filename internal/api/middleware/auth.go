package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sacde-pdd/backend/internal/authz"
	"sacde-pdd/backend/pkg/jwt"
	"sacde-pdd/backend/pkg/response"
)

// SessionKey gin.Context 中会话的键
const SessionKey = "session"

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证令牌，
// 将声明中的权限字符串转换为 authz.Session 注入上下文
func JWTAuth(jwtMgr *jwt.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "缺少认证头")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "认证头格式无效")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				response.Unauthorized(c, 10002, "Token 已过期")
			} else {
				response.Unauthorized(c, 10002, "Token 无效")
			}
			c.Abort()
			return
		}

		caps, unknown := authz.Parse(claims.Permissions)
		if len(unknown) > 0 {
			logger.Warn("令牌包含未识别的权限",
				zap.String("user_id", claims.UserID),
				zap.Strings("permissions", unknown))
		}

		sess := authz.NewSession(claims.UserID, claims.EmployeeID, claims.Email, caps)
		c.Set(SessionKey, sess)
		c.Set("user_id", claims.UserID)

		c.Next()
	}
}

// RequireCapability 权限中间件
// 当前会话须持有任一指定权限；细粒度校验仍在 Service 层完成
func RequireCapability(caps ...authz.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get(SessionKey)
		if !exists {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}
		sess, ok := v.(*authz.Session)
		if !ok {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}

		for _, want := range caps {
			if sess.Can(want) {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "无权限访问")
		c.Abort()
	}
}
