package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"sacde-pdd/backend/internal/api/middleware"
	"sacde-pdd/backend/internal/authz"
	"sacde-pdd/backend/internal/service"
	pkgerrors "sacde-pdd/backend/pkg/errors"
	"sacde-pdd/backend/pkg/response"
)

// MustGetSession 从 Gin 上下文中安全提取当前会话。
// 如果认证中间件未注入会话，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetSession(c *gin.Context) (*authz.Session, bool) {
	v, exists := c.Get(middleware.SessionKey)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	sess, ok := v.(*authz.Session)
	if !ok || sess == nil || sess.UserID == "" {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return sess, true
}

// handleCommonError 处理各模块共有的错误；已写入响应时返回 true
func handleCommonError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, authz.ErrForbidden):
		response.Forbidden(c, 10003, "无权限访问")
	case errors.Is(err, pkgerrors.ErrCommitFailed):
		response.ServiceUnavailable(c, 10006, pkgerrors.ErrCommitFailed.Error())
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 10001, service.ErrInvalidDate.Error())
	case errors.Is(err, service.ErrInvalidApprovalRole):
		response.BadRequest(c, 10001, service.ErrInvalidApprovalRole.Error())
	default:
		return false
	}
	return true
}
