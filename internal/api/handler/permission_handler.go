package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sacde-pdd/backend/internal/dto"
	"sacde-pdd/backend/internal/service"
	"sacde-pdd/backend/pkg/response"
)

// PermissionHandler 请假许可模块 HTTP 处理器
type PermissionHandler struct {
	permissionSvc service.PermissionService
}

// NewPermissionHandler 创建 PermissionHandler
func NewPermissionHandler(permissionSvc service.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissionSvc: permissionSvc}
}

// ListPermissions 请假许可列表
// GET /api/v1/permissions?employee_id=&from=&to=
func (h *PermissionHandler) ListPermissions(c *gin.Context) {
	var q dto.PermissionListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	list, err := h.permissionSvc.List(c.Request.Context(), sess, &q)
	if err != nil {
		h.handlePermissionError(c, err)
		return
	}
	response.List(c, list)
}

// GetPermission 请假许可详情
// GET /api/v1/permissions/:id
func (h *PermissionHandler) GetPermission(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "许可ID不能为空")
		return
	}
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	p, err := h.permissionSvc.Get(c.Request.Context(), sess, id)
	if err != nil {
		h.handlePermissionError(c, err)
		return
	}
	response.OK(c, p)
}

// CreatePermission 创建请假许可
// POST /api/v1/permissions
func (h *PermissionHandler) CreatePermission(c *gin.Context) {
	var req dto.CreatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	p, err := h.permissionSvc.Create(c.Request.Context(), sess, &req)
	if err != nil {
		h.handlePermissionError(c, err)
		return
	}
	response.Created(c, p)
}

// UpdatePermission 更新请假许可（无审批记录时）
// PUT /api/v1/permissions/:id
func (h *PermissionHandler) UpdatePermission(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "许可ID不能为空")
		return
	}
	var req dto.UpdatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	p, err := h.permissionSvc.Update(c.Request.Context(), sess, id, &req)
	if err != nil {
		h.handlePermissionError(c, err)
		return
	}
	response.OK(c, p)
}

// DeletePermission 删除请假许可
// DELETE /api/v1/permissions/:id
func (h *PermissionHandler) DeletePermission(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "许可ID不能为空")
		return
	}
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	if err := h.permissionSvc.Delete(c.Request.Context(), sess, id); err != nil {
		h.handlePermissionError(c, err)
		return
	}
	response.OK(c, nil)
}

// ApprovePermission 审批请假许可
// POST /api/v1/permissions/:id/approve
func (h *PermissionHandler) ApprovePermission(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "许可ID不能为空")
		return
	}
	var req dto.ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	p, err := h.permissionSvc.Approve(c.Request.Context(), sess, id, req.Role)
	if err != nil {
		h.handlePermissionError(c, err)
		return
	}
	response.OK(c, p)
}

// Calendar 请假许可日历订阅
// GET /api/v1/permissions/calendar.ics?employee_id=&from=&to=
func (h *PermissionHandler) Calendar(c *gin.Context) {
	var q dto.PermissionListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	body, err := h.permissionSvc.Calendar(c.Request.Context(), sess, &q)
	if err != nil {
		h.handlePermissionError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="permisos.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", body)
}

// handlePermissionError 统一处理请假许可模块业务错误
func (h *PermissionHandler) handlePermissionError(c *gin.Context, err error) {
	var overlapErr *service.PermissionOverlapError
	if errors.As(err, &overlapErr) {
		response.ErrorWithData(c, http.StatusConflict, 21003, overlapErr.Error(), overlapErr.Conflict)
		return
	}
	if handleCommonError(c, err) {
		return
	}

	switch {
	case errors.Is(err, service.ErrPermissionNotFound):
		response.NotFound(c, 21001, "请假许可不存在")
	case errors.Is(err, service.ErrPermissionDateRange):
		response.BadRequest(c, 21002, "结束日期不能早于开始日期")
	case errors.Is(err, service.ErrPermissionOverlap):
		response.Conflict(c, 21003, "与该员工已有的请假许可日期重叠")
	case errors.Is(err, service.ErrPermissionApproved):
		response.Conflict(c, 21004, "请假许可已有审批记录，不可修改")
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 21005, "员工不存在")
	case errors.Is(err, service.ErrAbsenceTypeNotFound):
		response.NotFound(c, 21006, "缺勤类型不存在")
	// ── 审批 ──
	case errors.Is(err, service.ErrApprovalNotRequired):
		response.Conflict(c, 21010, "该角色无需审批")
	case errors.Is(err, service.ErrAlreadyApproved):
		response.Conflict(c, 21011, "该角色已审批，不可重复审批")
	case errors.Is(err, service.ErrNotDesignatedApprover):
		response.Forbidden(c, 21012, "当前用户不是指定审批人")
	default:
		response.InternalError(c)
	}
}
