package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"sacde-pdd/backend/internal/dto"
	"sacde-pdd/backend/internal/service"
	"sacde-pdd/backend/pkg/response"
)

// DailyReportHandler 日报模块 HTTP 处理器
type DailyReportHandler struct {
	reportSvc service.DailyReportService
}

// NewDailyReportHandler 创建 DailyReportHandler
func NewDailyReportHandler(reportSvc service.DailyReportService) *DailyReportHandler {
	return &DailyReportHandler{reportSvc: reportSvc}
}

// GetWorkingSet 录入工作集
// GET /api/v1/daily-reports/working-set?date=&project_id=&crew_id=(id|all)&add=&remove=
func (h *DailyReportHandler) GetWorkingSet(c *gin.Context) {
	var q dto.WorkingSetQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	ws, err := h.reportSvc.GetWorkingSet(c.Request.Context(), sess, &q)
	if err != nil {
		h.handleDailyReportError(c, err)
		return
	}
	response.OK(c, ws)
}

// ApplyEdit 单字段编辑校验（不落库）
// POST /api/v1/daily-reports/entries/apply
func (h *DailyReportHandler) ApplyEdit(c *gin.Context) {
	var req dto.ApplyEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	result, err := h.reportSvc.ApplyEdit(c.Request.Context(), sess, &req)
	if err != nil {
		h.handleDailyReportError(c, err)
		return
	}
	response.OK(c, result)
}

// Save 保存日报（首次保存创建）
// PUT /api/v1/daily-reports
func (h *DailyReportHandler) Save(c *gin.Context) {
	var req dto.SaveDailyReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	result, err := h.reportSvc.Save(c.Request.Context(), sess, &req)
	if err != nil {
		h.handleDailyReportError(c, err)
		return
	}
	if result.Created {
		response.Created(c, result)
		return
	}
	response.OK(c, result)
}

// GetDailyReport 日报详情
// GET /api/v1/daily-reports/:id
func (h *DailyReportHandler) GetDailyReport(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "日报ID不能为空")
		return
	}
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	report, err := h.reportSvc.Get(c.Request.Context(), sess, id)
	if err != nil {
		h.handleDailyReportError(c, err)
		return
	}
	response.OK(c, report)
}

// CheckNotify 通报前检查
// GET /api/v1/daily-reports/:id/notify-check
func (h *DailyReportHandler) CheckNotify(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "日报ID不能为空")
		return
	}
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	result, err := h.reportSvc.CheckNotify(c.Request.Context(), sess, id)
	if err != nil {
		h.handleDailyReportError(c, err)
		return
	}
	response.OK(c, result)
}

// Notify 通报日报
// POST /api/v1/daily-reports/:id/notify
func (h *DailyReportHandler) Notify(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "日报ID不能为空")
		return
	}
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	report, err := h.reportSvc.Notify(c.Request.Context(), sess, id)
	if err != nil {
		h.handleDailyReportError(c, err)
		return
	}
	response.OK(c, report)
}

// DeleteDailyReport 删除日报
// DELETE /api/v1/daily-reports/:id
func (h *DailyReportHandler) DeleteDailyReport(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "日报ID不能为空")
		return
	}
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	if err := h.reportSvc.Delete(c.Request.Context(), sess, id); err != nil {
		h.handleDailyReportError(c, err)
		return
	}
	response.OK(c, nil)
}

// ListMoveTargets 可调入的班组
// GET /api/v1/daily-reports/move-targets?date=&crew_id=
func (h *DailyReportHandler) ListMoveTargets(c *gin.Context) {
	var q dto.MoveTargetQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	targets, err := h.reportSvc.ListMoveTargets(c.Request.Context(), sess, &q)
	if err != nil {
		h.handleDailyReportError(c, err)
		return
	}
	response.List(c, targets)
}

// MoveEmployee 员工跨班组调动
// POST /api/v1/daily-reports/move
func (h *DailyReportHandler) MoveEmployee(c *gin.Context) {
	var req dto.MoveEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	result, err := h.reportSvc.MoveEmployee(c.Request.Context(), sess, &req)
	if err != nil {
		h.handleDailyReportError(c, err)
		return
	}
	response.OK(c, result)
}

// Approve 审批日报
// POST /api/v1/daily-reports/:id/approve
func (h *DailyReportHandler) Approve(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "日报ID不能为空")
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

	report, err := h.reportSvc.Approve(c.Request.Context(), sess, id, req.Role)
	if err != nil {
		h.handleDailyReportError(c, err)
		return
	}
	response.OK(c, report)
}

// handleDailyReportError 统一处理日报模块业务错误
func (h *DailyReportHandler) handleDailyReportError(c *gin.Context, err error) {
	var validationErr *service.EntryValidationError
	if errors.As(err, &validationErr) {
		response.Unprocessable(c, 20010, "工时校验失败", gin.H{"violations": validationErr.Violations})
		return
	}
	var guardErr *service.NotifyGuardError
	if errors.As(err, &guardErr) {
		response.Unprocessable(c, 20011, guardErr.Error(), gin.H{
			"missing_input": guardErr.MissingInput,
			"missing_phase": guardErr.MissingPhase,
		})
		return
	}
	if handleCommonError(c, err) {
		return
	}

	switch {
	case errors.Is(err, service.ErrReportNotFound):
		response.NotFound(c, 20001, "日报不存在")
	case errors.Is(err, service.ErrCrewNotFound):
		response.NotFound(c, 20002, "班组不存在")
	case errors.Is(err, service.ErrProjectNotFound):
		response.NotFound(c, 20003, "项目不存在")
	case errors.Is(err, service.ErrCrewProjectMismatch):
		response.BadRequest(c, 20004, "班组不属于该项目")
	case errors.Is(err, service.ErrReportEmpty):
		response.Unprocessable(c, 20012, "日报无人员，不能通报", nil)
	case errors.Is(err, service.ErrReportNotified):
		response.Conflict(c, 20013, "日报已通报，不可修改或删除")
	case errors.Is(err, service.ErrReportNotNotified):
		response.Conflict(c, 20014, "日报尚未通报，不能审批")
	// ── 调动 ──
	case errors.Is(err, service.ErrMoveSameCrew):
		response.BadRequest(c, 20020, "源班组与目标班组相同")
	case errors.Is(err, service.ErrMoveCrossProject):
		response.BadRequest(c, 20021, "只能在同一项目的班组之间调动")
	case errors.Is(err, service.ErrMoveSourceNoReport):
		response.NotFound(c, 20022, "源班组当日无日报")
	case errors.Is(err, service.ErrMoveEmployeeNotOnSource):
		response.NotFound(c, 20023, "员工不在源班组日报中")
	case errors.Is(err, service.ErrMoveSourceNotified):
		response.Conflict(c, 20024, "源班组日报已通报，不能调出")
	case errors.Is(err, service.ErrMoveTargetNotified):
		response.Conflict(c, 20025, "目标班组日报已通报，不能调入")
	case errors.Is(err, service.ErrMoveEmployeeOnTarget):
		response.Conflict(c, 20026, "员工已在目标班组日报中")
	// ── 审批 ──
	case errors.Is(err, service.ErrApprovalNotRequired):
		response.Conflict(c, 20030, "该角色无需审批")
	case errors.Is(err, service.ErrAlreadyApproved):
		response.Conflict(c, 20031, "该角色已审批，不可重复审批")
	case errors.Is(err, service.ErrNotDesignatedApprover):
		response.Forbidden(c, 20032, "当前用户不是指定审批人")
	default:
		response.InternalError(c)
	}
}
