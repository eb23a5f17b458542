package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"sacde-pdd/backend/internal/dto"
	"sacde-pdd/backend/internal/service"
	"sacde-pdd/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportDailyReport 导出日报
// GET /api/v1/export/daily-report?date=&crew_id=
func (h *ExportHandler) ExportDailyReport(c *gin.Context) {
	var q dto.ExportDailyReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "date 与 crew_id 不能为空")
		return
	}
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportDailyReport(c.Request.Context(), sess, &q)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrCrewNotFound):
		response.NotFound(c, 23001, "班组不存在")
	case errors.Is(err, service.ErrReportNotFound):
		response.NotFound(c, 23002, "该班组当日无日报")
	case errors.Is(err, service.ErrProjectNotFound):
		response.NotFound(c, 23003, "项目不存在")
	default:
		response.InternalError(c)
	}
}
