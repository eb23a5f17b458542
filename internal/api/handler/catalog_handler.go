package handler

import (
	"github.com/gin-gonic/gin"

	"sacde-pdd/backend/internal/service"
	"sacde-pdd/backend/pkg/response"
)

// CatalogHandler 目录模块 HTTP 处理器（只读）
type CatalogHandler struct {
	catalogSvc service.CatalogService
}

// NewCatalogHandler 创建 CatalogHandler
func NewCatalogHandler(catalogSvc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc}
}

// ListProjects GET /api/v1/catalog/projects
func (h *CatalogHandler) ListProjects(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}
	list, err := h.catalogSvc.ListProjects(c.Request.Context(), sess)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}
	response.List(c, list)
}

// ListCrews GET /api/v1/catalog/crews?project_id=
func (h *CatalogHandler) ListCrews(c *gin.Context) {
	projectID := c.Query("project_id")
	if projectID == "" {
		response.BadRequest(c, 10001, "project_id 不能为空")
		return
	}
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}
	list, err := h.catalogSvc.ListCrews(c.Request.Context(), sess, projectID)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}
	response.List(c, list)
}

// ListEmployees GET /api/v1/catalog/employees
func (h *CatalogHandler) ListEmployees(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}
	list, err := h.catalogSvc.ListEmployees(c.Request.Context(), sess)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}
	response.List(c, list)
}

// ListPhases GET /api/v1/catalog/phases?project_id=
func (h *CatalogHandler) ListPhases(c *gin.Context) {
	projectID := c.Query("project_id")
	if projectID == "" {
		response.BadRequest(c, 10001, "project_id 不能为空")
		return
	}
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}
	list, err := h.catalogSvc.ListPhases(c.Request.Context(), sess, projectID)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}
	response.List(c, list)
}

// ListAbsenceTypes GET /api/v1/catalog/absence-types
func (h *CatalogHandler) ListAbsenceTypes(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}
	list, err := h.catalogSvc.ListAbsenceTypes(c.Request.Context(), sess)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}
	response.List(c, list)
}

// ListSpecialHourTypes GET /api/v1/catalog/special-hour-types
func (h *CatalogHandler) ListSpecialHourTypes(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}
	list, err := h.catalogSvc.ListSpecialHourTypes(c.Request.Context(), sess)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}
	response.List(c, list)
}

// ListUnproductiveHourTypes GET /api/v1/catalog/unproductive-hour-types
func (h *CatalogHandler) ListUnproductiveHourTypes(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}
	list, err := h.catalogSvc.ListUnproductiveHourTypes(c.Request.Context(), sess)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}
	response.List(c, list)
}

func (h *CatalogHandler) handleCatalogError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	response.InternalError(c)
}
