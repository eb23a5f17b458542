package handler

import "sacde-pdd/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Catalog     *CatalogHandler
	DailyReport *DailyReportHandler
	Permission  *PermissionHandler
	Export      *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Catalog:     NewCatalogHandler(svc.Catalog),
		DailyReport: NewDailyReportHandler(svc.DailyReport),
		Permission:  NewPermissionHandler(svc.Permission),
		Export:      NewExportHandler(svc.Export),
	}
}
