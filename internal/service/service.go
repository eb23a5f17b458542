package service

import (
	"go.uber.org/zap"

	"sacde-pdd/backend/config"
	"sacde-pdd/backend/internal/authz"
	"sacde-pdd/backend/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Catalog     CatalogService
	DailyReport DailyReportService
	Permission  PermissionService
	Export      ExportService
}

// NewService 创建 Service 聚合；cache 可为 nil（Redis 不可用时直接读库）
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	cache Cache,
	logger *zap.Logger,
) *Service {
	authorizer := authz.NewAuthorizer()
	return &Service{
		Catalog:     NewCatalogService(repo, authorizer, cache, cfg.Labor.CatalogCacheTTL, logger),
		DailyReport: NewDailyReportService(&cfg.Labor, repo, authorizer, logger),
		Permission:  NewPermissionService(repo, authorizer, logger),
		Export:      NewExportService(repo, authorizer, logger),
	}
}
