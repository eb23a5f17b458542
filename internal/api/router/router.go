package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sacde-pdd/backend/config"
	"sacde-pdd/backend/internal/api/handler"
	"sacde-pdd/backend/internal/api/middleware"
	"sacde-pdd/backend/internal/authz"
	"sacde-pdd/backend/pkg/jwt"
	"sacde-pdd/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 可为 nil（限流降级放行）
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// 写接口限流
	var writeLimit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if cfg.RateLimit.Enabled {
		writeLimit = middleware.RateLimit(rdb, cfg.RateLimit.Limit, cfg.RateLimit.Window)
	}

	// ── API v1（全部需要认证） ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr, logger))
	{
		// 目录模块
		catalog := v1.Group("/catalog")
		catalog.Use(middleware.RequireCapability(authz.CatalogView))
		{
			catalog.GET("/projects", h.Catalog.ListProjects)
			catalog.GET("/crews", h.Catalog.ListCrews)
			catalog.GET("/employees", h.Catalog.ListEmployees)
			catalog.GET("/phases", h.Catalog.ListPhases)
			catalog.GET("/absence-types", h.Catalog.ListAbsenceTypes)
			catalog.GET("/special-hour-types", h.Catalog.ListSpecialHourTypes)
			catalog.GET("/unproductive-hour-types", h.Catalog.ListUnproductiveHourTypes)
		}

		// 日报模块（细粒度权限在 Service 层校验）
		reports := v1.Group("/daily-reports")
		{
			reports.GET("/working-set", h.DailyReport.GetWorkingSet)
			reports.POST("/entries/apply", h.DailyReport.ApplyEdit)
			reports.PUT("", writeLimit, h.DailyReport.Save)
			reports.GET("/move-targets", h.DailyReport.ListMoveTargets)
			reports.POST("/move", writeLimit, h.DailyReport.MoveEmployee)
			reports.GET("/:id", h.DailyReport.GetDailyReport)
			reports.GET("/:id/notify-check", h.DailyReport.CheckNotify)
			reports.POST("/:id/notify", writeLimit, h.DailyReport.Notify)
			reports.POST("/:id/approve", writeLimit, h.DailyReport.Approve)
			reports.DELETE("/:id", writeLimit, h.DailyReport.DeleteDailyReport)
		}

		// 请假许可模块
		permissions := v1.Group("/permissions")
		{
			permissions.GET("", h.Permission.ListPermissions)
			permissions.GET("/calendar.ics", h.Permission.Calendar)
			permissions.GET("/:id", h.Permission.GetPermission)
			permissions.POST("", writeLimit, h.Permission.CreatePermission)
			permissions.PUT("/:id", writeLimit, h.Permission.UpdatePermission)
			permissions.DELETE("/:id", writeLimit, h.Permission.DeletePermission)
			permissions.POST("/:id/approve", writeLimit, h.Permission.ApprovePermission)
		}

		// 导出模块
		export := v1.Group("/export")
		export.Use(middleware.RequireCapability(authz.DailyReportExport))
		{
			export.GET("/daily-report", h.Export.ExportDailyReport)
		}
	}

	return r
}
