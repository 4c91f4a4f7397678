package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/alumni-network-api/internal/handler"
	"github.com/noah-isme/alumni-network-api/internal/middleware"
	"github.com/noah-isme/alumni-network-api/internal/models"
	"github.com/noah-isme/alumni-network-api/internal/service"
	"github.com/noah-isme/alumni-network-api/pkg/config"
	"github.com/noah-isme/alumni-network-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/alumni-network-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/alumni-network-api/pkg/middleware/requestid"
)

type routes struct {
	auth         middleware.Authenticator
	audit        middleware.AuditWriter
	imports      *handler.ImportHandler
	provisioning *handler.ProvisioningHandler
	broadcasts   *handler.BroadcastHandler
	accounts     *handler.AccountHandler
	alumni       *handler.AlumniHandler
	achievements *handler.AchievementHandler
	exports      *handler.ExportHandler
	webhooks     *handler.WebhookHandler
	auditLogs    *handler.AuditHandler
	metrics      *handler.MetricsHandler
	metricsSvc   *service.MetricsService
}

func newRouter(cfg *config.Config, logr *zap.Logger, h routes) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(h.metricsSvc))

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.POST("/api/webhooks/identity", h.webhooks.Identity)

	audit := func(action, resource, idParam string) gin.HandlerFunc {
		return middleware.Audit(h.audit, logr, action, resource, idParam)
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/alumni", h.alumni.List)
	api.GET("/alumni/:uid", h.alumni.Get)
	api.GET("/achievements", h.achievements.List)
	api.GET("/accounts/:uid/verification", h.accounts.IsVerified)
	api.GET("/exports/:token", h.exports.Download)

	session := api.Group("", middleware.Session(h.auth))
	session.POST("/registrations", h.alumni.Register)
	session.PUT("/profile", h.alumni.UpdateProfile)

	admin := session.Group("/admin", middleware.RequireRoles(models.RoleAdmin))
	admin.POST("/imports", audit(models.AuditActionImport, "alumni", ""), h.imports.ImportCSV)
	admin.POST("/imports/entries", audit(models.AuditActionImport, "alumni", ""), h.imports.ImportEntries)
	admin.POST("/provisioning/run", audit(models.AuditActionProvision, "accounts", ""), h.provisioning.Run)
	admin.POST("/broadcasts", audit(models.AuditActionBroadcast, "alumni", ""), h.broadcasts.Send)
	admin.PATCH("/accounts/:uid/verify", audit(models.AuditActionVerify, "accounts", "uid"), h.accounts.SetVerification)
	admin.GET("/alumni/recent", h.alumni.Recent)
	admin.GET("/alumni/export", audit(models.AuditActionExport, "alumni", ""), h.exports.Export)
	admin.POST("/achievements", audit(models.AuditActionAchievementCU, "achievements", ""), h.achievements.Create)
	admin.PUT("/achievements/:id", audit(models.AuditActionAchievementCU, "achievements", "id"), h.achievements.Update)
	admin.DELETE("/achievements/:id", audit(models.AuditActionAchievementD, "achievements", "id"), h.achievements.Delete)
	admin.GET("/audit-logs", h.auditLogs.List)

	return r
}
