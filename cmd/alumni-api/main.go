package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/alumni-network-api/api/swagger"
	"github.com/noah-isme/alumni-network-api/internal/handler"
	"github.com/noah-isme/alumni-network-api/internal/repository"
	"github.com/noah-isme/alumni-network-api/internal/service"
	"github.com/noah-isme/alumni-network-api/pkg/cache"
	"github.com/noah-isme/alumni-network-api/pkg/config"
	"github.com/noah-isme/alumni-network-api/pkg/database"
	"github.com/noah-isme/alumni-network-api/pkg/identity"
	"github.com/noah-isme/alumni-network-api/pkg/jobs"
	"github.com/noah-isme/alumni-network-api/pkg/logger"
	"github.com/noah-isme/alumni-network-api/pkg/mail"
	"github.com/noah-isme/alumni-network-api/pkg/storage"
)

// @title Alumni Network API
// @version 1.0.0
// @description Alumni directory, spreadsheet import, identity provisioning and event mail.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, directory cache disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	provider, err := identity.NewClerkProvider(cfg.Identity)
	if err != nil {
		return err
	}
	verifier, err := identity.NewWebhookVerifier(cfg.Webhook.Secret)
	if err != nil {
		return err
	}

	mailer := mail.NewSMTPMailer(cfg.Mail, logr)
	defer func() {
		if err := mailer.Close(); err != nil {
			logr.Warn("close smtp sessions", zap.Error(err))
		}
	}()

	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return err
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	validate := validator.New()
	metrics := service.NewMetricsService()

	alumniRepo := repository.NewAlumniRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Directory.CacheTTL, logr, redisClient != nil)

	authSvc, err := service.NewAuthService(accountRepo, logr, service.AuthConfig{
		PublicKeyPEM:      cfg.Auth.JWTPublicKeyPEM,
		AuthorizedParties: cfg.Auth.AuthorizedParties,
		ClockSkew:         cfg.Auth.ClockSkew,
	})
	if err != nil {
		return err
	}

	provisioningSvc := service.NewProvisioningService(accountRepo, provider, metrics, logr.Named("provisioning"), service.ProvisioningConfig{
		BatchSize:      cfg.Provisioning.BatchSize,
		BatchDelay:     cfg.Provisioning.BatchDelay,
		FailureSamples: cfg.Provisioning.FailureSamples,
		RedirectURL:    cfg.Identity.RedirectURL,
	})
	queue := jobs.NewQueue("provisioning", provisioningSvc.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Provisioning.QueueWorkers,
		BufferSize: 16,
		MaxRetries: cfg.Provisioning.QueueRetries,
		RetryDelay: 30 * time.Second,
		Logger:     logr,
	})
	queue.Start(ctx)
	defer queue.Stop()

	importSvc := service.NewImportService(
		service.NewRowMapper(service.NewIdentifierGenerator(nil)),
		service.NewBulkWriter(alumniRepo, accountRepo, logr.Named("import")),
		service.NewProvisioningScheduler(queue),
		cacheSvc,
		metrics,
		logr.Named("import"),
		service.ImportConfig{MaxRows: cfg.Import.MaxRows},
	)
	broadcastSvc := service.NewBroadcastService(ctx, alumniRepo, mailer, service.NewInvitationTemplate(cfg.MainURL), validate, metrics, logr.Named("broadcast"), service.BroadcastConfig{
		BatchSize:      cfg.Broadcast.BatchSize,
		BatchDelay:     cfg.Broadcast.BatchDelay,
		FailureSamples: cfg.Broadcast.FailureSamples,
	})
	identitySvc := service.NewIdentityEventService(accountRepo, metrics, logr.Named("webhook"))
	alumniSvc := service.NewAlumniService(alumniRepo, accountRepo, db, provider, cacheSvc, validate, logr, cfg.Directory.CacheTTL)
	accountSvc := service.NewAccountService(accountRepo, validate, logr)
	achievementSvc := service.NewAchievementService(achievementRepo, validate, logr)
	exportSvc := service.NewExportService(alumniRepo, exportStore, signer, validate, logr.Named("export"), service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		Retention: cfg.Exports.SignedURLTTL,
	})
	go purgeExports(ctx, exportSvc, cfg.Exports.SignedURLTTL)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	checks := map[string]handler.Pinger{"database": db}
	if redisClient != nil {
		checks["cache"] = handler.PingFunc(cacheRepo.Ping)
	}

	router := newRouter(cfg, logr, routes{
		auth:         authSvc,
		audit:        auditRepo,
		imports:      handler.NewImportHandler(importSvc, cfg.Import.MaxUploadBytes),
		provisioning: handler.NewProvisioningHandler(provisioningSvc),
		broadcasts:   handler.NewBroadcastHandler(broadcastSvc),
		accounts:     handler.NewAccountHandler(accountSvc),
		alumni:       handler.NewAlumniHandler(alumniSvc),
		achievements: handler.NewAchievementHandler(achievementSvc),
		exports:      handler.NewExportHandler(exportSvc),
		webhooks:     handler.NewWebhookHandler(verifier, identitySvc, metrics, logr.Named("webhook")),
		auditLogs:    handler.NewAuditHandler(auditRepo),
		metrics:      handler.NewMetricsHandler(metrics, checks),
		metricsSvc:   metrics,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func purgeExports(ctx context.Context, exports *service.ExportService, every time.Duration) {
	if every <= 0 {
		every = time.Hour
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = exports.Purge()
		}
	}
}
