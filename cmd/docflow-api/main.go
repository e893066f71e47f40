package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/edu-docflow-api/api/swagger"
	"github.com/noah-isme/edu-docflow-api/internal/handler"
	"github.com/noah-isme/edu-docflow-api/internal/middleware"
	"github.com/noah-isme/edu-docflow-api/internal/models"
	"github.com/noah-isme/edu-docflow-api/internal/repository"
	"github.com/noah-isme/edu-docflow-api/internal/service"
	"github.com/noah-isme/edu-docflow-api/pkg/cache"
	"github.com/noah-isme/edu-docflow-api/pkg/config"
	"github.com/noah-isme/edu-docflow-api/pkg/database"
	"github.com/noah-isme/edu-docflow-api/pkg/events"
	"github.com/noah-isme/edu-docflow-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/edu-docflow-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/edu-docflow-api/pkg/middleware/requestid"
	"github.com/noah-isme/edu-docflow-api/pkg/storage"
)

// @title Edu DocFlow API
// @version 1.0.0
// @description Multi-party document workflow engine for education programs
// @BasePath /api/v1
// @schemes http
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	if cfg.Database.MigrateOnStart {
		if err := database.Migrate(db, cfg.Database); err != nil {
			logr.Sugar().Fatalw("migrations failed", "error", err)
		}
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching and redis events disabled", "error", err)
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close()

	attendanceRepo := repository.NewAttendanceSheetRepository(db)
	userRepo := repository.NewUserRepository(db)
	stores := service.SubmissionStores{}
	for _, docType := range models.SimpleDocumentTypes {
		stores[docType] = repository.NewSubmissionRepository(db, docType)
	}

	publisher := newPublisher(cfg, cacheRepo, logr)
	dispatcher := events.NewDispatcher(publisher, cfg.Events.Workers, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	summaryOpts := []service.SummaryServiceOption{service.WithSummaryMetrics(metricsSvc)}
	if cfg.Summary.CacheEnabled && redisClient != nil {
		summaryOpts = append(summaryOpts, service.WithSummaryCache(cacheRepo, cfg.Summary.CacheTTL))
	}
	summarySvc := service.NewSummaryService(attendanceRepo, stores, logr, summaryOpts...)

	attendanceSvc := service.NewAttendanceService(attendanceRepo, validate, logr,
		service.WithCompletionThreshold(cfg.Workflow.CompletionThreshold),
		service.WithAttendanceMetrics(metricsSvc),
		service.WithAttendanceNotifier(dispatcher),
		service.WithAttendanceNotifier(summarySvc),
	)

	submissionSvc := service.NewSubmissionService(stores, validate, logr,
		service.WithSubmissionMetrics(metricsSvc),
		service.WithSubmissionNotifier(dispatcher),
		service.WithSubmissionNotifier(summarySvc),
	)

	bulkSvc := service.NewBulkService(attendanceRepo, stores, attendanceSvc, submissionSvc, validate, logr,
		service.WithBulkAudit(userRepo),
		service.WithBulkMetrics(metricsSvc),
	)

	signatureStore, err := storage.NewSignatureStore(cfg.Signatures.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("signature storage init failed", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Signatures.SignedURLSecret, cfg.Signatures.SignedURLTTL)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(authSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	submissionHandler := handler.NewSubmissionHandler(submissionSvc)
	summaryHandler := handler.NewSummaryHandler(summarySvc)
	bulkHandler := handler.NewBulkHandler(bulkSvc)
	signatureHandler := handler.NewSignatureHandler(signatureStore, signer)

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/me", middleware.JWT(authSvc), authHandler.Me)

	api.GET("/signatures/:token", signatureHandler.Download)

	authed := api.Group("", middleware.JWT(authSvc))

	authed.POST("/bulk-review",
		middleware.RBAC(models.RoleAdmin),
		middleware.Audit(userRepo, models.AuditActionBulkReview, "documents"),
		bulkHandler.Review)

	edu := authed.Group("/educations/:educationId")

	attendance := edu.Group("/attendance")
	attendance.GET("", attendanceHandler.Get)
	attendance.PUT("", middleware.RBAC(models.RoleTeacher, models.RoleAdmin), attendanceHandler.Update)
	attendance.POST("/ready", middleware.RBAC(models.RoleTeacher, models.RoleAdmin), attendanceHandler.MarkAsReady)
	attendance.POST("/signature", middleware.RBAC(models.RoleTeacher, models.RoleAdmin), attendanceHandler.Sign)
	attendance.POST("/signature-image", middleware.RBAC(models.RoleTeacher, models.RoleAdmin), signatureHandler.Upload)
	attendance.POST("/request", middleware.RBAC(models.RoleInstructor, models.RoleAdmin), attendanceHandler.Request)
	attendance.POST("/return", middleware.RBAC(models.RoleInstructor, models.RoleAdmin), attendanceHandler.Return)
	attendance.POST("/submit", middleware.RBAC(models.RoleInstructor, models.RoleAdmin), attendanceHandler.Submit)
	attendance.POST("/review",
		middleware.RBAC(models.RoleAdmin),
		middleware.Audit(userRepo, models.AuditActionDocumentReview, "attendance"),
		attendanceHandler.Review)
	attendance.GET("/completion", attendanceHandler.Completion)

	docs := edu.Group("/documents")
	docs.POST("/bulk-review",
		middleware.RBAC(models.RoleAdmin),
		middleware.Audit(userRepo, models.AuditActionBulkReview, "documents"),
		bulkHandler.ReviewEducation)
	docs.GET("/:type", submissionHandler.Get)
	docs.PUT("/:type", middleware.RBAC(models.RoleTeacher, models.RoleAdmin), submissionHandler.Update)
	docs.POST("/:type/submit", middleware.RBAC(models.RoleTeacher, models.RoleInstructor, models.RoleAdmin), submissionHandler.Submit)
	docs.POST("/:type/approve",
		middleware.RBAC(models.RoleAdmin),
		middleware.Audit(userRepo, models.AuditActionDocumentReview, "documents"),
		submissionHandler.Approve)
	docs.POST("/:type/reject",
		middleware.RBAC(models.RoleAdmin),
		middleware.Audit(userRepo, models.AuditActionDocumentReview, "documents"),
		submissionHandler.Reject)
	docs.POST("/equipment/return", middleware.RBAC(models.RoleTeacher, models.RoleAdmin), submissionHandler.ConfirmReturn)

	edu.GET("/summary", summaryHandler.DocSummary)
	edu.GET("/submission-group", middleware.RBAC(models.RoleAdmin, models.RoleInstructor), summaryHandler.SubmissionGroup)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "events_driver", cfg.Events.Driver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

func newPublisher(cfg *config.Config, cacheRepo *repository.CacheRepository, logr *zap.Logger) events.Publisher {
	switch cfg.Events.Driver {
	case "redis":
		return events.NewRedisPublisher(cacheRepo, cfg.Events.Channel)
	case "kafka":
		return events.NewKafkaPublisher(cfg.Events.KafkaBrokers, cfg.Events.KafkaTopic)
	default:
		if cfg.Events.Driver != "" && cfg.Events.Driver != "none" {
			logr.Sugar().Warnw("unknown events driver, notifications disabled", "driver", cfg.Events.Driver)
		}
		return events.NopPublisher{}
	}
}
