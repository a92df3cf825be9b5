package main

import (
	"context"
	"errors"
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

	_ "github.com/gymtech/backoffice-api/api/swagger"
	"github.com/gymtech/backoffice-api/internal/handler"
	"github.com/gymtech/backoffice-api/internal/middleware"
	"github.com/gymtech/backoffice-api/internal/models"
	"github.com/gymtech/backoffice-api/internal/repository"
	"github.com/gymtech/backoffice-api/internal/service"
	"github.com/gymtech/backoffice-api/pkg/cache"
	"github.com/gymtech/backoffice-api/pkg/config"
	"github.com/gymtech/backoffice-api/pkg/database"
	"github.com/gymtech/backoffice-api/pkg/jobs"
	"github.com/gymtech/backoffice-api/pkg/logger"
	corsmiddleware "github.com/gymtech/backoffice-api/pkg/middleware/cors"
	reqidmiddleware "github.com/gymtech/backoffice-api/pkg/middleware/requestid"
	"github.com/gymtech/backoffice-api/pkg/storage"
)

// @title GymTech Back-Office API
// @version 1.0.0
// @description Gym management back-office: members, plans, payments, classes, dashboard and reports
// @BasePath /api/v1
// @schemes http

const overdueSweepInterval = time.Hour

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	cacheEnabled := cfg.Cache.Enabled
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		cacheEnabled = false
	} else {
		defer redisClient.Close()
		cacheRepo = repository.NewCacheRepository(redisClient)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.DefaultTTL, logr, cacheEnabled)

	validate := validator.New()

	studentRepo := repository.NewStudentRepository(db)
	planRepo := repository.NewPlanRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	classRepo := repository.NewClassRepository(db)
	userRepo := repository.NewUserRepository(db)
	reportJobRepo := repository.NewReportJobRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:            cfg.JWT.Secret,
		Expiration:        cfg.JWT.Expiration,
		RefreshExpiration: cfg.JWT.RefreshExpiration,
	})
	studentSvc := service.NewStudentService(studentRepo, planRepo, cacheSvc, validate, logr)
	planSvc := service.NewPlanService(planRepo, cacheSvc, validate, logr)
	paymentSvc := service.NewPaymentService(paymentRepo, studentRepo, cacheSvc, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, validate, logr)
	classSvc := service.NewClassService(classRepo, teacherRepo, studentRepo, validate, logr)
	snapshotSvc := service.NewSnapshotService(studentRepo, planRepo, paymentRepo, teacherRepo, metricsSvc, logr)
	dashboardSvc := service.NewDashboardService(snapshotSvc, cacheSvc, logr, service.DashboardConfig{
		CacheTTL:          cfg.Dashboard.CacheTTL,
		ExpiringWindowDay: cfg.Dashboard.ExpiringWindowDay,
		TopPayers:         cfg.Dashboard.TopPayers,
	})

	var reportSvc *service.ReportService
	var reportQueue *jobs.Queue
	if cfg.Reports.Enabled {
		files, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init report storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
		worker := service.NewReportWorker(reportJobRepo, snapshotSvc, service.NewExportService(), files, signer, metricsSvc, logr)
		reportQueue = jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
			Logger:     logr,
		})
		reportSvc = service.NewReportService(reportJobRepo, reportQueue, files, signer, validate, logr)

		reportQueue.Start(ctx)
		defer reportQueue.Stop()
		reportSvc.RecoverPendingJobs(ctx)

		go runReportCleanup(ctx, reportSvc, cfg.Reports.CleanupInterval, cfg.Reports.SignedURLTTL, logr)
	}

	go runOverdueSweep(ctx, paymentSvc, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	planHandler := handler.NewPlanHandler(planSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	classHandler := handler.NewClassHandler(classSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

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

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)
	auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	writers := middleware.RequireRoles(models.RoleAdmin, models.RoleManager)
	admins := middleware.RequireRoles(models.RoleAdmin)

	students := protected.Group("/students")
	students.GET("", studentHandler.List)
	students.GET("/:id", studentHandler.Get)
	students.POST("", studentHandler.Create)
	students.PUT("/:id", studentHandler.Update)
	students.DELETE("/:id", writers, studentHandler.Delete)

	plans := protected.Group("/plans")
	plans.GET("", planHandler.List)
	plans.GET("/:id", planHandler.Get)
	plans.POST("", writers, planHandler.Create)
	plans.PUT("/:id", writers, planHandler.Update)
	plans.DELETE("/:id", admins, planHandler.Delete)

	payments := protected.Group("/payments")
	payments.GET("", paymentHandler.List)
	payments.GET("/:id", paymentHandler.Get)
	payments.POST("", paymentHandler.Create)
	payments.POST("/:id/settle", paymentHandler.Settle)
	payments.POST("/sweep-overdue", writers, paymentHandler.SweepOverdue)
	payments.DELETE("/:id", admins, paymentHandler.Delete)

	teachers := protected.Group("/teachers")
	teachers.GET("", teacherHandler.List)
	teachers.GET("/:id", teacherHandler.Get)
	teachers.POST("", writers, teacherHandler.Create)
	teachers.PUT("/:id", writers, teacherHandler.Update)
	teachers.DELETE("/:id", admins, teacherHandler.Delete)

	classes := protected.Group("/classes")
	classes.GET("", classHandler.List)
	classes.GET("/:id", classHandler.Get)
	classes.POST("", writers, classHandler.Create)
	classes.PUT("/:id", writers, classHandler.Update)
	classes.POST("/:id/enroll", classHandler.Enroll)
	classes.DELETE("/:id/enroll/:studentId", classHandler.Unenroll)
	classes.DELETE("/:id", admins, classHandler.Delete)

	dashboard := protected.Group("/dashboard")
	dashboard.GET("", dashboardHandler.Summary)
	dashboard.GET("/top-payers", dashboardHandler.TopPayers)

	protected.GET("/admin/metrics", admins, metricsHandler.System)

	if reportSvc != nil {
		reportHandler := handler.NewReportHandler(reportSvc)
		api.GET("/reports/download", reportHandler.Download)
		reports := protected.Group("/reports")
		reports.POST("/generate", reportHandler.Generate)
		reports.GET("/:id/status", reportHandler.Status)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

// runOverdueSweep flips pending payments past their due date to overdue on
// startup and then on a fixed interval.
func runOverdueSweep(ctx context.Context, payments *service.PaymentService, logr *zap.Logger) {
	sweep := func() {
		updated, err := payments.SweepOverdue(ctx)
		if err != nil {
			logr.Sugar().Warnw("overdue sweep failed", "error", err)
			return
		}
		if updated > 0 {
			logr.Sugar().Infow("overdue sweep complete", "updated", updated)
		}
	}

	sweep()
	ticker := time.NewTicker(overdueSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep()
		}
	}
}

// runReportCleanup deletes finished report files once their signed URL TTL
// has lapsed.
func runReportCleanup(ctx context.Context, reports *service.ReportService, interval, retention time.Duration, logr *zap.Logger) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := reports.Cleanup(ctx, retention)
			if err != nil {
				logr.Sugar().Warnw("report cleanup failed", "error", err)
				continue
			}
			if removed > 0 {
				logr.Sugar().Infow("report cleanup complete", "removed", removed)
			}
		}
	}
}
