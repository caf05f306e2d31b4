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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/gramseva/office-portal-api/api/swagger"
	"github.com/gramseva/office-portal-api/internal/handler"
	"github.com/gramseva/office-portal-api/internal/middleware"
	"github.com/gramseva/office-portal-api/internal/repository"
	"github.com/gramseva/office-portal-api/internal/service"
	"github.com/gramseva/office-portal-api/pkg/cache"
	"github.com/gramseva/office-portal-api/pkg/config"
	"github.com/gramseva/office-portal-api/pkg/database"
	"github.com/gramseva/office-portal-api/pkg/jobs"
	"github.com/gramseva/office-portal-api/pkg/logger"
	corsmiddleware "github.com/gramseva/office-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/gramseva/office-portal-api/pkg/middleware/requestid"
	"github.com/gramseva/office-portal-api/pkg/push"
	"github.com/gramseva/office-portal-api/pkg/storage"
)

// @title Office Portal API
// @version 1.0.0
// @description Citizen application portal for the district office
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.Migrate {
		if err := database.Migrate(ctx, db); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	metricsService := service.NewMetricsService()

	var cacheService *service.CacheService
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect to redis", zap.Error(err))
		}
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		defer cacheRepo.Close()
		cacheService = service.NewCacheService(cacheRepo, metricsService, cfg.Dashboard.CacheTTL, logr, true)
	}

	userRepo := repository.NewUserRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	contactRepo := repository.NewContactRepository(db)

	authService := service.NewAuthService(userRepo, logr, service.AuthConfig{
		TokenSecret:   cfg.JWT.Secret,
		TokenExpiry:   cfg.JWT.Expiration,
		Issuer:        cfg.JWT.Issuer,
		AdminUsername: cfg.Admin.Username,
		AdminPassword: cfg.Admin.Password,
	})
	userService := service.NewUserService(userRepo, logr)
	applicationService := service.NewApplicationService(applicationRepo, logr, service.ApplicationServiceConfig{
		StrictTransitions: cfg.Applications.StrictTransitions,
	})
	contactService := service.NewContactService(contactRepo, logr)

	documentStore, err := storage.NewLocalStorage(cfg.Storage.BaseDir)
	if err != nil {
		logr.Fatal("failed to init document storage", zap.Error(err))
	}
	documentSigner := storage.NewSignedURLSigner(cfg.Storage.SignSecret, cfg.Storage.URLTTL)
	documentService := service.NewDocumentService(documentStore, documentSigner, applicationRepo, logr, service.DocumentServiceConfig{
		MaxFileSize: cfg.Storage.MaxFileSize,
		DownloadURL: cfg.APIPrefix + "/documents/download",
		Retention:   cfg.Storage.Retention,
	})
	if cfg.Storage.Retention > 0 {
		go func() {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if _, err := documentService.PurgeExpired(ctx); err != nil {
						logr.Warn("document purge failed", zap.Error(err))
					}
				}
			}
		}()
	}
	dashboardService := service.NewDashboardService(userRepo, applicationRepo, cacheService, metricsService, logr, service.DashboardServiceConfig{
		CacheTTL: cfg.Dashboard.CacheTTL,
	})

	var (
		notificationService *service.NotificationService
		publisher           push.Publisher
		pushQueue           *jobs.Queue
	)
	if cfg.Push.Enabled {
		snsPublisher, err := push.NewSNSPublisher(ctx, cfg.Push.Region)
		if err != nil {
			logr.Fatal("failed to init sns publisher", zap.Error(err))
		}
		publisher = snsPublisher
		pushQueue = jobs.NewQueue("push-broadcast", func(jobCtx context.Context, job jobs.Job) error {
			return notificationService.HandleBroadcast(jobCtx, job)
		}, jobs.QueueConfig{
			Workers:    cfg.Push.Workers,
			MaxRetries: cfg.Push.MaxRetries,
			RetryDelay: cfg.Push.RetryDelay,
			Logger:     logr,
		})
	}
	notificationService = service.NewNotificationService(notificationRepo, publisher, pushQueue, metricsService, logr, service.NotificationConfig{
		PushEnabled: cfg.Push.Enabled,
		TopicARN:    cfg.Push.TopicARN,
		SendTimeout: cfg.Push.SendTimeout,
	})
	if pushQueue != nil {
		pushQueue.Start(ctx)
		defer pushQueue.Stop()
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	metricsHandler := handler.NewMetricsHandler(metricsService)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handlers := handler.Handlers{
		Auth:          handler.NewAuthHandler(authService),
		Users:         handler.NewUserHandler(userService),
		Applications:  handler.NewApplicationHandler(applicationService),
		Notifications: handler.NewNotificationHandler(notificationService),
		Documents:     handler.NewDocumentHandler(documentService),
		Contact:       handler.NewContactHandler(contactService),
		Metrics:       metricsHandler,
	}
	if cfg.Dashboard.Enabled {
		handlers.Dashboard = handler.NewDashboardHandler(dashboardService)
	}
	handler.RegisterRoutes(r, cfg.APIPrefix, authService, handlers)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}
