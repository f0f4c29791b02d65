package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/academyhq/academy-api/api/swagger"
	"github.com/academyhq/academy-api/internal/handler"
	"github.com/academyhq/academy-api/internal/middleware"
	"github.com/academyhq/academy-api/internal/repository"
	"github.com/academyhq/academy-api/internal/service"
	"github.com/academyhq/academy-api/pkg/cache"
	"github.com/academyhq/academy-api/pkg/config"
	"github.com/academyhq/academy-api/pkg/database"
	"github.com/academyhq/academy-api/pkg/logger"
	corsmiddleware "github.com/academyhq/academy-api/pkg/middleware/cors"
	reqidmiddleware "github.com/academyhq/academy-api/pkg/middleware/requestid"
	"github.com/academyhq/academy-api/pkg/storage"
)

// @title Academy API
// @version 1.0.0
// @description Student management and dashboard scheduling backend
// @BasePath /
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if cfg.Dashboard.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
			redisClient = nil
		}
	}

	photos, err := storage.NewPhotoStore(cfg.Uploads.Dir, cfg.Uploads.PublicPath, cfg.Uploads.PlaceholderURL)
	if err != nil {
		logr.Fatal("failed to prepare photo storage", zap.Error(err))
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled && redisClient != nil)

	studentRepo := repository.NewStudentRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)
	staffRepo := repository.NewStaffRepository(db)

	studentSvc := service.NewStudentService(studentRepo, photos, cacheSvc, logr)
	dashboardSvc := service.NewDashboardService(dashboardRepo, cacheSvc, cfg.Dashboard.CacheTTL, logr)
	exportSvc := service.NewExportService(studentRepo, logr)
	authSvc := service.NewAuthService(staffRepo, validate, logr, cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.Expiration)

	studentHandler := handler.NewStudentHandler(studentSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	authHandler := handler.NewAuthHandler(authSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.Static(cfg.Uploads.PublicPath, photos.Dir())
	r.StaticFile(cfg.Uploads.PlaceholderURL, cfg.Uploads.PlaceholderFile)

	r.POST("/auth/login", authHandler.Login)

	// The legacy panel calls these endpoints unauthenticated; the staff JWT
	// guard covers the mutating routes only when enabled.
	guard := func(c *gin.Context) { c.Next() }
	if cfg.Auth.Enabled {
		guard = middleware.JWT(authSvc)
	}

	students := r.Group("/students")
	{
		students.POST("/register", guard, studentHandler.Register)
		students.GET("/:userId", studentHandler.GetProfile)
		students.PUT("/:userId", guard, studentHandler.Update)
		students.DELETE("/:userId", guard, studentHandler.Delete)
		students.POST("/:userId/profile", guard, studentHandler.CreateProfile)
		students.GET("/:userId/grades", studentHandler.GetGrades)
		students.POST("/:userId/photo", guard, studentHandler.UploadPhoto)
		students.GET("/:userId/branches", studentHandler.GetBranches)
		students.GET("/:userId/slots", studentHandler.GetSlots)
	}

	r.GET("/dashboard", dashboardHandler.Schedule)
	r.GET("/exports/students", guard, exportHandler.StudentRoster)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
