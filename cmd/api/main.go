package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/classhub/classroom-api/api/swagger"
	"github.com/classhub/classroom-api/internal/handler"
	"github.com/classhub/classroom-api/internal/middleware"
	"github.com/classhub/classroom-api/internal/models"
	"github.com/classhub/classroom-api/internal/repository"
	"github.com/classhub/classroom-api/internal/service"
	rediscache "github.com/classhub/classroom-api/pkg/cache"
	"github.com/classhub/classroom-api/pkg/config"
	"github.com/classhub/classroom-api/pkg/database"
	"github.com/classhub/classroom-api/pkg/logger"
	corsmiddleware "github.com/classhub/classroom-api/pkg/middleware/cors"
	reqidmiddleware "github.com/classhub/classroom-api/pkg/middleware/requestid"
)

// @title Classroom API
// @version 1.0.0
// @description Class lifecycle and enrollment management
// @BasePath /api/v1
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

	var store service.ClassStore
	switch cfg.Store.Driver {
	case config.StoreDriverHTTP:
		store = repository.NewHTTPClassRepository(cfg.Store)
	default:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
		}
		defer db.Close() //nolint:errcheck
		store = repository.NewClassRepository(db)
	}

	var cacheRepo *repository.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := rediscache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
		defer cacheRepo.Close() //nolint:errcheck
	} else {
		cacheRepo = repository.NewCacheRepository(nil, logr)
	}

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(cfg.JWT, logr)

	mutator := service.NewClassMutator(store, cacheRepo, metricsSvc, cfg.Store.ReplaceRetries, logr)
	classSvc := service.NewClassService(mutator, store, logr)
	enrollmentSvc := service.NewEnrollmentService(mutator, store, cacheRepo, metricsSvc, cfg.Cache.StatsTTL, nil, logr)
	exportSvc := service.NewExportService(store, logr)

	classHandler := handler.NewClassHandler(classSvc, exportSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

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
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(authSvc))

	classes := api.Group("/classes")
	classes.POST("", middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin), classHandler.Create)
	classes.GET("", classHandler.List)
	classes.GET("/:id", classHandler.Get)
	classes.PUT("/:id", middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin), classHandler.Update)
	classes.DELETE("/:id", middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin), classHandler.Delete)

	classes.POST("/:id/enroll", middleware.RequireRoles(models.RoleStudent), enrollmentHandler.Enroll)
	classes.GET("/:id/pending", middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin), enrollmentHandler.Pending)
	classes.PUT("/:id/approve/:studentId", middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin), enrollmentHandler.Approve)
	classes.PUT("/:id/reject/:studentId", middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin), enrollmentHandler.Reject)
	classes.DELETE("/:id/students/:studentId", middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin), enrollmentHandler.Remove)
	classes.GET("/:id/stats", enrollmentHandler.Stats)

	if cfg.Export.Enabled {
		classes.GET("/:id/export", middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin), classHandler.Export)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "store", cfg.Store.Driver)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
