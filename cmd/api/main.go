package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/escolalab/gestao-escolar-api/api/swagger"
	"github.com/escolalab/gestao-escolar-api/internal/handler"
	"github.com/escolalab/gestao-escolar-api/internal/middleware"
	"github.com/escolalab/gestao-escolar-api/internal/migrations"
	"github.com/escolalab/gestao-escolar-api/internal/models"
	"github.com/escolalab/gestao-escolar-api/internal/repository"
	"github.com/escolalab/gestao-escolar-api/internal/service"
	"github.com/escolalab/gestao-escolar-api/pkg/cache"
	"github.com/escolalab/gestao-escolar-api/pkg/config"
	"github.com/escolalab/gestao-escolar-api/pkg/database"
	"github.com/escolalab/gestao-escolar-api/pkg/export"
	"github.com/escolalab/gestao-escolar-api/pkg/logger"
	corsmiddleware "github.com/escolalab/gestao-escolar-api/pkg/middleware/cors"
	reqidmiddleware "github.com/escolalab/gestao-escolar-api/pkg/middleware/requestid"
)

// @title Gestão Escolar API
// @version 1.0.0
// @description School enrollment administration: classes, students, enrollment and dashboard statistics
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	if err := migrations.Up(db.DB); err != nil {
		logr.Sugar().Fatalw("failed to run migrations", "error", err)
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	validate := validator.New()

	metricsSvc := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Stats.CacheTTL, logr, cfg.Stats.CacheEnabled)

	classRepo := repository.NewClassRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	userRepo := repository.NewUserRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	sessionRepo := repository.NewSessionRepository(redisClient)

	statsSvc := service.NewStatsService(statsRepo, cacheSvc, cfg.Stats.CacheTTL, logr)
	classSvc := service.NewClassService(classRepo, statsSvc, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, statsSvc, export.NewCSVExporter(), export.NewPDFExporter(), validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, studentRepo, statsSvc, validate, logr)
	userSvc := service.NewUserService(userRepo, validate, logr)
	authSvc := service.NewAuthService(userRepo, sessionRepo, validate, logr, service.AuthConfig{
		Secret: cfg.Session.Secret,
		TTL:    cfg.Session.TTL,
		Issuer: "gestao-escolar-api",
	})

	authHandler := handler.NewAuthHandler(authSvc, cfg.Session.CookieName, cfg.Session.CookieSecure)
	userHandler := handler.NewUserHandler(userSvc)
	classHandler := handler.NewClassHandler(classSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	statsHandler := handler.NewStatsHandler(statsSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.POST("/auth/login", authHandler.Login)

	authenticated := r.Group("/")
	authenticated.Use(middleware.Session(authSvc, cfg.Session.CookieName))
	{
		authenticated.POST("/auth/logout", authHandler.Logout)
		authenticated.GET("/auth/me", authHandler.Me)

		authenticated.GET("/classes", classHandler.List)
		authenticated.GET("/classes/:id", classHandler.Get)
		authenticated.GET("/students", studentHandler.List)
		authenticated.GET("/students/:id", studentHandler.Get)
		authenticated.GET("/stats", statsHandler.Overview)
	}

	admin := authenticated.Group("/")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	{
		admin.POST("/classes", classHandler.Create)
		admin.DELETE("/classes/:id", classHandler.Delete)
		admin.POST("/students", studentHandler.Create)
		admin.DELETE("/students/:id", studentHandler.Delete)
		admin.GET("/students/export", studentHandler.Export)
		admin.POST("/enrollments", enrollmentHandler.Create)
		admin.GET("/auth/users", userHandler.List)
		admin.POST("/auth/users", userHandler.Create)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
