// Package main runs the webinar platform HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dancrewzus/webinar-wizard/config"
	"github.com/dancrewzus/webinar-wizard/internal/attendance"
	"github.com/dancrewzus/webinar-wizard/internal/auth"
	"github.com/dancrewzus/webinar-wizard/internal/clock"
	"github.com/dancrewzus/webinar-wizard/internal/emaillogs"
	"github.com/dancrewzus/webinar-wizard/internal/images"
	"github.com/dancrewzus/webinar-wizard/internal/middleware"
	"github.com/dancrewzus/webinar-wizard/internal/models"
	"github.com/dancrewzus/webinar-wizard/internal/notify"
	"github.com/dancrewzus/webinar-wizard/internal/roles"
	"github.com/dancrewzus/webinar-wizard/internal/tracks"
	"github.com/dancrewzus/webinar-wizard/internal/users"
	"github.com/dancrewzus/webinar-wizard/internal/webinars"
	"github.com/dancrewzus/webinar-wizard/pkg/database"
	"github.com/dancrewzus/webinar-wizard/pkg/queue"
	"github.com/dancrewzus/webinar-wizard/pkg/redis"
	"github.com/dancrewzus/webinar-wizard/pkg/response"
	"github.com/dancrewzus/webinar-wizard/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	clk, err := clock.NewFixedZone(cfg.Jobs.Timezone)
	if err != nil {
		logger.Fatal("timezone", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, "production", cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:          cfg.AWS.Region,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			ImagesBucket:    cfg.AWS.ImagesBucket,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	notifier := notify.NewQueueNotifier(jobQueue, logger)

	roleRepo := roles.NewRepository(pool)
	if err := roleRepo.EnsureDefaults(ctx); err != nil {
		logger.Fatal("seed roles", zap.Error(err))
	}
	userRepo := users.NewRepository(pool)
	trackRepo := tracks.NewRepository(pool)
	webinarRepo := webinars.NewRepository(pool)
	imageRepo := images.NewRepository(pool)
	emailLogRepo := emaillogs.NewRepository(pool)

	coordinator := attendance.NewCoordinator(webinarRepo, userRepo, trackRepo, notifier, clk, logger)

	authHandler := auth.NewHandler(userRepo, roleRepo, trackRepo, jwtService, clk, logger)
	webinarHandler := webinars.NewHandler(webinarRepo, coordinator, clk, logger)
	emailLogHandler := emaillogs.NewHandler(emailLogRepo, logger)
	imageHandler := images.NewHandler(imageRepo, userRepo, s3Client, clk, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.GET("/webinars", webinarHandler.List)
		api.GET("/webinars/:id", webinarHandler.Get)
		api.POST("/webinars", middleware.RequireRole(models.RoleAdmin), webinarHandler.Create)
		api.PATCH("/webinars/:id", middleware.RequireRole(models.RoleAdmin), webinarHandler.Update)
		api.DELETE("/webinars/:id", middleware.RequireRole(models.RoleAdmin), webinarHandler.Delete)
		api.GET("/webinars/:id/emails", middleware.RequireRole(models.RoleAdmin), emailLogHandler.ListByWebinar)

		api.POST("/webinars/:id/attend", webinarHandler.Attend)
		api.POST("/webinars/:id/not-attend", webinarHandler.NotAttend)

		api.POST("/users/me/picture", imageHandler.Upload)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
