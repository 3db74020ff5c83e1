// Package main runs the background jobs: the hourly lifecycle sweep, the
// twice-daily database mirror, and the notification mailer.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dancrewzus/webinar-wizard/config"
	"github.com/dancrewzus/webinar-wizard/internal/clock"
	"github.com/dancrewzus/webinar-wizard/internal/emaillogs"
	"github.com/dancrewzus/webinar-wizard/internal/lifecycle"
	"github.com/dancrewzus/webinar-wizard/internal/mailer"
	"github.com/dancrewzus/webinar-wizard/internal/mirror"
	"github.com/dancrewzus/webinar-wizard/internal/notify"
	"github.com/dancrewzus/webinar-wizard/internal/webinars"
	"github.com/dancrewzus/webinar-wizard/pkg/database"
	"github.com/dancrewzus/webinar-wizard/pkg/queue"
	"github.com/dancrewzus/webinar-wizard/pkg/redis"
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

	backupPool, err := database.NewPostgresPool(ctx, "backup", cfg.Backup.DSN(), logger)
	if err != nil {
		logger.Fatal("backup database", zap.Error(err))
	}
	defer backupPool.Close()

	if err := database.Migrate(ctx, backupPool); err != nil {
		logger.Fatal("migrate backup", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jobQueue := queue.NewQueue(rdb.Client, logger)
	notifier := notify.NewQueueNotifier(jobQueue, logger)
	runTimeout := time.Duration(cfg.Jobs.RunTimeoutSec) * time.Second

	webinarRepo := webinars.NewRepository(pool)
	sweep := lifecycle.NewSweep(webinarRepo, notifier, clk, logger, runTimeout)
	mirrorJob := mirror.NewJob(mirror.DefaultCopiers(pool, backupPool), logger, runTimeout)

	var composer mailer.Composer
	if cfg.OpenAI.APIKey != "" {
		composer = mailer.NewOpenAIComposer(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	} else {
		logger.Warn("no OpenAI key configured, using static email templates")
		composer = mailer.StaticComposer{}
	}
	sender := mailer.NewSMTPSender(cfg.Email.SMTPHost, cfg.Email.SMTPPort,
		cfg.Email.SMTPUser, cfg.Email.SMTPPass, cfg.Email.FromAddress, cfg.Email.FromName)
	emailLogRepo := emaillogs.NewRepository(pool)
	mail := mailer.New(jobQueue, composer, sender, emailLogRepo, clk, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go mail.Run(workerCtx)

	scheduler := cron.New(
		cron.WithLocation(clk.Location()),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	if _, err := scheduler.AddFunc(cfg.Jobs.SweepSpec, func() {
		if err := sweep.Run(workerCtx); err != nil {
			logger.Error("lifecycle sweep failed", zap.Error(err))
		}
	}); err != nil {
		logger.Fatal("schedule sweep", zap.Error(err))
	}
	if _, err := scheduler.AddFunc(cfg.Jobs.MirrorSpec, func() {
		if err := mirrorJob.Run(workerCtx); err != nil {
			logger.Error("mirror job failed", zap.Error(err))
		}
	}); err != nil {
		logger.Fatal("schedule mirror", zap.Error(err))
	}
	scheduler.Start()
	logger.Info("worker started",
		zap.String("sweep_spec", cfg.Jobs.SweepSpec),
		zap.String("mirror_spec", cfg.Jobs.MirrorSpec),
		zap.String("timezone", cfg.Jobs.Timezone))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	stopCtx := scheduler.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
	}
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
