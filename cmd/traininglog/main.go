package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"training-log/internal/bot"
	"training-log/internal/clock"
	"training-log/internal/config"
	"training-log/internal/repository"
	"training-log/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	store := repository.NewStore(db)
	clk := clock.NewSystem()

	catalogSvc := service.NewCatalogService(store, clk)
	recordSvc := service.NewRecordService(store, clk)
	chartSvc := service.NewChartService(store, clk)
	reportSvc := service.NewReportService(chartSvc)
	exportSvc := service.NewExportService(store, clk)

	if err := catalogSvc.SeedDefaultsIfNeeded(ctx, service.DefaultExercises); err != nil {
		logger.Fatal("seed defaults", zap.Error(err))
	}

	telegramBot, err := bot.New(cfg.TelegramToken, catalogSvc, recordSvc, reportSvc, exportSvc, clk, &cfg, logger)
	if err != nil {
		logger.Fatal("bot", zap.Error(err))
	}

	scheduler := service.NewSchedulerService(time.Local)
	if cfg.ReportChatID != 0 {
		if _, err := scheduler.ScheduleWeekly(time.Sunday, cfg.ReportTime, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := telegramBot.SendWeeklyReport(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("weekly report", zap.Error(err))
			}
		}); err != nil {
			logger.Fatal("schedule weekly report", zap.Error(err))
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	logger.Info("training log bot started")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("bot stopped with error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
