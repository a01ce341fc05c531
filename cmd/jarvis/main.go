package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"jarvis-assistant/internal/bot"
	"jarvis-assistant/internal/clients/lingva"
	"jarvis-assistant/internal/clients/openrouter"
	"jarvis-assistant/internal/clients/openweather"
	"jarvis-assistant/internal/config"
	"jarvis-assistant/internal/logger"
	"jarvis-assistant/internal/repository"
	"jarvis-assistant/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync() //nolint:errcheck

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatal("load timezone", zap.String("timezone", cfg.Timezone), zap.Error(err))
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	financeRepo := repository.NewFinanceRepository(db)
	adviceRepo := repository.NewAdviceRepository(db)

	ai := openrouter.New(cfg.OpenRouterURL, cfg.OpenRouterKey, cfg.OpenRouterModel)
	translator := lingva.New(cfg.LingvaURL)
	weather := openweather.New(cfg.OpenWeatherKey)

	scheduler := service.NewSchedulerService(loc)
	reminderSvc := service.NewReminderService(taskRepo, log)
	taskSvc := service.NewTaskService(taskRepo, reminderSvc, scheduler, ai, log, loc)
	financeSvc := service.NewFinanceService(financeRepo, ai, log)
	chatSvc := service.NewChatService(ai, translator, adviceRepo, log)
	adviceSvc := service.NewAdviceService(taskRepo, adviceRepo, ai, translator, log, loc)

	jarvis, err := bot.New(
		cfg.TelegramToken,
		log,
		userRepo,
		taskSvc,
		reminderSvc,
		financeSvc,
		chatSvc,
		adviceSvc,
		translator,
		weather,
		loc,
	)
	if err != nil {
		log.Fatal("create bot", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := scheduler.ScheduleDaily(cfg.MorningTime, func() {
		if err := jarvis.SendMorningSummaries(ctx); err != nil {
			log.Error("morning summaries", zap.Error(err))
		}
	}); err != nil {
		log.Fatal("schedule morning summaries", zap.Error(err))
	}

	if _, err := scheduler.ScheduleDaily(cfg.EveningTime, func() {
		if err := jarvis.SendEveningSummaries(ctx); err != nil {
			log.Error("evening summaries", zap.Error(err))
		}
	}); err != nil {
		log.Fatal("schedule evening summaries", zap.Error(err))
	}

	if _, err := scheduler.ScheduleDaily(cfg.IncomeTime, func() {
		if err := jarvis.RunIncomeChecks(ctx); err != nil {
			log.Error("income checks", zap.Error(err))
		}
	}); err != nil {
		log.Fatal("schedule income checks", zap.Error(err))
	}

	scheduler.Start()
	defer scheduler.Stop()

	log.Info("jarvis assistant started",
		zap.String("timezone", cfg.Timezone),
		zap.String("morning", cfg.MorningTime),
		zap.String("evening", cfg.EveningTime),
	)

	if err := jarvis.Start(ctx); err != nil {
		log.Fatal("bot stopped", zap.Error(err))
	}

	log.Info("shutdown complete")
}
